package domain

import (
	"encoding/json"
	"time"
)

// Category is an EONET category reference.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Source is an upstream reference for an event (origin name + link).
type Source struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// GeometrySample is one entry of an event's geometry history. Coordinates
// stay raw until normalization so a malformed sample cannot fail decoding of
// the whole batch.
type GeometrySample struct {
	Type           string          `json:"type"`
	Coordinates    json.RawMessage `json:"coordinates"`
	Date           string          `json:"date"`
	MagnitudeValue *float64        `json:"magnitudeValue,omitempty"`
	MagnitudeUnit  *string         `json:"magnitudeUnit,omitempty"`
}

// Time parses the sample date. Returns false when it is missing or not RFC 3339.
func (g GeometrySample) Time() (time.Time, bool) {
	if g.Date == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, g.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// RawEvent is an event as received from the upstream feed. It is never
// modified after decoding.
type RawEvent struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Link        string           `json:"link,omitempty"`
	Closed      *string          `json:"closed"`
	Categories  []Category       `json:"categories"`
	Sources     []Source         `json:"sources"`
	Geometry    []GeometrySample `json:"geometry"`
}

// PrimaryCategory returns the title of the first category, or "" when the
// event has none.
func (e RawEvent) PrimaryCategory() string {
	if len(e.Categories) == 0 {
		return ""
	}
	return e.Categories[0].Title
}

// SourceURL returns the first source link, or "" when there is none.
func (e RawEvent) SourceURL() string {
	if len(e.Sources) == 0 {
		return ""
	}
	return e.Sources[0].URL
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair lies within [-90,90] x [-180,180].
func (g Geo) Valid() bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}

// ClassifiedEvent is a RawEvent plus its derived tags. Region and Geo are
// empty when the event has no usable location.
type ClassifiedEvent struct {
	RawEvent

	Category   string    `json:"category_tag"`
	Icon       string    `json:"icon"`
	Color      string    `json:"color"`
	Region     string    `json:"region,omitempty"`
	Geo        *Geo      `json:"geo,omitempty"`
	ObservedAt time.Time `json:"observed_at,omitzero"`

	ProcessedAt time.Time `json:"processed_at"`
}

// Located reports whether the event can be placed on a map.
func (e ClassifiedEvent) Located() bool {
	return e.Geo != nil
}
