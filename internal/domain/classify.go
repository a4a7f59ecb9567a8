package domain

import "strings"

// Default tags for labels no rule matches.
const (
	CategoryGeneric = "generic"
	IconDefault     = "globe-2"
	ColorDefault    = "gray"
)

// Classification holds the tags derived for one event.
type Classification struct {
	Category string
	Icon     string
	Color    string
	Region   string // empty when no location was supplied
}

type categoryRule struct {
	match    string // lower-case substring of the category label
	category string
	icon     string
	color    string
}

// categoryRules is evaluated top to bottom and the first match wins. Labels
// can contain several matching substrings, so the order is part of the
// contract: fire-related rules come before the generic ones.
var categoryRules = []categoryRule{
	{match: "wildfire", category: "Wildfires", icon: "flame", color: "red"},
	{match: "volcano", category: "Volcanoes", icon: "mountain", color: "orange"},
	{match: "storm", category: "Severe Storms", icon: "cloud-lightning", color: "purple"},
	{match: "ice", category: "Sea and Lake Ice", icon: "snowflake", color: "cyan"},
	{match: "snow", category: "Snow", icon: "cloud-snow", color: "lightblue"},
	{match: "flood", category: "Floods", icon: "cloud-drizzle", color: "blue"},
	{match: "landslide", category: "Landslides", icon: "mountain", color: "brown"},
	{match: "earthquake", category: "Earthquakes", icon: "activity", color: "darkred"},
	{match: "drought", category: "Drought", icon: "sun", color: "gold"},
	{match: "dust", category: "Dust and Haze", icon: "wind", color: "tan"},
	{match: "temperature", category: "Temperature Extremes", icon: "thermometer", color: "pink"},
	{match: "water color", category: "Water Color", icon: "droplet", color: "teal"},
	{match: "manmade", category: "Manmade", icon: "factory", color: "black"},
}

// Classify maps a category label (and, when known, a location) to its
// category, icon, color and region tags. It is a pure function of its input.
func Classify(label string, geo *Geo) Classification {
	c := Classification{
		Category: CategoryGeneric,
		Icon:     IconDefault,
		Color:    ColorDefault,
	}

	lower := strings.ToLower(strings.TrimSpace(label))
	if lower != "" {
		for _, r := range categoryRules {
			if strings.Contains(lower, r.match) {
				c.Category = r.category
				c.Icon = r.icon
				c.Color = r.color
				break
			}
		}
	}

	if geo != nil {
		c.Region = ClassifyRegion(*geo)
	}
	return c
}

// ClassifyEvent normalizes and classifies a raw event. Missing geometry or
// category never fails: the event keeps default tags and no location.
func ClassifyEvent(raw RawEvent) ClassifiedEvent {
	var geo *Geo
	if loc, ok := NormalizeGeometry(raw.Geometry); ok {
		geo = &loc
	}

	c := Classify(raw.PrimaryCategory(), geo)

	return ClassifiedEvent{
		RawEvent:    raw,
		Category:    c.Category,
		Icon:        c.Icon,
		Color:       c.Color,
		Region:      c.Region,
		Geo:         geo,
		ObservedAt:  latestObservation(raw.Geometry),
		ProcessedAt: clock.Now(),
	}
}

// ClassifyBatch classifies every event in order. A nil or empty batch yields
// an empty, non-nil slice.
func ClassifyBatch(raws []RawEvent) []ClassifiedEvent {
	out := make([]ClassifiedEvent, 0, len(raws))
	for _, raw := range raws {
		out = append(out, ClassifyEvent(raw))
	}
	return out
}
