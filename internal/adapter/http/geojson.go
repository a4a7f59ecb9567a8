package http

import (
	"sync"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/natural-events-service/internal/correlate"
	"github.com/couchcryptid/natural-events-service/internal/domain"
)

// viewElement is the server-side stand-in for a rendered card or marker. It
// records focus state so it can be reflected in the response.
type viewElement struct {
	mu          sync.Mutex
	focused     bool
	highlighted bool
}

func (e *viewElement) ScrollIntoView() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = true
}

func (e *viewElement) SetHighlighted(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highlighted = on
}

func (e *viewElement) state() (focused, highlighted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused, e.highlighted
}

// geojsonPresenter renders located events as GeoJSON point features. The
// card for an event shares its feature's view state, so focusing a card marks
// the corresponding feature. A repeated id yields one feature carrying the
// last event seen, matching the correlator's last-wins registry.
type geojsonPresenter struct {
	order   []string
	events  map[string]domain.ClassifiedEvent
	cards   map[string]*viewElement
	markers map[string]*viewElement
}

func newGeoJSONPresenter() *geojsonPresenter {
	return &geojsonPresenter{
		events:  make(map[string]domain.ClassifiedEvent),
		cards:   make(map[string]*viewElement),
		markers: make(map[string]*viewElement),
	}
}

func (p *geojsonPresenter) Card(ev domain.ClassifiedEvent) correlate.Element {
	el := &viewElement{}
	p.cards[ev.ID] = el
	return el
}

func (p *geojsonPresenter) Marker(ev domain.ClassifiedEvent) correlate.Element {
	el := &viewElement{}
	if _, seen := p.events[ev.ID]; !seen {
		p.order = append(p.order, ev.ID)
	}
	p.events[ev.ID] = ev
	p.markers[ev.ID] = el
	return el
}

// collection builds the FeatureCollection from the current view state.
func (p *geojsonPresenter) collection() *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(p.order))}
	for _, id := range p.order {
		ev := p.events[id]
		props := map[string]any{
			"title":    ev.Title,
			"category": ev.Category,
			"icon":     ev.Icon,
			"color":    ev.Color,
			"region":   ev.Region,
		}
		if url := ev.SourceURL(); url != "" {
			props["source_url"] = url
		}
		if !ev.ObservedAt.IsZero() {
			props["observed_at"] = ev.ObservedAt.Format(time.RFC3339)
		}
		if card, ok := p.cards[id]; ok {
			focused, highlighted := card.state()
			if focused {
				props["focused"] = true
			}
			if highlighted {
				props["highlighted"] = true
			}
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         id,
			Geometry:   geom.NewPointFlat(geom.XY, []float64{ev.Geo.Lon, ev.Geo.Lat}),
			Properties: props,
		})
	}
	return fc
}
