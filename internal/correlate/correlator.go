// Package correlate links each event's list card and map marker by event id
// so that selecting a marker can bring the matching card into view.
package correlate

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/natural-events-service/internal/domain"
)

// DefaultHighlight is how long a focused card stays highlighted.
const DefaultHighlight = 2 * time.Second

// Element is a rendered view of one event.
type Element interface {
	ScrollIntoView()
	SetHighlighted(on bool)
}

// Presenter renders events. Marker is only called for located events.
type Presenter interface {
	Card(ev domain.ClassifiedEvent) Element
	Marker(ev domain.ClassifiedEvent) Element
}

// Correlator keeps the id -> card and id -> marker registries for the most
// recent Render and manages the focus highlight.
type Correlator struct {
	clock    clockwork.Clock
	duration time.Duration

	mu         sync.Mutex
	cards      map[string]Element
	markers    map[string]Element
	highlights map[string]*highlight
}

type highlight struct {
	timer clockwork.Timer
	gen   uint64
}

// Option customizes a Correlator.
type Option func(*Correlator)

// WithClock overrides the clock driving highlight timers.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Correlator) { c.clock = clock }
}

// WithHighlightDuration overrides DefaultHighlight.
func WithHighlightDuration(d time.Duration) Option {
	return func(c *Correlator) {
		if d > 0 {
			c.duration = d
		}
	}
}

// New creates an empty Correlator.
func New(opts ...Option) *Correlator {
	c := &Correlator{
		clock:      clockwork.NewRealClock(),
		duration:   DefaultHighlight,
		cards:      make(map[string]Element),
		markers:    make(map[string]Element),
		highlights: make(map[string]*highlight),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render asks p for a card per event and a marker per located event, and
// replaces the registries with the results. Cards still highlighted from the
// previous render are cleared. Events with an empty id are rendered but not
// registered.
func (c *Correlator) Render(p Presenter, events []domain.ClassifiedEvent) {
	cards := make(map[string]Element, len(events))
	markers := make(map[string]Element, len(events))

	for _, ev := range events {
		card := p.Card(ev)
		var marker Element
		if ev.Located() {
			marker = p.Marker(ev)
		}
		if ev.ID == "" {
			continue
		}
		cards[ev.ID] = card
		if marker != nil {
			markers[ev.ID] = marker
		}
	}

	c.mu.Lock()
	highlighted := make([]Element, 0, len(c.highlights))
	for id, h := range c.highlights {
		h.timer.Stop()
		delete(c.highlights, id)
		if card, ok := c.cards[id]; ok {
			highlighted = append(highlighted, card)
		}
	}
	c.cards = cards
	c.markers = markers
	c.mu.Unlock()

	for _, card := range highlighted {
		card.SetHighlighted(false)
	}
}

// Locate returns the card registered for id.
func (c *Correlator) Locate(id string) (Element, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.cards[id]
	return el, ok
}

// LocateMarker returns the marker registered for id.
func (c *Correlator) LocateMarker(id string) (Element, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.markers[id]
	return el, ok
}

// Focus scrolls the card for id into view and highlights it. Focusing an
// already highlighted card restarts its timer. Returns false when no card is
// registered for id.
func (c *Correlator) Focus(id string) bool {
	c.mu.Lock()
	card, ok := c.cards[id]
	if !ok {
		c.mu.Unlock()
		return false
	}

	h, active := c.highlights[id]
	if active {
		h.timer.Stop()
		h.gen++
	} else {
		h = &highlight{}
		c.highlights[id] = h
	}
	gen := h.gen
	h.timer = c.clock.AfterFunc(c.duration, func() { c.expire(id, card, gen) })
	c.mu.Unlock()

	card.ScrollIntoView()
	if !active {
		card.SetHighlighted(true)
	}
	return true
}

// Highlighted reports whether the card for id is currently highlighted.
func (c *Correlator) Highlighted(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.highlights[id]
	return ok
}

func (c *Correlator) expire(id string, card Element, gen uint64) {
	c.mu.Lock()
	h, ok := c.highlights[id]
	if !ok || h.gen != gen {
		c.mu.Unlock()
		return
	}
	delete(c.highlights, id)
	c.mu.Unlock()

	card.SetHighlighted(false)
}
