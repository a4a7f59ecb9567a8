package correlate

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/natural-events-service/internal/domain"
)

// --- presenter fakes ---

type fakeElement struct {
	kind string
	id   string

	mu          sync.Mutex
	scrolls     int
	highlighted bool
	toggles     []bool
}

func (e *fakeElement) ScrollIntoView() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolls++
}

func (e *fakeElement) SetHighlighted(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highlighted = on
	e.toggles = append(e.toggles, on)
}

func (e *fakeElement) state() (scrolls int, highlighted bool, toggles []bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scrolls, e.highlighted, append([]bool(nil), e.toggles...)
}

type fakePresenter struct {
	cards   []string
	markers []string
}

func (p *fakePresenter) Card(ev domain.ClassifiedEvent) Element {
	p.cards = append(p.cards, ev.ID)
	return &fakeElement{kind: "card", id: ev.ID}
}

func (p *fakePresenter) Marker(ev domain.ClassifiedEvent) Element {
	p.markers = append(p.markers, ev.ID)
	return &fakeElement{kind: "marker", id: ev.ID}
}

func event(id string, geo *domain.Geo) domain.ClassifiedEvent {
	return domain.ClassifiedEvent{RawEvent: domain.RawEvent{ID: id}, Geo: geo}
}

func renderFixture(t *testing.T, opts ...Option) (*Correlator, *fakePresenter) {
	t.Helper()
	c := New(opts...)
	p := &fakePresenter{}
	c.Render(p, []domain.ClassifiedEvent{
		event("EONET_1", &domain.Geo{Lat: 39.9, Lon: -121.8}),
		event("EONET_2", nil),
		event("EONET_3", &domain.Geo{Lat: -1.3, Lon: 36.8}),
	})
	return c, p
}

func cardFor(t *testing.T, c *Correlator, id string) *fakeElement {
	t.Helper()
	el, ok := c.Locate(id)
	require.True(t, ok)
	return el.(*fakeElement)
}

// --- Render / Locate ---

func TestRender_CardsForAllMarkersForLocated(t *testing.T) {
	c, p := renderFixture(t)

	assert.Equal(t, []string{"EONET_1", "EONET_2", "EONET_3"}, p.cards)
	assert.Equal(t, []string{"EONET_1", "EONET_3"}, p.markers)

	for _, id := range []string{"EONET_1", "EONET_2", "EONET_3"} {
		el, ok := c.Locate(id)
		require.True(t, ok, id)
		assert.Equal(t, "card", el.(*fakeElement).kind)
		assert.Equal(t, id, el.(*fakeElement).id)
	}

	m, ok := c.LocateMarker("EONET_3")
	require.True(t, ok)
	assert.Equal(t, "marker", m.(*fakeElement).kind)

	_, ok = c.LocateMarker("EONET_2")
	assert.False(t, ok)
}

func TestLocate_Unknown(t *testing.T) {
	c, _ := renderFixture(t)
	_, ok := c.Locate("EONET_404")
	assert.False(t, ok)
}

func TestRender_ReplacesRegistry(t *testing.T) {
	c, _ := renderFixture(t)
	c.Render(&fakePresenter{}, []domain.ClassifiedEvent{event("EONET_9", nil)})

	_, ok := c.Locate("EONET_1")
	assert.False(t, ok)
	_, ok = c.Locate("EONET_9")
	assert.True(t, ok)
}

func TestRender_EmptyIDNotRegistered(t *testing.T) {
	c := New()
	p := &fakePresenter{}
	c.Render(p, []domain.ClassifiedEvent{event("", &domain.Geo{})})

	assert.Equal(t, []string{""}, p.cards)
	_, ok := c.Locate("")
	assert.False(t, ok)
}

func TestRender_ClearsActiveHighlight(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, _ := renderFixture(t, WithClock(clock))
	card := cardFor(t, c, "EONET_1")
	other := cardFor(t, c, "EONET_3")
	require.True(t, c.Focus("EONET_1"))

	c.Render(&fakePresenter{}, []domain.ClassifiedEvent{event("EONET_1", nil)})

	_, highlighted, toggles := card.state()
	assert.False(t, highlighted)
	assert.Equal(t, []bool{true, false}, toggles)
	assert.False(t, c.Highlighted("EONET_1"))

	_, _, otherToggles := other.state()
	assert.Empty(t, otherToggles)

	// The stopped timer must not toggle the old card again.
	clock.Advance(DefaultHighlight)
	_, _, toggles = card.state()
	assert.Equal(t, []bool{true, false}, toggles)
}

// --- Focus ---

func TestFocus_ScrollsAndHighlightsForDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, _ := renderFixture(t, WithClock(clock))
	card := cardFor(t, c, "EONET_1")

	require.True(t, c.Focus("EONET_1"))

	scrolls, highlighted, _ := card.state()
	assert.Equal(t, 1, scrolls)
	assert.True(t, highlighted)
	assert.True(t, c.Highlighted("EONET_1"))

	clock.Advance(DefaultHighlight - time.Millisecond)
	_, highlighted, _ = card.state()
	assert.True(t, highlighted)

	clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool {
		_, on, _ := card.state()
		return !on
	}, time.Second, time.Millisecond)
	assert.False(t, c.Highlighted("EONET_1"))
}

func TestFocus_RetriggerRestartsTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, _ := renderFixture(t, WithClock(clock))
	card := cardFor(t, c, "EONET_1")

	require.True(t, c.Focus("EONET_1"))
	clock.Advance(1500 * time.Millisecond)
	require.True(t, c.Focus("EONET_1"))

	// The first timer would have fired here; the highlight must survive it.
	clock.Advance(1 * time.Second)
	time.Sleep(20 * time.Millisecond)
	_, highlighted, _ := card.state()
	assert.True(t, highlighted)
	assert.True(t, c.Highlighted("EONET_1"))

	clock.Advance(1 * time.Second)
	assert.Eventually(t, func() bool {
		_, on, _ := card.state()
		return !on
	}, time.Second, time.Millisecond)

	scrolls, _, toggles := card.state()
	assert.Equal(t, 2, scrolls)
	assert.Equal(t, []bool{true, false}, toggles, "highlight is never stacked")
}

func TestFocus_Unknown(t *testing.T) {
	c, _ := renderFixture(t, WithClock(clockwork.NewFakeClock()))
	assert.False(t, c.Focus("EONET_404"))
	assert.False(t, c.Highlighted("EONET_404"))
}

func TestFocus_CustomDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, _ := renderFixture(t, WithClock(clock), WithHighlightDuration(500*time.Millisecond))
	card := cardFor(t, c, "EONET_2")

	require.True(t, c.Focus("EONET_2"))
	clock.Advance(500 * time.Millisecond)
	assert.Eventually(t, func() bool {
		_, on, _ := card.state()
		return !on
	}, time.Second, time.Millisecond)
}

func TestFocus_IndependentPerEvent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, _ := renderFixture(t, WithClock(clock))
	first := cardFor(t, c, "EONET_1")
	third := cardFor(t, c, "EONET_3")

	require.True(t, c.Focus("EONET_1"))
	clock.Advance(time.Second)
	require.True(t, c.Focus("EONET_3"))
	clock.Advance(time.Second)

	assert.Eventually(t, func() bool {
		_, on, _ := first.state()
		return !on
	}, time.Second, time.Millisecond)
	_, on, _ := third.state()
	assert.True(t, on)
}
