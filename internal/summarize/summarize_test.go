package summarize

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/natural-events-service/internal/domain"
	"github.com/couchcryptid/natural-events-service/internal/observability"
)

type mockSummarizer struct {
	payloads []string
	text     string
	err      error
	block    bool
}

func (m *mockSummarizer) Summarize(ctx context.Context, payload string) (string, error) {
	m.payloads = append(m.payloads, payload)
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.text, m.err
}

func newTestService(s Summarizer, opts Options) (*Service, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return NewService(s, opts, m, slog.New(slog.NewTextHandler(io.Discard, nil))), m
}

func wildfireReport() domain.AggregateReport {
	return domain.Aggregate([]domain.ClassifiedEvent{
		{Category: "Wildfires", Region: domain.RegionNorthAmerica},
		{Category: "Wildfires", Region: domain.RegionAfrica},
	})
}

func TestSummarizeReport_Success(t *testing.T) {
	mock := &mockSummarizer{text: "  Two active wildfires.  "}
	svc, m := newTestService(mock, Options{})

	got := svc.SummarizeReport(context.Background(), wildfireReport())

	assert.Equal(t, "Two active wildfires.", got)
	require.Len(t, mock.payloads, 1)
	assert.Equal(t, "Category Wildfires: 2 total events. Distribution: [Africa: 1, North America: 1]", mock.payloads[0])
	assert.InDelta(t, 1, testutil.ToFloat64(m.SummarizerRequests.WithLabelValues("success")), 0)
}

func TestSummarizeReport_EmptyReportSkipsSummarizer(t *testing.T) {
	mock := &mockSummarizer{text: "unused"}
	svc, _ := newTestService(mock, Options{})

	assert.Equal(t, NoEvents, svc.SummarizeReport(context.Background(), domain.Aggregate(nil)))
	assert.Empty(t, mock.payloads)
}

func TestSummarizeReport_FailureDegrades(t *testing.T) {
	tests := []struct {
		name string
		mock *mockSummarizer
	}{
		{"error", &mockSummarizer{err: errors.New("overloaded")}},
		{"empty completion", &mockSummarizer{text: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(tt.mock, Options{})
			assert.Equal(t, Placeholder, svc.SummarizeReport(context.Background(), wildfireReport()))
			assert.InDelta(t, 1, testutil.ToFloat64(m.SummarizerRequests.WithLabelValues("error")), 0)
		})
	}
}

func TestSummarize_Timeout(t *testing.T) {
	mock := &mockSummarizer{block: true}
	svc, _ := newTestService(mock, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	got := svc.SummarizeReport(context.Background(), wildfireReport())

	assert.Equal(t, Placeholder, got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSummarize_Disabled(t *testing.T) {
	svc, m := newTestService(nil, Options{})

	assert.False(t, svc.Enabled())
	assert.Equal(t, Placeholder, svc.SummarizeReport(context.Background(), wildfireReport()))
	assert.InDelta(t, 1, testutil.ToFloat64(m.SummarizerRequests.WithLabelValues("disabled")), 0)
}

func TestSummarize_RateLimited(t *testing.T) {
	mock := &mockSummarizer{text: "ok"}
	svc, m := newTestService(mock, Options{Rate: 0.001})

	assert.Equal(t, "ok", svc.SummarizeReport(context.Background(), wildfireReport()))
	assert.Equal(t, Placeholder, svc.SummarizeReport(context.Background(), wildfireReport()))
	assert.Len(t, mock.payloads, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SummarizerRequests.WithLabelValues("rate_limited")), 0)
}

func TestAnalyzeEvent(t *testing.T) {
	mock := &mockSummarizer{text: "Fast-moving fire near Chico."}
	svc, _ := newTestService(mock, Options{})

	ev := domain.ClassifiedEvent{
		RawEvent: domain.RawEvent{ID: "EONET_1", Title: "Park Fire, California"},
		Category: "Wildfires",
		Region:   domain.RegionNorthAmerica,
	}

	assert.Equal(t, "Fast-moving fire near Chico.", svc.AnalyzeEvent(context.Background(), ev))
	require.Len(t, mock.payloads, 1)
	assert.Equal(t, "Event: Park Fire, California\nCategory: Wildfires\nRegion: North America", mock.payloads[0])
}

func TestEventPayload_Unlocated(t *testing.T) {
	ev := domain.ClassifiedEvent{RawEvent: domain.RawEvent{Title: "Mystery"}, Category: domain.CategoryGeneric}
	assert.Equal(t, "Event: Mystery\nCategory: generic", EventPayload(ev))
}
