package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/couchcryptid/natural-events-service/internal/domain"
)

const (
	headerCacheStale = "X-Cache-Stale"
	headerFetchedAt  = "X-Cache-Fetched-At"

	contentTypeGeoJSON = "application/geo+json"
)

type reportResponse struct {
	domain.AggregateReport
	Summary   string    `json:"summary"`
	Stale     bool      `json:"stale"`
	FetchedAt time.Time `json:"fetched_at"`
}

type summaryResponse struct {
	Summary    string `json:"summary"`
	TotalCount int    `json:"total_count"`
	Stale      bool   `json:"stale"`
}

type analysisResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category_tag"`
	Analysis string `json:"analysis"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	res, err := s.events.Raw(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeaders(w, res.Stale, res.FetchedAt)
	writeJSON(w, http.StatusOK, res.Events)
}

func (s *Server) handleClassified(w http.ResponseWriter, r *http.Request) {
	snap, err := s.events.Classified(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeaders(w, snap.Stale, snap.FetchedAt)
	writeJSON(w, http.StatusOK, snap.Events)
}

// handleGeoJSON renders located events as a FeatureCollection. With
// ?focus=<id> the matching feature is marked focused and highlighted.
func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	snap, err := s.events.Classified(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	presenter := newGeoJSONPresenter()
	correlator := s.newCorrelator()
	correlator.Render(presenter, snap.Events)

	if focus := r.URL.Query().Get("focus"); focus != "" {
		if !correlator.Focus(focus) {
			writeJSON(w, http.StatusNotFound, errorResponse{Message: "event not found"})
			return
		}
	}

	setCacheHeaders(w, snap.Stale, snap.FetchedAt)
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	writeBody(w, http.StatusOK, presenter.collection())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, snap, err := s.events.Report(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeaders(w, snap.Stale, snap.FetchedAt)
	writeJSON(w, http.StatusOK, reportResponse{
		AggregateReport: report,
		Summary:         domain.SummaryText(report),
		Stale:           snap.Stale,
		FetchedAt:       snap.FetchedAt,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	report, snap, err := s.events.Report(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeaders(w, snap.Stale, snap.FetchedAt)
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:    s.summaries.SummarizeReport(r.Context(), report),
		TotalCount: report.TotalCount,
		Stale:      snap.Stale,
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ev, ok, err := s.events.Event(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "event not found"})
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{
		ID:       ev.ID,
		Title:    ev.Title,
		Category: ev.Category,
		Analysis: s.summaries.AnalyzeEvent(r.Context(), ev),
	})
}

// writeError maps pipeline errors to responses. Only a cold cache with an
// unreachable upstream is reported as 503.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		s.logger.Warn("events unavailable", "path", r.URL.Path, "error", err)
		w.Header().Set("Retry-After", "30")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "Error fetching data"})
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}

func setCacheHeaders(w http.ResponseWriter, stale bool, fetchedAt time.Time) {
	w.Header().Set(headerCacheStale, strconv.FormatBool(stale))
	if !fetchedAt.IsZero() {
		w.Header().Set(headerFetchedAt, fetchedAt.UTC().Format(time.RFC3339))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	writeBody(w, status, v)
}

func writeBody(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
