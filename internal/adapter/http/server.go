package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/natural-events-service/internal/cache"
	"github.com/couchcryptid/natural-events-service/internal/correlate"
	"github.com/couchcryptid/natural-events-service/internal/domain"
	"github.com/couchcryptid/natural-events-service/internal/pipeline"
)

// DefaultSummaryRateLimit is the per-IP request budget per minute for the
// summarizer-backed routes.
const DefaultSummaryRateLimit = 10

// EventService is the read side of the pipeline used by the API handlers.
type EventService interface {
	sharedobs.ReadinessChecker
	Raw(ctx context.Context) (cache.Result, error)
	Classified(ctx context.Context) (pipeline.Snapshot, error)
	Report(ctx context.Context) (domain.AggregateReport, pipeline.Snapshot, error)
	Event(ctx context.Context, id string) (domain.ClassifiedEvent, bool, error)
}

// Summaries produces natural-language analyses. Implementations never fail.
type Summaries interface {
	SummarizeReport(ctx context.Context, report domain.AggregateReport) string
	AnalyzeEvent(ctx context.Context, ev domain.ClassifiedEvent) string
}

// Options configures the HTTP server.
type Options struct {
	Addr              string
	CORSOrigins       []string
	SummaryRateLimit  int
	HighlightDuration time.Duration
}

// Server exposes the event API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	events     EventService
	summaries  Summaries
	highlight  time.Duration
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(opts Options, events EventService, summaries Summaries, logger *slog.Logger) *Server {
	limit := opts.SummaryRateLimit
	if limit <= 0 {
		limit = DefaultSummaryRateLimit
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		events:    events,
		summaries: summaries,
		highlight: opts.HighlightDuration,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{headerCacheStale, headerFetchedAt},
		MaxAge:         300,
	}))

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(events))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requestLogger)
		r.Get("/events", s.handleEvents)
		r.Get("/events/classified", s.handleClassified)
		r.Get("/events/geojson", s.handleGeoJSON)
		r.Get("/report", s.handleReport)

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(limit, time.Minute))
			r.Get("/summary", s.handleSummary)
			r.Get("/events/{id}/analysis", s.handleAnalysis)
		})
	})

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) newCorrelator() *correlate.Correlator {
	return correlate.New(correlate.WithHighlightDuration(s.highlight))
}
