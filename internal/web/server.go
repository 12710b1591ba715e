// Package web is the local browser front-end for litscrape. It keeps the page
// state in a ui.State, forwards form posts to the controllers, and renders
// the result table and record modal with html/template.
package web

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/henrybloomingdale/litscrape/internal/actions"
	"github.com/henrybloomingdale/litscrape/internal/detail"
	"github.com/henrybloomingdale/litscrape/internal/observability"
	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/render"
	"github.com/henrybloomingdale/litscrape/internal/search"
	"github.com/henrybloomingdale/litscrape/internal/suggest"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

// DefaultPageSize is the number of table rows per page.
const DefaultPageSize = 25

// API is everything the page needs from the scraping server.
// *scrapeapi.Client satisfies it.
type API interface {
	search.Searcher
	suggest.Fetcher
	actions.API
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	PageSize        int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server is the browser front-end.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	tmpl       *template.Template
	pageSize   int

	store     *records.Store
	state     *ui.State
	renderer  *render.Renderer
	general   *search.Controller
	clinical  *search.Controller
	viewer    *detail.Viewer
	suggester *suggest.Controller
	triggers  *actions.Triggers

	metrics *observability.Metrics
	logger  zerolog.Logger
}

type options struct {
	logger      zerolog.Logger
	metrics     *observability.Metrics
	suggestOpts []suggest.Option
}

// Option configures a Server.
type Option func(*options)

// WithLogger sets the logger shared by the server and its controllers.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records controller metrics and serves them on /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSuggestOptions passes options through to the suggestion controller.
func WithSuggestOptions(opts ...suggest.Option) Option {
	return func(o *options) { o.suggestOpts = append(o.suggestOpts, opts...) }
}

// NewServer wires the controllers around a fresh store and page state.
func NewServer(cfg Config, api API, opts ...Option) (*Server, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	tmpl, err := template.New("index").Funcs(funcMap).Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	s := &Server{
		tmpl:     tmpl,
		pageSize: cfg.PageSize,
		store:    records.NewStore(),
		state:    ui.NewState(),
		metrics:  o.metrics,
		logger:   observability.Component(o.logger, "web"),
	}
	if s.pageSize < 1 {
		s.pageSize = DefaultPageSize
	}

	searchOpts := []search.Option{search.WithLogger(o.logger), search.WithMetrics(o.metrics)}
	s.renderer = render.New(s.store, s.state)
	s.general = search.NewGeneral(api, s.store, s.renderer, s.state, searchOpts...)
	s.clinical = search.NewClinical(api, s.store, s.renderer, s.state, searchOpts...)
	s.viewer = detail.New(s.store, s.renderer, s.state)
	s.suggester = suggest.New(api, s.state,
		append([]suggest.Option{suggest.WithLogger(o.logger), suggest.WithMetrics(o.metrics)}, o.suggestOpts...)...)
	s.triggers = actions.New(api, s.store, s.state, actions.WithLogger(o.logger), actions.WithMetrics(o.metrics))

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/", s.handleIndex)
	r.Post("/search", s.handleSearch)
	r.Post("/clinical", s.handleClinical)
	r.Get("/records/{index}", s.handleRecord)
	r.Post("/modal/close", s.handleCloseModal)
	r.Get("/export", s.handleExport)
	r.Post("/download-pdf", s.handleDownloadPDF)
	r.Post("/extract-texts", s.handleExtractTexts)
	r.Get("/suggestions", s.handleSuggestions)
	r.Get("/healthz", s.handleHealth)

	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// State exposes the page state.
func (s *Server) State() *ui.State { return s.state }

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
