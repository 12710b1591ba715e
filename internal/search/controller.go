// Package search drives a query from submission to a rendered, exportable
// result set.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/henrybloomingdale/litscrape/internal/observability"
	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/scrapeapi"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

// State is a controller phase.
type State int

const (
	Idle State = iota
	Validating
	Busy
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Busy:
		return "busy"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Messages shown to the user.
const (
	PromptKeyword  = "Please enter a keyword to search."
	PromptClinical = "Please enter a condition or other terms to search."
	FailureMessage = "Search failed. Please try again."
)

// Searcher runs a query against the scraping server.
type Searcher interface {
	Run(ctx context.Context, q scrapeapi.Query) (*scrapeapi.Response, error)
}

// TableShower renders the store's current set with a schema.
type TableShower interface {
	Show(schema records.Schema) ui.Table
}

// View is the part of the UI a search touches.
type View interface {
	ui.BusyIndicator
	ui.Notifier
	ui.Controls
}

// Controller runs searches of one schema. Overlapping Submit calls are not
// coordinated: whichever response arrives last owns the store.
type Controller struct {
	schema   records.Schema
	api      Searcher
	store    *records.Store
	renderer TableShower
	view     View
	logger   zerolog.Logger
	metrics  *observability.Metrics

	mu           sync.Mutex
	state        State
	onTransition func(from, to State)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithMetrics records search outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithTransitionHook calls fn on every state change.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

// NewGeneral creates the keyword search controller.
func NewGeneral(api Searcher, store *records.Store, renderer TableShower, view View, opts ...Option) *Controller {
	return newController(records.General, api, store, renderer, view, opts)
}

// NewClinical creates the clinical-trials search controller.
func NewClinical(api Searcher, store *records.Store, renderer TableShower, view View, opts ...Option) *Controller {
	return newController(records.Clinical, api, store, renderer, view, opts)
}

func newController(schema records.Schema, api Searcher, store *records.Store, renderer TableShower, view View, opts []Option) *Controller {
	c := &Controller{
		schema:   schema,
		api:      api,
		store:    store,
		renderer: renderer,
		view:     view,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = observability.Component(c.logger, "search").With().Str("schema", string(schema)).Logger()
	return c
}

// Schema returns the result schema this controller populates.
func (c *Controller) Schema() records.Schema { return c.schema }

// State returns the current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) transition(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	hook := c.onTransition
	c.mu.Unlock()
	if hook != nil {
		hook(from, to)
	}
}

// Submit validates q, runs it, and on success replaces the store, renders
// the table and updates the post-search controls. A rejected query returns a
// *ValidationError without any request; a failed request notifies the user
// and returns the transport error.
func (c *Controller) Submit(ctx context.Context, q scrapeapi.Query) error {
	c.transition(Validating)

	if err := c.validate(q); err != nil {
		c.view.Notify(ui.Notice{Kind: ui.NoticePrompt, Message: err.Message})
		c.metrics.ObserveSearch(string(c.schema), "rejected", 0)
		c.logger.Debug().Str("field", err.Field).Msg("query rejected")
		c.transition(Idle)
		return err
	}

	c.transition(Busy)
	resp, err := c.dispatch(ctx, q)
	if err != nil {
		c.transition(Error)
		c.view.Notify(ui.Notice{Kind: ui.NoticeError, Message: FailureMessage})
		c.transition(Idle)
		return err
	}

	c.store.Replace(resp.Results, resp.ExcelFile)
	c.renderer.Show(c.schema)
	c.view.SetEnabled(ui.ControlExport, resp.ExcelFile != "")
	for _, ctl := range ui.PostSearchControls {
		c.view.Reveal(ctl)
	}
	c.transition(Idle)
	return nil
}

func (c *Controller) dispatch(ctx context.Context, q scrapeapi.Query) (*scrapeapi.Response, error) {
	c.view.SetBusy(true)
	defer c.view.SetBusy(false)

	id := uuid.NewString()
	log := c.logger.With().Str("dispatch_id", id).Logger()
	log.Info().Msg("search dispatched")

	resp, err := c.api.Run(ctx, q)
	if err != nil {
		log.Error().Err(err).Msg("search failed")
		c.metrics.ObserveSearch(string(c.schema), "failed", 0)
		return nil, fmt.Errorf("%s search: %w", c.schema, err)
	}

	log.Info().Int("records", len(resp.Results)).Bool("export", resp.ExcelFile != "").Msg("search completed")
	c.metrics.ObserveSearch(string(c.schema), "succeeded", len(resp.Results))
	return resp, nil
}

func (c *Controller) validate(q scrapeapi.Query) *ValidationError {
	prompt := PromptKeyword
	if c.schema == records.Clinical {
		prompt = PromptClinical
	}
	if q == nil || q.Schema() != c.schema {
		return &ValidationError{Field: "query", Message: prompt}
	}
	if err := q.Validate(); err != nil {
		return &ValidationError{Field: scrapeapi.FirstInvalidField(err), Message: prompt}
	}
	return nil
}
