// Package suggest refreshes keyword autocomplete when the trigger key is
// pressed.
package suggest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/henrybloomingdale/litscrape/internal/observability"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

const (
	// DefaultTriggerKey is the key that fetches suggestions.
	DefaultTriggerKey = " "
	// DefaultDelay separates detaching the old list from attaching the new one.
	DefaultDelay = 200 * time.Millisecond
)

// Fetcher returns suggestions for a partial keyword.
type Fetcher interface {
	Suggestions(ctx context.Context, term string) ([]string, error)
}

// Controller binds fresh suggestions to the keyword input. Calls are not
// ordered: when presses overlap, the last fetch to finish wins.
type Controller struct {
	api     Fetcher
	view    ui.SuggestionBinder
	trigger string
	delay   time.Duration
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// Option configures a Controller.
type Option func(*Controller)

// WithTriggerKey replaces the space key as the trigger.
func WithTriggerKey(key string) Option {
	return func(c *Controller) { c.trigger = key }
}

// WithDelay sets the pause between detach and attach.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithMetrics counts bound suggestion lists.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// New creates a suggestion controller.
func New(api Fetcher, view ui.SuggestionBinder, opts ...Option) *Controller {
	c := &Controller{
		api:     api,
		view:    view,
		trigger: DefaultTriggerKey,
		delay:   DefaultDelay,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = observability.Component(c.logger, "suggest")
	return c
}

// TriggerKey returns the key OnKey reacts to.
func (c *Controller) TriggerKey() string { return c.trigger }

// OnKey handles a key press in the keyword input. Keys other than the trigger
// are ignored. Fetch errors leave the current list bound; cancellation during
// the delay leaves the input without a list.
func (c *Controller) OnKey(ctx context.Context, key, partial string) error {
	if key != c.trigger {
		return nil
	}

	items, err := c.api.Suggestions(ctx, partial)
	if err != nil {
		c.logger.Warn().Err(err).Str("term", partial).Msg("fetching suggestions failed")
		return fmt.Errorf("suggestions for %q: %w", partial, err)
	}

	c.view.DetachSuggestions()

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.view.AttachSuggestions(items)
	c.metrics.ObserveSuggestions()
	c.logger.Debug().Str("term", partial).Int("count", len(items)).Msg("suggestions bound")
	return nil
}
