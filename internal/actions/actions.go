// Package actions triggers the server-side export and download jobs that
// follow a search.
package actions

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/henrybloomingdale/litscrape/internal/observability"
	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

// Action names used in logs and metrics.
const (
	ActionExport       = "export"
	ActionDownloadPDF  = "download_pdf"
	ActionExtractTexts = "extract_texts"
)

// Failure notifications.
const (
	DownloadPDFFailed  = "PDF download failed. Please try again."
	ExtractTextsFailed = "Text extraction failed. Please try again."
)

// API is the subset of the scrape client the triggers call.
type API interface {
	DownloadPDF(ctx context.Context) error
	ExtractTexts(ctx context.Context) error
	ResolveURL(path string) (string, error)
}

// View is the part of the UI the triggers touch.
type View interface {
	ui.BusyIndicator
	ui.Notifier
	ui.Navigator
}

// Triggers runs the post-search actions.
type Triggers struct {
	api     API
	store   *records.Store
	view    View
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// Option configures Triggers.
type Option func(*Triggers)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Triggers) { t.logger = l }
}

// WithMetrics records action outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(t *Triggers) { t.metrics = m }
}

// New creates the action triggers.
func New(api API, store *records.Store, view View, opts ...Option) *Triggers {
	t := &Triggers{api: api, store: store, view: view, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = observability.Component(t.logger, "actions")
	return t
}

// ExportExcel points the download target at the current export artifact.
// It returns false, without navigating, when the last search produced none.
func (t *Triggers) ExportExcel() bool {
	artifact := t.store.Artifact()
	if artifact == "" {
		t.metrics.ObserveAction(ActionExport, "skipped")
		return false
	}
	u, err := t.api.ResolveURL(artifact)
	if err != nil {
		t.logger.Error().Err(err).Str("artifact", artifact).Msg("resolving export artifact")
		t.metrics.ObserveAction(ActionExport, "failed")
		return false
	}
	t.view.Navigate(u)
	t.metrics.ObserveAction(ActionExport, "succeeded")
	return true
}

// DownloadPDF asks the server to fetch the PDFs of the current results.
func (t *Triggers) DownloadPDF(ctx context.Context) error {
	return t.run(ctx, ActionDownloadPDF, DownloadPDFFailed, t.api.DownloadPDF)
}

// ExtractTexts asks the server to extract text from the downloaded PDFs.
func (t *Triggers) ExtractTexts(ctx context.Context) error {
	return t.run(ctx, ActionExtractTexts, ExtractTextsFailed, t.api.ExtractTexts)
}

func (t *Triggers) run(ctx context.Context, action, failure string, call func(context.Context) error) error {
	t.view.SetBusy(true)
	defer t.view.SetBusy(false)

	if err := call(ctx); err != nil {
		t.logger.Error().Err(err).Str("action", action).Msg("action failed")
		t.metrics.ObserveAction(action, "failed")
		t.view.Notify(ui.Notice{Kind: ui.NoticeError, Message: failure})
		return fmt.Errorf("%s: %w", action, err)
	}
	t.logger.Info().Str("action", action).Msg("action completed")
	t.metrics.ObserveAction(action, "succeeded")
	return nil
}
