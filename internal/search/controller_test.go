package search

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrybloomingdale/litscrape/internal/gateway"
	"github.com/henrybloomingdale/litscrape/internal/observability"
	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/render"
	"github.com/henrybloomingdale/litscrape/internal/scrapeapi"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

type fakeSearcher struct {
	mu     sync.Mutex
	calls  []scrapeapi.Query
	resp   *scrapeapi.Response
	err    error
	onCall func()
}

func (f *fakeSearcher) Run(_ context.Context, q scrapeapi.Query) (*scrapeapi.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall()
	}
	return f.resp, f.err
}

type fixture struct {
	api      *fakeSearcher
	store    *records.Store
	state    *ui.State
	renderer *render.Renderer
}

func newFixture() *fixture {
	store := records.NewStore()
	state := ui.NewState()
	return &fixture{
		api:      &fakeSearcher{},
		store:    store,
		state:    state,
		renderer: render.New(store, state),
	}
}

func (f *fixture) general(opts ...Option) *Controller {
	return NewGeneral(f.api, f.store, f.renderer, f.state, opts...)
}

func (f *fixture) clinical(opts ...Option) *Controller {
	return NewClinical(f.api, f.store, f.renderer, f.state, opts...)
}

func TestSubmit_EmptyKeywordNeverDispatches(t *testing.T) {
	f := newFixture()
	f.store.Replace(records.ResultSet{{records.FieldTitle: "old"}}, "old.xlsx")
	c := f.general()

	for _, kw := range []string{"", "   ", "\t\n"} {
		err := c.Submit(context.Background(), scrapeapi.GeneralQuery{Keyword: kw})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "keyword", verr.Field)
	}

	assert.Empty(t, f.api.calls)
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, "old.xlsx", f.store.Artifact())

	snap := f.state.Snapshot()
	require.NotNil(t, snap.Notice)
	assert.Equal(t, ui.NoticePrompt, snap.Notice.Kind)
	assert.Equal(t, PromptKeyword, snap.Notice.Message)
	assert.False(t, snap.HasTable)
	assert.False(t, snap.Busy)
	assert.Equal(t, Idle, c.State())
}

func TestSubmit_ClinicalRequiresOneField(t *testing.T) {
	f := newFixture()
	f.api.resp = &scrapeapi.Response{}
	c := f.clinical()

	err := c.Submit(context.Background(), scrapeapi.ClinicalQuery{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, PromptClinical, f.state.Snapshot().Notice.Message)

	require.NoError(t, c.Submit(context.Background(), scrapeapi.ClinicalQuery{OtherTerms: "metformin"}))
	assert.Len(t, f.api.calls, 1)
}

func TestSubmit_MismatchedQueryIsRejected(t *testing.T) {
	f := newFixture()
	err := f.clinical().Submit(context.Background(), scrapeapi.GeneralQuery{Keyword: "asthma"})
	assert.ErrorIs(t, err, ErrValidation)

	err = f.general().Submit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.api.calls)
}

func TestSubmit_SuccessRendersTwoRows(t *testing.T) {
	f := newFixture()
	f.api.resp = &scrapeapi.Response{
		ExcelFile: "static/downloads/asthma.xlsx",
		Results: records.ResultSet{
			{records.FieldTitle: "r0"},
			{records.FieldTitle: "r1"},
		},
	}
	c := f.general()

	require.NoError(t, c.Submit(context.Background(), scrapeapi.GeneralQuery{Keyword: "asthma"}))

	snap := f.state.Snapshot()
	require.True(t, snap.HasTable)
	require.Len(t, snap.Table.Rows, 2)
	assert.Equal(t, "1", snap.Table.Rows[0].Label)
	assert.Equal(t, "2", snap.Table.Rows[1].Label)
	assert.Equal(t, records.General, snap.Table.Schema)

	assert.Equal(t, 2, f.store.Len())
	assert.Equal(t, "static/downloads/asthma.xlsx", f.store.Artifact())
	assert.True(t, snap.Enabled[ui.ControlExport])
	for _, ctl := range ui.PostSearchControls {
		assert.True(t, snap.Revealed[ctl], ctl)
	}
	assert.Nil(t, snap.Notice)
	assert.False(t, snap.Busy)
	assert.Equal(t, Idle, c.State())
}

func TestSubmit_ExportDisabledWithoutArtifact(t *testing.T) {
	f := newFixture()
	f.api.resp = &scrapeapi.Response{Results: records.ResultSet{{}}}
	f.state.SetEnabled(ui.ControlExport, true)

	require.NoError(t, f.general().Submit(context.Background(), scrapeapi.GeneralQuery{Keyword: "asthma"}))
	assert.False(t, f.state.Snapshot().Enabled[ui.ControlExport])
}

func TestSubmit_BusyOnlyWhileDispatched(t *testing.T) {
	for _, fail := range []bool{false, true} {
		f := newFixture()
		f.api.resp = &scrapeapi.Response{}
		if fail {
			f.api.resp = nil
			f.api.err = gateway.ErrTransport
		}
		busyDuringCall := false
		f.api.onCall = func() { busyDuringCall = f.state.Snapshot().Busy }

		_ = f.general().Submit(context.Background(), scrapeapi.GeneralQuery{Keyword: "asthma"})

		assert.True(t, busyDuringCall, "fail=%v", fail)
		assert.False(t, f.state.Snapshot().Busy, "fail=%v", fail)
	}
}

func TestSubmit_FailureNotifiesAndKeepsStore(t *testing.T) {
	f := newFixture()
	f.store.Replace(records.ResultSet{{}, {}, {}}, "prev.xlsx")
	f.api.err = gateway.ErrTransport

	var transitions []State
	c := f.general(WithTransitionHook(func(_, to State) { transitions = append(transitions, to) }))

	err := c.Submit(context.Background(), scrapeapi.GeneralQuery{Keyword: "asthma"})
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrTransport)

	snap := f.state.Snapshot()
	require.NotNil(t, snap.Notice)
	assert.Equal(t, ui.NoticeError, snap.Notice.Kind)
	assert.Equal(t, FailureMessage, snap.Notice.Message)
	assert.Equal(t, 3, f.store.Len())
	assert.False(t, snap.HasTable)
	assert.Equal(t, []State{Validating, Busy, Error, Idle}, transitions)
}

func TestSubmit_Transitions(t *testing.T) {
	f := newFixture()
	f.api.resp = &scrapeapi.Response{}

	var got [][2]State
	c := f.general(WithTransitionHook(func(from, to State) { got = append(got, [2]State{from, to}) }))

	require.NoError(t, c.Submit(context.Background(), scrapeapi.GeneralQuery{Keyword: "x"}))
	assert.Equal(t, [][2]State{{Idle, Validating}, {Validating, Busy}, {Busy, Idle}}, got)

	got = nil
	_ = c.Submit(context.Background(), scrapeapi.GeneralQuery{})
	assert.Equal(t, [][2]State{{Idle, Validating}, {Validating, Idle}}, got)
}

func TestSubmit_MetricsAndLogging(t *testing.T) {
	f := newFixture()
	f.api.resp = &scrapeapi.Response{Results: records.ResultSet{{}, {}}}
	m := observability.NewMetrics("search_test")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	c := f.general(WithMetrics(m), WithLogger(logger))

	require.NoError(t, c.Submit(context.Background(), scrapeapi.GeneralQuery{Keyword: "asthma"}))
	_ = c.Submit(context.Background(), scrapeapi.GeneralQuery{})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues("general", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues("general", "rejected")))
	assert.Contains(t, buf.String(), `"dispatch_id"`)
	assert.Contains(t, buf.String(), `"component":"search"`)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "validating", Validating.String())
	assert.Equal(t, "busy", Busy.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "state(9)", State(9).String())
}
