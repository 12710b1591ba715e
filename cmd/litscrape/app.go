package main

import (
	"github.com/rs/zerolog"

	"github.com/henrybloomingdale/litscrape/internal/actions"
	"github.com/henrybloomingdale/litscrape/internal/detail"
	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/render"
	"github.com/henrybloomingdale/litscrape/internal/scrapeapi"
	"github.com/henrybloomingdale/litscrape/internal/search"
	"github.com/henrybloomingdale/litscrape/internal/suggest"
	"github.com/henrybloomingdale/litscrape/internal/termview"
)

// app wires the controllers around a terminal view, the way the web server
// wires them around its page state.
type app struct {
	api       *scrapeapi.Client
	out       termview.OutputConfig
	view      *termview.View
	store     *records.Store
	renderer  *render.Renderer
	general   *search.Controller
	clinical  *search.Controller
	viewer    *detail.Viewer
	suggester *suggest.Controller
	triggers  *actions.Triggers
	logger    zerolog.Logger
}

func newApp(out termview.OutputConfig) *app {
	logger := newLogger()
	a := &app{
		api:    newAPIClient(logger, nil),
		out:    out,
		view:   termview.NewView(stdout, stderr, out),
		store:  records.NewStore(),
		logger: logger,
	}
	a.renderer = render.New(a.store, a.view)
	a.general = search.NewGeneral(a.api, a.store, a.renderer, a.view, search.WithLogger(logger))
	a.clinical = search.NewClinical(a.api, a.store, a.renderer, a.view, search.WithLogger(logger))
	a.viewer = detail.New(a.store, a.renderer, a.view)
	a.suggester = suggest.New(a.api, a.view,
		suggest.WithTriggerKey(cfg.Suggest.TriggerKey),
		suggest.WithDelay(cfg.Suggest.Delay),
		suggest.WithLogger(logger),
	)
	a.triggers = actions.New(a.api, a.store, a.view, actions.WithLogger(logger))
	return a
}
