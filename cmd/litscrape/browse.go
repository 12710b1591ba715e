package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/render"
	"github.com/henrybloomingdale/litscrape/internal/scrapeapi"
	"github.com/henrybloomingdale/litscrape/internal/search"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

func init() {
	rootCmd.AddCommand(browseCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive search and result browser",
	Long: `Walk through a search step by step: pick PubMed or clinical trials, type a
keyword with suggestions from the server, then open records and trigger the
export and download actions.

Run without arguments:
  litscrape browse`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

// Styles.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Menu choices after a search.
const (
	choiceOpen         = "open"
	choiceExport       = "export"
	choiceDownloadPDF  = "download_pdf"
	choiceExtractTexts = "extract_texts"
	choiceNewSearch    = "new"
	choiceQuit         = "quit"
)

func runBrowse(cmd *cobra.Command, args []string) error {
	out := outputCfg()
	out.Human = true
	out.JSON, out.YAML = false, false
	a := newApp(out)
	ctx := cmd.Context()

	fmt.Fprintln(stdout, titleStyle.Render("🔬 Literature Scraper"))
	fmt.Fprintln(stdout, subtitleStyle.Render("Search PubMed or ClinicalTrials.gov through "+cfg.Server.BaseURL))
	fmt.Fprintln(stdout)

	for {
		ctrl, q, err := a.askQuery(ctx)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		var submitErr error
		spinErr := spinner.New().
			Title("Waiting for the scraping server...").
			Action(func() { submitErr = ctrl.Submit(ctx, q) }).
			Run()
		if spinErr != nil {
			return spinErr
		}
		if submitErr != nil {
			// The view has shown the prompt or failure notice.
			continue
		}

		again, err := a.resultsMenu(ctx, ctrl.Schema())
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if !again {
			return nil
		}
	}
}

// askQuery collects a query. General keywords get a second input pre-filled
// with the typed text and the server's suggestions.
func (a *app) askQuery(ctx context.Context) (*search.Controller, scrapeapi.Query, error) {
	schema := string(records.General)
	if err := runField(huh.NewSelect[string]().
		Title("What do you want to search?").
		Options(
			huh.NewOption("PubMed articles", string(records.General)),
			huh.NewOption("Clinical trials", string(records.Clinical)),
		).
		Value(&schema)); err != nil {
		return nil, nil, err
	}

	if schema == string(records.Clinical) {
		var conditions, terms string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Conditions/disease").
					Placeholder("e.g., type 2 diabetes").
					Value(&conditions),
				huh.NewInput().
					Title("Other terms").
					Placeholder("e.g., metformin").
					Value(&terms),
			).Title("Clinical Trials"),
		).WithTheme(huh.ThemeCatppuccin())
		if err := form.Run(); err != nil {
			return nil, nil, err
		}
		return a.clinical, scrapeapi.ClinicalQuery{ConditionsDisease: conditions, OtherTerms: terms}, nil
	}

	var keyword string
	if err := runField(huh.NewInput().
		Title("Keyword").
		Description("Type the start of a keyword to get suggestions").
		Placeholder("e.g., heart failure").
		Value(&keyword)); err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(keyword) != "" {
		if err := a.suggester.OnKey(ctx, a.suggester.TriggerKey(), keyword); err != nil {
			fmt.Fprintln(stderr, dimStyle.Render("No suggestions available."))
		} else if items := a.view.Suggestions(); len(items) > 0 {
			if err := runField(huh.NewInput().
				Title("Keyword").
				Description("Tab accepts a suggestion").
				Suggestions(items).
				Value(&keyword)); err != nil {
				return nil, nil, err
			}
		}
	}
	return a.general, scrapeapi.GeneralQuery{Keyword: keyword}, nil
}

// resultsMenu loops over record details and actions until the user starts a
// new search (true) or quits (false).
func (a *app) resultsMenu(ctx context.Context, schema records.Schema) (bool, error) {
	for {
		choice := choiceOpen
		options := []huh.Option[string]{huh.NewOption("Open a record", choiceOpen)}
		if a.view.Enabled(ui.ControlExport) {
			options = append(options, huh.NewOption("Show the Excel export link", choiceExport))
		}
		options = append(options,
			huh.NewOption("Download PDFs", choiceDownloadPDF),
			huh.NewOption("Extract texts", choiceExtractTexts),
			huh.NewOption("New search", choiceNewSearch),
			huh.NewOption("Quit", choiceQuit),
		)
		if err := runField(huh.NewSelect[string]().
			Title(fmt.Sprintf("%d results", a.store.Len())).
			Options(options...).
			Value(&choice)); err != nil {
			return false, err
		}

		switch choice {
		case choiceOpen:
			if err := a.pickRecord(schema); err != nil {
				return false, err
			}
		case choiceExport:
			a.triggers.ExportExcel()
		case choiceDownloadPDF:
			_ = a.runAction(func() error { return a.triggers.DownloadPDF(ctx) }, "Downloading PDFs...")
		case choiceExtractTexts:
			_ = a.runAction(func() error { return a.triggers.ExtractTexts(ctx) }, "Extracting texts...")
		case choiceNewSearch:
			return true, nil
		default:
			return false, nil
		}
	}
}

func (a *app) pickRecord(schema records.Schema) error {
	if a.store.Len() == 0 {
		fmt.Fprintln(stderr, dimStyle.Render("No records to open."))
		return nil
	}
	t := render.Render(a.store, schema)
	options := make([]huh.Option[string], len(t.Rows))
	for i, row := range t.Rows {
		title := ""
		for _, c := range row.Cells {
			if c.Field == records.FieldTitle {
				title = c.Text
			}
		}
		options[i] = huh.NewOption(row.Label+". "+title, strconv.Itoa(row.Index))
	}

	var picked string
	if err := runField(huh.NewSelect[string]().
		Title("Open which record?").
		Options(options...).
		Height(12).
		Value(&picked)); err != nil {
		return err
	}
	index, err := strconv.Atoi(picked)
	if err != nil {
		return fmt.Errorf("parse record index: %w", err)
	}
	a.viewer.Show(index)
	return nil
}

func (a *app) runAction(call func() error, title string) error {
	var actionErr error
	if err := spinner.New().Title(title).Action(func() { actionErr = call() }).Run(); err != nil {
		return err
	}
	if actionErr == nil {
		fmt.Fprintln(stdout, dimStyle.Render("Done."))
	}
	return actionErr
}

// runField runs a single field as a one-group form.
func runField(f huh.Field) error {
	return huh.NewForm(huh.NewGroup(f)).WithTheme(huh.ThemeCatppuccin()).Run()
}
