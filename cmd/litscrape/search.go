package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/henrybloomingdale/litscrape/internal/actions"
	"github.com/henrybloomingdale/litscrape/internal/detail"
	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/scrapeapi"
	"github.com/henrybloomingdale/litscrape/internal/search"
	"github.com/henrybloomingdale/litscrape/internal/termview"
)

var (
	flagShow       int
	flagDownload   string
	flagConditions string
	flagTerms      string
)

func init() {
	for _, c := range []*cobra.Command{searchCmd, clinicalCmd} {
		c.Flags().IntVar(&flagShow, "show", 0, "Show the detail of result number N (1-based)")
		c.Flags().StringVar(&flagDownload, "download", "", "Save the server's Excel export into this directory")
	}
	clinicalCmd.Flags().StringVar(&flagConditions, "conditions", "", "Conditions or disease")
	clinicalCmd.Flags().StringVar(&flagTerms, "terms", "", "Other terms")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(clinicalCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(downloadPDFCmd)
	rootCmd.AddCommand(extractTextsCmd)
}

// searchCmd implements the search subcommand.
var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Scrape PubMed for a keyword",
	Long:  `Ask the scraping server to scrape PubMed for a keyword and show the returned articles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(outputCfg())
		q := scrapeapi.GeneralQuery{Keyword: strings.Join(args, " ")}
		return a.runSearch(cmd.Context(), a.general, q)
	},
}

// clinicalCmd implements the clinical subcommand.
var clinicalCmd = &cobra.Command{
	Use:   "clinical [conditions]",
	Short: "Scrape ClinicalTrials.gov",
	Long: `Ask the scraping server to scrape clinical trials. Conditions come from
--conditions or the arguments; at least one of conditions and --terms is required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(outputCfg())
		conditions := flagConditions
		if conditions == "" {
			conditions = strings.Join(args, " ")
		}
		q := scrapeapi.ClinicalQuery{ConditionsDisease: conditions, OtherTerms: flagTerms}
		return a.runSearch(cmd.Context(), a.clinical, q)
	},
}

// suggestCmd implements the suggest subcommand.
var suggestCmd = &cobra.Command{
	Use:   "suggest <partial keyword>",
	Short: "List keyword suggestions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(outputCfg())
		partial := strings.Join(args, " ")
		if err := a.suggester.OnKey(cmd.Context(), a.suggester.TriggerKey(), partial); err != nil {
			return err
		}
		return termview.FormatSuggestions(stdout, a.view.Suggestions(), a.out)
	},
}

// downloadPDFCmd implements the download-pdf subcommand.
var downloadPDFCmd = &cobra.Command{
	Use:   "download-pdf",
	Short: "Download the PDFs of the server's last result set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(outputCfg())
		if err := a.triggers.DownloadPDF(cmd.Context()); err != nil {
			return err
		}
		return termview.FormatAction(stdout, actions.ActionDownloadPDF, "PDF download finished.", a.out)
	},
}

// extractTextsCmd implements the extract-texts subcommand.
var extractTextsCmd = &cobra.Command{
	Use:   "extract-texts",
	Short: "Extract text from the downloaded PDFs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(outputCfg())
		if err := a.triggers.ExtractTexts(cmd.Context()); err != nil {
			return err
		}
		return termview.FormatAction(stdout, actions.ActionExtractTexts, "Text extraction finished.", a.out)
	},
}

// runSearch submits q and writes whatever the flags ask for. In text modes the
// view has already printed the table by the time Submit returns; structured
// modes print a single document here.
func (a *app) runSearch(ctx context.Context, ctrl *search.Controller, q scrapeapi.Query) error {
	if err := ctrl.Submit(ctx, q); err != nil {
		return err
	}
	schema := ctrl.Schema()
	p := termview.NewPayload(a.store, schema)

	if flagDownload != "" {
		if err := a.downloadExport(ctx, flagDownload); err != nil {
			return err
		}
	}
	if err := termview.Export(p, a.out); err != nil {
		return err
	}

	if flagShow != 0 {
		return a.showRecord(schema, flagShow, p.Count)
	}
	if a.out.Structured() {
		// Files were written above.
		return termview.FormatResults(stdout, p, termview.OutputConfig{JSON: a.out.JSON, YAML: a.out.YAML})
	}
	return nil
}

func (a *app) showRecord(schema records.Schema, n, count int) error {
	if a.out.Structured() {
		d, err := detail.Build(a.store, schema, n-1)
		if err != nil {
			return fmt.Errorf("no result #%d among %d: %w", n, count, err)
		}
		return termview.FormatDetail(stdout, d, a.out)
	}
	if !a.viewer.Show(n - 1) {
		return fmt.Errorf("no result #%d among %d", n, count)
	}
	return nil
}

// downloadExport saves the export artifact into dir, keeping its file name.
func (a *app) downloadExport(ctx context.Context, dir string) error {
	if !a.triggers.ExportExcel() {
		return fmt.Errorf("the search produced no export file")
	}
	artifact := a.store.Artifact()
	data, err := a.api.FetchArtifact(ctx, artifact)
	if err != nil {
		return fmt.Errorf("downloading export: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create download folder: %w", err)
	}
	dest := filepath.Join(dir, path.Base(artifact))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(stderr, "Saved %s\n", dest)
	return nil
}
