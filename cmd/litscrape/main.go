// Command litscrape is the front-end for the literature scraping server: it
// submits PubMed and clinical-trial searches, shows the results, and triggers
// the server's export and download actions.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/henrybloomingdale/litscrape/internal/config"
	"github.com/henrybloomingdale/litscrape/internal/observability"
	"github.com/henrybloomingdale/litscrape/internal/scrapeapi"
	"github.com/henrybloomingdale/litscrape/internal/termview"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	flagConfig   string
	flagServer   string
	flagLogLevel string
	flagJSON     bool
	flagYAML     bool
	flagHuman    bool
	flagFull     bool
	flagCSV      string
	flagRIS      string
)

// cfg is loaded once per invocation by initConfig.
var (
	cfg    *config.Config
	cfgErr error
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "litscrape",
	Short: "Front-end for the literature scraping server",
	Long: `Search PubMed and ClinicalTrials.gov through a literature scraping server,
browse the results, and trigger its Excel export, PDF download and text
extraction.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return cfgErr
		}
		return validateGlobalFlags()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./litscrape.yaml or ~/.config/litscrape/litscrape.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Scraping server base URL (overrides server.base_url)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as structured JSON")
	rootCmd.PersistentFlags().BoolVar(&flagYAML, "yaml", false, "Output as structured YAML")
	rootCmd.PersistentFlags().BoolVarP(&flagHuman, "human", "H", false, "Rich colorful terminal output")
	rootCmd.PersistentFlags().BoolVar(&flagFull, "full", false, "Show full abstract (with --human)")
	rootCmd.PersistentFlags().StringVar(&flagCSV, "csv", "", "Export results to CSV file")
	rootCmd.PersistentFlags().StringVar(&flagRIS, "ris", "", "Export results to RIS file")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfg, cfgErr = config.Load(flagConfig)
	if cfgErr != nil {
		return
	}
	if flagServer != "" {
		cfg.Server.BaseURL = strings.TrimSpace(flagServer)
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	cfgErr = cfg.Validate()
}

func validateGlobalFlags() error {
	if flagJSON && flagYAML {
		return fmt.Errorf("--json and --yaml are mutually exclusive")
	}
	if (flagJSON || flagYAML) && flagHuman {
		return fmt.Errorf("--human cannot be combined with structured output")
	}
	return nil
}

func outputCfg() termview.OutputConfig {
	return termview.OutputConfig{
		JSON:    flagJSON,
		YAML:    flagYAML,
		Human:   flagHuman,
		Full:    flagFull,
		CSVFile: flagCSV,
		RISFile: flagRIS,
	}
}

func newLogger() zerolog.Logger {
	return observability.NewLogger(cfg.Logging.Observability())
}

func newAPIClient(logger zerolog.Logger, metrics *observability.Metrics) *scrapeapi.Client {
	opts := []scrapeapi.Option{
		scrapeapi.WithBaseURL(cfg.Server.BaseURL),
		scrapeapi.WithTimeout(cfg.Gateway.Timeout),
		scrapeapi.WithRateLimit(cfg.Gateway.RateLimit, 1),
		scrapeapi.WithMaxResponseBytes(cfg.Gateway.MaxResponseBytes),
		scrapeapi.WithLogger(logger),
	}
	if cfg.Server.UserAgent != "" {
		opts = append(opts, scrapeapi.WithUserAgent(cfg.Server.UserAgent))
	}
	if metrics != nil {
		opts = append(opts, scrapeapi.WithMetrics(metrics))
	}
	return scrapeapi.NewClient(opts...)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the litscrape version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(stdout, "litscrape", version)
	},
}
