// finchart: fundamental metric series for US equities
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finchart/api"
	"github.com/seenimoa/finchart/internal/analysis/fundamental"
	"github.com/seenimoa/finchart/internal/config"
	"github.com/seenimoa/finchart/internal/datasource"
	"github.com/seenimoa/finchart/internal/infra"
	"github.com/seenimoa/finchart/pkg/models"
	"github.com/seenimoa/finchart/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command before any subcommand runs.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "finchart",
	Short: "finchart — fundamental metric series for US equities",
	Long: `finchart fetches a company's quarterly income statements and daily
closing prices, derives per-period financial ratios (operating margin, EPS,
PER, PBR, ROE, debt ratio) and prints them as date-ordered series.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		logger = infra.NewLogger(level, cfg.Logging.Format, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "finchart %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Metrics Command ---

var metricsCmd = &cobra.Command{
	Use:   "metrics [ticker]",
	Short: "Fetch a ticker's reports and prices and print its metric series",
	Long: `Fetch the income statement and price history for a ticker from the
configured sources, derive the metric series and print them.

Examples:
  finchart metrics AAPL
  finchart metrics apple --metric roe --metric pbr
  finchart metrics MSFT --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := utils.NormalizeTicker(args[0])
		if !utils.IsValidTicker(ticker) {
			return fmt.Errorf("invalid ticker: %q", args[0])
		}

		opts, err := outputOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		timeout := time.Duration(cfg.Sources.TimeoutSec) * time.Second * 2
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		collector := datasource.NewCollectorFromConfig(cfg.Sources, logger)
		return runAndPrint(cmd, collector.Collect(ctx, ticker), opts)
	},
}

// --- Derive Command ---

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive metric series from payload files",
	Long: `Run the pipeline offline over an income statement payload and a price
history payload read from local files. The files use the same JSON layout
as the configured HTTP sources.

Example:
  finchart derive --income income.json --prices prices.json --symbol AAPL`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		incomePath, _ := cmd.Flags().GetString("income")
		pricePath, _ := cmd.Flags().GetString("prices")
		symbol, _ := cmd.Flags().GetString("symbol")

		opts, err := outputOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		incomeDC, priceDC := datasource.DecodersFromConfig(cfg.Sources)
		collector := datasource.NewCollector(
			datasource.FileFetcher{Path: incomePath},
			datasource.FileFetcher{Path: pricePath},
			incomeDC, priceDC, logger,
		)
		return runAndPrint(cmd, collector.Collect(cmd.Context(), utils.NormalizeTicker(symbol)), opts)
	},
}

func init() {
	for _, c := range []*cobra.Command{metricsCmd, deriveCmd} {
		c.Flags().String("format", formatMarkdown, "output format (markdown, json)")
		c.Flags().StringSlice("metric", nil, "limit output to these metrics (repeatable or comma-separated)")
		c.Flags().Bool("raw", false, "print markdown without terminal styling")
	}

	deriveCmd.Flags().String("income", "", "income statement payload file")
	deriveCmd.Flags().String("prices", "", "price history payload file")
	deriveCmd.Flags().String("symbol", "", "symbol to label the output with")
	_ = deriveCmd.MarkFlagRequired("income")
	_ = deriveCmd.MarkFlagRequired("prices")
}

// runAndPrint runs the pipeline and prints the batch. A batch whose source
// was unavailable is still printed, and the error is returned afterwards.
func runAndPrint(cmd *cobra.Command, in fundamental.Input, opts outputOptions) error {
	batch, runErr := fundamental.Run(in)
	if runErr == nil && len(opts.metrics) > 0 {
		batch = batch.Select(opts.metrics...)
	}

	if err := printBatch(cmd.OutOrStdout(), batch, opts); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		api.Version = version
		srv := api.NewServer(cfg, nil, logger)
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  finchart — Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintln(out)

		// Config summary
		fmt.Fprintln(out, "  Sources:")
		fmt.Fprintf(out, "    Income:      %s  (%s)\n", cfg.Sources.IncomeURL, cfg.Sources.IncomePath)
		fmt.Fprintf(out, "    Prices:      %s  (%s)\n", cfg.Sources.PriceURL, cfg.Sources.PricePath)
		fmt.Fprintf(out, "    Timeout:     %ds\n", cfg.Sources.TimeoutSec)
		fmt.Fprintf(out, "    Rate limit:  %d req / %ds\n", cfg.Sources.RateLimit, cfg.Sources.RateWindowSec)
		fmt.Fprintf(out, "    Lenient:     %t\n", cfg.Sources.LenientJSON)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Fprintf(out, "  Logging:       %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
		fmt.Fprintf(out, "  Metrics:       %d\n", len(models.AllMetrics()))
		fmt.Fprintln(out)

		// API keys status
		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
