package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/guregu/null/v6"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finchart/pkg/models"
	"github.com/seenimoa/finchart/pkg/utils"
)

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

type outputOptions struct {
	format  string
	metrics []models.MetricName
	raw     bool
}

func outputOptionsFromFlags(cmd *cobra.Command) (outputOptions, error) {
	format, _ := cmd.Flags().GetString("format")
	names, _ := cmd.Flags().GetStringSlice("metric")
	raw, _ := cmd.Flags().GetBool("raw")

	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "", "md":
		format = formatMarkdown
	case formatMarkdown, formatJSON:
	default:
		return outputOptions{}, fmt.Errorf("unknown format %q (use markdown or json)", format)
	}

	metrics, err := models.ParseMetricNames(names...)
	if err != nil {
		return outputOptions{}, err
	}
	return outputOptions{format: format, metrics: metrics, raw: raw}, nil
}

func printBatch(w io.Writer, batch *models.MetricBatch, opts outputOptions) error {
	if opts.format == formatJSON {
		return writeBatchJSON(w, batch)
	}

	md := batchMarkdown(batch)
	if opts.raw {
		_, err := io.WriteString(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func writeBatchJSON(w io.Writer, batch *models.MetricBatch) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(batch)
}

// batchMarkdown renders one table per series in display order.
func batchMarkdown(batch *models.MetricBatch) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", displaySymbol(batch.Symbol))
	if batch.Status != models.StatusOK {
		fmt.Fprintf(&b, "**Status:** %s\n\n", batch.Status)
	}
	if batch.IsEmpty() {
		b.WriteString("No data available.\n")
		return b.String()
	}

	for _, name := range models.AllMetrics() {
		s, ok := batch.Get(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", metricTitle(name))
		if s.Len() == 0 {
			b.WriteString("_No data._\n\n")
			continue
		}
		b.WriteString("| Date | Value |\n|---|---:|\n")
		for _, p := range s.Points {
			fmt.Fprintf(&b, "| %s | %s |\n", utils.FormatDate(p.Date), formatValue(name, p.Value))
		}
		if latest, ok := s.Latest(); ok {
			fmt.Fprintf(&b, "\nLatest: **%s** (%s)\n", formatValue(name, latest.Value), utils.FormatDate(latest.Date))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func displaySymbol(symbol string) string {
	if symbol == "" {
		return "Metrics"
	}
	return symbol + " metrics"
}

var metricTitles = map[models.MetricName]string{
	models.MetricPrice:           "Price",
	models.MetricRevenue:         "Revenue",
	models.MetricNetIncome:       "Net Income",
	models.MetricOperatingMargin: "Operating Margin",
	models.MetricEPS:             "EPS",
	models.MetricPER:             "PER",
	models.MetricPBR:             "PBR",
	models.MetricROE:             "ROE",
	models.MetricDebtRatio:       "Debt Ratio",
}

func metricTitle(name models.MetricName) string {
	if t, ok := metricTitles[name]; ok {
		return t
	}
	return string(name)
}

// formatValue formats one point for display. Gaps print as "n/a".
func formatValue(name models.MetricName, v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	switch {
	case name.IsPercent():
		return utils.FormatPct(v.Float64)
	case name == models.MetricRevenue || name == models.MetricNetIncome:
		return utils.FormatCompact(v.Float64)
	default:
		return utils.FormatRatio(v.Float64)
	}
}
