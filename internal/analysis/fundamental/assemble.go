package fundamental

import (
	"sort"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/finchart/pkg/models"
)

// period pairs a report with its derived metrics.
type period struct {
	report  models.NormalizedReport
	derived models.DerivedMetrics
}

// Assemble orders reports (with their derived metrics) and prices by date and
// packages one series per supported metric. derived[i] belongs to reports[i];
// a missing entry yields gaps for the derived metrics of that period.
//
// Reports and prices are ordered independently. When two records share a
// date the later one in input order wins. Absent values stay in the series
// as gaps so every report-based series has the same dates.
func Assemble(symbol string, reports []models.NormalizedReport, derived []models.DerivedMetrics, prices []models.NormalizedPrice) *models.MetricBatch {
	periods := make([]period, len(reports))
	for i, r := range reports {
		periods[i].report = r
		if i < len(derived) {
			periods[i].derived = derived[i]
		}
	}
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].report.Date.Before(periods[j].report.Date)
	})
	periods = lastPerDate(periods, func(p period) int64 { return p.report.Date.Unix() })

	quotes := make([]models.NormalizedPrice, len(prices))
	copy(quotes, prices)
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Date.Before(quotes[j].Date)
	})
	quotes = lastPerDate(quotes, func(q models.NormalizedPrice) int64 { return q.Date.Unix() })

	batch := models.EmptyBatch(symbol, models.StatusOK)

	reportSeries := []struct {
		name  models.MetricName
		value func(p period) null.Float
	}{
		{models.MetricRevenue, func(p period) null.Float { return p.report.Revenue }},
		{models.MetricNetIncome, func(p period) null.Float { return p.report.NetIncome }},
		{models.MetricOperatingMargin, func(p period) null.Float { return p.derived.OperatingMargin }},
		{models.MetricEPS, func(p period) null.Float { return p.derived.EPS }},
		{models.MetricPER, func(p period) null.Float { return p.derived.PER }},
		{models.MetricPBR, func(p period) null.Float { return p.derived.PBR }},
		{models.MetricROE, func(p period) null.Float { return p.derived.ROE }},
		{models.MetricDebtRatio, func(p period) null.Float { return p.derived.DebtRatio }},
	}
	for _, rs := range reportSeries {
		points := make([]models.MetricPoint, len(periods))
		for i, p := range periods {
			points[i] = models.MetricPoint{Date: p.report.Date, Value: rs.value(p)}
		}
		batch.Series[rs.name] = models.MetricSeries{Name: rs.name, Points: points}
	}

	pricePoints := make([]models.MetricPoint, len(quotes))
	for i, q := range quotes {
		pricePoints[i] = models.MetricPoint{Date: q.Date, Value: q.Close}
	}
	batch.Series[models.MetricPrice] = models.MetricSeries{Name: models.MetricPrice, Points: pricePoints}

	return batch
}

// lastPerDate collapses runs of equal keys in a stably sorted slice, keeping
// the last element of each run.
func lastPerDate[T any](sorted []T, key func(T) int64) []T {
	out := sorted[:0]
	for i, v := range sorted {
		if i+1 < len(sorted) && key(sorted[i+1]) == key(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
