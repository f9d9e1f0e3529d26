package fundamental

import (
	"github.com/seenimoa/finchart/pkg/models"
)

// Normalize validates raw reports and price quotes. Input order is preserved;
// records are dropped only when their date is missing or unparsable.
func Normalize(rawReports []models.RawReport, rawPrices []models.RawPriceQuote) ([]models.NormalizedReport, []models.NormalizedPrice) {
	reports := make([]models.NormalizedReport, 0, len(rawReports))
	for _, r := range rawReports {
		if nr, ok := NormalizeReport(r); ok {
			reports = append(reports, nr)
		}
	}

	prices := make([]models.NormalizedPrice, 0, len(rawPrices))
	for _, q := range rawPrices {
		if np, ok := NormalizePrice(q); ok {
			prices = append(prices, np)
		}
	}

	return reports, prices
}

// NormalizeReport converts one raw report. The bool is false when the
// fiscal date cannot be parsed.
func NormalizeReport(r models.RawReport) (models.NormalizedReport, bool) {
	date, ok := CoerceDate(r.FiscalDateEnding)
	if !ok {
		return models.NormalizedReport{}, false
	}
	return models.NormalizedReport{
		Date:              date,
		Revenue:           CoerceNumber(r.TotalRevenue),
		NetIncome:         CoerceNumber(r.NetIncome),
		OperatingIncome:   CoerceNumber(r.OperatingIncome),
		TotalAssets:       CoerceNumber(r.TotalAssets),
		TotalLiabilities:  CoerceNumber(r.TotalLiabilities),
		SharesOutstanding: CoerceNumber(r.CommonStockSharesOutstanding),
		ShareholderEquity: CoerceNumber(r.TotalShareholderEquity),
		EPSReported:       CoerceNumber(r.EPS),
	}, true
}

// NormalizePrice converts one raw quote. An unparsable close is kept as a gap.
func NormalizePrice(q models.RawPriceQuote) (models.NormalizedPrice, bool) {
	date, ok := CoerceDate(q.Date)
	if !ok {
		return models.NormalizedPrice{}, false
	}
	return models.NormalizedPrice{
		Date:  date,
		Close: CoerceNumber(q.Close),
	}, true
}
