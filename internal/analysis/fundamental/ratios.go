package fundamental

import (
	"github.com/guregu/null/v6"

	"github.com/seenimoa/finchart/pkg/models"
)

// DeriveRatios calculates the per-period ratios for one normalized report.
// A ratio is absent when any operand is absent or its denominator is zero.
func DeriveRatios(r models.NormalizedReport) models.DerivedMetrics {
	equity := Equity(r)

	return models.DerivedMetrics{
		// Operating margin % = operating income / revenue
		OperatingMargin: ratio(r.OperatingIncome, r.Revenue, 100),

		// EPS = net income / shares outstanding
		EPS: ratio(r.NetIncome, r.SharesOutstanding, 1),

		// PER is revenue per share; no price is joined at report date.
		PER: ratio(r.Revenue, r.SharesOutstanding, 1),

		// PBR = revenue / equity
		PBR: ratio(r.Revenue, equity, 1),

		// ROE % = net income / equity
		ROE: ratio(r.NetIncome, equity, 100),

		// Debt ratio % = total liabilities / equity
		DebtRatio: ratio(r.TotalLiabilities, equity, 100),

		Equity: equity,
	}
}

// DeriveAll applies DeriveRatios to each report, keeping positions aligned.
func DeriveAll(reports []models.NormalizedReport) []models.DerivedMetrics {
	out := make([]models.DerivedMetrics, len(reports))
	for i, r := range reports {
		out[i] = DeriveRatios(r)
	}
	return out
}

// Equity returns the reported shareholder equity, or total assets minus total
// liabilities when equity is not reported. It is absent if the fallback is
// missing an operand, so a zero-equity company stays distinct from an
// unreported balance sheet.
func Equity(r models.NormalizedReport) null.Float {
	if r.ShareholderEquity.Valid {
		return r.ShareholderEquity
	}
	if !r.TotalAssets.Valid || !r.TotalLiabilities.Valid {
		return null.Float{}
	}
	return finite(r.TotalAssets.Float64 - r.TotalLiabilities.Float64)
}

// --- helpers ---

func ratio(num, den null.Float, scale float64) null.Float {
	if !num.Valid || !den.Valid || den.Float64 == 0 {
		return null.Float{}
	}
	return finite(num.Float64 / den.Float64 * scale)
}
