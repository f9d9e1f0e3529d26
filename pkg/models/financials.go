package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// Wire field names used by the income report and price sources.
const (
	FieldFiscalDateEnding  = "fiscalDateEnding"
	FieldTotalRevenue      = "totalRevenue"
	FieldNetIncome         = "netIncome"
	FieldOperatingIncome   = "operatingIncome"
	FieldTotalAssets       = "totalAssets"
	FieldTotalLiabilities  = "totalLiabilities"
	FieldSharesOutstanding = "commonStockSharesOutstanding"
	FieldShareholderEquity = "totalShareholderEquity"
	FieldEPS               = "eps"
	FieldDate              = "date"
	FieldClose             = "close"
)

// RawReport is one fiscal-period record as returned by the income report source.
// Every field holds whatever the JSON decoder produced (string, json.Number,
// float64, nil, ...); nothing here has been validated.
type RawReport struct {
	FiscalDateEnding             any `json:"fiscalDateEnding"`
	TotalRevenue                 any `json:"totalRevenue"`
	NetIncome                    any `json:"netIncome"`
	OperatingIncome              any `json:"operatingIncome"`
	TotalAssets                  any `json:"totalAssets"`
	TotalLiabilities             any `json:"totalLiabilities"`
	CommonStockSharesOutstanding any `json:"commonStockSharesOutstanding"`
	TotalShareholderEquity       any `json:"totalShareholderEquity"`
	EPS                          any `json:"eps"`
}

// RawReportFromMap builds a RawReport from a decoded JSON object.
// Unknown keys are ignored; missing keys stay nil.
func RawReportFromMap(m map[string]any) RawReport {
	return RawReport{
		FiscalDateEnding:             m[FieldFiscalDateEnding],
		TotalRevenue:                 m[FieldTotalRevenue],
		NetIncome:                    m[FieldNetIncome],
		OperatingIncome:              m[FieldOperatingIncome],
		TotalAssets:                  m[FieldTotalAssets],
		TotalLiabilities:             m[FieldTotalLiabilities],
		CommonStockSharesOutstanding: m[FieldSharesOutstanding],
		TotalShareholderEquity:       m[FieldShareholderEquity],
		EPS:                          m[FieldEPS],
	}
}

// RawPriceQuote is one daily quote as returned by the price source.
type RawPriceQuote struct {
	Date  any `json:"date"`
	Close any `json:"close"`
}

// RawPriceQuoteFromMap builds a RawPriceQuote from a decoded JSON object.
func RawPriceQuoteFromMap(m map[string]any) RawPriceQuote {
	return RawPriceQuote{
		Date:  m[FieldDate],
		Close: m[FieldClose],
	}
}

// NormalizedReport is a validated fiscal-period record. Numeric fields are
// absent (Valid == false) when the raw value was missing or unparsable.
type NormalizedReport struct {
	Date              time.Time  `json:"date"`
	Revenue           null.Float `json:"revenue"`
	NetIncome         null.Float `json:"netIncome"`
	OperatingIncome   null.Float `json:"operatingIncome"`
	TotalAssets       null.Float `json:"totalAssets"`
	TotalLiabilities  null.Float `json:"totalLiabilities"`
	SharesOutstanding null.Float `json:"sharesOutstanding"`
	ShareholderEquity null.Float `json:"shareholderEquity"`
	EPSReported       null.Float `json:"epsReported"`
}

// NormalizedPrice is a validated daily closing price.
type NormalizedPrice struct {
	Date  time.Time  `json:"date"`
	Close null.Float `json:"close"`
}

// DerivedMetrics holds the ratios computed for a single fiscal period.
type DerivedMetrics struct {
	OperatingMargin null.Float `json:"operatingMargin"` // %
	EPS             null.Float `json:"eps"`
	PER             null.Float `json:"per"`       // revenue per share
	PBR             null.Float `json:"pbr"`       // revenue / equity
	ROE             null.Float `json:"roe"`       // %
	DebtRatio       null.Float `json:"debtRatio"` // %
	Equity          null.Float `json:"equity"`    // reported or assets - liabilities
}
