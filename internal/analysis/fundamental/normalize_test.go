package fundamental

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/finchart/pkg/models"
)

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
		valid bool
	}{
		{"string int", "100", 100, true},
		{"string float", "12.5", 12.5, true},
		{"string negative", "-42", -42, true},
		{"string whitespace", "  7 ", 7, true},
		{"string exponent", "1e3", 1000, true},
		{"large revenue", "383285000000", 383285000000, true},
		{"json number", json.Number("3.25"), 3.25, true},
		{"float64", 185.64, 185.64, true},
		{"int", 5, 5, true},
		{"int64", int64(-3), -3, true},
		{"decimal", decimal.NewFromFloat(2.5), 2.5, true},
		{"zero string", "0", 0, true},
		{"max float", "1.7976931348623157e308", math.MaxFloat64, true},
		{"overflow", "1e309", 0, false},
		{"huge exponent", "1e999999999", 0, false},
		{"huge negative exponent", "-1e999999999", 0, false},
		{"vanishing exponent", "1e-999999999", 0, true},
		{"zero huge exponent", "0e999999999", 0, true},
		{"huge decimal exponent", decimal.New(1, 999999999), 0, false},
		{"nil", nil, 0, false},
		{"empty", "", 0, false},
		{"blank", "   ", 0, false},
		{"None sentinel", "None", 0, false},
		{"NaN string", "NaN", 0, false},
		{"Infinity string", "Infinity", 0, false},
		{"thousands separator", "1,000", 0, false},
		{"hex", "0x10", 0, false},
		{"bool", true, 0, false},
		{"object", map[string]any{"raw": 1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceNumber(tt.input)
			if got.Valid != tt.valid {
				t.Fatalf("CoerceNumber(%#v).Valid = %v, want %v", tt.input, got.Valid, tt.valid)
			}
			if tt.valid && !approx(got.Float64, tt.want) {
				t.Errorf("CoerceNumber(%#v) = %f, want %f", tt.input, got.Float64, tt.want)
			}
		})
	}
}

func TestCoerceNumberLargeExponentIsFast(t *testing.T) {
	start := time.Now()
	for _, s := range []string{"1e20000000", "1e2147483647", "1e-2147483648"} {
		CoerceNumber(s)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("coercing out-of-range exponents took %v", elapsed)
	}
}

func TestCoerceDate(t *testing.T) {
	want := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		input any
		ok    bool
	}{
		{"iso", "2023-12-31", true},
		{"rfc3339", "2023-12-31T10:00:00Z", true},
		{"time value", time.Date(2023, 12, 31, 15, 4, 5, 0, time.UTC), true},
		{"nil", nil, false},
		{"empty", "", false},
		{"garbage", "last quarter", false},
		{"number", 20231231.0, false},
		{"zero time", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("CoerceDate(%#v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(want) {
				t.Errorf("CoerceDate(%#v) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestNormalizeKeepsReportsWithMissingFields(t *testing.T) {
	raw := []models.RawReport{
		{FiscalDateEnding: "2023-12-31"},
		{FiscalDateEnding: "2023-09-30", TotalRevenue: "None", NetIncome: ""},
		{FiscalDateEnding: "2023-06-30", TotalRevenue: "90", EPS: "garbage"},
	}
	reports, _ := Normalize(raw, nil)
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if reports[0].Revenue.Valid || reports[1].Revenue.Valid {
		t.Error("missing/None revenue should be absent")
	}
	if reports[1].NetIncome.Valid {
		t.Error("empty net income should be absent, not zero")
	}
	if !reports[2].Revenue.Valid || reports[2].Revenue.Float64 != 90 {
		t.Errorf("revenue[2]: got %+v", reports[2].Revenue)
	}
	if reports[2].EPSReported.Valid {
		t.Error("unparsable eps should be absent")
	}
}

func TestNormalizeDropsOnlyBadDates(t *testing.T) {
	raw := []models.RawReport{
		{FiscalDateEnding: "2023-12-31", TotalRevenue: "100"},
		{FiscalDateEnding: nil, TotalRevenue: "200"},
		{FiscalDateEnding: "not a date", TotalRevenue: "300"},
		{FiscalDateEnding: "2023-03-31", TotalRevenue: "400"},
	}
	reports, _ := Normalize(raw, nil)
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Revenue.Float64 != 100 || reports[1].Revenue.Float64 != 400 {
		t.Errorf("wrong reports kept: %+v", reports)
	}
}

func TestNormalizePreservesInputOrder(t *testing.T) {
	raw := []models.RawReport{
		{FiscalDateEnding: "2022-12-31"},
		{FiscalDateEnding: "2023-12-31"},
		{FiscalDateEnding: "2021-12-31"},
	}
	reports, _ := Normalize(raw, nil)
	years := []int{2022, 2023, 2021}
	for i, r := range reports {
		if r.Date.Year() != years[i] {
			t.Errorf("reports[%d].Date = %v, want year %d", i, r.Date, years[i])
		}
	}
}

func TestNormalizePrices(t *testing.T) {
	raw := []models.RawPriceQuote{
		{Date: "2024-01-03", Close: "184.25"},
		{Date: "2024-01-02", Close: 185.64},
		{Date: "2024-01-01", Close: "None"},
		{Date: "", Close: "180"},
	}
	_, prices := Normalize(nil, raw)
	if len(prices) != 3 {
		t.Fatalf("expected 3 prices, got %d", len(prices))
	}
	if !prices[0].Close.Valid || !approx(prices[0].Close.Float64, 184.25) {
		t.Errorf("prices[0]: got %+v", prices[0])
	}
	if !prices[1].Close.Valid || !approx(prices[1].Close.Float64, 185.64) {
		t.Errorf("prices[1]: got %+v", prices[1])
	}
	if prices[2].Close.Valid {
		t.Error("unparsable close should be kept as a gap")
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	reports, prices := Normalize(nil, nil)
	if reports == nil || prices == nil {
		t.Error("Normalize should return empty, non-nil slices")
	}
	if len(reports) != 0 || len(prices) != 0 {
		t.Error("expected no records")
	}
}
