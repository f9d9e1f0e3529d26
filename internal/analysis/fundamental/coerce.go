// Package fundamental implements the metric-derivation pipeline: it turns raw
// income reports and price quotes into date-ordered metric series.
//
// The pipeline runs in three stages. Normalize validates raw records,
// DeriveRatios computes per-period ratios, and Assemble orders and packages
// the series. Run composes them. Every function is pure; nothing is cached
// between calls.
package fundamental

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/finchart/pkg/utils"
)

// CoerceNumber converts a loosely typed source value into an optional number.
// Strings must hold a finite decimal literal; anything else that is not a
// Go number (bool, object, "", "None", "NaN", "Infinity") is absent.
func CoerceNumber(v any) null.Float {
	switch x := v.(type) {
	case nil:
		return null.Float{}
	case string:
		return parseDecimal(x)
	case json.Number:
		return parseDecimal(string(x))
	case decimal.Decimal:
		return decimalFloat(x)
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return null.FloatFrom(float64(x))
	case int32:
		return null.FloatFrom(float64(x))
	case int64:
		return null.FloatFrom(float64(x))
	case uint:
		return null.FloatFrom(float64(x))
	case uint32:
		return null.FloatFrom(float64(x))
	case uint64:
		return null.FloatFrom(float64(x))
	default:
		return null.Float{}
	}
}

func parseDecimal(s string) null.Float {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.Float{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return null.Float{}
	}
	return decimalFloat(d)
}

// Decimal magnitudes (exponent plus coefficient digits) beyond which a
// float64 overflows or rounds to zero.
const (
	maxFloatMagnitude = 310
	minFloatMagnitude = -325
)

// decimalFloat converts d without building the exact rational for
// out-of-range exponents, which costs time proportional to the exponent.
func decimalFloat(d decimal.Decimal) null.Float {
	if d.IsZero() {
		return null.FloatFrom(0)
	}
	mag := int64(d.Exponent()) + int64(d.NumDigits())
	switch {
	case mag > maxFloatMagnitude:
		return null.Float{}
	case mag < minFloatMagnitude:
		return null.FloatFrom(0)
	}
	f, _ := d.Float64()
	return finite(f)
}

func finite(f float64) null.Float {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// CoerceDate converts a source date value into a calendar day (UTC).
func CoerceDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		t, err := utils.ParseDate(x)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		y, m, d := x.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}
