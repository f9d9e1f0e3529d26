package utils

import (
	"regexp"
	"strings"
)

// Company-name aliases for the tickers users ask about most.
var tickerAliases = map[string]string{
	"APPLE":     "AAPL",
	"GOOGLE":    "GOOGL",
	"ALPHABET":  "GOOGL",
	"MICROSOFT": "MSFT",
	"TESLA":     "TSLA",
	"NVIDIA":    "NVDA",
	"AMAZON":    "AMZN",
	"FACEBOOK":  "META",
	"FB":        "META",
}

// knownTickers is the default suggestion list offered to users.
var knownTickers = []string{"AAPL", "GOOGL", "MSFT", "TSLA", "NVDA", "AMZN", "META"}

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}([.-][A-Z0-9]{1,4})?$`)

// NormalizeTicker normalizes a user-input ticker to its canonical form.
// It handles aliases, uppercasing, and whitespace.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present (common in chat)
	ticker = strings.TrimPrefix(ticker, "$")

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// IsValidTicker reports whether the normalized ticker looks like an exchange symbol
// (e.g., "AAPL", "BRK.B", "RDS-A").
func IsValidTicker(ticker string) bool {
	return tickerPattern.MatchString(NormalizeTicker(ticker))
}

// KnownTickers returns a copy of the default ticker suggestions.
func KnownTickers() []string {
	out := make([]string, len(knownTickers))
	copy(out, knownTickers)
	return out
}
