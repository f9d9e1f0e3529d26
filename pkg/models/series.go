// Package models defines the core data structures used throughout finchart.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// DateLayout is the calendar-day format used on the wire.
const DateLayout = "2006-01-02"

// MetricName identifies one output series.
type MetricName string

const (
	MetricRevenue         MetricName = "revenue"
	MetricNetIncome       MetricName = "netIncome"
	MetricOperatingMargin MetricName = "operatingMargin"
	MetricEPS             MetricName = "eps"
	MetricPER             MetricName = "per"
	MetricPBR             MetricName = "pbr"
	MetricROE             MetricName = "roe"
	MetricDebtRatio       MetricName = "debtRatio"
	MetricPrice           MetricName = "price"
)

// AllMetrics lists every supported metric in display order.
func AllMetrics() []MetricName {
	return []MetricName{
		MetricPrice,
		MetricRevenue,
		MetricNetIncome,
		MetricOperatingMargin,
		MetricEPS,
		MetricPER,
		MetricPBR,
		MetricROE,
		MetricDebtRatio,
	}
}

// IsValid reports whether m is a supported metric.
func (m MetricName) IsValid() bool {
	for _, name := range AllMetrics() {
		if name == m {
			return true
		}
	}
	return false
}

// ParseMetricNames converts user-supplied names into metric names. Entries
// may be comma-separated; blanks are skipped and duplicates collapsed.
func ParseMetricNames(values ...string) ([]MetricName, error) {
	var out []MetricName
	seen := make(map[MetricName]bool)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			name := MetricName(strings.TrimSpace(part))
			if name == "" || seen[name] {
				continue
			}
			if !name.IsValid() {
				return nil, fmt.Errorf("unknown metric %q", name)
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

// IsPercent reports whether the metric is expressed in percent.
func (m MetricName) IsPercent() bool {
	switch m {
	case MetricOperatingMargin, MetricROE, MetricDebtRatio:
		return true
	}
	return false
}

// MetricPoint is one {date, value} pair. An invalid Value is a gap.
type MetricPoint struct {
	Date  time.Time
	Value null.Float
}

type metricPointJSON struct {
	Date  string     `json:"date"`
	Value null.Float `json:"value"`
}

// MarshalJSON encodes the point as {"date":"YYYY-MM-DD","value":n|null}.
func (p MetricPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricPointJSON{
		Date:  p.Date.Format(DateLayout),
		Value: p.Value,
	})
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (p *MetricPoint) UnmarshalJSON(data []byte) error {
	var raw metricPointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("metric point date %q: %w", raw.Date, err)
	}
	p.Date = d
	p.Value = raw.Value
	return nil
}

// MetricSeries is a named, date-ascending sequence of points.
type MetricSeries struct {
	Name   MetricName    `json:"name"`
	Points []MetricPoint `json:"points"`
}

// Len returns the number of points, gaps included.
func (s MetricSeries) Len() int { return len(s.Points) }

// Present returns the number of points carrying a value.
func (s MetricSeries) Present() int {
	n := 0
	for _, p := range s.Points {
		if p.Value.Valid {
			n++
		}
	}
	return n
}

// Latest returns the most recent point with a value.
func (s MetricSeries) Latest() (MetricPoint, bool) {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Value.Valid {
			return s.Points[i], true
		}
	}
	return MetricPoint{}, false
}

// BatchStatus reports how a batch was produced.
type BatchStatus string

const (
	StatusOK                BatchStatus = "ok"
	StatusSourceUnavailable BatchStatus = "source_unavailable"
)

// MetricBatch is the pipeline output for one symbol. It is built once per
// invocation and must not be modified after it is returned; use Get for a copy.
type MetricBatch struct {
	Symbol string                      `json:"symbol"`
	Status BatchStatus                 `json:"status"`
	Series map[MetricName]MetricSeries `json:"series"`
}

// EmptyBatch returns a batch with no series.
func EmptyBatch(symbol string, status BatchStatus) *MetricBatch {
	return &MetricBatch{
		Symbol: symbol,
		Status: status,
		Series: map[MetricName]MetricSeries{},
	}
}

// Get returns a copy of the named series.
func (b *MetricBatch) Get(name MetricName) (MetricSeries, bool) {
	if b == nil {
		return MetricSeries{}, false
	}
	s, ok := b.Series[name]
	if !ok {
		return MetricSeries{}, false
	}
	points := make([]MetricPoint, len(s.Points))
	copy(points, s.Points)
	return MetricSeries{Name: s.Name, Points: points}, true
}

// IsEmpty reports whether the batch holds no series at all.
func (b *MetricBatch) IsEmpty() bool {
	return b == nil || len(b.Series) == 0
}

// Select returns a new batch holding only the named series.
func (b *MetricBatch) Select(names ...MetricName) *MetricBatch {
	out := EmptyBatch(b.Symbol, b.Status)
	for _, name := range names {
		if s, ok := b.Get(name); ok {
			out.Series[name] = s
		}
	}
	return out
}
