package datasource

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/seenimoa/finchart/internal/analysis/fundamental"
	"github.com/seenimoa/finchart/internal/config"
	"github.com/seenimoa/finchart/pkg/models"
)

// stubFetcher returns a fixed payload or error.
type stubFetcher struct {
	name  string
	data  string
	err   error
	calls atomic.Int32
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(ctx context.Context, symbol string) ([]byte, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.data), nil
}

func newTestCollector(income, prices Fetcher, buf *bytes.Buffer) *Collector {
	return NewCollector(income, prices,
		Decoder{Path: "$.data"}, Decoder{Path: "$.prices"},
		zerolog.New(buf))
}

func TestCollectorCollect(t *testing.T) {
	income := &stubFetcher{name: "income", data: incomePayload}
	prices := &stubFetcher{name: "price", data: pricePayload}
	var logs bytes.Buffer

	in := newTestCollector(income, prices, &logs).Collect(context.Background(), "AAPL")

	if in.Symbol != "AAPL" {
		t.Errorf("Symbol: got %q", in.Symbol)
	}
	if in.ReportsErr != nil || in.PricesErr != nil {
		t.Fatalf("unexpected errors: %v / %v", in.ReportsErr, in.PricesErr)
	}
	if len(in.Reports) != 2 || len(in.Prices) != 2 {
		t.Errorf("got %d reports, %d prices", len(in.Reports), len(in.Prices))
	}
	if income.calls.Load() != 1 || prices.calls.Load() != 1 {
		t.Error("each source should be fetched exactly once")
	}
	if logs.Len() != 0 {
		t.Errorf("no warnings expected, got %s", logs.String())
	}
}

func TestCollectorRecordsFetchFailure(t *testing.T) {
	cause := errors.New("connection refused")
	income := &stubFetcher{name: "income", data: incomePayload}
	prices := &stubFetcher{name: "price", err: cause}
	var logs bytes.Buffer

	in := newTestCollector(income, prices, &logs).Collect(context.Background(), "AAPL")

	if !errors.Is(in.PricesErr, cause) {
		t.Errorf("PricesErr: got %v", in.PricesErr)
	}
	if in.Prices != nil {
		t.Error("failed source should carry no records")
	}
	if !strings.Contains(logs.String(), `"source":"price"`) {
		t.Errorf("expected a warning naming the price source, got %s", logs.String())
	}

	batch, err := fundamental.Run(in)
	if !errors.Is(err, fundamental.ErrSourceUnavailable) {
		t.Errorf("Run() error: got %v", err)
	}
	if !batch.IsEmpty() || batch.Status != models.StatusSourceUnavailable {
		t.Errorf("expected empty unavailable batch, got %+v", batch)
	}
}

func TestCollectorRecordsPayloadFailure(t *testing.T) {
	income := &stubFetcher{name: "income", data: `{"error": "Failed to fetch income statement"}`}
	prices := &stubFetcher{name: "price", data: `{"prices": "soon"}`}

	in := newTestCollector(income, prices, &bytes.Buffer{}).Collect(context.Background(), "AAPL")

	var perr *PayloadError
	if !errors.As(in.ReportsErr, &perr) {
		t.Errorf("ReportsErr: got %v", in.ReportsErr)
	}
	if !errors.Is(in.PricesErr, ErrNotArray) {
		t.Errorf("PricesErr: got %v", in.PricesErr)
	}
}

func TestCollectorDecode(t *testing.T) {
	c := newTestCollector(nil, nil, &bytes.Buffer{})

	in := c.Decode("MSFT", []byte(incomePayload), []byte(pricePayload))
	if in.ReportsErr != nil || in.PricesErr != nil {
		t.Fatalf("unexpected errors: %v / %v", in.ReportsErr, in.PricesErr)
	}
	if len(in.Reports) != 2 || len(in.Prices) != 2 {
		t.Errorf("got %d reports, %d prices", len(in.Reports), len(in.Prices))
	}

	in = c.Decode("MSFT", []byte(incomePayload), []byte(`not json`))
	if in.PricesErr == nil {
		t.Error("expected price decode error")
	}
}

func TestCollectorFromConfigEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/income", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(incomePayload))
	})
	mux.HandleFunc("/api/price", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pricePayload))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.SourcesConfig{
		IncomeURL:     srv.URL + "/api/income?ticker={symbol}",
		IncomePath:    "$.data",
		PriceURL:      srv.URL + "/api/price?ticker={symbol}",
		PricePath:     "$.prices",
		TimeoutSec:    5,
		RateLimit:     10,
		RateWindowSec: 1,
		MaxBodyBytes:  1 << 20,
	}
	c := NewCollectorFromConfig(cfg, zerolog.Nop())

	batch, err := fundamental.Run(c.Collect(context.Background(), "AAPL"))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	rev, _ := batch.Get(models.MetricRevenue)
	if rev.Len() != 2 {
		t.Fatalf("revenue: expected 2 points, got %d", rev.Len())
	}
	// Ascending after assembly.
	if rev.Points[0].Date.After(rev.Points[1].Date) {
		t.Error("revenue points not ascending")
	}
	price, _ := batch.Get(models.MetricPrice)
	if price.Len() != 2 {
		t.Errorf("price: expected 2 points, got %d", price.Len())
	}
}
