package datasource

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finchart/internal/analysis/fundamental"
	"github.com/seenimoa/finchart/internal/config"
)

// Collector fetches both sources for a symbol concurrently and turns the
// payloads into a pipeline input. A failing source is recorded on the input,
// never returned, so the pipeline decides what a failure means.
type Collector struct {
	income   Fetcher
	prices   Fetcher
	incomeDC Decoder
	priceDC  Decoder
	logger   zerolog.Logger
}

// NewCollector creates a collector over the given fetchers.
func NewCollector(income, prices Fetcher, incomeDC, priceDC Decoder, logger zerolog.Logger) *Collector {
	return &Collector{
		income:   income,
		prices:   prices,
		incomeDC: incomeDC,
		priceDC:  priceDC,
		logger:   logger,
	}
}

// NewCollectorFromConfig creates a collector over the HTTP sources in cfg.
func NewCollectorFromConfig(cfg config.SourcesConfig, logger zerolog.Logger) *Collector {
	income, prices := NewHTTPFetchers(cfg)
	incomeDC, priceDC := DecodersFromConfig(cfg)
	return NewCollector(income, prices, incomeDC, priceDC, logger)
}

// DecodersFromConfig returns the income and price decoders described by cfg.
func DecodersFromConfig(cfg config.SourcesConfig) (income, prices Decoder) {
	return Decoder{Path: cfg.IncomePath, Lenient: cfg.LenientJSON},
		Decoder{Path: cfg.PricePath, Lenient: cfg.LenientJSON}
}

// Collect fetches and decodes both sources for symbol.
func (c *Collector) Collect(ctx context.Context, symbol string) fundamental.Input {
	in := fundamental.Input{Symbol: symbol}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := c.income.Fetch(gctx, symbol)
		if err == nil {
			in.Reports, err = c.incomeDC.Reports(data)
		}
		if err != nil {
			c.warn(symbol, fundamental.SourceIncome, err)
			in.Reports, in.ReportsErr = nil, err
		}
		return nil // recorded on the input
	})

	g.Go(func() error {
		data, err := c.prices.Fetch(gctx, symbol)
		if err == nil {
			in.Prices, err = c.priceDC.Prices(data)
		}
		if err != nil {
			c.warn(symbol, fundamental.SourcePrice, err)
			in.Prices, in.PricesErr = nil, err
		}
		return nil
	})

	_ = g.Wait()
	return in
}

// Decode builds a pipeline input from payloads the caller already holds.
func (c *Collector) Decode(symbol string, income, prices []byte) fundamental.Input {
	in := fundamental.Input{Symbol: symbol}
	var err error
	if in.Reports, err = c.incomeDC.Reports(income); err != nil {
		c.warn(symbol, fundamental.SourceIncome, err)
		in.Reports, in.ReportsErr = nil, err
	}
	if in.Prices, err = c.priceDC.Prices(prices); err != nil {
		c.warn(symbol, fundamental.SourcePrice, err)
		in.Prices, in.PricesErr = nil, err
	}
	return in
}

func (c *Collector) warn(symbol, source string, err error) {
	c.logger.Warn().
		Str("symbol", symbol).
		Str("source", source).
		Err(err).
		Msg("source unavailable")
}
