package fundamental

import (
	"errors"
	"fmt"

	"github.com/seenimoa/finchart/pkg/models"
)

// Source names used in SourceUnavailableError.
const (
	SourceIncome = "income"
	SourcePrice  = "price"
)

// ErrSourceUnavailable matches any SourceUnavailableError via errors.Is.
var ErrSourceUnavailable = errors.New("source unavailable")

// SourceUnavailableError reports that a collaborator signalled an error or
// returned a payload without a record array.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s source unavailable", e.Source)
	}
	return fmt.Sprintf("%s source unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSourceUnavailable) hold for every source.
func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// Input is one batch of raw collaborator output for a single symbol.
// ReportsErr and PricesErr are set by the caller when the corresponding
// source failed; the records of a failed source are ignored.
type Input struct {
	Symbol     string
	Reports    []models.RawReport
	Prices     []models.RawPriceQuote
	ReportsErr error
	PricesErr  error
}

// Run executes the pipeline for one input batch.
//
// If either source failed, Run returns an empty batch with status
// source_unavailable together with the source error(s); the other source's
// records are not used. Otherwise it normalizes, derives and assembles, and
// the error is nil. Malformed fields never cause an error.
func Run(in Input) (*models.MetricBatch, error) {
	var errs []error
	if in.ReportsErr != nil {
		errs = append(errs, &SourceUnavailableError{Source: SourceIncome, Err: in.ReportsErr})
	}
	if in.PricesErr != nil {
		errs = append(errs, &SourceUnavailableError{Source: SourcePrice, Err: in.PricesErr})
	}
	if len(errs) > 0 {
		return models.EmptyBatch(in.Symbol, models.StatusSourceUnavailable), errors.Join(errs...)
	}

	reports, prices := Normalize(in.Reports, in.Prices)
	derived := DeriveAll(reports)
	return Assemble(in.Symbol, reports, derived, prices), nil
}
