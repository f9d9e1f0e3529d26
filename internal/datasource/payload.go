package datasource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/seenimoa/finchart/pkg/models"
)

// ErrNotArray is returned when the configured path does not resolve to a
// JSON array of records.
var ErrNotArray = errors.New("payload has no record array")

// errorKeys are the top-level keys a source uses to report a failure in an
// otherwise well-formed payload.
var errorKeys = []string{"error", "Error Message"}

// noticeKeys carry advisory text. They fail the payload only when no record
// array accompanies them.
var noticeKeys = []string{"Note", "Information"}

// PayloadError is a failure reported inside the payload itself.
type PayloadError struct {
	Key     string
	Message string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("source reported %s: %s", e.Key, e.Message)
}

// Decoder extracts the record array from a source payload.
type Decoder struct {
	// Path is a JSONPath expression selecting the record array ("$" for a
	// bare top-level array).
	Path string
	// Lenient repairs malformed JSON before giving up.
	Lenient bool
}

// Records decodes data and returns the elements of the record array. Elements
// that are not JSON objects come back as empty maps.
func (d Decoder) Records(data []byte) ([]map[string]any, error) {
	doc, err := decodeJSON(data)
	if err != nil && d.Lenient {
		repaired, rerr := jsonrepair.RepairJSON(string(data))
		if rerr != nil {
			return nil, fmt.Errorf("decode payload: %w", errors.Join(err, rerr))
		}
		doc, err = decodeJSON([]byte(repaired))
	}
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	if perr := reportedError(doc, errorKeys); perr != nil {
		return nil, perr
	}

	path := d.Path
	if path == "" {
		path = "$"
	}
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		if perr := reportedError(doc, noticeKeys); perr != nil {
			return nil, perr
		}
		return nil, fmt.Errorf("%w at %s: %v", ErrNotArray, path, err)
	}
	// Filter and wildcard expressions wrap their match in a one-element list.
	if wrapped, ok := val.([]any); ok && len(wrapped) == 1 {
		if inner, ok := wrapped[0].([]any); ok {
			val = inner
		}
	}
	list, ok := val.([]any)
	if !ok {
		if perr := reportedError(doc, noticeKeys); perr != nil {
			return nil, perr
		}
		return nil, fmt.Errorf("%w at %s: got %T", ErrNotArray, path, val)
	}

	records := make([]map[string]any, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		records[i] = m
	}
	return records, nil
}

// Reports decodes an income statement payload.
func (d Decoder) Reports(data []byte) ([]models.RawReport, error) {
	records, err := d.Records(data)
	if err != nil {
		return nil, err
	}
	out := make([]models.RawReport, len(records))
	for i, m := range records {
		out[i] = models.RawReportFromMap(m)
	}
	return out, nil
}

// Prices decodes a price history payload.
func (d Decoder) Prices(data []byte) ([]models.RawPriceQuote, error) {
	records, err := d.Records(data)
	if err != nil {
		return nil, err
	}
	out := make([]models.RawPriceQuote, len(records))
	for i, m := range records {
		out[i] = models.RawPriceQuoteFromMap(m)
	}
	return out, nil
}

// decodeJSON parses a single JSON document, keeping numbers as json.Number.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON document")
	}
	return doc, nil
}

func reportedError(doc any, keys []string) error {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range keys {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		msg := fmt.Sprint(v)
		if s, ok := v.(string); ok {
			msg = s
		}
		if msg == "" || v == false {
			continue
		}
		return &PayloadError{Key: key, Message: msg}
	}
	return nil
}
