// Package tabular reads and writes the row-oriented CSV files the influence
// pipeline consumes and produces.
package tabular

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrSourceUnavailable is returned when the input cannot be opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedRecord marks a row that cannot be used (missing field or
	// unparsable score). Callers skip such rows and keep going.
	ErrMalformedRecord = errors.New("malformed record")
)

// Header is the ordered list of column names plus a lookup index.
type Header struct {
	Fields []string
	index  map[string]int
}

// NewHeader builds a header from column names. When a name repeats, the
// first occurrence wins.
func NewHeader(fields []string) *Header {
	h := &Header{
		Fields: append([]string(nil), fields...),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range h.Fields {
		if _, ok := h.index[f]; !ok {
			h.index[f] = i
		}
	}
	return h
}

// Index returns the column position of name.
func (h *Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Has reports whether all names are present.
func (h *Header) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := h.index[n]; !ok {
			return false
		}
	}
	return true
}

// Row is one data line. Values are aligned with Header.Fields.
type Row struct {
	Header *Header
	Values []string
}

// Get returns the value of the named field. Short rows report the field as absent.
func (r Row) Get(name string) (string, bool) {
	if r.Header == nil {
		return "", false
	}
	i, ok := r.Header.Index(name)
	if !ok || i >= len(r.Values) {
		return "", false
	}
	return r.Values[i], true
}

// Map copies the row into a field-name keyed map.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.Values))
	if r.Header == nil {
		return m
	}
	for i, f := range r.Header.Fields {
		if i < len(r.Values) {
			m[f] = r.Values[i]
		}
	}
	return m
}

// Float parses the named field as a finite float64. Surrounding whitespace
// is ignored.
func (r Row) Float(name string) (float64, error) {
	raw, ok := r.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", ErrMalformedRecord, name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrMalformedRecord, name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: field %q is not finite", ErrMalformedRecord, name)
	}
	return v, nil
}
