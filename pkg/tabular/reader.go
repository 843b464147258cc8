package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source yields rows one at a time. Next returns io.EOF once exhausted.
type Source interface {
	Header() *Header
	Next() (Row, error)
}

// Reader is a Source over CSV text with a header line.
type Reader struct {
	csv    *csv.Reader
	header *Header
	closer io.Closer
	line   int
}

// NewReader wraps r. The header line is consumed immediately.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	fields, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input, no header", ErrSourceUnavailable)
		}
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrSourceUnavailable, err)
	}
	if len(fields) > 0 {
		fields[0] = strings.TrimPrefix(fields[0], "\ufeff")
	}

	return &Reader{csv: cr, header: NewHeader(fields), line: 1}, nil
}

// Open opens a CSV file for sequential reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

func (r *Reader) Header() *Header { return r.header }

// Next returns the next row. Rows the CSV parser rejects are reported as
// ErrMalformedRecord so callers can skip them; any other failure is
// ErrSourceUnavailable.
func (r *Reader) Next() (Row, error) {
	values, err := r.csv.Read()
	r.line++
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return Row{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, r.line, err)
		}
		return Row{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return Row{Header: r.header, Values: values}, nil
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
