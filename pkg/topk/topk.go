// Package topk selects the K highest-scoring rows from a streamed source
// while holding only K rows in memory.
package topk

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/influence-graph-service/pkg/tabular"
)

// DefaultScoreField is the influence score column.
const DefaultScoreField = "TracInScore"

// ErrInvalidArgument is returned for a non-positive K.
var ErrInvalidArgument = errors.New("invalid argument")

// Options tunes Select.
type Options struct {
	ScoreField string
	Logger     *zerolog.Logger
}

// Result holds the selected rows and counters describing the pass.
type Result struct {
	Header   *tabular.Header
	Records  []Scored
	Valid    int64
	Invalid  int64
	Replaced int64
}

// Rows returns the selected rows in output order.
func (r *Result) Rows() []tabular.Row {
	rows := make([]tabular.Row, len(r.Records))
	for i, rec := range r.Records {
		rows[i] = rec.Row
	}
	return rows
}

// Select consumes src and returns the k rows with the highest valid scores,
// sorted descending. Rows with a missing or unparsable score are counted
// in Result.Invalid and skipped.
func Select(src tabular.Source, k int, opts Options) (*Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be a positive integer, got %d", ErrInvalidArgument, k)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", tabular.ErrSourceUnavailable)
	}
	field := opts.ScoreField
	if field == "" {
		field = DefaultScoreField
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	h := NewHeap(k)
	res := &Result{Header: src.Header()}
	var seq int64

	for {
		row, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, tabular.ErrMalformedRecord) {
				res.Invalid++
				continue
			}
			return nil, err
		}

		score, err := row.Float(field)
		if err != nil {
			res.Invalid++
			continue
		}

		res.Valid++
		seq++
		full := h.Len() == k
		if h.Offer(Scored{Score: score, Seq: seq, Row: row}) && full {
			res.Replaced++
		}
	}

	res.Records = h.Drain()

	logger.Debug().
		Int("k", k).
		Int64("valid", res.Valid).
		Int64("invalid", res.Invalid).
		Int64("replaced", res.Replaced).
		Int("selected", len(res.Records)).
		Msg("Top-k selection complete")

	return res, nil
}

// SelectFile opens path and runs Select over it.
func SelectFile(path string, k int, opts Options) (*Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be a positive integer, got %d", ErrInvalidArgument, k)
	}
	r, err := tabular.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return Select(r, k, opts)
}
