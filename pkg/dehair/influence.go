package dehair

import (
	"errors"
	"fmt"
	"io"

	"github.com/gilchrisn/influence-graph-service/pkg/tabular"
)

// Influence table columns.
const (
	ColScore          = "TracInScore"
	ColTestHead       = "TestHead"
	ColTestHeadLabel  = "TestHead_label"
	ColTestRel        = "TestRel"
	ColTestRelLabel   = "TestRel_label"
	ColTestTail       = "TestTail"
	ColTestTailLabel  = "TestTail_label"
	ColTrainHead      = "TrainHead"
	ColTrainHeadLabel = "TrainHead_label"
	ColTrainRel       = "TrainRel"
	ColTrainRelLabel  = "TrainRel_label"
	ColTrainTail      = "TrainTail"
	ColTrainTailLabel = "TrainTail_label"
)

// RequiredColumns lists every column a row must carry to become an edge.
var RequiredColumns = []string{
	ColTestHead, ColTestHeadLabel, ColTestRel, ColTestRelLabel, ColTestTail, ColTestTailLabel,
	ColTrainHead, ColTrainHeadLabel, ColTrainRel, ColTrainRelLabel, ColTrainTail, ColTrainTailLabel,
}

// TestEdge describes the prediction the influence scores were computed for.
type TestEdge struct {
	Head      string `json:"head"`
	HeadLabel string `json:"head_label"`
	Tail      string `json:"tail"`
	TailLabel string `json:"tail_label"`
	Relation  string `json:"relation"`
}

type triple struct {
	head, rel, tail string
}

// Influences is the edge set extracted from an influence table.
type Influences struct {
	Edges []Edge
	// TestEdge is taken from the first usable row.
	TestEdge *TestEdge
	// Rows counts rows read, Skipped those that could not be used.
	Rows    int
	Skipped int
	// UniqueTestEdges and UniqueTrainEdges count distinct (head, rel, tail) triples.
	UniqueTestEdges  int
	UniqueTrainEdges int
}

// LoadOptions controls LoadInfluences.
type LoadOptions struct {
	// MaxRows stops reading after this many rows. Zero means no limit.
	MaxRows    int
	ScoreField string
}

// LoadInfluences turns each row of src into a train edge. An endpoint is a
// test entity when its key equals the row's TestHead or TestTail. Rows with
// missing fields or an unparsable score are skipped and counted.
func LoadInfluences(src tabular.Source, opts LoadOptions) (*Influences, error) {
	field := opts.ScoreField
	if field == "" {
		field = ColScore
	}

	inf := &Influences{Edges: make([]Edge, 0)}
	tests := make(map[triple]struct{})
	trains := make(map[triple]struct{})

	for opts.MaxRows <= 0 || inf.Rows < opts.MaxRows {
		row, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, tabular.ErrMalformedRecord) {
				inf.Rows++
				inf.Skipped++
				continue
			}
			return nil, err
		}
		inf.Rows++

		edge, test, err := edgeFromRow(row, field)
		if err != nil {
			inf.Skipped++
			continue
		}

		if inf.TestEdge == nil {
			inf.TestEdge = test
		}
		tests[triple{test.Head, mustGet(row, ColTestRel), test.Tail}] = struct{}{}
		trains[triple{edge.Source, mustGet(row, ColTrainRel), edge.Target}] = struct{}{}
		inf.Edges = append(inf.Edges, edge)
	}

	inf.UniqueTestEdges = len(tests)
	inf.UniqueTrainEdges = len(trains)
	return inf, nil
}

// LoadInfluencesFile opens path and runs LoadInfluences over it.
func LoadInfluencesFile(path string, opts LoadOptions) (*Influences, error) {
	r, err := tabular.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return LoadInfluences(r, opts)
}

func edgeFromRow(row tabular.Row, scoreField string) (Edge, *TestEdge, error) {
	for _, col := range RequiredColumns {
		if _, ok := row.Get(col); !ok {
			return Edge{}, nil, fmt.Errorf("%w: missing field %q", tabular.ErrMalformedRecord, col)
		}
	}
	score, err := row.Float(scoreField)
	if err != nil {
		return Edge{}, nil, err
	}

	test := &TestEdge{
		Head:      mustGet(row, ColTestHead),
		HeadLabel: mustGet(row, ColTestHeadLabel),
		Tail:      mustGet(row, ColTestTail),
		TailLabel: mustGet(row, ColTestTailLabel),
		Relation:  mustGet(row, ColTestRelLabel),
	}

	roleOf := func(key string) Role {
		if key == test.Head || key == test.Tail {
			return RoleTest
		}
		return RoleTrain
	}

	head := mustGet(row, ColTrainHead)
	tail := mustGet(row, ColTrainTail)
	return Edge{
		Source:      head,
		SourceLabel: mustGet(row, ColTrainHeadLabel),
		SourceRole:  roleOf(head),
		Target:      tail,
		TargetLabel: mustGet(row, ColTrainTailLabel),
		TargetRole:  roleOf(tail),
		Relation:    mustGet(row, ColTrainRelLabel),
		Score:       score,
	}, test, nil
}

func mustGet(row tabular.Row, name string) string {
	v, _ := row.Get(name)
	return v
}
