package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/influence-graph-service/backend/models"
	"github.com/gilchrisn/influence-graph-service/pkg/dehair"
)

const header = "TestHead,TestHead_label,TestRel,TestRel_label,TestTail,TestTail_label," +
	"TrainHead,TrainHead_label,TrainRel,TrainRel_label,TrainTail,TrainTail_label,TracInScore\n"

func row(head, tail, score string) string {
	return "T:1,test head,r:1,treats,T:2,test tail," +
		head + "," + head + " label,r:2,interacts_with," +
		tail + "," + tail + " label," + score + "\n"
}

// writeDataset writes a triangle A-B-C with a two-node tail C-D-E.
func writeDataset(t *testing.T, dir, name string) string {
	t.Helper()
	content := header +
		row("A", "B", "0.9") +
		row("B", "C", "0.8") +
		row("C", "A", "0.7") +
		row("C", "D", "0.6") +
		row("D", "E", "0.5")
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newGraphService(t *testing.T, dir string) *GraphService {
	t.Helper()
	svc, err := NewGraphService(NewDatasetService(dir), GraphOptions{MaxIterations: 100, CacheSize: 4})
	require.NoError(t, err)
	return svc
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"top_100_results.csv":     "Top 100 Results",
		"influence_SCORES.csv":    "Influence Scores",
		"edge1treats.csv":         "Edge1Treats",
		"already Spaced name.csv": "Already Spaced Name",
	}
	for in, want := range tests {
		assert.Equal(t, want, DisplayName(in), in)
	}
}

func TestDatasetService_ListAndResolve(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "zeta_run.csv")
	writeDataset(t, dir, "alpha_run.csv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0755))

	svc := NewDatasetService(dir)
	datasets, err := svc.List()
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "alpha_run.csv", datasets[0].Filename)
	assert.Equal(t, "Alpha Run", datasets[0].DisplayName)

	first, err := svc.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "alpha_run.csv", first.Filename)

	_, err = svc.Resolve("../secret.csv")
	assert.True(t, errors.Is(err, ErrDatasetNotFound))
}

func TestDatasetService_Empty(t *testing.T) {
	svc := NewDatasetService(filepath.Join(t.TempDir(), "missing"))

	datasets, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, datasets)

	_, err = svc.Resolve("")
	assert.True(t, errors.Is(err, ErrNoDatasets))
}

func TestGraphService_RawAndDehaired(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "run.csv")
	svc := newGraphService(t, dir)

	raw, err := svc.Graph(models.GraphRequest{Dataset: "run.csv"})
	require.NoError(t, err)
	assert.Len(t, raw.Nodes, 5)
	assert.Len(t, raw.Links, 5)
	assert.False(t, raw.Stats.Dehaired)
	assert.Equal(t, 0, raw.Stats.RemovedNodes)

	require.NotNil(t, raw.PredictionInfo)
	assert.Equal(t, "T:1", raw.PredictionInfo.TestEdge.Head)
	assert.Equal(t, "treats", raw.PredictionInfo.TestEdge.Relation)
	assert.Equal(t, 5, raw.PredictionInfo.TotalInfluences)
	assert.Equal(t, "Run", raw.DatasetInfo.DisplayName)

	core, err := svc.Graph(models.GraphRequest{Dataset: "run.csv", Dehair: true})
	require.NoError(t, err)
	assert.Len(t, core.Nodes, 3)
	assert.Len(t, core.Links, 3)
	assert.Equal(t, dehair.Stats{
		OriginalNodes: 5, OriginalLinks: 5,
		FilteredNodes: 3, FilteredLinks: 3,
		RemovedNodes: 2, RemovedLinks: 2,
		Dehaired: true, Iterations: 2,
	}, core.Stats)
}

func TestGraphService_MaxEdgesAndCache(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, "run.csv")
	svc := newGraphService(t, dir)

	limited, err := svc.Graph(models.GraphRequest{Dataset: "run.csv", MaxEdges: 2})
	require.NoError(t, err)
	assert.Len(t, limited.Links, 2)

	again, err := svc.Graph(models.GraphRequest{Dataset: "run.csv", MaxEdges: 2})
	require.NoError(t, err)
	assert.Same(t, limited, again)

	// rewriting the file invalidates the cached entry
	require.NoError(t, os.WriteFile(path, []byte(header+row("X", "Y", "1")), 0644))
	fresh, err := svc.Graph(models.GraphRequest{Dataset: "run.csv", MaxEdges: 2})
	require.NoError(t, err)
	assert.Len(t, fresh.Links, 1)
}

func TestGraphService_Stats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.csv")
	content := header + row("A", "B", "1") + row("A", "B", "2") + row("B", "C", "bad")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	stats, err := newGraphService(t, dir).Stats("run.csv")
	require.NoError(t, err)
	assert.Equal(t, models.DatasetStats{TotalRows: 3, SkippedRows: 1, TestEdges: 1, TrainEdges: 1}, *stats)
}

func TestGraphService_TotalInfluencesCountsEveryRow(t *testing.T) {
	dir := t.TempDir()
	content := header + row("A", "B", "1") + row("B", "C", "bad")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.csv"), []byte(content), 0644))

	payload, err := newGraphService(t, dir).Graph(models.GraphRequest{Dataset: "run.csv"})
	require.NoError(t, err)
	require.NotNil(t, payload.PredictionInfo)
	assert.Equal(t, 2, payload.PredictionInfo.TotalInfluences)
	assert.Len(t, payload.Links, 1)
}

func TestGraphService_Core(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "run.csv")

	core, err := newGraphService(t, dir).Core("run.csv", 0)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"A", "B", "C"}}, core.Components)
	require.Len(t, core.Ranking, 3)
	assert.True(t, core.Stats.Dehaired)
}

func TestGraphService_UnknownDataset(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "run.csv")

	_, err := newGraphService(t, dir).Graph(models.GraphRequest{Dataset: "other.csv"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatasetNotFound))
	assert.True(t, strings.Contains(err.Error(), "other.csv"))
}
