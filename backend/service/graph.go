package service

import (
	"fmt"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/influence-graph-service/backend/models"
	"github.com/gilchrisn/influence-graph-service/pkg/dehair"
	"github.com/gilchrisn/influence-graph-service/pkg/validation"
)

// GraphOptions configures a GraphService.
type GraphOptions struct {
	MaxIterations int
	ScoreField    string
	CacheSize     int
}

type cacheKey struct {
	path     string
	modTime  time.Time
	size     int64
	dehair   bool
	maxEdges int
}

// GraphService builds and reduces graphs from datasets. Results are cached
// per dataset version and request parameters; every computation works on
// its own graph.
type GraphService struct {
	datasets *DatasetService
	opts     GraphOptions
	cache    *lru.Cache[cacheKey, *models.GraphPayload]
}

// NewGraphService creates a graph service.
func NewGraphService(datasets *DatasetService, opts GraphOptions) (*GraphService, error) {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = dehair.DefaultMaxIterations
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}

	cache, err := lru.New[cacheKey, *models.GraphPayload](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph cache: %w", err)
	}

	return &GraphService{
		datasets: datasets,
		opts:     opts,
		cache:    cache,
	}, nil
}

// Graph returns the graph payload for req.
func (s *GraphService) Graph(req models.GraphRequest) (*models.GraphPayload, error) {
	dataset, err := s.datasets.Resolve(req.Dataset)
	if err != nil {
		return nil, err
	}

	key, err := s.keyFor(dataset, req)
	if err != nil {
		return nil, err
	}
	if payload, ok := s.cache.Get(key); ok {
		log.Debug().
			Str("dataset", dataset.Filename).
			Bool("dehair", req.Dehair).
			Msg("Graph served from cache")
		return payload, nil
	}

	start := time.Now()
	inf, err := s.load(dataset, req.MaxEdges)
	if err != nil {
		return nil, err
	}

	result, err := dehair.Reduce(inf.Edges, s.reduceOptions(dataset.Filename, req.Dehair))
	if err != nil {
		return nil, err
	}
	if err := validation.ValidatePruned(result); err != nil {
		log.Error().
			Str("dataset", dataset.Filename).
			Err(err).
			Msg("Reduced graph failed validation")
	}

	payload := &models.GraphPayload{
		Nodes: result.Graph.Nodes,
		Links: result.Graph.Links,
		Stats: result.Stats,
		DatasetInfo: models.DatasetInfo{
			Filename:    dataset.Filename,
			DisplayName: dataset.DisplayName,
		},
	}
	if inf.TestEdge != nil {
		payload.PredictionInfo = &models.PredictionInfo{
			TestEdge:        inf.TestEdge,
			TotalInfluences: inf.Rows,
		}
	}

	log.Info().
		Str("dataset", dataset.Filename).
		Bool("dehair", req.Dehair).
		Int("max_edges", req.MaxEdges).
		Int("original_nodes", result.Stats.OriginalNodes).
		Int("filtered_nodes", result.Stats.FilteredNodes).
		Int("removed_nodes", result.Stats.RemovedNodes).
		Int("iterations", result.Stats.Iterations).
		Bool("capped", result.Stats.Capped).
		Int("skipped_rows", inf.Skipped).
		Dur("duration", time.Since(start)).
		Msg("Graph built")

	s.cache.Add(key, payload)
	return payload, nil
}

// Stats counts rows and distinct test/train edges in a dataset.
func (s *GraphService) Stats(name string) (*models.DatasetStats, error) {
	dataset, err := s.datasets.Resolve(name)
	if err != nil {
		return nil, err
	}
	inf, err := s.load(dataset, 0)
	if err != nil {
		return nil, err
	}
	return &models.DatasetStats{
		TotalRows:   inf.Rows,
		SkippedRows: inf.Skipped,
		TestEdges:   inf.UniqueTestEdges,
		TrainEdges:  inf.UniqueTrainEdges,
	}, nil
}

// Core de-hairs a dataset and ranks the surviving nodes.
func (s *GraphService) Core(name string, maxEdges int) (*models.CoreSummary, error) {
	dataset, err := s.datasets.Resolve(name)
	if err != nil {
		return nil, err
	}
	inf, err := s.load(dataset, maxEdges)
	if err != nil {
		return nil, err
	}

	result, err := dehair.Reduce(inf.Edges, s.reduceOptions(dataset.Filename, true))
	if err != nil {
		return nil, err
	}

	ranking, err := dehair.NewRankCalculator().Rank(result.Graph)
	if err != nil {
		return nil, err
	}

	return &models.CoreSummary{
		DatasetInfo: models.DatasetInfo{
			Filename:    dataset.Filename,
			DisplayName: dataset.DisplayName,
		},
		Stats:      result.Stats,
		Components: dehair.Components(result.Graph),
		Ranking:    ranking,
	}, nil
}

func (s *GraphService) load(dataset models.Dataset, maxEdges int) (*dehair.Influences, error) {
	inf, err := dehair.LoadInfluencesFile(dataset.Path, dehair.LoadOptions{
		MaxRows:    maxEdges,
		ScoreField: s.opts.ScoreField,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", dataset.Filename, err)
	}
	if inf.Skipped > 0 {
		log.Warn().
			Str("dataset", dataset.Filename).
			Int("skipped_rows", inf.Skipped).
			Msg("Skipped malformed rows")
	}
	return inf, nil
}

func (s *GraphService) reduceOptions(dataset string, dehairOn bool) dehair.Options {
	logger := log.With().Str("dataset", dataset).Logger()
	return dehair.Options{
		Dehair:        dehairOn,
		MaxIterations: s.opts.MaxIterations,
		Logger:        &logger,
	}
}

func (s *GraphService) keyFor(dataset models.Dataset, req models.GraphRequest) (cacheKey, error) {
	info, err := os.Stat(dataset.Path)
	if err != nil {
		return cacheKey{}, fmt.Errorf("failed to stat dataset %s: %w", dataset.Filename, err)
	}
	return cacheKey{
		path:     dataset.Path,
		modTime:  info.ModTime(),
		size:     info.Size(),
		dehair:   req.Dehair,
		maxEdges: req.MaxEdges,
	}, nil
}
