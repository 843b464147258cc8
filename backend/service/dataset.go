package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/influence-graph-service/backend/models"
)

var (
	// ErrDatasetNotFound is returned for an unknown dataset filename.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrNoDatasets is returned when the data directory holds no CSV files.
	ErrNoDatasets = errors.New("no data files found")
)

// DatasetService lists the filtered influence tables in a directory.
type DatasetService struct {
	dir string
}

// NewDatasetService creates a dataset service rooted at dir.
func NewDatasetService(dir string) *DatasetService {
	return &DatasetService{dir: dir}
}

// Dir returns the directory datasets are read from.
func (s *DatasetService) Dir() string { return s.dir }

// List returns every CSV file in the directory, sorted by display name. A
// missing directory yields an empty list.
func (s *DatasetService) List() ([]models.Dataset, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("dir", s.dir).Msg("Dataset directory does not exist")
			return []models.Dataset{}, nil
		}
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	datasets := make([]models.Dataset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		datasets = append(datasets, models.Dataset{
			Filename:    entry.Name(),
			DisplayName: DisplayName(entry.Name()),
			Path:        filepath.Join(s.dir, entry.Name()),
		})
	}

	sort.SliceStable(datasets, func(i, j int) bool {
		return datasets[i].DisplayName < datasets[j].DisplayName
	})
	return datasets, nil
}

// Resolve finds a dataset by filename. An empty name selects the first
// dataset in listing order.
func (s *DatasetService) Resolve(name string) (models.Dataset, error) {
	datasets, err := s.List()
	if err != nil {
		return models.Dataset{}, err
	}
	if len(datasets) == 0 {
		return models.Dataset{}, ErrNoDatasets
	}
	if name == "" {
		return datasets[0], nil
	}
	for _, d := range datasets {
		if d.Filename == name {
			return d, nil
		}
	}
	return models.Dataset{}, fmt.Errorf("%w: %q", ErrDatasetNotFound, name)
}

// DisplayName turns "top_100_results.csv" into "Top 100 Results".
func DisplayName(filename string) string {
	name := strings.ReplaceAll(strings.TrimSuffix(filename, ".csv"), "_", " ")

	var b strings.Builder
	prevLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
