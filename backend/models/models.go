package models

import (
	"github.com/gilchrisn/influence-graph-service/pkg/dehair"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Dataset is a filtered influence table available for visualisation.
type Dataset struct {
	Filename    string `json:"filename"`
	DisplayName string `json:"display_name"`
	Path        string `json:"path"`
}

// DatasetInfo identifies the dataset a graph was built from.
type DatasetInfo struct {
	Filename    string `json:"filename"`
	DisplayName string `json:"display_name"`
}

// PredictionInfo describes the test edge the influences explain.
// TotalInfluences counts every row read, usable or not.
type PredictionInfo struct {
	TestEdge        *dehair.TestEdge `json:"test_edge"`
	TotalInfluences int              `json:"total_influences"`
}

// GraphPayload is the renderer-facing graph.
type GraphPayload struct {
	Nodes          []dehair.Node   `json:"nodes"`
	Links          []dehair.Link   `json:"links"`
	Stats          dehair.Stats    `json:"stats"`
	PredictionInfo *PredictionInfo `json:"prediction_info"`
	DatasetInfo    DatasetInfo     `json:"dataset_info"`
}

// GraphRequest selects a dataset and how to reduce it.
type GraphRequest struct {
	Dataset  string
	Dehair   bool
	MaxEdges int
}

// DatasetStats counts rows and distinct edges in a dataset. TotalRows
// includes skipped rows.
type DatasetStats struct {
	TotalRows   int `json:"total_rows"`
	SkippedRows int `json:"skipped_rows"`
	TestEdges   int `json:"test_edges"`
	TrainEdges  int `json:"train_edges"`
}

// CoreSummary describes the de-haired core of a dataset.
type CoreSummary struct {
	DatasetInfo DatasetInfo       `json:"dataset_info"`
	Stats       dehair.Stats      `json:"stats"`
	Components  [][]string        `json:"components"`
	Ranking     []dehair.NodeRank `json:"ranking"`
}
