package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/influence-graph-service/backend/models"
	"github.com/gilchrisn/influence-graph-service/backend/service"
	"github.com/gilchrisn/influence-graph-service/backend/utils"
	"github.com/gilchrisn/influence-graph-service/pkg/dehair"
)

// Handlers contains HTTP request handlers
type Handlers struct {
	datasetService *service.DatasetService
	graphService   *service.GraphService
}

// NewHandlers creates new API handlers
func NewHandlers(datasetService *service.DatasetService, graphService *service.GraphService) *Handlers {
	return &Handlers{
		datasetService: datasetService,
		graphService:   graphService,
	}
}

// ListDatasets lists the available influence tables
func (h *Handlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.datasetService.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list datasets")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to list datasets", err)
		return
	}
	utils.WriteSuccessResponse(w, "Datasets retrieved successfully", datasets)
}

// GetGraph returns the (optionally de-haired) graph of a dataset
func (h *Handlers) GetGraph(w http.ResponseWriter, r *http.Request) {
	datasetID := mux.Vars(r)["datasetId"]

	maxEdges, err := utils.QueryInt(r, "max_edges", 0)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid max_edges parameter", err)
		return
	}

	req := models.GraphRequest{
		Dataset:  datasetID,
		Dehair:   utils.QueryBool(r, "dehair"),
		MaxEdges: maxEdges,
	}

	payload, err := h.graphService.Graph(req)
	if err != nil {
		h.writeServiceError(w, err, datasetID, "Failed to build graph")
		return
	}

	utils.WriteSuccessResponse(w, "Graph retrieved successfully", payload)
}

// GetDatasetStats returns row and edge counts of a dataset
func (h *Handlers) GetDatasetStats(w http.ResponseWriter, r *http.Request) {
	datasetID := mux.Vars(r)["datasetId"]

	stats, err := h.graphService.Stats(datasetID)
	if err != nil {
		h.writeServiceError(w, err, datasetID, "Failed to compute dataset statistics")
		return
	}

	utils.WriteSuccessResponse(w, "Dataset statistics retrieved successfully", stats)
}

// GetCore returns the ranked de-haired core of a dataset
func (h *Handlers) GetCore(w http.ResponseWriter, r *http.Request) {
	datasetID := mux.Vars(r)["datasetId"]

	maxEdges, err := utils.QueryInt(r, "max_edges", 0)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid max_edges parameter", err)
		return
	}

	core, err := h.graphService.Core(datasetID, maxEdges)
	if err != nil {
		h.writeServiceError(w, err, datasetID, "Failed to compute graph core")
		return
	}

	utils.WriteSuccessResponse(w, "Graph core retrieved successfully", core)
}

// HealthCheck returns server health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}
	utils.WriteSuccessResponse(w, "Service is healthy", health)
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error, datasetID, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrDatasetNotFound), errors.Is(err, service.ErrNoDatasets):
		status = http.StatusNotFound
	case errors.Is(err, dehair.ErrInvalidArgument):
		status = http.StatusBadRequest
	}

	log.Error().
		Str("dataset_id", datasetID).
		Int("status", status).
		Err(err).
		Msg(message)

	utils.WriteErrorResponse(w, status, message, err)
}
