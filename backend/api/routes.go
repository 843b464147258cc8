package api

import (
	"github.com/gorilla/mux"
)

func SetupRoutes(router *mux.Router, handlers *Handlers) {
	api := router.PathPrefix("/api/v1").Subrouter()

	datasets := api.PathPrefix("/datasets").Subrouter()
	datasets.HandleFunc("", handlers.ListDatasets).Methods("GET")
	datasets.HandleFunc("/{datasetId}/graph", handlers.GetGraph).Methods("GET")
	datasets.HandleFunc("/{datasetId}/stats", handlers.GetDatasetStats).Methods("GET")
	datasets.HandleFunc("/{datasetId}/core", handlers.GetCore).Methods("GET")

	// default dataset
	api.HandleFunc("/graph", handlers.GetGraph).Methods("GET")

	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
}

// NewRouter returns a router with all routes and the middleware stack.
func NewRouter(handlers *Handlers) *mux.Router {
	router := mux.NewRouter()
	SetupRoutes(router, handlers)

	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(RecoveryMiddleware)

	return router
}
