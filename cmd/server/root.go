package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/influence-graph-service/backend/api"
	"github.com/gilchrisn/influence-graph-service/backend/config"
	"github.com/gilchrisn/influence-graph-service/backend/service"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serve influence graphs over HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML configuration file")

	return cmd
}

// newHandler wires the services and middleware for cfg.
func newHandler(cfg *config.Config) (http.Handler, error) {
	datasetService := service.NewDatasetService(cfg.Data.FilteredDir)
	graphService, err := service.NewGraphService(datasetService, service.GraphOptions{
		MaxIterations: cfg.Dehair.MaxIterations,
		ScoreField:    cfg.Data.ScoreField,
		CacheSize:     cfg.Cache.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize graph service: %w", err)
	}

	handlers := api.NewHandlers(datasetService, graphService)
	router := api.NewRouter(handlers)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{api.RequestIDHeader},
	})
	return c.Handler(router), nil
}

// serve runs the HTTP server until ctx is done, then shuts it down.
func serve(ctx context.Context, cfg *config.Config) error {
	zerolog.SetGlobalLevel(cfg.LogLevel())

	log.Info().
		Str("address", cfg.Server.Address).
		Str("filtered_dir", cfg.Data.FilteredDir).
		Int("max_iterations", cfg.Dehair.MaxIterations).
		Int("cache_size", cfg.Cache.Size).
		Msg("Configuration loaded")

	handler, err := newHandler(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", cfg.Server.Address).
			Msg("HTTP server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}
