package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/marmos91/dittolist/internal/logger"
	"github.com/marmos91/dittolist/pkg/config"
	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/marmos91/dittolist/pkg/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("DittoList starting")
	logger.Debug("Configuration: %+v", *cfg)

	m := config.InitializeMetrics(cfg)

	st, err := config.CreateStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("Failed to close store: %v", err)
		}
	}()

	resolver := listing.NewFileResolver()
	svc := config.CreateListingService(cfg, resolver, m.Listing)

	logger.Info("Listing engine: streaming above %d entries, page size %d (max %d), stream timeout %s",
		cfg.Listing.StreamingThreshold, cfg.Listing.DefaultPageSize, cfg.Listing.MaxPageSize, cfg.Listing.StreamTimeout)

	srv := server.New(cfg.Server.ShutdownTimeout)
	if err := srv.AddAdapter(config.CreateAPIAdapter(cfg, svc, resolver, st, m.API)); err != nil {
		return err
	}
	if m.Server != nil {
		if err := srv.AddAdapter(m.Server); err != nil {
			return err
		}
	}

	logger.Info("Server is running on port %d. Press Ctrl+C to stop.", cfg.API.Port)

	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("DittoList stopped")
	return nil
}
