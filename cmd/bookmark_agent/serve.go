package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/bookmark-organizer/internal/observability"
	"github.com/jonathan/bookmark-organizer/internal/server"
	"github.com/jonathan/bookmark-organizer/internal/server/ratelimit"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that accepts bookmark uploads, organizes them and converts organized lists back into bookmark files.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, then 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	deps, err := buildDeps(ctx, cfg, logger, cfg.Visualize)
	if err != nil {
		return err
	}
	defer deps.Close()

	srvDeps := server.Deps{
		Classifier: deps.classifier,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
	}
	// a typed nil would defeat the server's nil check
	if deps.plotter != nil {
		srvDeps.Plotter = deps.plotter
	}

	srv, err := server.New(server.Config{
		Port:            cfg.Port,
		ChunkSize:       cfg.ChunkSize,
		Concurrency:     cfg.Concurrency,
		ClassifyTimeout: cfg.ClassifyTimeout.Std(),
		RateLimit:       ratelimit.LoadConfig(os.Getenv),
	}, srvDeps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
