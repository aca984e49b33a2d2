package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/bookmark-organizer/internal/bookmarks"
	"github.com/jonathan/bookmark-organizer/internal/observability"
	"github.com/jonathan/bookmark-organizer/internal/pipeline"
	"github.com/jonathan/bookmark-organizer/internal/rendering"
	"github.com/jonathan/bookmark-organizer/internal/types"
)

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Organize a bookmark export offline",
	Long:  "Parses a bookmark export, classifies every bookmark into a category with a short description and writes the organized list as JSON and, optionally, as a bookmark file.",
	RunE:  runOrganize,
}

var (
	organizeInputFile  string
	organizeOutputFile string
	organizeHTMLFile   string
	organizePlotFile   string
	organizeVerbose    bool
)

func init() {
	organizeCmd.Flags().StringVarP(&organizeInputFile, "in", "i", "", "Path to bookmark export, HTML or JSON (required)")
	organizeCmd.Flags().StringVarP(&organizeOutputFile, "out", "o", "organized_bookmarks.json", "Path to output JSON file, - for stdout")
	organizeCmd.Flags().StringVar(&organizeHTMLFile, "html", "", "Also write a bookmark file to this path")
	organizeCmd.Flags().StringVar(&organizePlotFile, "plot", "", "Also write embedding plot JSON to this path")
	organizeCmd.Flags().BoolVarP(&organizeVerbose, "verbose", "v", false, "Log at debug level")

	_ = organizeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(organizeCmd)
}

func runOrganize(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if organizeVerbose {
		cfg.LogLevel = "debug"
	}

	logger, err := observability.NewLogger(observability.LoggerConfig{
		LogFile: cfg.LogFile,
		Level:   cfg.LogLevel,
		Console: true,
	})
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	records, err := readBookmarkFile(organizeInputFile)
	if err != nil {
		return err
	}
	logger.Info("bookmarks parsed", zap.String("file", organizeInputFile), zap.Int("count", len(records)))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := cfg.ClassifyTimeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	deps, err := buildDeps(ctx, cfg, logger, organizePlotFile != "")
	if err != nil {
		return err
	}
	defer deps.Close()

	// progress goes to stderr when the JSON itself is written to stdout
	var progressOut io.Writer = cmd.OutOrStdout()
	if organizeOutputFile == "-" {
		progressOut = cmd.ErrOrStderr()
	}
	printer := observability.NewPrinter(progressOut)

	organized, err := pipeline.Organize(ctx, records, deps.classifier, pipeline.Options{
		ChunkSize:   cfg.ChunkSize,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
		OnBatch: func(ev pipeline.BatchEvent) {
			printer.PrintBatchProgress(ev.Index, ev.Total, ev.Count)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to organize bookmarks: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(organized, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal organized bookmarks: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), organizeOutputFile, jsonBytes); err != nil {
		return err
	}

	if organizeHTMLFile != "" {
		html, err := rendering.RenderHTML(organized, nowFunc())
		if err != nil {
			return fmt.Errorf("failed to render bookmark file: %w", err)
		}
		if err := writeOutput(cmd.OutOrStdout(), organizeHTMLFile, html); err != nil {
			return err
		}
	}

	if deps.plotter != nil {
		if err := writePlot(ctx, cmd.OutOrStdout(), deps, organized, logger); err != nil {
			return err
		}
	}

	printer.PrintCategorySummary(organized)
	return nil
}

func readBookmarkFile(path string) ([]types.Bookmark, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	records, err := bookmarks.ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks from %s: %w", path, err)
	}
	return records, nil
}

func writePlot(ctx context.Context, stdout io.Writer, deps *organizerDeps, organized []types.OrganizedBookmark, logger *zap.Logger) error {
	plot, err := deps.plotter.Plot(ctx, organized)
	if err != nil {
		// the organized list is already written; a missing plot is not fatal
		logger.Warn("visualization skipped", zap.Error(err))
		return nil
	}
	plotBytes, err := json.MarshalIndent(plot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plot data: %w", err)
	}
	return writeOutput(stdout, organizePlotFile, plotBytes)
}
