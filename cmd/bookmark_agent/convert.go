package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/bookmark-organizer/internal/rendering"
	"github.com/jonathan/bookmark-organizer/internal/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an organized bookmark list into a bookmark file",
	Long:  "Reads a JSON array of organized bookmarks and writes a Netscape bookmark file with one folder per category.",
	RunE:  runConvert,
}

var (
	convertInputFile  string
	convertOutputFile string
)

// nowFunc stamps generated documents.
var nowFunc = time.Now

func init() {
	convertCmd.Flags().StringVarP(&convertInputFile, "in", "i", "", "Path to organized bookmarks JSON (required)")
	convertCmd.Flags().StringVarP(&convertOutputFile, "out", "o", rendering.DownloadFilename, "Path to output HTML file, - for stdout")

	_ = convertCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, _ []string) error {
	content, err := os.ReadFile(convertInputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var organized []types.OrganizedBookmark
	if err := json.Unmarshal(content, &organized); err != nil {
		return fmt.Errorf("failed to unmarshal organized bookmarks JSON: %w", err)
	}

	html, err := rendering.RenderHTML(organized, nowFunc())
	if err != nil {
		return fmt.Errorf("failed to render bookmark file: %w", err)
	}

	if err := writeOutput(cmd.OutOrStdout(), convertOutputFile, html); err != nil {
		return err
	}
	if convertOutputFile != "-" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bookmarks to %s\n", len(organized), convertOutputFile)
	}
	return nil
}

// writeOutput writes data to path, creating parent directories; "-" writes to stdout.
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}

	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
