// Package visualize embeds organized bookmarks and turns them into a 2-D scatter plot
// grouped by URL domain.
package visualize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/bookmark-organizer/internal/llm"
	"github.com/jonathan/bookmark-organizer/internal/types"
)

// MinSamples is the smallest number of bookmarks that produces a plot.
const MinSamples = 5

// ErrInsufficientSamples is returned when there are fewer than MinSamples bookmarks.
// It means "no plot", not a failure.
var ErrInsufficientSamples = errors.New("not enough bookmarks to visualize")

// EmbeddingError reports a failed call to the embedding service.
type EmbeddingError struct {
	Message string
	Cause   error
}

func (e *EmbeddingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("embedding error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding error: %s", e.Message)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

const (
	plotTitle   = "Interactive PCA visualization of bookmark embeddings"
	markerSize  = 10
	markerWidth = 1
	markerLine  = "DarkSlateGrey"
)

// Adapter produces plot data from organized bookmarks.
type Adapter struct {
	embedder llm.Embedder
	logger   *zap.Logger
}

// NewAdapter creates an Adapter over embedder.
func NewAdapter(embedder llm.Embedder, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{embedder: embedder, logger: logger}
}

// Plot embeds each bookmark's description and returns one scatter trace per domain.
// Fewer than MinSamples bookmarks yields ErrInsufficientSamples.
func (a *Adapter) Plot(ctx context.Context, bookmarks []types.OrganizedBookmark) (*types.PlotData, error) {
	if len(bookmarks) < MinSamples {
		a.logger.Warn("skipping visualization", zap.Int("bookmarks", len(bookmarks)), zap.Int("min", MinSamples))
		return nil, ErrInsufficientSamples
	}

	texts := make([]string, len(bookmarks))
	for i, b := range bookmarks {
		texts[i] = embeddingText(b)
	}

	vectors, err := a.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to embed descriptions", Cause: err}
	}
	if len(vectors) != len(bookmarks) {
		return nil, &EmbeddingError{Message: fmt.Sprintf("expected %d embeddings, got %d", len(bookmarks), len(vectors))}
	}

	index := NewIndex(len(vectors[0]))
	for i, v := range vectors {
		if _, err := index.Add(v); err != nil {
			return nil, &EmbeddingError{Message: fmt.Sprintf("embedding %d", i), Cause: err}
		}
	}

	points, err := Project2D(vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to project embeddings: %w", err)
	}

	plot := buildPlot(bookmarks, points, index)
	a.logger.Info("built visualization", zap.Int("points", len(points)), zap.Int("domains", len(plot.Data)))
	return plot, nil
}

func embeddingText(b types.OrganizedBookmark) string {
	for _, s := range []string{b.Description, b.Title, b.URL} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return b.URL
}

func buildPlot(bookmarks []types.OrganizedBookmark, points [][2]float64, index *Index) *types.PlotData {
	traces := make([]types.PlotTrace, 0)
	byDomain := make(map[string]int)

	for i, b := range bookmarks {
		domain := DomainLabel(b.URL)
		t, ok := byDomain[domain]
		if !ok {
			t = len(traces)
			byDomain[domain] = t
			traces = append(traces, types.PlotTrace{
				Mode: "markers",
				Name: domain,
				Marker: types.PlotMarker{
					Color: DomainColor(domain),
					Size:  markerSize,
					Line:  types.PlotMarkerLine{Width: markerWidth, Color: markerLine},
				},
				HoverInfo: "text",
			})
		}

		trace := &traces[t]
		trace.X = append(trace.X, points[i][0])
		trace.Y = append(trace.Y, points[i][1])
		trace.Text = append(trace.Text, hoverText(domain, b, bookmarks, index, i))
	}

	return &types.PlotData{
		Data: traces,
		Layout: types.PlotLayout{
			Title:     plotTitle,
			XAxis:     types.PlotAxis{Title: "Component 1"},
			YAxis:     types.PlotAxis{Title: "Component 2"},
			HoverMode: "closest",
		},
	}
}

func hoverText(domain string, b types.OrganizedBookmark, all []types.OrganizedBookmark, index *Index, id int) string {
	text := fmt.Sprintf("Domain: %s<br>Description: %s<br>URL: %s", domain, b.Description, b.URL)
	if hit, ok := index.Neighbor(id); ok {
		text += fmt.Sprintf("<br>Most similar: %s", all[hit.ID].URL)
	}
	return text
}
