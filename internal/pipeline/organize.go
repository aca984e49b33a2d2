// Package pipeline orchestrates batched classification of parsed bookmarks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/bookmark-organizer/internal/bookmarks"
	"github.com/jonathan/bookmark-organizer/internal/classify"
	"github.com/jonathan/bookmark-organizer/internal/observability"
	"github.com/jonathan/bookmark-organizer/internal/types"
)

// BatchClassifier classifies one batch, returning one result per input in input order.
type BatchClassifier interface {
	ClassifyBatch(ctx context.Context, index int, batch []types.Bookmark) ([]types.OrganizedBookmark, error)
}

// BatchEvent is emitted once per completed batch, in batch order.
type BatchEvent struct {
	// Index is the zero-based batch number.
	Index int `json:"chunk"`
	// Total is the number of batches in the run.
	Total int `json:"total"`
	// Count is the number of bookmarks organized so far, this batch included.
	Count     int                       `json:"count"`
	Bookmarks []types.OrganizedBookmark `json:"bookmarks"`
}

// Progress is the fraction of batches completed.
func (e BatchEvent) Progress() float64 {
	if e.Total == 0 {
		return 1
	}
	return float64(e.Index+1) / float64(e.Total)
}

// BatchCallback is called when a batch completes. Calls never overlap.
type BatchCallback func(event BatchEvent)

// Options holds configuration for Organize.
type Options struct {
	ChunkSize int
	// Concurrency is the number of batches classified at once; 1 or less is sequential.
	Concurrency int
	OnBatch     BatchCallback
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// Organize classifies records in batches and returns the organized list in input order.
// The first failing batch aborts the run; no partial list is returned.
func Organize(ctx context.Context, records []types.Bookmark, classifier BatchClassifier, opts Options) ([]types.OrganizedBookmark, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = bookmarks.DefaultChunkSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	total := bookmarks.CountChunks(len(records), opts.ChunkSize)
	opts.Logger.Info("organizing bookmarks",
		zap.Int("bookmarks", len(records)),
		zap.Int("batches", total),
		zap.Int("chunk_size", opts.ChunkSize),
	)

	r := &run{
		classifier: classifier,
		opts:       opts,
		total:      total,
		results:    make([][]types.OrganizedBookmark, total),
		done:       make([]bool, total),
	}

	var err error
	if opts.Concurrency > 1 {
		err = r.parallel(ctx, records)
	} else {
		err = r.sequential(ctx, records)
	}
	if err != nil {
		return nil, err
	}

	organized := make([]types.OrganizedBookmark, 0, len(records))
	for _, batch := range r.results {
		organized = append(organized, batch...)
	}
	opts.Logger.Info("organized bookmarks", zap.Int("count", len(organized)))
	return organized, nil
}

type run struct {
	classifier BatchClassifier
	opts       Options
	total      int

	mu      sync.Mutex
	results [][]types.OrganizedBookmark
	done    []bool
	next    int
	count   int
}

func (r *run) sequential(ctx context.Context, records []types.Bookmark) error {
	for i, batch := range bookmarks.Chunks(records, r.opts.ChunkSize) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("organizing cancelled before batch %d: %w", i, err)
		}
		if err := r.classify(ctx, i, batch); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) parallel(ctx context.Context, records []types.Bookmark) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, batch := range bookmarks.Chunks(records, r.opts.ChunkSize) {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return fmt.Errorf("organizing cancelled before batch %d: %w", i, err)
			}
			return r.classify(gCtx, i, batch)
		})
	}
	return g.Wait()
}

func (r *run) classify(ctx context.Context, index int, batch []types.Bookmark) error {
	log := r.opts.Logger.With(zap.Int("batch", index), zap.Int("total", r.total), zap.Int("items", len(batch)))
	log.Info("processing batch")

	start := time.Now()
	result, err := r.classifier.ClassifyBatch(ctx, index, batch)
	if err == nil && len(result) != len(batch) {
		err = &classify.MalformedResponseError{
			Batch:    index,
			Message:  "classifier returned wrong item count",
			Sent:     len(batch),
			Received: len(result),
		}
	}
	r.opts.Metrics.RecordBatch(batchStatus(err), len(batch), time.Since(start))
	if err != nil {
		log.Error("batch failed", zap.Error(err))
		return err
	}

	r.complete(index, result)
	return nil
}

// complete stores a batch result and emits every event that is now in order.
func (r *run) complete(index int, result []types.OrganizedBookmark) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results[index] = result
	r.done[index] = true

	for r.next < r.total && r.done[r.next] {
		r.count += len(r.results[r.next])
		if r.opts.OnBatch != nil {
			r.opts.OnBatch(BatchEvent{
				Index:     r.next,
				Total:     r.total,
				Count:     r.count,
				Bookmarks: r.results[r.next],
			})
		}
		r.next++
	}
}

func batchStatus(err error) string {
	var extErr *classify.ExternalServiceError
	var malErr *classify.MalformedResponseError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &extErr):
		return "external_error"
	case errors.As(err, &malErr):
		return "malformed"
	default:
		return "error"
	}
}
