package bookmarks

import (
	"iter"

	"github.com/jonathan/bookmark-organizer/internal/types"
)

// DefaultChunkSize keeps one classifier prompt well inside the output token budget.
const DefaultChunkSize = 25

// Chunks yields consecutive batches of at most size records together with
// their batch index. A non-positive size uses DefaultChunkSize.
func Chunks(records []types.Bookmark, size int) iter.Seq2[int, []types.Bookmark] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func(int, []types.Bookmark) bool) {
		for i, start := 0, 0; start < len(records); i, start = i+1, start+size {
			end := min(start+size, len(records))
			if !yield(i, records[start:end:end]) {
				return
			}
		}
	}
}

// Chunk collects Chunks into a slice.
func Chunk(records []types.Bookmark, size int) [][]types.Bookmark {
	var batches [][]types.Bookmark
	for _, batch := range Chunks(records, size) {
		batches = append(batches, batch)
	}
	return batches
}

// CountChunks returns how many batches Chunks will yield.
func CountChunks(n, size int) int {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return (n + size - 1) / size
}
