package bookmarks

import (
	"fmt"
	"testing"

	"github.com/jonathan/bookmark-organizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecords(n int) []types.Bookmark {
	records := make([]types.Bookmark, n)
	for i := range records {
		records[i] = types.Bookmark{URL: fmt.Sprintf("https://example.com/%d", i), AddDate: fmt.Sprint(i)}
	}
	return records
}

func TestChunk_Partition(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		size      int
		wantSizes []int
	}{
		{name: "empty", n: 0, size: 25, wantSizes: nil},
		{name: "smaller than size", n: 3, size: 25, wantSizes: []int{3}},
		{name: "exact multiple", n: 50, size: 25, wantSizes: []int{25, 25}},
		{name: "short tail", n: 51, size: 25, wantSizes: []int{25, 25, 1}},
		{name: "size one", n: 3, size: 1, wantSizes: []int{1, 1, 1}},
		{name: "default size", n: 30, size: 0, wantSizes: []int{25, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := makeRecords(tt.n)
			batches := Chunk(records, tt.size)

			var sizes []int
			var joined []types.Bookmark
			for _, b := range batches {
				sizes = append(sizes, len(b))
				joined = append(joined, b...)
			}

			assert.Equal(t, tt.wantSizes, sizes)
			if tt.n > 0 {
				assert.Equal(t, records, joined)
			}
			assert.Equal(t, len(tt.wantSizes), CountChunks(tt.n, tt.size))
		})
	}
}

func TestChunks_IndexAndEarlyStop(t *testing.T) {
	records := makeRecords(10)

	var indexes []int
	for i, batch := range Chunks(records, 3) {
		indexes = append(indexes, i)
		require.NotEmpty(t, batch)
		if i == 1 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, indexes)
}

func TestChunks_AppendDoesNotClobberNextBatch(t *testing.T) {
	records := makeRecords(4)
	batches := Chunk(records, 2)

	first := append(batches[0], types.Bookmark{URL: "extra"})
	assert.Len(t, first, 3)
	assert.Equal(t, "https://example.com/2", records[2].URL)
}
