package visualize

import (
	"fmt"
	"math"
	"sort"
)

// Hit is one search result of an Index.
type Hit struct {
	ID    int
	Score float32
}

// Index is an exact inner-product index over unit vectors, so scores are cosine similarities.
// It is not safe for concurrent writes.
type Index struct {
	dim     int
	vectors [][]float32
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dim int) *Index {
	return &Index{dim: dim}
}

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	return len(x.vectors)
}

// Add normalizes vec and stores it under the next sequential id.
func (x *Index) Add(vec []float32) (int, error) {
	if len(vec) != x.dim {
		return 0, fmt.Errorf("vector has dimension %d, index expects %d", len(vec), x.dim)
	}
	x.vectors = append(x.vectors, normalize(vec))
	return len(x.vectors) - 1, nil
}

// Search returns up to k ids ordered by descending similarity to query.
// exclude is skipped; pass -1 to keep every id.
func (x *Index) Search(query []float32, k int, exclude int) []Hit {
	if len(query) != x.dim || k <= 0 {
		return nil
	}
	q := normalize(query)

	hits := make([]Hit, 0, len(x.vectors))
	for id, v := range x.vectors {
		if id == exclude {
			continue
		}
		hits = append(hits, Hit{ID: id, Score: dot(q, v)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Neighbor returns the closest other vector to the stored vector id.
func (x *Index) Neighbor(id int) (Hit, bool) {
	if id < 0 || id >= len(x.vectors) {
		return Hit{}, false
	}
	hits := x.Search(x.vectors[id], 1, id)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	out := make([]float32, len(v))
	norm := math.Sqrt(sum)
	if norm == 0 {
		return out
	}
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return float32(s)
}
