package visualize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject2D(t *testing.T) {
	// Points on a line in 3-D collapse onto the first component.
	vectors := [][]float32{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {3, 3, 3}, {4, 4, 4}}

	points, err := Project2D(vectors)
	require.NoError(t, err)
	require.Len(t, points, 5)

	var sumX float64
	for _, p := range points {
		sumX += p[0]
		assert.InDelta(t, 0, p[1], 1e-9)
	}
	assert.InDelta(t, 0, sumX, 1e-9)
	assert.InDelta(t, 2*math.Sqrt(3), math.Abs(points[0][0]), 1e-9)
}

func TestProject2D_Errors(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
	}{
		{"single vector", [][]float32{{1, 2}}},
		{"one dimension", [][]float32{{1}, {2}, {3}}},
		{"ragged", [][]float32{{1, 2}, {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project2D(tt.vectors)
			assert.Error(t, err)
		})
	}
}
