package visualize

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Project2D reduces vectors to two dimensions with principal component analysis.
// Coordinates are centered on the mean of the input.
func Project2D(vectors [][]float32) ([][2]float64, error) {
	n := len(vectors)
	if n < 2 {
		return nil, errors.New("projection needs at least two vectors")
	}
	d := len(vectors[0])
	if d < 2 {
		return nil, fmt.Errorf("projection needs at least two dimensions, got %d", d)
	}

	data := mat.NewDense(n, d, nil)
	for i, v := range vectors {
		if len(v) != d {
			return nil, fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), d)
		}
		for j, f := range v {
			data.Set(i, j, float64(f))
		}
	}

	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, data)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			data.Set(i, j, data.At(i, j)-mean)
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, errors.New("principal component analysis did not converge")
	}
	var components mat.Dense
	pc.VectorsTo(&components)
	if _, k := components.Dims(); k < 2 {
		return nil, fmt.Errorf("projection produced %d components", k)
	}

	var projected mat.Dense
	projected.Mul(data, components.Slice(0, d, 0, 2))

	points := make([][2]float64, n)
	for i := range points {
		points[i] = [2]float64{projected.At(i, 0), projected.At(i, 1)}
	}
	return points, nil
}
