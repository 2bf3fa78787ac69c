// Package knn selects the k nearest candidates to a query vector.
package knn

import (
	"fmt"
	"sort"

	"github.com/okian/scoutmatch/internal/domain/similarity"
)

// DistanceFunc measures how far apart two vectors are. Smaller is closer.
type DistanceFunc func(a, b []float64) (float64, error)

// Point is a candidate vector keyed by an opaque id.
type Point struct {
	ID     string
	Vector []float64
}

// Neighbor is a candidate together with its distance to the query.
type Neighbor struct {
	ID       string
	Distance float64
}

// Nearest returns the k points closest to query, ascending by distance.
// Ties keep their input order. A nil fn defaults to Euclidean distance.
func Nearest(points []Point, query []float64, k int, fn DistanceFunc) ([]Neighbor, error) {
	if len(points) == 0 || k <= 0 {
		return []Neighbor{}, nil
	}
	if fn == nil {
		fn = similarity.Euclidean
	}

	out := make([]Neighbor, len(points))
	for i, p := range points {
		d, err := fn(p.Vector, query)
		if err != nil {
			return nil, fmt.Errorf("distance to %q: %w", p.ID, err)
		}
		out[i] = Neighbor{ID: p.ID, Distance: d}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})

	if k < len(out) {
		out = out[:k]
	}
	return out, nil
}
