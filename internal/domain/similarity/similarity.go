// Package similarity implements the numeric comparison functions used by the
// matching core.
package similarity

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch signals that two vectors of different length were
// compared. It indicates a vectorizer bug, not a runtime condition.
var ErrDimensionMismatch = errors.New("vectors must have the same dimensions")

// Euclidean returns the straight-line distance between a and b.
func Euclidean(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Cosine returns the cosine of the angle between a and b, clamped to
// [-1, 1]. Empty or zero-magnitude vectors yield 0.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return clamp(dot/(math.Sqrt(normA)*math.Sqrt(normB)), -1, 1), nil
}

// CosineDistance converts cosine similarity into a distance where smaller is
// closer.
func CosineDistance(a, b []float64) (float64, error) {
	s, err := Cosine(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - s, nil
}

// Normalize rescales xs into [0, 1] using min-max normalization. A constant
// vector maps to 0.5 everywhere.
func Normalize(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}

	lo, hi := xs[0], xs[0]
	for _, v := range xs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if lo == hi {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for i, v := range xs {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
