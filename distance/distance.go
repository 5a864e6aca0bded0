// Package distance provides similarity scoring between equal-length vectors.
//
// Every metric follows one convention: higher score means more similar.
// Metrics that are naturally "lower is better" (Euclidean) are negated so
// callers can always select top-k with a single max-oriented pass.
package distance

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Metric represents the distance metric used for vector comparison.
type Metric uint8

const (
	MetricCosine Metric = iota
	MetricEuclidean
	MetricDotProduct
)

func (m Metric) String() string {
	switch m {
	case MetricCosine:
		return "Cosine"
	case MetricEuclidean:
		return "Euclidean"
	case MetricDotProduct:
		return "DotProduct"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(m))
	}
}

// ParseMetric parses a metric name, case-insensitively.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(s) {
	case "cosine":
		return MetricCosine, nil
	case "euclidean", "l2":
		return MetricEuclidean, nil
	case "dotproduct", "dot":
		return MetricDotProduct, nil
	default:
		return 0, fmt.Errorf("unsupported metric: %q", s)
	}
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m <= MetricDotProduct
}

// Func is a scoring function. The cache argument is the value returned by
// CacheAttr for the query vector; it carries any query-invariant precompute
// so the hot loop avoids redundant work per stored vector.
type Func func(stored, query []float32, cache float32) float32

// Provider returns the scoring function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricCosine:
		return scoreCosine, nil
	case MetricEuclidean:
		return scoreNegEuclidean, nil
	case MetricDotProduct:
		return scoreDot, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// CacheAttr precomputes the query-invariant attribute for a metric.
// For Cosine it is the query's L2 norm: stored vectors are unit-normalized
// at insert time, so dot(stored, query)/norm(query) equals true cosine
// similarity without normalizing the query per comparison.
// Euclidean and DotProduct need no precompute and return 0.
func CacheAttr(m Metric, query []float32) float32 {
	switch m {
	case MetricCosine:
		return Norm(query)
	default:
		return 0
	}
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}

// scoreCosine assumes the stored vector is unit-normalized and divides the
// dot product by the cached query norm. A zero cache (zero query) yields 0
// for every candidate; callers reject zero queries before scoring.
func scoreCosine(stored, query []float32, cache float32) float32 {
	if cache == 0 {
		return 0
	}
	return Dot(stored, query) / cache
}

// scoreNegEuclidean returns the negated Euclidean distance so that larger
// means closer, matching the uniform convention.
func scoreNegEuclidean(stored, query []float32, _ float32) float32 {
	return -float32(math.Sqrt(float64(SquaredL2(stored, query))))
}

func scoreDot(stored, query []float32, _ float32) float32 {
	return Dot(stored, query)
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := Dot(v, v)
	if norm2 == 0 {
		return false
	}
	inv := 1 / float32(math.Sqrt(float64(norm2)))
	for i := range v {
		v[i] *= inv
	}
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}
