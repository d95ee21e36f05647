// Package stats summarizes the integers collected during a session.
package stats

import (
	"errors"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ErrNoSamples is returned when there is nothing to summarize.
var ErrNoSamples = errors.New("no samples to summarize")

// Summary is the sorted sample set with its aggregate statistics.
type Summary struct {
	Sorted []int
	Min    int
	Max    int
	Median float64
	Mean   float64
}

// Summarize sorts a copy of values ascending and computes its statistics.
// The median of an even-sized sample is the mean of the two middle values.
func Summarize(values []int) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrNoSamples
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	floats := make([]float64, len(sorted))
	for i, v := range sorted {
		floats[i] = float64(v)
	}

	return Summary{
		Sorted: sorted,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: median(floats),
		Mean:   stat.Mean(floats, nil),
	}, nil
}

// median expects sorted input.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return stat.Mean(sorted[mid-1:mid+1], nil)
}
