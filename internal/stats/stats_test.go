package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarizeMatrix(t *testing.T) {
	tests := []struct {
		name       string
		values     []int
		wantSorted []int
		wantMedian float64
		wantMean   float64
	}{
		{name: "single", values: []int{7}, wantSorted: []int{7}, wantMedian: 7, wantMean: 7},
		{name: "odd count", values: []int{9, 1, 5}, wantSorted: []int{1, 5, 9}, wantMedian: 5, wantMean: 5},
		{name: "even count averages middle pair", values: []int{4, 1, 3, 2}, wantSorted: []int{1, 2, 3, 4}, wantMedian: 2.5, wantMean: 2.5},
		{name: "duplicates", values: []int{1000, 0, 1000, 0}, wantSorted: []int{0, 0, 1000, 1000}, wantMedian: 500, wantMean: 500},
		{name: "skewed", values: []int{1, 2, 100}, wantSorted: []int{1, 2, 100}, wantMedian: 2, wantMean: 103.0 / 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			summary, err := Summarize(tc.values)
			require.NoError(t, err)
			require.Equal(t, tc.wantSorted, summary.Sorted)
			require.Equal(t, tc.wantSorted[0], summary.Min)
			require.Equal(t, tc.wantSorted[len(tc.wantSorted)-1], summary.Max)
			require.InDelta(t, tc.wantMedian, summary.Median, 1e-9)
			require.InDelta(t, tc.wantMean, summary.Mean, 1e-9)
		})
	}
}

func TestSummarizeDoesNotMutateInput(t *testing.T) {
	values := []int{3, 1, 2}

	_, err := Summarize(values)
	require.NoError(t, err)
	require.Equal(t, []int{3, 1, 2}, values)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	require.ErrorIs(t, err, ErrNoSamples)
}
