package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blobs() []Point {
	return []Point{
		{1.2, 1, 2}, {1.5, 2, 1}, {1.1, 1, 1}, {1.3, 0, 2},
		{4.8, 9, 9}, {4.9, 10, 8}, {4.7, 9, 10}, {5.0, 10, 10},
		{3.0, 5, 0}, {3.1, 4, 1}, {2.9, 5, 1}, {3.0, 6, 0},
	}
}

func TestFitSeparatesBlobs(t *testing.T) {
	res := Fit(blobs())

	require.Len(t, res.Labels, 12)
	require.Len(t, res.Centroids, K)
	for blob := 0; blob < 3; blob++ {
		first := res.Labels[blob*4]
		for i := 1; i < 4; i++ {
			assert.Equal(t, first, res.Labels[blob*4+i], "blob %d point %d", blob, i)
		}
	}
	assert.NotEqual(t, res.Labels[0], res.Labels[4])
	assert.NotEqual(t, res.Labels[0], res.Labels[8])
	assert.NotEqual(t, res.Labels[4], res.Labels[8])
	assert.Equal(t, []int{4, 4, 4}, res.Sizes)

	high := res.Centroids[res.Labels[4]]
	assert.InDelta(t, 4.85, high[0], 1e-9)
	assert.InDelta(t, 9.5, high[1], 1e-9)
}

func TestFitIsDeterministic(t *testing.T) {
	assert.Equal(t, Fit(blobs()), Fit(blobs()))
}

func TestFitEmpty(t *testing.T) {
	res := Fit(nil)
	assert.Empty(t, res.Labels)
	assert.NotNil(t, res.Labels)
}

func TestFitFewerThanK(t *testing.T) {
	res := Fit([]Point{{2, 3, 4}, {5, 6, 7}})

	assert.Equal(t, []int{0, 1}, res.Labels)
	assert.Equal(t, Point{5, 6, 7}, res.Centroids[1])
}

func TestFitIdenticalPoints(t *testing.T) {
	points := []Point{{3, 5, 5}, {3, 5, 5}, {3, 5, 5}, {3, 5, 5}}

	var res Result
	require.NotPanics(t, func() { res = Fit(points) })
	require.Len(t, res.Labels, 4)
	assert.Zero(t, res.Inertia)
	total := 0
	for _, size := range res.Sizes {
		total += size
	}
	assert.Equal(t, 4, total)
}
