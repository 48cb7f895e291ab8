// Package cluster groups students by their three numeric indicators.
package cluster

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Fixed hyperparameters of the grouping.
const (
	K          = 3
	Seed       = 42
	Inits      = 10
	MaxIter    = 300
	Tolerance  = 1e-4
	dimensions = 3
)

// Point is one observation: academic, discipline, emotional.
type Point [dimensions]float64

// Result holds one label per input point, in input order, and the centroids
// expressed in the original units.
type Result struct {
	Labels    []int
	Centroids []Point
	Sizes     []int
	Inertia   float64
}

// Fit standardizes points and runs k-means with the fixed hyperparameters.
func Fit(points []Point) Result {
	n := len(points)
	if n == 0 {
		return Result{Labels: []int{}, Centroids: []Point{}, Sizes: []int{}}
	}
	if n < K {
		return singletons(points)
	}

	scaler := newScaler(points)
	scaled := make([][]float64, n)
	for i, p := range points {
		scaled[i] = scaler.transform(p)
	}

	rng := rand.New(rand.NewPCG(Seed, Seed))
	var best run
	for i := 0; i < Inits; i++ {
		r := lloyd(scaled, plusPlus(scaled, K, rng))
		if i == 0 || r.inertia < best.inertia {
			best = r
		}
	}

	res := Result{
		Labels:    best.labels,
		Centroids: make([]Point, K),
		Sizes:     make([]int, K),
		Inertia:   best.inertia,
	}
	for c, centre := range best.centres {
		res.Centroids[c] = scaler.inverse(centre)
	}
	for _, l := range best.labels {
		res.Sizes[l]++
	}
	return res
}

// singletons gives every point its own group when there are fewer than K.
func singletons(points []Point) Result {
	res := Result{
		Labels:    make([]int, len(points)),
		Centroids: make([]Point, len(points)),
		Sizes:     make([]int, len(points)),
	}
	for i, p := range points {
		res.Labels[i] = i
		res.Centroids[i] = p
		res.Sizes[i] = 1
	}
	return res
}

// scaler standardizes each column to zero mean and unit population deviation.
// A constant column keeps scale 1, so it maps to zero.
type scaler struct {
	mean  [dimensions]float64
	scale [dimensions]float64
}

func newScaler(points []Point) scaler {
	var s scaler
	column := make([]float64, len(points))
	for d := 0; d < dimensions; d++ {
		for i, p := range points {
			column[i] = p[d]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		s.mean[d] = mean
		s.scale[d] = std
		if std == 0 || math.IsNaN(std) {
			s.scale[d] = 1
		}
	}
	return s
}

func (s scaler) transform(p Point) []float64 {
	out := make([]float64, dimensions)
	for d := range out {
		out[d] = (p[d] - s.mean[d]) / s.scale[d]
	}
	return out
}

func (s scaler) inverse(v []float64) Point {
	var p Point
	for d := range p {
		p[d] = v[d]*s.scale[d] + s.mean[d]
	}
	return p
}

type run struct {
	labels  []int
	centres [][]float64
	inertia float64
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// plusPlus picks k initial centres with k-means++ weighting.
func plusPlus(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centres := make([][]float64, 0, k)
	centres = append(centres, clone(data[rng.IntN(len(data))]))

	dist := make([]float64, len(data))
	for i, x := range data {
		dist[i] = sqDist(x, centres[0])
	}
	for len(centres) < k {
		total := floats.Sum(dist)
		next := 0
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target <= 0 && d > 0 {
					next = i
					break
				}
				next = i
			}
		} else {
			// Every point coincides with a centre already.
			next = rng.IntN(len(data))
		}
		centre := clone(data[next])
		centres = append(centres, centre)
		for i, x := range data {
			if d := sqDist(x, centre); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centres
}

// lloyd iterates assignment and update steps until the centres settle.
func lloyd(data [][]float64, centres [][]float64) run {
	k := len(centres)
	labels := make([]int, len(data))
	for iter := 0; iter < MaxIter; iter++ {
		assign(data, centres, labels)

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dimensions)
		}
		for i, x := range data {
			floats.Add(sums[labels[i]], x)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range centres {
			if counts[c] == 0 {
				// Empty cluster keeps its centre.
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			shift += sqDist(sums[c], centres[c])
			centres[c] = sums[c]
		}
		if shift <= Tolerance {
			break
		}
	}
	inertia := assign(data, centres, labels)
	return run{labels: labels, centres: centres, inertia: inertia}
}

// assign labels each point with its nearest centre and returns the inertia.
func assign(data [][]float64, centres [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, x := range data {
		best, bestDist := 0, math.Inf(1)
		for c, centre := range centres {
			if d := sqDist(x, centre); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
		inertia += bestDist
	}
	return inertia
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
