package cluster

import "gonum.org/v1/gonum/floats"

// InitCentroids picks k evenly spaced rows as seeds: row i*(n-1)/(k-1).
// Identical input always yields identical centroids.
func InitCentroids(points [][]float64, k int) [][]float64 {
	n := len(points)
	div := k - 1
	if div == 0 {
		div = 1
	}
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		idx := i * (n - 1) / div
		centroids[i] = append([]float64(nil), points[idx]...)
	}
	return centroids
}

// Assign writes the nearest centroid of each point into labels and reports
// whether any label changed. Ties go to the lowest centroid index.
func Assign(points, centroids [][]float64, labels []int) bool {
	changed := false
	for i, p := range points {
		best := 0
		bestDist := sqDist(p, centroids[0])
		for c := 1; c < len(centroids); c++ {
			if d := sqDist(p, centroids[c]); d < bestDist {
				bestDist = d
				best = c
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

// Update returns the mean of each cluster's points. A cluster with no
// members keeps its centroid from prev unchanged.
func Update(points [][]float64, labels []int, prev [][]float64) [][]float64 {
	k := len(prev)
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, len(prev[c]))
	}
	counts := make([]int, k)
	for i, p := range points {
		c := labels[i]
		counts[c]++
		floats.Add(sums[c], p)
	}
	next := make([][]float64, k)
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			next[c] = append([]float64(nil), prev[c]...)
			continue
		}
		n := float64(counts[c])
		for j := range sums[c] {
			sums[c][j] /= n
		}
		next[c] = sums[c]
	}
	return next
}

// Displacement is the summed squared movement between two centroid sets.
func Displacement(prev, next [][]float64) float64 {
	var s float64
	for c := range prev {
		s += sqDist(prev[c], next[c])
	}
	return s
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
