package cluster

// Inertia sums the squared distance of each point to its assigned centroid.
func Inertia(points [][]float64, labels []int, centroids [][]float64) float64 {
	var total float64
	for i, p := range points {
		total += sqDist(p, centroids[labels[i]])
	}
	return total
}

// Counts returns the membership size of each of the k clusters.
func Counts(labels []int, k int) []int {
	counts := make([]int, k)
	for _, l := range labels {
		if l >= 0 {
			counts[l]++
		}
	}
	return counts
}

// ExpandLabels maps matrix-row labels onto total source rows, filling Sentinel
// for every row not present in index.
func ExpandLabels(labels, index []int, total int) []int {
	full := make([]int, total)
	for i := range full {
		full[i] = Sentinel
	}
	for i, row := range index {
		full[row] = labels[i]
	}
	return full
}
