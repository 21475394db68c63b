package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatrix_FiltersAndMaps(t *testing.T) {
	rows := Records{
		{"a": 1, "b": 2},
		{"a": math.NaN(), "b": 2},
		{"a": 3},
		{"a": 4, "b": 5, "c": 9},
		{"a": 6, "b": math.Inf(-1)},
		{"a": 7, "b": 8},
	}
	m, err := BuildMatrix(rows, []string{"a", "b"}, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {4, 5}, {7, 8}}, m.Points)
	assert.Equal(t, []int{0, 3, 5}, m.Index)
	assert.Equal(t, 6, m.Total)
	assert.Equal(t, 3, m.Excluded())

	_, err = BuildMatrix(rows, []string{"a", "b"}, 2)
	var ie *InsufficientDataError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 3, ie.Valid)
}

func TestBuildMatrix_DoesNotAliasFeatures(t *testing.T) {
	features := []string{"a", "b"}
	m, err := BuildMatrix(Records{{"a": 1, "b": 1}, {"a": 2, "b": 2}}, features, 1)
	require.NoError(t, err)
	features[0] = "mutated"
	assert.Equal(t, "a", m.Features[0])
}

func TestInitCentroids_EvenlySpaced(t *testing.T) {
	points := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}, {6}}
	assert.Equal(t, [][]float64{{0}, {6}}, InitCentroids(points, 2))
	assert.Equal(t, [][]float64{{0}, {3}, {6}}, InitCentroids(points, 3))
	// (n-1)=6, k-1=3 -> 0,2,4,6
	assert.Equal(t, [][]float64{{0}, {2}, {4}, {6}}, InitCentroids(points, 4))
	assert.Equal(t, [][]float64{{0}}, InitCentroids(points, 1))

	c := InitCentroids(points, 2)
	c[0][0] = 99
	assert.Equal(t, 0.0, points[0][0], "centroids must not alias matrix rows")
}

func TestAssign_TieGoesToFirst(t *testing.T) {
	points := [][]float64{{1}, {0}, {2}}
	centroids := [][]float64{{0}, {2}}
	labels := make([]int, len(points))
	changed := Assign(points, centroids, labels)
	assert.True(t, changed)
	assert.Equal(t, []int{0, 0, 1}, labels)
	assert.False(t, Assign(points, centroids, labels))
}

func TestUpdate_EmptyClusterKeepsPrevious(t *testing.T) {
	points := [][]float64{{1, 1}, {3, 3}, {5, 5}}
	labels := []int{0, 0, 2}
	prev := [][]float64{{0, 0}, {0.1234567, -7.5}, {9, 9}}
	next := Update(points, labels, prev)
	require.Len(t, next, 3)
	assert.Equal(t, []float64{2, 2}, next[0])
	assert.Equal(t, prev[1], next[1])
	assert.Equal(t, []float64{5, 5}, next[2])

	next[1][0] = 42
	assert.Equal(t, 0.1234567, prev[1][0], "retained centroid must be a copy")
}

func TestDiagnostics(t *testing.T) {
	points := [][]float64{{0}, {2}, {10}}
	labels := []int{0, 0, 1}
	centroids := [][]float64{{1}, {10}, {50}}
	assert.Equal(t, 2.0, Inertia(points, labels, centroids))
	assert.Equal(t, []int{2, 1, 0}, Counts(labels, 3))
	assert.Equal(t, []int{Sentinel, 0, Sentinel, 0, 1}, ExpandLabels(labels, []int{1, 3, 4}, 5))
	assert.Equal(t, 8.0, Displacement([][]float64{{0, 0}}, [][]float64{{2, 2}}))
}
