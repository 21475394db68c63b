package cluster

import "math"

// RowSource exposes row-oriented data to the matrix builder.
// Value reports false when the cell is absent or not numeric.
type RowSource interface {
	Len() int
	Value(row int, feature string) (float64, bool)
}

// Records is an in-memory RowSource; a missing key is an absent value.
type Records []map[string]float64

func (r Records) Len() int { return len(r) }

func (r Records) Value(row int, feature string) (float64, bool) {
	v, ok := r[row][feature]
	return v, ok
}

// Matrix is the dense feature matrix of one run.
type Matrix struct {
	Features []string
	// Points holds one finite vector per retained row.
	Points [][]float64
	// Index maps Points[i] back to its row in the source.
	Index []int
	// Total is the source row count, retained or not.
	Total int
}

// Excluded returns how many source rows were dropped.
func (m *Matrix) Excluded() int { return m.Total - len(m.Points) }

// BuildMatrix keeps rows whose selected features are all present and finite.
// It fails with *InsufficientDataError when fewer than 2*k rows survive.
func BuildMatrix(src RowSource, features []string, k int) (*Matrix, error) {
	n := src.Len()
	m := &Matrix{
		Features: append([]string(nil), features...),
		Total:    n,
	}
	for i := 0; i < n; i++ {
		vec := make([]float64, len(features))
		ok := true
		for j, f := range features {
			v, present := src.Value(i, f)
			if !present || math.IsNaN(v) || math.IsInf(v, 0) {
				ok = false
				break
			}
			vec[j] = v
		}
		if !ok {
			continue
		}
		m.Points = append(m.Points, vec)
		m.Index = append(m.Index, i)
	}
	if len(m.Points) < 2*k {
		return nil, &InsufficientDataError{Valid: len(m.Points), Required: 2 * k}
	}
	return m, nil
}
