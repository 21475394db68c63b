package dataset

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DefaultNumericThreshold is the parseable share above which a column is numeric.
const DefaultNumericThreshold = 0.85

// Schema partitions columns into numeric and categorical, in column order.
type Schema struct {
	Numeric     []string `json:"numeric" yaml:"numeric"`
	Categorical []string `json:"categorical" yaml:"categorical"`
}

// IsNumeric reports whether col was classified numeric.
func (s Schema) IsNumeric(col string) bool {
	for _, c := range s.Numeric {
		if c == col {
			return true
		}
	}
	return false
}

// DetectSchema classifies each column once. A column is numeric when the
// share of its non-empty values that parse as numbers is >= threshold.
func DetectSchema(d *Dataset, threshold float64, decimalComma bool) Schema {
	if threshold <= 0 {
		threshold = DefaultNumericThreshold
	}
	s := Schema{Numeric: []string{}, Categorical: []string{}}
	for _, col := range d.Columns {
		var valid, numeric int
		for _, r := range d.Rows {
			v := strings.TrimSpace(cellString(r[col]))
			if v == "" {
				continue
			}
			valid++
			if _, ok := ParseNumber(v, decimalComma); ok {
				numeric++
			}
		}
		ratio := 0.0
		if valid > 0 {
			ratio = float64(numeric) / float64(valid)
		}
		if ratio >= threshold {
			s.Numeric = append(s.Numeric, col)
		} else {
			s.Categorical = append(s.Categorical, col)
		}
	}
	return s
}

// ParseNumber parses a cell as a finite number. Empty, "na" and "null" are absent.
func ParseNumber(s string, decimalComma bool) (float64, bool) {
	v := strings.TrimSpace(s)
	switch strings.ToLower(v) {
	case "", "na", "null":
		return 0, false
	}
	if decimalComma {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Coerce returns a copy of d whose numeric columns hold float64 or nil.
func Coerce(d *Dataset, s Schema, decimalComma bool) *Dataset {
	out := d.Clone()
	for _, r := range out.Rows {
		for _, col := range s.Numeric {
			if f, ok := ParseNumber(cellString(r[col]), decimalComma); ok {
				r[col] = f
			} else {
				r[col] = nil
			}
		}
	}
	return out
}

// MinMaxNormalize returns a copy of d with cols rescaled to [0,1].
// A zero-range column maps to 0.5; absent cells are left alone.
// Clustering epsilon is in raw units, so this changes observed iteration counts.
func MinMaxNormalize(d *Dataset, cols []string) *Dataset {
	out := d.Clone()
	for _, col := range cols {
		var vals []float64
		for i := range out.Rows {
			if v, ok := out.Value(i, col); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		lo, hi := floats.Min(vals), floats.Max(vals)
		span := hi - lo
		for i, r := range out.Rows {
			v, ok := out.Value(i, col)
			if !ok {
				continue
			}
			if span == 0 {
				r[col] = 0.5
			} else {
				r[col] = (v - lo) / span
			}
		}
	}
	return out
}
