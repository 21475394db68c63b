package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// Options controls profiling.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues caps the categorical top list.
	TopValues int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD); counts |z| > OutlierThreshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{SampleRows: 6, TopValues: 8, Outliers: true, OutlierThreshold: 3.5}
}

// Report is a markdown-friendly profile of a loaded dataset.
type Report struct {
	Name     string
	Rows     int
	Total    int
	Cols     []ColumnSummary
	Schema   dataset.Schema
	Samples  [][]string
	Corr     *CorrMatrix
	Warnings []string
}

// ColumnSummary captures the schema kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|categorical
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutlierThreshold float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// Profile summarises ds. Numeric columns are read from their coerced float64 cells,
// so ds should be the output of dataset.Coerce for schema.
func Profile(ds *dataset.Dataset, schema dataset.Schema, opt Options) *Report {
	if opt.SampleRows < 0 {
		opt.SampleRows = 0
	}
	if opt.TopValues <= 0 {
		opt.TopValues = 8
	}
	rep := &Report{Name: ds.Name, Rows: ds.Len(), Total: ds.TotalRows, Schema: schema}

	for _, col := range ds.Columns {
		if schema.IsNumeric(col) {
			rep.Cols = append(rep.Cols, numericSummary(ds, col, opt))
		} else {
			rep.Cols = append(rep.Cols, categoricalSummary(ds, col, opt))
		}
	}

	for i := 0; i < opt.SampleRows && i < ds.Len(); i++ {
		row := make([]string, len(ds.Columns))
		for j, col := range ds.Columns {
			if v, ok := ds.Value(i, col); ok {
				row[j] = fmt.Sprintf("%.4g", v)
			} else if s, ok := ds.Rows[i][col].(string); ok {
				row[j] = s
			}
		}
		rep.Samples = append(rep.Samples, row)
	}

	if opt.Correlations && len(schema.Numeric) >= 2 {
		rep.Corr = correlations(ds, schema.Numeric)
	}
	if ds.Truncated {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("loaded only %d/%d rows due to MaxRows", ds.Len(), ds.TotalRows))
	}
	if len(schema.Numeric) < 2 {
		rep.Warnings = append(rep.Warnings, "need at least 2 numeric columns to plot or cluster")
	}
	return rep
}

func numericSummary(ds *dataset.Dataset, col string, opt Options) ColumnSummary {
	s := ColumnSummary{Name: col, Kind: "numeric", Min: math.Inf(1), Max: math.Inf(-1)}
	var n int
	var mean, m2 float64
	var vals []float64
	for i := range ds.Rows {
		x, ok := ds.Value(i, col)
		if !ok {
			s.Missing++
			continue
		}
		s.NonNull++
		vals = append(vals, x)
		// Welford update
		n++
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
	}
	if n == 0 {
		s.Min, s.Max = 0, 0
		return s
	}
	s.Mean = mean
	if n > 1 {
		s.Std = math.Sqrt(m2 / float64(n-1))
	}
	s.Unique = countUnique(vals)
	if opt.Outliers && len(vals) >= 8 {
		thr := opt.OutlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		median, mad := medianMAD(vals)
		if mad > 0 {
			for _, v := range vals {
				if math.Abs(0.6745*(v-median)/mad) > thr {
					s.OutliersCount++
				}
			}
		}
		s.OutlierThreshold = thr
	}
	return s
}

func categoricalSummary(ds *dataset.Dataset, col string, opt Options) ColumnSummary {
	s := ColumnSummary{Name: col, Kind: "categorical"}
	cats := map[string]int{}
	for _, v := range ds.Column(col) {
		v = strings.TrimSpace(v)
		if v == "" {
			s.Missing++
			continue
		}
		s.NonNull++
		cats[v]++
	}
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > opt.TopValues {
		tops = tops[:opt.TopValues]
	}
	s.TopValues = tops
	s.Unique = len(cats)
	return s
}

// correlations uses pairwise-complete observations.
func correlations(ds *dataset.Dataset, cols []string) *CorrMatrix {
	n := len(cols)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			var cnt, sx, sy, sxx, syy, sxy float64
			for i := range ds.Rows {
				x, okx := ds.Value(i, cols[a])
				y, oky := ds.Value(i, cols[b])
				if !okx || !oky {
					continue
				}
				cnt++
				sx += x
				sy += y
				sxx += x * x
				syy += y * y
				sxy += x * y
			}
			var r float64
			if cnt >= 2 {
				if denom := math.Sqrt((cnt*sxx - sx*sx) * (cnt*syy - sy*sy)); denom != 0 {
					r = (cnt*sxy - sx*sy) / denom
				}
			}
			r = math.Max(-1, math.Min(1, r))
			if math.IsNaN(r) {
				r = 0
			}
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), cols...), Values: mat}
}

func countUnique(vals []float64) int {
	seen := make(map[float64]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
