package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoData indicates a CSV without a header and at least one data row.
	ErrNoData = errors.New("csv must have a header row and at least 1 data row")
	// ErrTooFewColumns indicates a header with fewer than two columns.
	ErrTooFewColumns = errors.New("csv must contain at least 2 columns")
)

// Options controls CSV loading.
type Options struct {
	// MaxRows caps data rows kept; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, sniffed from the file name (.tsv -> tab, else ',').
	Delimiter rune
	// DecimalComma parses "1,5" as 1.5.
	DecimalComma bool
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{MaxRows: 20000}
}

// Row maps a column name to its cell: a raw string, a coerced float64, or nil.
type Row map[string]any

// Dataset is an ordered set of uniquely named columns and their rows.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
	// TotalRows counts data rows seen in the source, including truncated ones.
	TotalRows int
	Truncated bool
}

// Len implements cluster.RowSource.
func (d *Dataset) Len() int { return len(d.Rows) }

// Value implements cluster.RowSource; only coerced float64 cells are numeric.
func (d *Dataset) Value(row int, feature string) (float64, bool) {
	v, ok := d.Rows[row][feature].(float64)
	return v, ok
}

// Column returns the raw string form of every cell in col.
func (d *Dataset) Column(col string) []string {
	out := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = cellString(r[col])
	}
	return out
}

// Load opens and parses a CSV/TSV file.
func Load(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return Parse(f, filepath.Base(path), opt)
}

// Parse reads CSV records from r. Blank lines are skipped and short records padded.
func Parse(r io.Reader, name string, opt Options) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := uniqueColumns(header)
	if len(cols) < 2 {
		return nil, ErrTooFewColumns
	}

	ds := &Dataset{Name: name, Columns: cols}
	maxRows := opt.MaxRows
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", ds.TotalRows+1, err)
		}
		if blank(rec) {
			continue
		}
		ds.TotalRows++
		if maxRows > 0 && len(ds.Rows) >= maxRows {
			ds.Truncated = true
			continue
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if i < len(rec) {
				row[c] = strings.TrimSpace(rec[i])
			} else {
				row[c] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	if len(ds.Rows) == 0 {
		return nil, ErrNoData
	}
	return ds, nil
}

// Clone returns a copy whose rows can be modified independently.
func (d *Dataset) Clone() *Dataset {
	out := *d
	out.Columns = append([]string(nil), d.Columns...)
	out.Rows = make([]Row, len(d.Rows))
	for i, r := range d.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return &out
}

// uniqueColumns names every header cell, suffixing _2, _3... until the name
// is unused so generated names never collide with later literal headers.
func uniqueColumns(header []string) []string {
	used := make(map[string]bool, len(header))
	next := map[string]int{}
	cols := make([]string, 0, len(header))
	for i, h := range header {
		name := strings.Trim(strings.TrimSpace(h), `"`)
		if name == "" {
			name = fmt.Sprintf("col_%d", i)
		}
		if used[name] {
			n := next[name]
			if n < 2 {
				n = 2
			}
			for used[fmt.Sprintf("%s_%d", name, n)] {
				n++
			}
			next[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		}
		used[name] = true
		cols = append(cols, name)
	}
	return cols
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}
