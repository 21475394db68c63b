package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/tabula-cli/internal/config"
	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// loaded is a parsed dataset with its schema and numeric coercion applied.
type loaded struct {
	Data   *dataset.Dataset
	Schema dataset.Schema
}

func loadDataset(path string, c *cfgpkg.Global) (*loaded, error) {
	opt := dataset.DefaultOptions()
	opt.MaxRows = c.MaxRows
	opt.DecimalComma = c.DecimalComma
	switch c.Delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return nil, fmt.Errorf("unsupported delimiter: %s", c.Delimiter)
	}
	raw, err := dataset.Load(path, opt)
	if err != nil {
		return nil, err
	}
	if raw.Truncated {
		warnf("loaded only %d/%d rows due to max_rows", raw.Len(), raw.TotalRows)
	}
	schema := dataset.DetectSchema(raw, c.NumericThreshold, c.DecimalComma)
	debugf("loaded %s: %d rows, numeric=%v categorical=%v", raw.Name, raw.Len(), schema.Numeric, schema.Categorical)
	return &loaded{
		Data:   dataset.Coerce(raw, schema, c.DecimalComma),
		Schema: schema,
	}, nil
}

// requireNumeric checks that each named column was classified numeric.
func (l *loaded) requireNumeric(cols ...string) error {
	for _, c := range cols {
		if !l.Schema.IsNumeric(c) {
			return fmt.Errorf("column %q is not numeric (numeric columns: %v)", c, l.Schema.Numeric)
		}
	}
	return nil
}
