package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

var csvRows = []string{
	"group,score,temp,label",
	"A,10,20,alpha",
	"A,11,21,alpha",
	"B,9.5,19,beta",
	"B,10.5,22,alpha",
	"A,9.8,NA,beta",
	"B,10.2,23,alpha",
	"A,8.8,18,gamma",
	"B,9.7,20,beta",
	"A,50,24,alpha",
}

func loadFixture(t *testing.T, maxRows int) (*dataset.Dataset, dataset.Schema) {
	t.Helper()
	opt := dataset.DefaultOptions()
	opt.MaxRows = maxRows
	raw, err := dataset.Parse(strings.NewReader(strings.Join(csvRows, "\n")), "metrics.csv", opt)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := dataset.DetectSchema(raw, dataset.DefaultNumericThreshold, false)
	return dataset.Coerce(raw, s, false), s
}

func TestProfileAndMarkdown(t *testing.T) {
	ds, s := loadFixture(t, 0)
	opt := DefaultOptions()
	opt.SampleRows = 3
	opt.Correlations = true
	rep := Profile(ds, s, opt)

	if rep.Rows != 9 || len(rep.Cols) != 4 {
		t.Fatalf("rows=%d cols=%d", rep.Rows, len(rep.Cols))
	}
	score := rep.Cols[1]
	if score.Kind != "numeric" || score.NonNull != 9 {
		t.Fatalf("score = %+v", score)
	}
	vals := []float64{10, 11, 9.5, 10.5, 9.8, 10.2, 8.8, 9.7, 50}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	if math.Abs(score.Mean-sum/9) > 1e-9 || score.Min != 8.8 || score.Max != 50 {
		t.Fatalf("score stats = %+v", score)
	}
	if score.OutliersCount != 1 {
		t.Fatalf("score outliers = %d, want 1", score.OutliersCount)
	}
	temp := rep.Cols[2]
	if temp.Missing != 1 || temp.NonNull != 8 {
		t.Fatalf("temp = %+v", temp)
	}
	label := rep.Cols[3]
	if label.Kind != "categorical" || label.TopValues[0].Value != "alpha" || label.TopValues[0].Count != 5 {
		t.Fatalf("label = %+v", label)
	}
	if rep.Corr == nil || len(rep.Corr.Columns) != 2 || rep.Corr.Values[0][0] != 1 {
		t.Fatalf("corr = %+v", rep.Corr)
	}
	if r := rep.Corr.Values[0][1]; r != rep.Corr.Values[1][0] || r < -1 || r > 1 {
		t.Fatalf("corr not symmetric/bounded: %v", rep.Corr.Values)
	}

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: metrics.csv",
		"Columns: 4 (numeric 2, categorical 2)",
		"- score: numeric (non-null 9, missing 0.0%)",
		"outliers: 1 above |z|>3.5",
		"- label: categorical",
		"alpha(5)",
		"[CORRELATIONS]",
		"- score ~ temp: r=",
		"[HEAD AND SAMPLE ROWS]",
		"| A | 10 | 20 | alpha |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "[NOTES]") {
		t.Fatalf("unexpected notes:\n%s", md)
	}
}

func TestProfileTruncationWarning(t *testing.T) {
	ds, s := loadFixture(t, 4)
	rep := Profile(ds, s, DefaultOptions())
	md := rep.Markdown()
	if !strings.Contains(md, "Rows: 4 (truncated from 9)") {
		t.Fatalf("missing truncation header:\n%s", md)
	}
	if !strings.Contains(md, "loaded only 4/9 rows due to MaxRows") {
		t.Fatalf("missing truncation note:\n%s", md)
	}
}
