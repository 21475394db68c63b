package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabula-cli/internal/cluster"
)

func fixtureRows() cluster.Records {
	return cluster.Records{
		{"x": 0, "y": 0}, {"x": 1, "y": 1}, {"x": 2, "y": 0},
		{"x": 10, "y": 10}, {"x": 11, "y": 11}, {"x": 12, "y": 10},
		{"y": 3},
	}
}

func TestScatter_PNGWithLabels(t *testing.T) {
	spec := ScatterSpec{
		Title:     "test",
		X:         "x",
		Y:         "y",
		Rows:      fixtureRows(),
		Labels:    []int{0, 0, 0, 1, 1, 1, cluster.Sentinel},
		Centroids: [][]float64{{1, 0.33}, {11, 10.33}},
		Features:  []string{"x", "y"},
	}
	var buf bytes.Buffer
	if err := Scatter(spec, &buf, "png"); err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}
}

func TestScatter_SVGPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := Scatter(ScatterSpec{X: "x", Y: "y", Rows: fixtureRows()}, &buf, "svg"); err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Fatalf("output is not SVG")
	}
}

func TestScatter_Errors(t *testing.T) {
	var buf bytes.Buffer
	few := cluster.Records{{"x": 1, "y": 1}, {"x": 2, "y": 2}}
	if err := Scatter(ScatterSpec{X: "x", Y: "y", Rows: few}, &buf, "png"); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("few points: got %v", err)
	}
	if err := Scatter(ScatterSpec{X: "x", Y: "y", Rows: fixtureRows(), Labels: []int{0}}, &buf, "png"); err == nil {
		t.Fatalf("expected label length error")
	}
	if err := Scatter(ScatterSpec{X: "x", Rows: fixtureRows()}, &buf, "png"); err == nil {
		t.Fatalf("expected missing field error")
	}
}

func TestFormatFromPath(t *testing.T) {
	if f, err := FormatFromPath("out/Chart.SVG"); err != nil || f != "svg" {
		t.Fatalf("svg: %q %v", f, err)
	}
	if _, err := FormatFromPath("chart.gif"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func sampleResponse() cluster.Response {
	return cluster.Outcome{Result: &cluster.Result{
		RunID:      "run-1",
		Features:   []string{"x", "y"},
		Labels:     []int{0, 1, cluster.Sentinel},
		Centroids:  [][]float64{{1, 2}, {3, 4}},
		Iterations: 2,
		Inertia:    0.5,
		Counts:     []int{1, 1},
		State:      cluster.Converged,
		Excluded:   1,
	}}.Response()
}

func TestEncode_Formats(t *testing.T) {
	resp := sampleResponse()

	var md bytes.Buffer
	if err := Encode(&md, resp, "markdown"); err != nil {
		t.Fatalf("markdown: %v", err)
	}
	for _, want := range []string{"[CLUSTERING]", "Iterations: 2 (converged)", "Rows: 2 clustered, 1 excluded", "| 0 | 1 | 1 | 2 |", "[NOTES]"} {
		if !strings.Contains(md.String(), want) {
			t.Fatalf("markdown missing %q:\n%s", want, md.String())
		}
	}

	var js bytes.Buffer
	if err := Encode(&js, resp, "json"); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	result := decoded["result"].(map[string]any)
	if decoded["ok"] != true || result["state"] != "converged" {
		t.Fatalf("json = %s", js.String())
	}

	var ym bytes.Buffer
	if err := Encode(&ym, resp, "yaml"); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var y map[string]any
	if err := yaml.Unmarshal(ym.Bytes(), &y); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if y["ok"] != true || !strings.Contains(ym.String(), "state: converged") {
		t.Fatalf("yaml = %s", ym.String())
	}

	if err := Encode(&ym, resp, "xml"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestClusterMarkdown_Failure(t *testing.T) {
	resp := cluster.Outcome{Err: &cluster.InsufficientDataError{Valid: 3, Required: 4}}.Response()
	md := ClusterMarkdown(resp)
	if !strings.Contains(md, "Error: not enough valid numeric rows") {
		t.Fatalf("markdown = %s", md)
	}
}
