package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabula-cli/internal/cluster"
)

// Encode writes resp as markdown, json or yaml.
func Encode(w io.Writer, resp cluster.Response, format string) error {
	switch strings.ToLower(format) {
	case "", "markdown", "md":
		_, err := io.WriteString(w, ClusterMarkdown(resp))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s (use markdown|json|yaml)", format)
	}
}

// ClusterMarkdown renders a clustering response for terminals and docs.
func ClusterMarkdown(resp cluster.Response) string {
	var b strings.Builder
	b.WriteString("[CLUSTERING]\n")
	if !resp.OK {
		b.WriteString(fmt.Sprintf("Error: %s\n", resp.Error))
		return b.String()
	}
	res := resp.Result
	clustered := len(res.Labels) - res.Excluded
	b.WriteString(fmt.Sprintf("Run: %s\n", res.RunID))
	b.WriteString(fmt.Sprintf("Features: %s\n", strings.Join(res.Features, ", ")))
	b.WriteString(fmt.Sprintf("k: %d\n", len(res.Centroids)))
	b.WriteString(fmt.Sprintf("Rows: %d clustered, %d excluded\n", clustered, res.Excluded))
	b.WriteString(fmt.Sprintf("Iterations: %d (%s)\n", res.Iterations, res.State))
	b.WriteString(fmt.Sprintf("Inertia: %.6g\n", res.Inertia))

	b.WriteString("\n[CLUSTERS]\n| cluster | count | ")
	b.WriteString(strings.Join(res.Features, " | "))
	b.WriteString(" |\n|")
	for i := 0; i < len(res.Features)+2; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for c, centroid := range res.Centroids {
		b.WriteString(fmt.Sprintf("| %d | %d |", c, res.Counts[c]))
		for _, v := range centroid {
			b.WriteString(fmt.Sprintf(" %.4g |", v))
		}
		b.WriteString("\n")
	}
	if res.Excluded > 0 {
		b.WriteString("\n[NOTES]\n")
		b.WriteString(fmt.Sprintf("- %d rows had missing or non-finite feature values and are labelled %d\n", res.Excluded, cluster.Sentinel))
	}
	return b.String()
}
