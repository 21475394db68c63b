package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abOutDir     string
	abSampleRows int
	abCorr       bool
	abOutliers   bool
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV files with progress and optional summary files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := effectiveConfig()
		if err != nil {
			return err
		}

		opt := analysis.DefaultOptions()
		opt.SampleRows = c.SampleRows
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = abSampleRows
		}
		opt.Correlations = abCorr
		opt.Outliers = abOutliers

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			l, err := loadDataset(path, c)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			md := analysis.Profile(l.Data, l.Schema, opt).Markdown()

			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, md)
				}
				continue
			}
			if err := os.MkdirAll(abOutDir, 0o755); err != nil {
				return err
			}
			outFile := summaryPath(abOutDir, path)
			if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, deduplicated and sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// summaryPath returns <dir>/<base>.summary.md, suffixing __2, __3... to avoid overwrites.
func summaryPath(dir, input string) string {
	base := filepath.Base(input)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	outFile := filepath.Join(dir, safe+".summary.md")
	if _, err := os.Stat(outFile); err != nil {
		return outFile
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", safe, idx))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			if !abQuiet {
				warnf("existing summary found, writing to %s to avoid overwrite", filepath.Base(cand))
			}
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory to write <name>.summary.md files")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 6, "number of sample rows to include (0 disables samples)")
	analyzeBatchCmd.Flags().BoolVar(&abCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	analyzeBatchCmd.Flags().BoolVar(&abOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
