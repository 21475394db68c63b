package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/KaramelBytes/tabula-cli/internal/cluster"
	"github.com/KaramelBytes/tabula-cli/internal/dataset"
	"github.com/KaramelBytes/tabula-cli/internal/render"
	"github.com/KaramelBytes/tabula-cli/internal/utils"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

var (
	cluFeatures  []string
	cluK         int
	cluMaxIter   int
	cluNormalize bool
	cluFormat    string
	cluOutput    string
	cluPlot      string
	cluX         string
	cluY         string
	cluTimeout   time.Duration
)

// newWorker is swapped in tests.
var newWorker = func() *cluster.Worker { return cluster.NewWorker() }

var clusterCmd = &cobra.Command{
	Use:   "cluster <file>",
	Short: "Run deterministic k-means over numeric feature columns",
	Long: `Run k-means over 2-8 numeric feature columns. Rows with a missing or
non-finite value in any feature are excluded and labelled -1.
Centroid convergence is measured in raw feature units; use --normalize
to rescale features to [0,1] first when their ranges differ.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := effectiveConfig()
		if err != nil {
			return err
		}
		// flag overrides apply to this run only
		cc := *base
		c := &cc
		f := cmd.Flags()
		if f.Changed("k") {
			c.K = cluK
		}
		if f.Changed("max-iter") {
			c.MaxIterations = cluMaxIter
		}
		if f.Changed("normalize") {
			c.Normalize = cluNormalize
		}
		if f.Changed("format") {
			c.OutputFormat = cluFormat
		}
		timeout := time.Duration(c.TimeoutSec) * time.Second
		if f.Changed("timeout") {
			timeout = cluTimeout
		}
		if err := c.Validate(); err != nil {
			return err
		}

		l, err := loadDataset(args[0], c)
		if err != nil {
			return err
		}
		features := cluFeatures
		if len(features) == 0 {
			features = defaultFeatures(l.Schema)
			debugf("no --features given, using %v", features)
		}
		if err := l.requireNumeric(features...); err != nil {
			return err
		}
		data := l.Data
		if c.Normalize {
			data = dataset.MinMaxNormalize(data, features)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		w := newWorker()
		defer w.Close()
		res, runErr := w.Do(ctx, cluster.Request{
			Rows:          data,
			Features:      features,
			K:             c.K,
			MaxIterations: c.MaxIterations,
		})
		outcome := cluster.Outcome{Result: res, Err: runErr}
		if res != nil {
			debugf("run %s: state=%s iterations=%d excluded=%d", res.RunID, res.State, res.Iterations, res.Excluded)
		}

		if err := writeClusterOutput(cmd.OutOrStdout(), outcome.Response(), c.OutputFormat); err != nil {
			return err
		}
		if runErr != nil {
			if !cluster.IsUserError(runErr) {
				return fmt.Errorf("cluster run aborted: %w", runErr)
			}
			return runErr
		}
		if cluPlot != "" {
			return writeClusterPlot(cmd, data, res, c.PlotWidthIn, c.PlotHeightIn)
		}
		return nil
	},
}

func writeClusterOutput(stdout io.Writer, resp cluster.Response, format string) error {
	if cluOutput == "" {
		return render.Encode(stdout, resp, format)
	}
	out, err := utils.CreateOutput(cluOutput)
	if err != nil {
		return err
	}
	if err := render.Encode(out, resp, format); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	fmt.Fprintf(stdout, "✓ Wrote clustering result to %s\n", cluOutput)
	return nil
}

func writeClusterPlot(cmd *cobra.Command, data *dataset.Dataset, res *cluster.Result, widthIn, heightIn float64) error {
	x, y := cluX, cluY
	if x == "" {
		x = res.Features[0]
	}
	if y == "" {
		y = res.Features[1]
	}
	spec := render.ScatterSpec{
		Title:     fmt.Sprintf("k-means (k=%d)", len(res.Centroids)),
		X:         x,
		Y:         y,
		Rows:      data,
		Width:     vg.Length(widthIn) * vg.Inch,
		Height:    vg.Length(heightIn) * vg.Inch,
		Labels:    res.Labels,
		Centroids: res.Centroids,
		Features:  res.Features,
	}
	if err := savePlot(cluPlot, spec); err != nil {
		// the clustering itself succeeded; the chart is optional
		if errors.Is(err, render.ErrTooFewPoints) {
			warnf("chart skipped: %v", err)
			return nil
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote chart to %s\n", cluPlot)
	return nil
}

func savePlot(path string, spec render.ScatterSpec) error {
	format, err := render.FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := utils.CreateOutput(path)
	if err != nil {
		return err
	}
	if err := render.Scatter(spec, out, format); err != nil {
		out.Close()
		_ = os.Remove(path)
		return err
	}
	return out.Close()
}

// defaultFeatures picks the leading numeric columns, capped at cluster.MaxFeatures.
func defaultFeatures(s dataset.Schema) []string {
	n := len(s.Numeric)
	if n > cluster.MaxFeatures {
		n = cluster.MaxFeatures
	}
	return append([]string(nil), s.Numeric[:n]...)
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.Flags().StringSliceVarP(&cluFeatures, "features", "f", nil, "comma-separated numeric feature columns (2-8); default: leading numeric columns")
	clusterCmd.Flags().IntVarP(&cluK, "k", "k", 3, "number of clusters (2-10)")
	clusterCmd.Flags().IntVar(&cluMaxIter, "max-iter", 30, "maximum k-means iterations")
	clusterCmd.Flags().BoolVar(&cluNormalize, "normalize", false, "min-max rescale features to [0,1] before clustering")
	clusterCmd.Flags().StringVar(&cluFormat, "format", "markdown", "output format: markdown|json|yaml")
	clusterCmd.Flags().StringVarP(&cluOutput, "output", "o", "", "optional path to write the result")
	clusterCmd.Flags().StringVar(&cluPlot, "plot", "", "optional chart path (.png|.svg|.pdf) colored by cluster")
	clusterCmd.Flags().StringVar(&cluX, "x", "", "chart X feature (default: first feature)")
	clusterCmd.Flags().StringVar(&cluY, "y", "", "chart Y feature (default: second feature)")
	clusterCmd.Flags().DurationVar(&cluTimeout, "timeout", 0, "abandon the run after this long (e.g. 10s)")
}
