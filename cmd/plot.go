package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tabula-cli/internal/render"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

var (
	plotX      string
	plotY      string
	plotOutput string
	plotTitle  string
)

var plotCmd = &cobra.Command{
	Use:   "plot <file>",
	Short: "Render a scatter chart of two numeric columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		if plotOutput == "" {
			return fmt.Errorf("--output is required (e.g. chart.png)")
		}
		l, err := loadDataset(args[0], c)
		if err != nil {
			return err
		}
		if len(l.Schema.Numeric) < 2 && (plotX == "" || plotY == "") {
			return fmt.Errorf("need at least 2 numeric columns to plot")
		}
		x, y := plotX, plotY
		if x == "" {
			x = l.Schema.Numeric[0]
		}
		if y == "" {
			y = l.Schema.Numeric[1]
		}
		if err := l.requireNumeric(x, y); err != nil {
			return err
		}
		spec := render.ScatterSpec{
			Title:  plotTitle,
			X:      x,
			Y:      y,
			Rows:   l.Data,
			Width:  vg.Length(c.PlotWidthIn) * vg.Inch,
			Height: vg.Length(c.PlotHeightIn) * vg.Inch,
		}
		if err := savePlot(plotOutput, spec); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote chart to %s\n", plotOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVar(&plotX, "x", "", "X column (default: first numeric column)")
	plotCmd.Flags().StringVar(&plotY, "y", "", "Y column (default: second numeric column)")
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "chart path (.png|.svg|.pdf)")
	plotCmd.Flags().StringVar(&plotTitle, "title", "", "chart title")
}
