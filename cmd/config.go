package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/tabula-cli/internal/config"
	"github.com/KaramelBytes/tabula-cli/internal/utils"
	"github.com/spf13/cobra"
)

var configShowJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Tabula configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if configShowJSON {
			b, err := utils.PrettyJSON(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "k: %d\n", c.K)
		fmt.Fprintf(out, "max_iterations: %d\n", c.MaxIterations)
		fmt.Fprintf(out, "normalize: %t\n", c.Normalize)
		fmt.Fprintf(out, "numeric_threshold: %.3f\n", c.NumericThreshold)
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		if c.DecimalComma {
			fmt.Fprintf(out, "decimal_comma: true\n")
		}
		fmt.Fprintf(out, "sample_rows: %d\n", c.SampleRows)
		fmt.Fprintf(out, "output_format: %s\n", c.OutputFormat)
		fmt.Fprintf(out, "plot_size_in: %.1fx%.1f\n", c.PlotWidthIn, c.PlotHeightIn)
		if c.TimeoutSec > 0 {
			fmt.Fprintf(out, "timeout_sec: %d\n", c.TimeoutSec)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// start from the file, not the loaded config, so flag overrides are not persisted
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		next := *c
		switch key {
		case "k", "max_iterations", "max_rows", "sample_rows", "timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "k":
				next.K = i
			case "max_iterations":
				next.MaxIterations = i
			case "max_rows":
				next.MaxRows = i
			case "sample_rows":
				next.SampleRows = i
			case "timeout_sec":
				next.TimeoutSec = i
			}
		case "numeric_threshold", "plot_width_in", "plot_height_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			switch key {
			case "numeric_threshold":
				next.NumericThreshold = f
			case "plot_width_in":
				next.PlotWidthIn = f
			case "plot_height_in":
				next.PlotHeightIn = f
			}
		case "normalize", "decimal_comma":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for %s: %w", key, err)
			}
			if key == "normalize" {
				next.Normalize = b
			} else {
				next.DecimalComma = b
			}
		case "output_format":
			next.OutputFormat = val
		case "delimiter":
			switch val {
			case ",", ";", "tab", "":
				next.Delimiter = val
			default:
				return fmt.Errorf("invalid delimiter: %s (use ',' ';' or tab)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = nil
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "print configuration as JSON")
}
