package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/tabula-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Loading flags (override config if set)
	flagMaxRows   int
	flagThreshold float64
	flagDelimiter string
	flagDecimal   string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tabula",
	Short: "Tabula CLI: explore CSV datasets and cluster them with k-means",
	Long: `Tabula loads a CSV/TSV dataset, infers numeric and categorical columns,
renders scatter charts, and runs a deterministic k-means pass over selected features.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before any command runs
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabula/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagMaxRows, "max-rows", 0, "maximum data rows to load, 0 = config default")
	rootCmd.PersistentFlags().Float64Var(&flagThreshold, "numeric-threshold", 0, "share of parseable values for a numeric column (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default: by extension)")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("max-rows") && flagMaxRows >= 0 {
		cfg.MaxRows = flagMaxRows
	}
	if f.Changed("numeric-threshold") && flagThreshold > 0 {
		cfg.NumericThreshold = flagThreshold
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("decimal") {
		switch flagDecimal {
		case ",", "comma":
			cfg.DecimalComma = true
		case ".", "dot":
			cfg.DecimalComma = false
		default:
			fmt.Fprintf(os.Stderr, "⚠ Warning: ignoring unsupported --decimal %q (use '.'|'comma')\n", flagDecimal)
		}
	}
}

// effectiveConfig returns the loaded config, falling back to defaults.
func effectiveConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", args...)
	}
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "⚠ Warning: "+format+"\n", args...)
}
