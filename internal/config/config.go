package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabula-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	// Clustering defaults
	K             int  `mapstructure:"k" yaml:"k"`
	MaxIterations int  `mapstructure:"max_iterations" yaml:"max_iterations"`
	Normalize     bool `mapstructure:"normalize" yaml:"normalize"`

	// Loading and schema detection
	NumericThreshold float64 `mapstructure:"numeric_threshold" yaml:"numeric_threshold"`
	MaxRows          int     `mapstructure:"max_rows" yaml:"max_rows"`
	Delimiter        string  `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalComma     bool    `mapstructure:"decimal_comma" yaml:"decimal_comma"`
	SampleRows       int     `mapstructure:"sample_rows" yaml:"sample_rows"`

	// Output
	OutputFormat string  `mapstructure:"output_format" yaml:"output_format"`
	PlotWidthIn  float64 `mapstructure:"plot_width_in" yaml:"plot_width_in"`
	PlotHeightIn float64 `mapstructure:"plot_height_in" yaml:"plot_height_in"`

	// Execution
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Validate rejects values the commands cannot work with.
func (c *Global) Validate() error {
	if c.K < 2 || c.K > 10 {
		return fmt.Errorf("k must be in [2,10], got %d", c.K)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be >= 1, got %d", c.MaxIterations)
	}
	if c.NumericThreshold <= 0 || c.NumericThreshold > 1 {
		return fmt.Errorf("numeric_threshold must be in (0,1], got %g", c.NumericThreshold)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max_rows must be >= 0, got %d", c.MaxRows)
	}
	switch c.OutputFormat {
	case "markdown", "json", "yaml":
	default:
		return fmt.Errorf("output_format must be markdown, json or yaml, got %q", c.OutputFormat)
	}
	if c.PlotWidthIn <= 0 || c.PlotHeightIn <= 0 {
		return fmt.Errorf("plot size must be positive, got %gx%g", c.PlotWidthIn, c.PlotHeightIn)
	}
	return nil
}

// DefaultPath returns ~/.tabula/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabula", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabula/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABULA")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("k", 3)
	v.SetDefault("max_iterations", 30)
	v.SetDefault("normalize", false)
	v.SetDefault("numeric_threshold", 0.85)
	v.SetDefault("max_rows", 20000)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_comma", false)
	v.SetDefault("sample_rows", 6)
	v.SetDefault("output_format", "markdown")
	v.SetDefault("plot_width_in", 6.0)
	v.SetDefault("plot_height_in", 4.0)
	v.SetDefault("timeout_sec", 0)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
