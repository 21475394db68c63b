package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TABULA_K", "5")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, c.K)
	assert.Equal(t, 30, c.MaxIterations)
	assert.Equal(t, 0.85, c.NumericThreshold)
	assert.Equal(t, 20000, c.MaxRows)
	assert.Equal(t, "markdown", c.OutputFormat)
	assert.NoError(t, c.Validate())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	c, err := Load("")
	require.NoError(t, err)
	c.K = 4
	c.Normalize = true
	c.OutputFormat = "json"
	require.NoError(t, Save(c, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "max_iterations: 30")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, got.K)
	assert.True(t, got.Normalize)
	assert.Equal(t, "json", got.OutputFormat)
}

func TestValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	for name, mutate := range map[string]func(*Global){
		"k":         func(c *Global) { c.K = 11 },
		"iter":      func(c *Global) { c.MaxIterations = 0 },
		"threshold": func(c *Global) { c.NumericThreshold = 1.5 },
		"rows":      func(c *Global) { c.MaxRows = -1 },
		"format":    func(c *Global) { c.OutputFormat = "xml" },
		"plot":      func(c *Global) { c.PlotWidthIn = 0 },
	} {
		c := *base
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}
