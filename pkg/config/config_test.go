package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Processing.Components)
	assert.True(t, cfg.Processing.Normalize)
	assert.Equal(t, []string{".tif", ".tiff"}, cfg.Processing.Extensions)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Processing.Components, cfg.Processing.Components)
	assert.Equal(t, DefaultConfig().Output.CellSize, cfg.Output.CellSize)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
processing:
  components: 2
  normalize: false
  extensions: [".tif"]
output:
  dir: results
  saveTrend: true
  cellSize: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Processing.Components)
	assert.False(t, cfg.Processing.Normalize)
	assert.Equal(t, []string{".tif"}, cfg.Processing.Extensions)
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.True(t, cfg.Output.SaveTrend)
	assert.Equal(t, 8, cfg.Output.CellSize)
	// untouched keys keep their defaults
	assert.True(t, cfg.Output.SaveComposite)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processing:\n  components: 2\n"), 0644))

	t.Setenv("ARCHEOVIEW_PROCESSING_COMPONENTS", "5")
	t.Setenv("ARCHEOVIEW_OUTPUT_VERBOSE", "true")
	t.Setenv("ARCHEOVIEW_PROCESSING_EXTENSIONS", ".tif,.TIFF")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Processing.Components)
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, []string{".tif", ".TIFF"}, cfg.Processing.Extensions)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("processing: [unclosed"), 0644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("processing:\n  components: 0\n"), 0644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "components")
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
