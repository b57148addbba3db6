package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Scrape.MaxPages)
	assert.Equal(t, 0.8, cfg.Scrape.DelayMin)
	assert.Equal(t, 1.6, cfg.Scrape.DelayMax)
	assert.Equal(t, 1, cfg.Scrape.Concurrency)
	assert.Equal(t, "Default", cfg.Scrape.ListName)
	assert.Equal(t, "leads.json", cfg.Scrape.Out)
	assert.Equal(t, 120, cfg.Scrape.MaxNameLen)
	assert.Equal(t, "auto", cfg.Render.Mode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
scrape:
  max_pages: 7
  list_name: Ashburn
render:
  mode: static
`), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Scrape.MaxPages)
	assert.Equal(t, "Ashburn", cfg.Scrape.ListName)
	assert.Equal(t, "static", cfg.Render.Mode)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1, cfg.Scrape.Concurrency)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEADGEN_SCRAPE_MAX_PAGES", "9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Scrape.MaxPages)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("scrape: ["), 0o644))
	t.Chdir(dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	valid := Config{
		Scrape: ScrapeConfig{MaxPages: 3, DelayMin: 0.8, DelayMax: 1.6, Concurrency: 1},
		Render: RenderConfig{Mode: "auto"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero delays allowed", func(c *Config) { c.Scrape.DelayMin = 0; c.Scrape.DelayMax = 0 }, false},
		{"zero max pages", func(c *Config) { c.Scrape.MaxPages = 0 }, true},
		{"negative delay", func(c *Config) { c.Scrape.DelayMin = -1 }, true},
		{"max below min", func(c *Config) { c.Scrape.DelayMax = 0.5 }, true},
		{"zero concurrency", func(c *Config) { c.Scrape.Concurrency = 0 }, true},
		{"unknown render mode", func(c *Config) { c.Render.Mode = "curl" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
