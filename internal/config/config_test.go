package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[resolution]
normalize_batch_size = 2500
timeout_seconds = 5

[classifier]
max_edges = 100
type_filter = false
match_mode = "word"

[memgraph]
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2500, cfg.Resolution.NormalizeBatchSize)
	assert.Equal(t, 5*time.Second, cfg.Resolution.Timeout())
	// untouched keys keep defaults
	assert.Equal(t, 500, cfg.Resolution.SynonymsBatchSize)
	assert.Equal(t, "|", cfg.Classifier.Delimiter)
	assert.Equal(t, "NA", cfg.Classifier.Placeholder)

	assert.Equal(t, 100, cfg.Classifier.MaxEdges)
	assert.False(t, cfg.Classifier.TypeFilter)
	assert.Equal(t, MatchModeWord, cfg.Classifier.MatchMode)
	assert.True(t, cfg.Memgraph.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[resolution\nfoo="), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("EDGEQC_NORMALIZER_URL", "http://norm.local")
	t.Setenv("EDGEQC_MAX_EDGES", "42")
	t.Setenv("EDGEQC_TYPE_FILTER", "false")
	t.Setenv("EDGEQC_OUTPUT_DIR", "/tmp/qc")
	t.Setenv("MEMGRAPH_PASSWORD", "secret")
	t.Setenv("PORT", "9090")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "http://norm.local", cfg.Resolution.NormalizerURL)
	assert.Equal(t, 42, cfg.Classifier.MaxEdges)
	assert.False(t, cfg.Classifier.TypeFilter)
	assert.Equal(t, "/tmp/qc", cfg.Output.Dir)
	assert.Equal(t, "/tmp/qc", cfg.Server.OutputDir)
	assert.Equal(t, "secret", cfg.Memgraph.Password)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"zero batch size", func(c *Config) { c.Resolution.SynonymsBatchSize = 0 }, "batch sizes"},
		{"empty delimiter", func(c *Config) { c.Classifier.Delimiter = "" }, "delimiter"},
		{"negative max edges", func(c *Config) { c.Classifier.MaxEdges = -1 }, "max_edges"},
		{"unknown match mode", func(c *Config) { c.Classifier.MatchMode = "fuzzy" }, "match_mode"},
		{"no workers", func(c *Config) { c.Classifier.Workers = 0 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
