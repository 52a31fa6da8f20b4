package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "github", cfg.Style)
	assert.Equal(t, "sha256", cfg.Digest)
	assert.Equal(t, 4, cfg.TabWidth)
	assert.True(t, cfg.LineNumbers)
	assert.Equal(t, ".relations.json", cfg.Batch.RelationsSuffix)
	assert.Equal(t, 8080, cfg.Serve.Port)
	assert.Contains(t, cfg.Batch.Exclude, "**/target/**")
}

func TestDefaultConfigDoesNotShareExcludes(t *testing.T) {
	a := DefaultConfig()
	a.Batch.Exclude[0] = "changed"
	assert.NotEqual(t, "changed", DefaultExcludes[0], "DefaultConfig must copy DefaultExcludes")
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.relview.yml")

	original := DefaultConfig()
	original.Language = "rust"
	original.Style = "monokai"
	original.Digest = "blake3"
	original.LineNumbers = false
	original.Batch.Include = []string{"**/*.rs", "**/*.go"}
	original.Batch.Exclude = []string{"target/**"}
	original.Serve.Port = 9000

	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rust", loaded.Language)
	assert.Equal(t, "monokai", loaded.Style)
	assert.Equal(t, "blake3", loaded.Digest)
	assert.False(t, loaded.LineNumbers)
	assert.Equal(t, 9000, loaded.Serve.Port)
	assert.Equal(t, original.Batch.Include, loaded.Batch.Include)
	assert.Equal(t, []string{"target/**"}, loaded.Batch.Exclude)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	require.NoError(t, os.WriteFile(path, []byte("style: dracula\nbatch:\n  output_dir: site\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dracula", cfg.Style)
	assert.Equal(t, "site", cfg.Batch.OutputDir)
	assert.Equal(t, ".relations.json", cfg.Batch.RelationsSuffix)
	assert.Equal(t, 4, cfg.TabWidth)
}

func TestLoadMissingFile(t *testing.T) {
	// A missing file yields defaults, not an error.
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "github", cfg.Style)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("style: [unclosed\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("RELVIEW_DIGEST", "blake3")
	t.Setenv("RELVIEW_BATCH__OUTPUT_DIR", "public")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "blake3", loaded.Digest)
	assert.Equal(t, "public", loaded.Batch.OutputDir)
}

func TestValidateValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"digest", func(c *Config) { c.Digest = "md5" }},
		{"tab width", func(c *Config) { c.TabWidth = -1 }},
		{"log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
		{"suffix", func(c *Config) { c.Batch.RelationsSuffix = "" }},
		{"output dir", func(c *Config) { c.Batch.OutputDir = "" }},
		{"port", func(c *Config) { c.Serve.Port = 70000 }},
		{"include pattern", func(c *Config) { c.Batch.Include = []string{"src/[abc"} }},
		{"exclude pattern", func(c *Config) { c.Batch.Exclude = append(c.Batch.Exclude, "{a,b") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestDetectProjectType(t *testing.T) {
	dir := t.TempDir()
	name, _ := detectProjectType(dir)
	assert.Empty(t, name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\n"), 0644))
	name, lang := detectProjectType(dir)
	assert.Equal(t, "Rust", name)
	assert.Equal(t, "rust", lang)
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.go", []string{"**/*.go"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitAndTrim(tt.input), tt.input)
	}
}
