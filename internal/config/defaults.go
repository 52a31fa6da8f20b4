package config

// DefaultConfigFile is the file name looked up when --config is not given.
const DefaultConfigFile = ".relview.yml"

// DefaultExcludes are the glob patterns batch runs skip unless the config
// file sets its own list. A pattern ending in "/**" prunes the directory it
// names; the batch output directory is always skipped separately.
var DefaultExcludes = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/__pycache__/**",
	"**/.venv/**",
	"**/.idea/**",
	"**/.vscode/**",
	"**/target/**",
	"**/dist/**",
	"**/build/**",
	"**/.DS_Store",
	"*.min.js",
	"*.min.css",
	"*.lock",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Style:       "github",
		Digest:      "sha256",
		TabWidth:    4,
		LineNumbers: true,
		LogLevel:    "info",
		LogFormat:   "text",
		Batch: BatchConfig{
			Include:         []string{"**"},
			Exclude:         append([]string(nil), DefaultExcludes...),
			RelationsSuffix: ".relations.json",
			OutputDir:       "relview-out",
		},
		Serve: ServeConfig{
			Port: 8080,
		},
	}
}
