package config

// Config is the top-level relview configuration, corresponding to .relview.yml.
type Config struct {
	Language    string      `yaml:"language" koanf:"language"`
	Style       string      `yaml:"style" koanf:"style"`
	Digest      string      `yaml:"digest" koanf:"digest"`
	TabWidth    int         `yaml:"tab_width" koanf:"tab_width"`
	LineNumbers bool        `yaml:"line_numbers" koanf:"line_numbers"`
	Title       string      `yaml:"title" koanf:"title"`
	CachePath   string      `yaml:"cache_path" koanf:"cache_path"`
	LogLevel    string      `yaml:"log_level" koanf:"log_level"`
	LogFormat   string      `yaml:"log_format" koanf:"log_format"`
	Batch       BatchConfig `yaml:"batch" koanf:"batch"`
	Serve       ServeConfig `yaml:"serve" koanf:"serve"`
}

// BatchConfig holds settings for rendering a whole directory tree.
type BatchConfig struct {
	Include         []string `yaml:"include" koanf:"include"`
	Exclude         []string `yaml:"exclude" koanf:"exclude"`
	RelationsSuffix string   `yaml:"relations_suffix" koanf:"relations_suffix"`
	OutputDir       string   `yaml:"output_dir" koanf:"output_dir"`
}

// ServeConfig holds preview server settings.
type ServeConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	Open            bool `yaml:"open" koanf:"open"`
}
