package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
)

// projectTypePatterns maps marker files to human-readable project types
// and the highlighter language their sources use.
var projectTypePatterns = map[string]struct {
	Name     string
	Language string
}{
	"go.mod":           {Name: "Go", Language: "go"},
	"package.json":     {Name: "Node.js/TypeScript", Language: "typescript"},
	"requirements.txt": {Name: "Python", Language: "python"},
	"pyproject.toml":   {Name: "Python", Language: "python"},
	"Cargo.toml":       {Name: "Rust", Language: "rust"},
	"pom.xml":          {Name: "Java", Language: "java"},
	"Gemfile":          {Name: "Ruby", Language: "ruby"},
}

// detectProjectType checks dir for well-known project markers.
func detectProjectType(dir string) (name string, language string) {
	for marker, info := range projectTypePatterns {
		matches, _ := filepath.Glob(filepath.Join(dir, marker))
		if len(matches) > 0 {
			return info.Name, info.Language
		}
	}
	return "", ""
}

// styleChoices are offered first by the wizard; any chroma style name may be
// typed into the config file by hand.
var styleChoices = []string{"github", "monokai", "dracula", "solarized-light", "solarized-dark", "vs"}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to relview! Let's configure your project.")
	fmt.Println()

	projType, language := detectProjectType(".")
	if projType != "" {
		fmt.Printf("Detected project type: %s\n\n", projType)
	}

	cfg := DefaultConfig()

	// 1. Highlight style.
	stylePrompt := promptui.Select{
		Label: "Select highlight style",
		Items: styleChoices,
	}
	_, style, err := stylePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("style selection: %w", err)
	}
	cfg.Style = style

	// 2. Digest algorithm.
	digestPrompt := promptui.Select{
		Label: "Select source digest",
		Items: []string{
			"sha256 - SHA-256, widely available",
			"blake3 - BLAKE3, faster on large files",
		},
	}
	digestIdx, _, err := digestPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("digest selection: %w", err)
	}
	cfg.Digest = []string{"sha256", "blake3"}[digestIdx]

	// 3. Language.
	languagePrompt := promptui.Prompt{
		Label:   "Source language (blank to detect per file)",
		Default: language,
	}
	if cfg.Language, err = languagePrompt.Run(); err != nil {
		return nil, fmt.Errorf("language: %w", err)
	}
	cfg.Language = strings.TrimSpace(cfg.Language)

	// 4. Include patterns for batch runs.
	includePrompt := promptui.Prompt{
		Label:   "Batch include patterns (comma-separated globs)",
		Default: "**",
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	if include := splitAndTrim(includeStr); len(include) > 0 {
		cfg.Batch.Include = include
	}

	// 5. Highlight cache.
	cachePrompt := promptui.Prompt{
		Label:   "Highlight cache database (blank to disable)",
		Default: ".relview-cache.db",
	}
	if cfg.CachePath, err = cachePrompt.Run(); err != nil {
		return nil, fmt.Errorf("cache path: %w", err)
	}
	cfg.CachePath = strings.TrimSpace(cfg.CachePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
