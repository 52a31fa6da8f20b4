package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/relview/internal/cache"
	"github.com/ziadkadry99/relview/internal/config"
	"github.com/ziadkadry99/relview/internal/db"
	"github.com/ziadkadry99/relview/internal/digest"
	"github.com/ziadkadry99/relview/internal/document"
	"github.com/ziadkadry99/relview/internal/highlight"
	"github.com/ziadkadry99/relview/internal/logging"
	"github.com/ziadkadry99/relview/internal/relation"
)

// loadConfig loads the config file, applies flag overrides and validates
// the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `relview init` to create a config file", err)
	}
	if flagLang != "" {
		cfg.Language = flagLang
	}
	if flagStyle != "" {
		cfg.Style = flagStyle
	}
	if flagDigest != "" {
		cfg.Digest = flagDigest
	}
	if flagTitle != "" {
		cfg.Title = flagTitle
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the config and installs the stderr logger. --verbose forces
// debug level.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	if verbose {
		level = logging.LevelDebug
	}
	format, _ := logging.ParseFormat(cfg.LogFormat)
	return cfg, logging.Init(os.Stderr, level, format), nil
}

// pipeline turns a source file and its relations file into a document.
type pipeline struct {
	cfg         *config.Config
	logger      *slog.Logger
	algorithm   digest.Algorithm
	highlighter highlight.Highlighter
	cached      *cache.Highlighter
	store       *db.DB
	renderer    *document.Renderer
}

// rendered is the result of one pipeline run.
type rendered struct {
	Filename  string
	Language  string
	Document  []byte
	Relations []relation.Relation
	Stats     relation.Stats
	Digest    digest.Digest
}

func newPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	alg, err := digest.Parse(cfg.Digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	opts := highlight.Options{
		Style:       cfg.Style,
		TabWidth:    cfg.TabWidth,
		LineNumbers: cfg.LineNumbers,
	}
	chroma, err := highlight.NewChroma(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	p := &pipeline{
		cfg:         cfg,
		logger:      logger,
		algorithm:   alg,
		highlighter: chroma,
		renderer:    document.NewRenderer(document.Options{}),
	}

	if cfg.CachePath != "" {
		store, err := db.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("opening highlight cache: %w", err)
		}
		p.store = store
		p.cached = cache.New(store, chroma, chroma.Options().Key(), logger)
		p.highlighter = p.cached
		logger.Debug("highlight cache enabled", "path", store.Path())
	}
	return p, nil
}

// Close releases the highlight cache, if any.
func (p *pipeline) Close() error {
	if p.store == nil {
		return nil
	}
	if p.cached != nil {
		st := p.cached.Stats()
		p.logger.Debug("highlight cache", "hits", st.Hits, "misses", st.Misses)
	}
	return p.store.Close()
}

// render builds the document for sourcePath and relationsPath. name is the
// file name shown in the document. Nothing is returned on failure.
func (p *pipeline) render(sourcePath, relationsPath, name string) (*rendered, error) {
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading source %s: %w", relation.ErrUnreadable, sourcePath, err)
	}

	rels, stats, err := relation.Load(relationsPath)
	if err != nil {
		return nil, fmt.Errorf("loading relations %s: %w", relationsPath, err)
	}
	if stats.Dropped > 0 {
		p.logger.Debug("dropped unaddressable relations",
			"file", relationsPath,
			"records", stats.Records,
			"dropped", stats.Dropped,
		)
	}

	source := string(src)
	language, err := highlight.ResolveLanguage(p.cfg.Language, sourcePath, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	markup, err := p.highlighter.Highlight(source, language)
	if err != nil {
		return nil, fmt.Errorf("highlighting %s: %w", sourcePath, err)
	}

	sum, err := digest.Sum(p.algorithm, src)
	if err != nil {
		return nil, err
	}

	title := p.cfg.Title
	if title == "" {
		title = filepath.Base(name)
	}

	doc, err := p.renderer.RenderString(document.Input{
		Source:    source,
		Relations: rels,
		Title:     title,
		Filename:  filepath.ToSlash(name),
		Digest:    sum,
		Markup:    markup,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Debug("rendered document",
		"file", name,
		"language", markup.Language,
		"lines", markup.Lines,
		"relations", stats.Relations,
	)

	return &rendered{
		Filename:  filepath.ToSlash(name),
		Language:  markup.Language,
		Document:  []byte(doc),
		Relations: rels,
		Stats:     stats,
		Digest:    sum,
	}, nil
}
