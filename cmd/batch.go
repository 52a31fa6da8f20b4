package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/relview/internal/progress"
	"github.com/ziadkadry99/relview/internal/site"
	"github.com/ziadkadry99/relview/internal/walker"
)

var batchOutput string

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Render every source file that has a relations sidecar",
	Long: `Walks a directory (default: the current one), pairs every source file X
with its sidecar X.relations.json and renders one document per pair into the
output directory, mirroring the source tree. An index.html summarising the
run is written alongside. Sources without a sidecar are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output directory (overrides config)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	outDir := cfg.Batch.OutputDir
	if batchOutput != "" {
		outDir = batchOutput
	}

	// The configured title names the index; documents use their file names.
	indexTitle := cfg.Title
	docCfg := *cfg
	docCfg.Title = ""

	p, err := newPipeline(&docCfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:         root,
		Include:         cfg.Batch.Include,
		Exclude:         cfg.Batch.Exclude,
		OutputDir:       outDir,
		RelationsSuffix: cfg.Batch.RelationsSuffix,
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}

	if indexTitle == "" {
		abs, _ := filepath.Abs(root)
		indexTitle = "relview: " + filepath.Base(abs)
	}

	res, err := renderBatch(p, files, outDir, progress.NewReporter(os.Stderr))
	if err != nil {
		return err
	}
	if err := site.Write(outDir, indexTitle, res.Entries); err != nil {
		return err
	}

	logger.Info("batch complete",
		"rendered", len(res.Entries)-res.Failed,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"output", outDir,
	)
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to render", res.Failed, len(res.Entries))
	}
	return nil
}

// batchResult summarises one batch run.
type batchResult struct {
	Entries []site.Entry
	Failed  int
	Skipped int // sources without a sidecar
}

// renderBatch renders every paired file into outDir. A failing file is
// recorded in its entry and does not stop the run.
func renderBatch(p *pipeline, files []walker.FileInfo, outDir string, reporter progress.Reporter) (*batchResult, error) {
	var paired []walker.FileInfo
	res := &batchResult{}
	for _, f := range files {
		if f.Paired() {
			paired = append(paired, f)
		} else {
			res.Skipped++
		}
	}

	reporter.Begin(len(paired), res.Skipped)
	defer reporter.End()

	for _, f := range paired {
		entry := site.Entry{
			RelPath:  f.RelPath,
			Document: f.RelPath + ".html",
		}

		page, err := p.render(f.Path, f.RelationsPath, f.RelPath)
		if err == nil {
			dest := filepath.Join(outDir, filepath.FromSlash(entry.Document))
			if err = os.MkdirAll(filepath.Dir(dest), 0755); err == nil {
				err = writeFileAtomic(dest, page.Document)
			}
		}
		if err != nil {
			p.logger.Warn("render failed", "file", f.RelPath, "error", err)
			entry.Err = err
			res.Failed++
		} else {
			entry.Language = page.Language
			entry.Stats = page.Stats
			entry.Digest = page.Digest
		}

		res.Entries = append(res.Entries, entry)
		reporter.Document(f.RelPath, entry.Stats, entry.Err)
	}
	return res, nil
}
