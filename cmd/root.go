package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/relview/internal/config"
)

var (
	cfgFile string
	verbose bool

	flagLang   string
	flagStyle  string
	flagDigest string
	flagTitle  string
	outputPath string
)

var rootCmd = &cobra.Command{
	Use:   "relview <source> <relations>",
	Short: "Render source code and its relations as an interactive HTML page",
	Long: `relview reads a source file and a JSON document of relations over spans
of that source, and writes one self-contained HTML page: the relations in a
sortable table on one side, the highlighted source on the other. Activating a
relation selects its exact span in the source.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "", "source language (overrides config; default detect)")
	rootCmd.PersistentFlags().StringVar(&flagStyle, "style", "", "highlight style (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDigest, "digest", "", "source digest algorithm: sha256 or blake3 (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagTitle, "title", "", "document title (overrides config)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the document to a file instead of stdout")
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	page, err := p.render(args[0], args[1], args[0])
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err = cmd.OutOrStdout().Write(page.Document)
		if err != nil {
			return fmt.Errorf("writing document: %w", err)
		}
		return nil
	}
	if err := writeFileAtomic(outputPath, page.Document); err != nil {
		return err
	}
	logger.Info("document written", "path", outputPath, "relations", page.Stats.Relations, "bytes", len(page.Document))
	return nil
}

// writeFileAtomic writes data next to path and renames it into place so an
// interrupted run never leaves a partial document.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

