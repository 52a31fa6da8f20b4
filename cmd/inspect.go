package cmd

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/relview/internal/relation"
	"github.com/ziadkadry99/relview/internal/selection"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <source> <relations>",
	Short: "Print every relation with the source text it selects",
	Long: `Renders the document in memory and activates each relation in turn,
printing the canonical table together with the exact text the page would
select. Relations whose lines are not in the source are reported as
unresolved.`,
	Args: cobra.ExactArgs(2),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
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

	eng, err := selection.Parse(bytes.NewReader(page.Document))
	if err != nil {
		return fmt.Errorf("parsing rendered document: %w", err)
	}
	return writeInspection(cmd.OutOrStdout(), eng, page.Relations)
}

// writeInspection prints one row per relation in canonical order.
func writeInspection(w io.Writer, eng *selection.Engine, rels []relation.Relation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RELATION\tSCOPE\tSTART\tEND\tTEXT")
	for _, rel := range rels {
		text := "unresolved"
		if _, ok := eng.SelectRange(rel.Span); ok {
			text = fmt.Sprintf("%q", eng.SelectedText())
		}
		fmt.Fprintf(tw, "%s\t%s\t%d:%d\t%d:%d\t%s\n",
			orDash(rel.Relation), orDash(rel.Scope),
			rel.Span.Start.Line, rel.Span.Start.Column,
			rel.Span.End.Line, rel.Span.End.Column,
			text,
		)
	}
	eng.Clear()
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
