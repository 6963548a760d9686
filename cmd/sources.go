package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/brogergvhs/mangatoc/internal/config"
	"github.com/brogergvhs/mangatoc/internal/toc"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
			SourcesFile:  flagSources,
		})
		if err != nil {
			return err
		}

		sources, err := config.LoadSources(cfg.SourcesFile)
		if err != nil {
			return fmt.Errorf("cannot read sources: %w", err)
		}

		fmt.Printf("Sources from:\n  %s\n\n", cfg.SourcesFile)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tURL\tORDER\tPAGINATED")

		for _, s := range sources {
			order := "newest first"
			if toc.ParseListDirective(s.Toc.ChapterList).Reverse() {
				order = "reading order"
			}

			paginated := ""
			if s.Toc.NextTocURL != "" {
				paginated = "yes"
			}

			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.URL, order, paginated)
		}

		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}
		return nil
	},
}

func init() {
	sourcesCmd.Flags().StringVar(&flagSources, "sources", "", "path to the sources file")
	rootCmd.AddCommand(sourcesCmd)
}
