package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/brogergvhs/mangatoc/internal/config"

	"github.com/spf13/cobra"
)

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles with their sources file and catalog store",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := config.ListProfiles()
		if err != nil {
			return fmt.Errorf("cannot read configs directory: %w", err)
		}
		if len(profiles) == 0 {
			fmt.Println("No configs yet. Run `mangatoc config init`.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "LABEL\tACTIVE\tSOURCES\tSTORE")

		for _, p := range profiles {
			activeMark := ""
			if p.Active {
				activeMark = "yes"
			}

			if p.Config == nil {
				_, _ = fmt.Fprintf(w, "%s\t%s\tbroken config: %v\t\n", p.Label, activeMark, p.Err)
				continue
			}

			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Label, activeMark, sourcesSummary(p), p.Store())
		}

		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}
		return nil
	},
}

// sourcesSummary names the sources file of p and how many sources it holds,
// or why it cannot be used.
func sourcesSummary(p config.Profile) string {
	sources, err := p.Sources()
	switch {
	case os.IsNotExist(err):
		return p.Config.SourcesFile + " (missing)"
	case err != nil:
		return p.Config.SourcesFile + " (invalid)"
	default:
		return fmt.Sprintf("%s (%d)", p.Config.SourcesFile, len(sources))
	}
}

func init() {
	configCmd.AddCommand(configListCmd)
}
