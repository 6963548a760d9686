package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangatoc/internal/config"

	"github.com/spf13/cobra"
)

var resetAll bool

var configResetCmd = &cobra.Command{
	Use:   "reset [label]",
	Short: "Reset a config (the active one by default) to default values",
	Long: "Reset a config to default values. The sources file and the catalog store\n" +
		"are kept so stored catalogs stay reachable, unless --all is given.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			var err error
			if label, err = config.CurrentLabel(); err != nil {
				return err
			}
		}

		cfg, err := config.ResetProfile(label, resetAll)
		if err != nil {
			return err
		}

		fmt.Printf("Reset config %q:\n", label)
		cfg.Print()
		return nil
	},
}

func init() {
	configResetCmd.Flags().BoolVar(&resetAll, "all", false, "also reset the sources file and catalog store settings")
	configCmd.AddCommand(configResetCmd)
}
