package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/brogergvhs/mangatoc/internal/config"

	"github.com/spf13/cobra"
)

var (
	addFrom     string
	addSources  string
	addDBDriver string
	addDBDSN    string
	addSwitch   bool
)

var configAddCmd = &cobra.Command{
	Use:   "add [label]",
	Short: "Create a new config, optionally pointing at its own sources file and catalog store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			reader := bufio.NewReader(os.Stdin)
			fmt.Print("Enter label for new config: ")
			label, _ = reader.ReadString('\n')
		}
		label = strings.TrimSpace(label)

		cfg := config.DefaultConfig()
		if addFrom != "" {
			var err error
			if cfg, err = config.LoadFile(addFrom); err != nil {
				return fmt.Errorf("cannot import %s: %w", addFrom, err)
			}
		}

		if addSources != "" {
			sources, err := config.LoadSources(addSources)
			if err != nil {
				return fmt.Errorf("sources file %s is not usable: %w", addSources, err)
			}
			cfg.SourcesFile = addSources
			fmt.Printf("Sources file has %d source(s)\n", len(sources))
		}
		if addDBDriver != "" {
			cfg.DBDriver = addDBDriver
		}
		if addDBDSN != "" {
			cfg.DBDSN = addDBDSN
		}

		path, err := config.AddProfile(label, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Created new config: %s\n", path)

		if addSwitch {
			if _, err := config.SwitchProfile(label); err != nil {
				return err
			}
			fmt.Println("This config is now active.")
		}
		return nil
	},
}

func init() {
	configAddCmd.Flags().StringVar(&addFrom, "from", "", "copy settings from an existing config file")
	configAddCmd.Flags().StringVar(&addSources, "sources", "", "sources file for this profile (checked before saving)")
	configAddCmd.Flags().StringVar(&addDBDriver, "db-driver", "", "catalog database driver (sqlite3 or mysql)")
	configAddCmd.Flags().StringVar(&addDBDSN, "db-dsn", "", "catalog database dsn or sqlite file")
	configAddCmd.Flags().BoolVar(&addSwitch, "switch", false, "activate the new config")
	configCmd.AddCommand(configAddCmd)
}
