package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangatoc/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Switch to a different configuration profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string

		if len(args) == 1 {
			label = args[0]
		} else {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				return fmt.Errorf("no configs available")
			}

			items := make([]string, 0, len(profiles))
			for _, p := range profiles {
				item := fmt.Sprintf("%s  [%s]", p.Label, p.Store())
				if p.Active {
					item += "  (active)"
				}
				items = append(items, item)
			}

			prompt := promptui.Select{
				Label: "Select config",
				Items: items,
			}

			idx, _, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("selection cancelled")
			}

			label = profiles[idx].Label
		}

		p, err := config.SwitchProfile(label)
		if err != nil {
			return err
		}

		fmt.Println("Switched to:", p.Label)
		fmt.Println("Sources:", sourcesSummary(p))
		fmt.Println("Store:  ", p.Store())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSwitchCmd)
}
