package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/brogergvhs/mangatoc/internal/config"

	"github.com/spf13/cobra"
)

var configEditCmd = &cobra.Command{
	Use:   "edit (optional <config_label>)",
	Short: "Edit current or specified config",
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string

		if len(args) == 0 {
			var err error
			label, err = config.CurrentLabel()
			if err != nil {
				return fmt.Errorf("failed to get current config label: %w", err)
			}
		} else {
			label = args[0]
		}

		path, err := config.ProfilePath(label)
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		cmdExec := exec.Command(editor, path)
		cmdExec.Stdin = os.Stdin
		cmdExec.Stdout = os.Stdout
		cmdExec.Stderr = os.Stderr

		if err := cmdExec.Run(); err != nil {
			return fmt.Errorf("failed to open editor: %w", err)
		}

		p, err := config.LoadProfile(label)
		if err != nil {
			return fmt.Errorf("config %q no longer parses, toc runs with it will fail: %w", label, err)
		}
		fmt.Println("Sources:", sourcesSummary(p))

		return nil
	},
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
