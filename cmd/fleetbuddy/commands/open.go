package commands

import (
	"github.com/spf13/cobra"
)

func newOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "open console|token",
		Short:     "Open the Hive console or the Red Hat token page",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"console", "token"},
		Run: func(cmd *cobra.Command, args []string) {
			result, err := app.Fleet.Open(args[0])
			if err != nil {
				cmd.PrintErrf("❌ Error: %v\n", err)
				return
			}

			if !result.Success {
				cmd.PrintErrf("❌ Error: %s\n", result.ErrorMessage)
				return
			}

			cmd.Printf("🌍 Opened %s\n", args[0])
		},
	}
}
