package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	var asJSON bool
	var clear bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently run commands",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if app.History == nil {
				cmd.PrintErrf("❌ Error: history database is not available\n")
				return
			}

			if clear {
				if err := app.History.DeleteAll(); err != nil {
					cmd.PrintErrf("❌ Error: %v\n", err)
					return
				}
				cmd.Printf("✅ History cleared\n")
				return
			}

			records, err := app.History.ListRecent(limit)
			if err != nil {
				cmd.PrintErrf("❌ Error: %v\n", err)
				return
			}

			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), records); err != nil {
					cmd.PrintErrf("❌ Error: %v\n", err)
				}
				return
			}

			if len(records) == 0 {
				cmd.Printf("No history\n")
				return
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "TIME\tACTION\tRESULT\tEXIT\tDURATION\tCOMMAND\n")

			// oldest first, like a log
			for i := len(records) - 1; i >= 0; i-- {
				record := records[i]
				status := "✅"
				if !record.Success {
					status = "❌"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dms\t%s\n",
					record.CreatedAt.Format("2006-01-02 15:04:05"),
					record.Action,
					status,
					exitCodeString(record.ExitCode),
					record.DurationMs,
					record.Command,
				)
			}

			w.Flush()
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of entries to show")
	historyCmd.Flags().BoolVar(&asJSON, "json", false, "Print the entries as JSON")
	historyCmd.Flags().BoolVar(&clear, "clear", false, "Delete all entries")

	return historyCmd
}
