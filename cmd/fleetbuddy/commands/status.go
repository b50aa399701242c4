package commands

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"fleetbuddy/internal/fleet"

	"github.com/spf13/cobra"
)

func printStatus(out io.Writer, report *fleet.StatusReport) {
	check := func(ok bool, yes string, no string) string {
		if ok {
			return "✅ " + yes
		}
		return "❌ " + no
	}

	fmt.Fprintf(out, "%s Fleet Buddy Status (%s)\n", report.Level.Icon(), report.CheckedAt.Format("15:04:05"))
	fmt.Fprintf(out, "================================\n\n")
	fmt.Fprintf(out, "🔗 Hive:       %s\n", check(report.HiveConnected, "connected", "not connected"))

	tunnel := check(report.Tunnel.Running, "running", "stopped")
	if report.Tunnel.Running && report.Tunnel.PID > 0 {
		tunnel = fmt.Sprintf("%s (pid %d)", tunnel, report.Tunnel.PID)
	}
	fmt.Fprintf(out, "🌐 sshuttle:   %s\n", tunnel)

	ocm := check(report.OCMLoggedIn, "logged in", "not logged in")
	if report.OCMUser != "" {
		ocm = fmt.Sprintf("%s (%s)", ocm, report.OCMUser)
	}
	fmt.Fprintf(out, "🔑 OCM:        %s\n", ocm)
	fmt.Fprintf(out, "📁 Kubeconfig: %s\n", check(report.KubeconfigExists, "exists", "not found"))
	fmt.Fprintf(out, "   Path:       %s\n\n", report.KubeconfigPath)
}

func newStatusCmd(app *App) *cobra.Command {
	var watch bool
	var asJSON bool

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show Hive, sshuttle, OCM and kubeconfig status",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			show := func(report *fleet.StatusReport) {
				if asJSON {
					if err := printJSON(cmd.OutOrStdout(), report); err != nil {
						cmd.PrintErrf("❌ Error: %v\n", err)
					}
					return
				}
				printStatus(cmd.OutOrStdout(), report)
			}

			if !watch {
				show(app.Fleet.Status(cmd.Context()))
				return
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app.Fleet.Watch(ctx, app.Config.WatchInterval, show)
		},
	}

	statusCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh the status every 30 seconds")
	statusCmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")

	return statusCmd
}
