package commands

import (
	"fleetbuddy/internal/runner"

	"github.com/spf13/cobra"
)

type ocmRun func(cfg runner.RunConfig) *runner.Result

func newOCMRunCmd(use string, short string, run ocmRun) *cobra.Command {
	var timeoutMs int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := runner.RunConfig{
				TimeoutMs: timeoutMs,
				Realtime:  true,
				OnOutput:  streamTo(cmd.OutOrStdout(), cmd.ErrOrStderr()),
			}

			printResult(cmd, run(cfg), true)
		},
	}

	cmd.Flags().IntVar(&timeoutMs, "timeout-ms", 0, "Timeout in milliseconds (default from settings)")

	return cmd
}

func newOCMCmd(app *App) *cobra.Command {
	ocmCmd := &cobra.Command{
		Use:   "ocm",
		Short: "OpenShift Cluster Manager commands",
	}

	ocmCmd.AddCommand(newOCMRunCmd("token", "Refresh the OCM token", app.Fleet.RefreshToken))
	ocmCmd.AddCommand(newOCMRunCmd("login", "Log in to OCM with the auth-code flow", app.Fleet.OCMLogin))
	ocmCmd.AddCommand(newOCMRunCmd("whoami", "Show the current OCM account", app.Fleet.OCMWhoAmI))

	return ocmCmd
}

func newOCCmd(app *App) *cobra.Command {
	ocCmd := &cobra.Command{
		Use:   "oc",
		Short: "OpenShift client commands",
	}

	ocCmd.AddCommand(newOCMRunCmd("whoami", "Show the current cluster user", app.Fleet.OCWhoAmI))

	return ocCmd
}
