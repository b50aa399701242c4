package commands

import (
	"github.com/spf13/cobra"
)

func newHiveCmd(app *App) *cobra.Command {
	hiveCmd := &cobra.Command{
		Use:   "hive",
		Short: "Hive network commands",
		Long:  `Connect to and disconnect from the Hive network through the bastion host.`,
	}

	var quiet bool

	connectCmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to Hive",
		Long: `Add the route to the Hive network and start an sshuttle tunnel through the bastion host.

The sudo password and SSH key passphrase are read from FLEETBUDDY_SUDO_PASSWORD and FLEETBUDDY_SSH_PASSPHRASE, or prompted for when missing.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			creds, err := resolveCredentials(cmd, secretNeeds{sudo: true, ssh: true})
			if err != nil {
				cmd.PrintErrf("❌ Error: %v\n", err)
				return
			}

			handler := streamTo(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if quiet {
				handler = nil
			}

			cmd.Printf("🔗 Connecting to Hive via %s\n", app.Fleet.Settings.Bastion)

			report, err := app.Fleet.ConnectHive(creds, handler)

			for _, step := range report.Steps {
				if step.Result.Success {
					cmd.Printf("   %s: ✅ %s\n", step.Name, step.Command)
				} else {
					cmd.Printf("   %s: ❌ %s\n", step.Name, step.Command)
				}
			}

			if err != nil {
				cmd.PrintErrf("❌ Error: %v\n", err)
				return
			}

			cmd.Printf("✅ sshuttle tunnel has been started\n")
		},
	}

	connectCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not stream command output")

	disconnectCmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Stop the sshuttle tunnel",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			report, err := app.Fleet.DisconnectHive(cmd.Context())
			if err != nil {
				cmd.PrintErrf("❌ Error: %v\n", err)
				return
			}

			if !report.WasRunning {
				cmd.Printf("✅ sshuttle was not running\n")
				return
			}

			cmd.Printf("✅ sshuttle process has been stopped\n")
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check SSH access to the bastion",
		Long:  `Verify the configured SSH key and open a test session on the bastion, without adding routes or starting the tunnel.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			creds, err := resolveCredentials(cmd, secretNeeds{ssh: true})
			if err != nil {
				cmd.PrintErrf("❌ Error: %v\n", err)
				return
			}

			cmd.Printf("📡 SSH Connection\n")
			cmd.Printf("   Bastion: %s\n", app.Fleet.Settings.Bastion)

			if err := app.Fleet.CheckBastion(creds); err != nil {
				cmd.Printf("   Status: ❌ Failed\n")
				cmd.Printf("   Error:  %v\n", err)
				return
			}

			cmd.Printf("   Status: ✅ Connected\n")
		},
	}

	hiveCmd.AddCommand(connectCmd)
	hiveCmd.AddCommand(checkCmd)
	hiveCmd.AddCommand(disconnectCmd)

	return hiveCmd
}
