package commands

import (
	"fmt"
	"text/tabwriter"

	"fleetbuddy/cmd/fleetbuddy/config"

	"github.com/spf13/cobra"
)

func newSettingsCmd(app *App) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Long:  fmt.Sprintf(`Show or change the settings stored in %s.`, app.Config.SettingsPath),
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			s := app.Fleet.Settings

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "profile\t%s\n", app.Config.Profile)
			fmt.Fprintf(w, "bastion\t%s\n", s.Bastion)
			fmt.Fprintf(w, "bastion_user\t%s\n", s.BastionUser)
			fmt.Fprintf(w, "cidr\t%s\n", s.CIDR)
			fmt.Fprintf(w, "interface\t%s\n", s.Interface)
			fmt.Fprintf(w, "kubeconfig\t%s\n", s.Kubeconfig)
			fmt.Fprintf(w, "ocm_env\t%s\n", s.OCMEnv)
			fmt.Fprintf(w, "timeout_ms\t%d\n", s.TimeoutMs)
			fmt.Fprintf(w, "ssh_key_path\t%s\n", s.SSHKeyPath)
			fmt.Fprintf(w, "known_hosts\t%s\n", s.KnownHosts)
			fmt.Fprintf(w, "console_url\t%s\n", s.ConsoleURL)
			fmt.Fprintf(w, "token_url\t%s\n", s.TokenURL)
			w.Flush()
		},
	}

	setCmd := &cobra.Command{
		Use:       "set key value",
		Short:     "Change a setting",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.SettingKeys(),
		Run: func(cmd *cobra.Command, args []string) {
			settings, err := config.SaveSetting(app.Config.SettingsPath, args[0], args[1])
			if err != nil {
				cmd.PrintErrf("❌ Error: %v\n", err)
				return
			}

			*app.Fleet.Settings = *settings
			cmd.Printf("✅ %s updated\n", args[0])
		},
	}

	settingsCmd.AddCommand(showCmd)
	settingsCmd.AddCommand(setCmd)

	return settingsCmd
}
