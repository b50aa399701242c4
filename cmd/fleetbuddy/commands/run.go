package commands

import (
	"strings"

	"fleetbuddy/internal/runner"

	"github.com/spf13/cobra"
)

func newRunCmd(app *App) *cobra.Command {
	var timeoutMs int
	var realtime bool
	var autoAuth bool
	var asJSON bool

	runCmd := &cobra.Command{
		Use:   "run -- command [args...]",
		Short: "Run a custom command",
		Long: `Run a shell command and report its result.

With --auto-auth, sudo is fed the password from FLEETBUDDY_SUDO_PASSWORD (or a prompt) and sshuttle prompts are answered automatically.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			command := strings.Join(args, " ")

			var creds runner.Credentials
			if autoAuth {
				var err error
				tunnel := isTunnel(app, command)
				creds, err = resolveCredentials(cmd, secretNeeds{
					sudo: tunnel || strings.Contains(command, "sudo"),
					ssh:  tunnel,
				})
				if err != nil {
					cmd.PrintErrf("❌ Error: %v\n", err)
					return
				}
			}

			cfg := runner.RunConfig{
				TimeoutMs:   timeoutMs,
				Realtime:    realtime && !asJSON,
				AutoAuth:    autoAuth,
				Credentials: creds,
			}

			if cfg.Realtime {
				cfg.OnOutput = streamTo(cmd.OutOrStdout(), cmd.ErrOrStderr())
			}

			result := app.Fleet.Custom(command, cfg)

			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					cmd.PrintErrf("❌ Error: %v\n", err)
				}
				return
			}

			printResult(cmd, result, cfg.Realtime)
		},
	}

	runCmd.Flags().IntVar(&timeoutMs, "timeout-ms", 0, "Timeout in milliseconds (default from settings)")
	runCmd.Flags().BoolVar(&realtime, "realtime", true, "Stream output while the command runs")
	runCmd.Flags().BoolVar(&autoAuth, "auto-auth", false, "Answer sudo and sshuttle prompts automatically")
	runCmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return runCmd
}

func isTunnel(app *App, command string) bool {
	type tunnelDetector interface {
		IsTunnelCommand(command string) bool
	}

	if detector, ok := app.Fleet.Runner.(tunnelDetector); ok {
		return detector.IsTunnelCommand(command)
	}
	return false
}
