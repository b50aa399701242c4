package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEnvCmd(app *App) *cobra.Command {
	var writePath string

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Print the test environment exports",
		Long: `Print export statements for SUPER_ADMIN_USER_TOKEN, AWS_ACCOUNT_OPERATOR_KUBECONFIG and OCM_ENV.

Use it as: eval "$(fleetbuddy env)"`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			env, err := app.Fleet.TestEnv(writePath)
			if err != nil {
				cmd.PrintErrf("❌ Error: %v\n", err)
				return
			}

			if env.Written != "" {
				cmd.PrintErrf("✅ Test environment written to %s\n", env.Written)
				return
			}

			fmt.Fprint(cmd.OutOrStdout(), env.Script)
		},
	}

	envCmd.Flags().StringVarP(&writePath, "write", "o", "", "Write the exports to this file instead of stdout")

	return envCmd
}
