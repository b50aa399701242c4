package commands

import (
	"fleetbuddy/cmd/fleetbuddy/config"
	"fleetbuddy/internal/fleet"
	"fleetbuddy/internal/history"

	"github.com/spf13/cobra"
)

// App is handed to every command constructor instead of package globals.
type App struct {
	Config  *config.Configuration
	Fleet   *fleet.Service
	History *history.Repository
}

func RegisterCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newHiveCmd(app))
	rootCmd.AddCommand(newStatusCmd(app))
	rootCmd.AddCommand(newOCMCmd(app))
	rootCmd.AddCommand(newOCCmd(app))
	rootCmd.AddCommand(newEnvCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newOpenCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newSettingsCmd(app))
}
