package main

import (
	"fmt"
	"os"

	"fleetbuddy/cmd/fleetbuddy/commands"
	"fleetbuddy/cmd/fleetbuddy/config"
	"fleetbuddy/internal/database"
	"fleetbuddy/internal/fleet"
	"fleetbuddy/internal/history"
	"fleetbuddy/internal/logger"
	"fleetbuddy/internal/process"
	"fleetbuddy/internal/runner"
	"fleetbuddy/internal/ssh"
	"fleetbuddy/version"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fleetbuddy",
	Short: "Hive and OCM helper for the fleet team",
	Long: `fleetbuddy connects your workstation to the Hive network and keeps the OCM tooling at hand.

- hive connect adds the route to the Hive network and starts an sshuttle tunnel through the bastion, answering sudo and SSH key prompts for you
- status shows whether the tunnel is up, OCM is logged in and the kubeconfig is present
- env prints the exports the integration tests need

Secrets are taken from FLEETBUDDY_SUDO_PASSWORD and FLEETBUDDY_SSH_PASSPHRASE, or prompted for. They are never written to the history or the log file.
`,
	Version: fmt.Sprintf("%s (commit: %s, date: %s, arch: %s, os: %s); db path: %s; profile: %s", version.Version, version.Commit, version.Date, version.Arch, version.OS, config.DatabasePath, config.Profile),
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetLevel(logger.DEBUG)
		}
	},
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Config

	if err := logger.EnableFile(logger.FileOptions{
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	}); err != nil {
		rootCmd.PrintErrf("Failed to open log file %s: %v\n", cfg.LogPath, err)
	}

	defer func() {
		if err := logger.CloseFile(); err != nil {
			rootCmd.PrintErrf("Failed to close log file: %v\n", err)
		}
	}()

	settings, err := config.LoadSettings(cfg.SettingsPath)

	if err != nil {
		rootCmd.PrintErrf("Failed to load settings from %s, using defaults: %v\n", cfg.SettingsPath, err)
		settings = config.DefaultSettings()
	}

	var historyRepository *history.Repository

	db, err := database.InitDB(cfg.DatabasePath)

	if err != nil {
		rootCmd.PrintErrf("Failed to initialize database at %s: %v\n", cfg.DatabasePath, err)
	} else {
		historyRepository = history.NewRepository(db, cfg.HistoryLimit)

		defer func() {
			if err := database.CloseDB(db); err != nil {
				rootCmd.PrintErrf("Failed to close database: %v\n", err)
			}
		}()
	}

	checker := process.NewChecker(map[string]string{
		fleet.TunnelProcess: cfg.PIDFile,
	})

	commandRunner := runner.New(runner.Options{
		Shell:         cfg.Shell,
		KillGrace:     cfg.KillGrace,
		SettleDelay:   cfg.SettleDelay,
		TunnelProcess: fleet.TunnelProcess,
		Checker:       checker,
	})

	sshService := ssh.NewService()

	app := &commands.App{
		Config:  cfg,
		History: historyRepository,
		Fleet: &fleet.Service{
			Runner:   commandRunner,
			Checker:  checker,
			Keys:     sshService,
			Bastion:  sshService,
			History:  historyRepository,
			Settings: settings,
			PIDFile:  cfg.PIDFile,
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	commands.RegisterCommands(rootCmd, app)

	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrf("%v\n", err)
		return 1
	}

	return 0
}
