package fleet

import (
	"context"
	"runtime"
	"time"

	"fleetbuddy/cmd/fleetbuddy/config"
	"fleetbuddy/internal/history"
	"fleetbuddy/internal/logger"
	"fleetbuddy/internal/process"
	"fleetbuddy/internal/runner"
)

// TunnelProcess is the process name the tunnel runs under.
const TunnelProcess = "sshuttle"

const probeTimeoutMs = 15000

type CommandRunner interface {
	Run(command string, cfg runner.RunConfig) *runner.Result
}

type ProcessChecker interface {
	IsRunning(ctx context.Context, name string) process.Status
}

type KeyVerifier interface {
	VerifyKey(path string, passphrase string) error
}

// Service carries everything the CLI handlers need. It is built once in main
// and handed to each command.
type Service struct {
	Runner   CommandRunner
	Checker  ProcessChecker
	Keys     KeyVerifier
	Bastion  BastionProber
	History  *history.Repository
	Settings *config.Settings

	// PIDFile is where the daemonized tunnel writes its pid.
	PIDFile string
	// Opener launches URLs; defaults to open on darwin and xdg-open elsewhere.
	Opener string
}

func (s *Service) opener() string {
	if s.Opener != "" {
		return s.Opener
	}
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}

func (s *Service) withDefaults(cfg runner.RunConfig) runner.RunConfig {
	if cfg.TimeoutMs == 0 && s.Settings != nil {
		cfg.TimeoutMs = s.Settings.TimeoutMs
	}
	return cfg
}

// run executes command and records it under action.
func (s *Service) run(action string, command string, cfg runner.RunConfig) *runner.Result {
	cfg = s.withDefaults(cfg)
	started := time.Now()

	result := s.Runner.Run(command, cfg)

	s.record(action, runner.Redact(command, cfg.Credentials), result, time.Since(started))

	return result
}

func (s *Service) record(action string, command string, result *runner.Result, elapsed time.Duration) {
	if s.History == nil {
		return
	}

	_, err := s.History.Create(&history.Record{
		Action:       action,
		Command:      command,
		Success:      result.Success,
		ExitCode:     result.ExitCode,
		ErrorMessage: result.ErrorMessage,
		DurationMs:   elapsed.Milliseconds(),
	})

	if err != nil {
		logger.Warn("Failed to record %s in history: %v", action, err)
	}
}
