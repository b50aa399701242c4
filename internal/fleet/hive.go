package fleet

import (
	"context"
	"fmt"

	"fleetbuddy/internal/logger"
	"fleetbuddy/internal/process"
	"fleetbuddy/internal/runner"
	"fleetbuddy/internal/templates"
)

func (s *Service) bastionTarget() string {
	if s.Settings.BastionUser != "" {
		return s.Settings.BastionUser + "@" + s.Settings.Bastion
	}
	return s.Settings.Bastion
}

func (s *Service) tunnelCommand() (string, error) {
	ctx := map[string]interface{}{
		"pidFile": s.PIDFile,
		"bastion": s.bastionTarget(),
		"cidr":    s.Settings.CIDR,
	}

	if s.Settings.SSHKeyPath != "" {
		ctx["sshKeyPath"] = s.Settings.SSHKeyPath
		ctx["sshCommand"] = "ssh -i " + templates.ShellQuote(s.Settings.SSHKeyPath)
	}

	return templates.Render(templates.HiveTunnelScript, ctx)
}

// ConnectHive adds the route to the Hive network and starts the sshuttle
// tunnel, answering sudo and key prompts with creds. It stops at the first
// failing step.
func (s *Service) ConnectHive(creds runner.Credentials, onOutput runner.OutputHandler) (*ConnectReport, error) {
	report := &ConnectReport{}

	if s.Settings.SSHKeyPath != "" && s.Keys != nil {
		if err := s.Keys.VerifyKey(s.Settings.SSHKeyPath, creds.SSHPassphrase); err != nil {
			return report, fmt.Errorf("%w: %v", ErrSSHKeyCheckFailed, err)
		}
	}

	routeCommand, err := templates.Render(templates.HiveRouteScript, map[string]interface{}{
		"cidr":  s.Settings.CIDR,
		"iface": s.Settings.Interface,
	})
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	tunnelCommand, err := s.tunnelCommand()
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	cfg := runner.RunConfig{
		AutoAuth:    true,
		Credentials: creds,
		Realtime:    onOutput != nil,
		OnOutput:    onOutput,
	}

	logger.Info("Connecting to Hive via %s", s.Settings.Bastion)

	steps := []struct {
		name    string
		action  string
		command string
		failErr error
	}{
		{"route", ActionRoute, routeCommand, ErrRouteFailed},
		{"tunnel", ActionTunnel, tunnelCommand, ErrTunnelFailed},
	}

	for _, step := range steps {
		result := s.run(step.action, step.command, cfg)

		report.Steps = append(report.Steps, StepResult{
			Name:    step.name,
			Command: runner.Redact(step.command, creds),
			Result:  result,
		})

		if !result.Success {
			logger.Error("%s step failed: %s", step.name, result.ErrorMessage)
			return report, fmt.Errorf("%w: %s", step.failErr, result.ErrorMessage)
		}
	}

	report.Success = true
	logger.Info("sshuttle tunnel started")

	return report, nil
}

// pkill exits 1 when no process matched
const pkillNoMatch = 1

// DisconnectHive stops every sshuttle process and removes a stale PID file.
// Finding nothing to stop is not an error.
func (s *Service) DisconnectHive(ctx context.Context) (*DisconnectReport, error) {
	command, err := templates.Render(templates.HiveDisconnectScript, map[string]interface{}{
		"processName": TunnelProcess,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	result := s.run(ActionDisconnect, command, runner.RunConfig{})

	if s.PIDFile != "" {
		if s.Checker == nil || !s.Checker.IsRunning(ctx, TunnelProcess).Running {
			removed, cleanupErr := process.CleanupPIDFile(s.PIDFile)
			if cleanupErr != nil {
				logger.Warn("Could not remove %s: %v", s.PIDFile, cleanupErr)
			} else if removed {
				logger.Debug("Removed stale PID file %s", s.PIDFile)
			}
		}
	}

	report := &DisconnectReport{Result: result, WasRunning: result.Success}

	if !result.Success {
		if result.ExitCode != nil && *result.ExitCode == pkillNoMatch {
			logger.Info("sshuttle was not running")
			return report, nil
		}
		return report, fmt.Errorf("%w: %s", ErrDisconnectFailed, result.ErrorMessage)
	}

	logger.Info("sshuttle stopped")

	return report, nil
}
