package fleet

import (
	"context"
	"strings"
	"time"

	"fleetbuddy/internal/fileio"
	"fleetbuddy/internal/process"
	"fleetbuddy/internal/runner"
	"fleetbuddy/internal/templates"
)

func levelFor(tunnel bool, ocm bool) Level {
	switch {
	case tunnel && ocm:
		return LevelGreen
	case tunnel || ocm:
		return LevelYellow
	}
	return LevelRed
}

// Status checks the tunnel, the OCM session and the kubeconfig. Probes are
// not written to the history log.
func (s *Service) Status(ctx context.Context) *StatusReport {
	report := &StatusReport{
		KubeconfigPath: s.Settings.Kubeconfig,
		CheckedAt:      time.Now(),
	}

	if s.Checker != nil {
		report.Tunnel = s.Checker.IsRunning(ctx, TunnelProcess)
	} else {
		report.Tunnel = process.Status{Name: TunnelProcess, Source: process.SourceNone}
	}

	if command, err := templates.Render(templates.OCMWhoAmIScript, nil); err == nil {
		result := s.Runner.Run(command, runner.RunConfig{TimeoutMs: probeTimeoutMs})
		report.OCMLoggedIn = result.Success
		if result.Success {
			report.OCMUser = firstLine(result.Stdout)
		}
	}

	report.KubeconfigExists = fileio.Exists(s.Settings.Kubeconfig)
	report.HiveConnected = report.Tunnel.Running && report.OCMLoggedIn
	report.Level = levelFor(report.Tunnel.Running, report.OCMLoggedIn)

	return report
}

// Watch reports status immediately and then every interval until ctx ends.
func (s *Service) Watch(ctx context.Context, interval time.Duration, report func(*StatusReport)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	report(s.Status(ctx))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			report(s.Status(ctx))
		}
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}
