package runner

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"fleetbuddy/internal/logger"

	"github.com/go-playground/validator/v10"
)

const (
	defaultShell         = "/bin/sh"
	defaultKillGrace     = 2 * time.Second
	defaultSettleDelay   = 3 * time.Second
	defaultTunnelProcess = "sshuttle"
	livenessProbeTimeout = 5 * time.Second
)

var defaultTunnelPattern = regexp.MustCompile(`\bsshuttle\b`)

// ProcessChecker reports whether a named background process is alive.
type ProcessChecker interface {
	Running(ctx context.Context, name string) bool
}

type Options struct {
	// Shell runs every command as `<Shell> -c <command>`.
	Shell string
	// KillGrace is the delay between SIGTERM and SIGKILL on timeout.
	KillGrace time.Duration
	// SettleDelay is how long a tunnel gets to exit after reporting success
	// before it is considered detached.
	SettleDelay time.Duration
	// TunnelPattern selects commands that get the prompt-response loop.
	TunnelPattern *regexp.Regexp
	// TunnelProcess is the process name probed when a tunnel stays alive.
	TunnelProcess string
	// Checker confirms a detached tunnel is running. When nil a detached
	// tunnel that reported success is trusted.
	Checker ProcessChecker
}

type Runner struct {
	shell         string
	killGrace     time.Duration
	settleDelay   time.Duration
	tunnelPattern *regexp.Regexp
	tunnelProcess string
	checker       ProcessChecker
	validate      *validator.Validate
}

func New(opts Options) *Runner {
	r := &Runner{
		shell:         opts.Shell,
		killGrace:     opts.KillGrace,
		settleDelay:   opts.SettleDelay,
		tunnelPattern: opts.TunnelPattern,
		tunnelProcess: opts.TunnelProcess,
		checker:       opts.Checker,
		validate:      validator.New(),
	}

	if r.shell == "" {
		r.shell = defaultShell
	}
	if r.killGrace <= 0 {
		r.killGrace = defaultKillGrace
	}
	if r.settleDelay <= 0 {
		r.settleDelay = defaultSettleDelay
	}
	if r.tunnelPattern == nil {
		r.tunnelPattern = defaultTunnelPattern
	}
	if r.tunnelProcess == "" {
		r.tunnelProcess = defaultTunnelProcess
	}

	return r
}

type runMode int

const (
	modePlain runMode = iota
	modeSudo
	modeTunnel
)

func (m runMode) String() string {
	switch m {
	case modeSudo:
		return "sudo"
	case modeTunnel:
		return "tunnel"
	}
	return "plain"
}

func (r *Runner) modeFor(command string, cfg RunConfig) runMode {
	if !cfg.AutoAuth || cfg.Credentials.IsEmpty() {
		return modePlain
	}

	if r.tunnelPattern.MatchString(command) {
		return modeTunnel
	}

	if cfg.Credentials.SudoPassword != "" && usesSudo(command) {
		return modeSudo
	}

	return modePlain
}

// IsTunnelCommand reports whether command would be driven through the
// prompt-response loop when auto-auth is on.
func (r *Runner) IsTunnelCommand(command string) bool {
	return r.tunnelPattern.MatchString(command)
}

// Run executes command under the shell and always returns a Result. The
// configured timeout is the only way to cancel it.
func (r *Runner) Run(command string, cfg RunConfig) *Result {
	red := newRedactor(cfg.Credentials)

	if strings.TrimSpace(command) == "" {
		return newResult("", "", nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrEmptyCommand))
	}

	if err := r.validate.Struct(cfg); err != nil {
		return newResult("", "", nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}

	timeoutMs := cfg.TimeoutMs
	if timeoutMs == 0 {
		timeoutMs = DefaultTimeoutMs
	}

	mode := r.modeFor(command, cfg)
	sink := newEventSink(cfg)
	started := time.Now()

	logger.Debug("running %q (mode: %s, timeout: %dms)", red.Redact(command), mode, timeoutMs)

	var result *Result

	switch mode {
	case modeTunnel:
		result = r.runTunnel(command, cfg.Credentials, timeoutMs, red, sink)
	default:
		result = r.runPiped(command, mode, cfg.Credentials, timeoutMs, red, sink)
	}

	result.ErrorMessage = red.Redact(result.ErrorMessage)

	if result.Success {
		logger.Debug("command finished in %s", time.Since(started).Round(time.Millisecond))
	} else {
		logger.Debug("command failed after %s: %s", time.Since(started).Round(time.Millisecond), result.ErrorMessage)
	}

	return result
}

// exitOutcome maps a finished process to an exit code and error.
func exitOutcome(waitErr error, state *os.ProcessState) (*int, error) {
	if state == nil {
		if waitErr != nil {
			return nil, waitErr
		}
		return nil, nil
	}

	code := state.ExitCode()

	if code == -1 {
		return nil, fmt.Errorf("%w: %s", ErrTerminated, state.String())
	}

	if code != 0 {
		return intPtr(code), fmt.Errorf("%w: %d", ErrNonZeroExit, code)
	}

	return intPtr(0), nil
}

// terminate stops the process group: SIGTERM, then SIGKILL after the grace
// period. done is the channel fed by cmd.Wait.
func (r *Runner) terminate(pid int, done <-chan error) {
	if err := signalGroup(pid, sigTerm); err != nil {
		logger.Warn("failed to send SIGTERM to process group %d: %v", pid, err)
	}

	select {
	case <-done:
		return
	case <-time.After(r.killGrace):
	}

	if err := signalGroup(pid, sigKill); err != nil {
		logger.Warn("failed to send SIGKILL to process group %d: %v", pid, err)
	}

	select {
	case <-done:
	case <-time.After(r.killGrace):
		logger.Warn("process group %d did not exit after SIGKILL", pid)
	}
}

func timeoutErr(timeoutMs int) error {
	return fmt.Errorf("%w after %dms", ErrTimeout, timeoutMs)
}
