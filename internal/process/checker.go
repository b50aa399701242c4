package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"fleetbuddy/internal/logger"
)

const (
	SourceProcessTable = "process-table"
	SourcePIDFile      = "pid-file"
	SourceNone         = "none"
)

type Status struct {
	Name    string `json:"name"`
	Running bool   `json:"running"`
	PID     int    `json:"pid,omitempty"`
	Source  string `json:"source"`
}

// Checker answers whether a named background process is running. It asks the
// process table first and falls back to a PID file when one is registered.
type Checker struct {
	// PIDFiles maps a process name to the PID file it writes.
	PIDFiles map[string]string
	// Pgrep is the pgrep binary; "pgrep" when empty.
	Pgrep string
}

func NewChecker(pidFiles map[string]string) *Checker {
	return &Checker{PIDFiles: pidFiles}
}

func (c *Checker) IsRunning(ctx context.Context, name string) Status {
	status := Status{Name: name, Source: SourceNone}

	if pid, ok := c.fromProcessTable(ctx, name); ok {
		status.Running = true
		status.PID = pid
		status.Source = SourceProcessTable
		return status
	}

	if path := c.PIDFiles[name]; path != "" {
		pid, err := ReadPIDFile(path)
		if err == nil && Alive(pid) {
			status.Running = true
			status.PID = pid
			status.Source = SourcePIDFile
		}
	}

	return status
}

func (c *Checker) Running(ctx context.Context, name string) bool {
	return c.IsRunning(ctx, name).Running
}

func (c *Checker) fromProcessTable(ctx context.Context, name string) (int, bool) {
	pgrep := c.Pgrep
	if pgrep == "" {
		pgrep = "pgrep"
	}

	out, code, err := NewCommand(pgrep, "-f", name).Execute(ctx)
	if err != nil {
		// exit 1 is "no match"; anything else means pgrep itself is unusable
		if code != 1 {
			logger.Debug("pgrep for %s unavailable: %v", name, err)
		}
		return 0, false
	}

	for _, line := range strings.Fields(out) {
		if pid, err := strconv.Atoi(line); err == nil && pid != os.Getpid() {
			return pid, true
		}
	}

	return 0, false
}

func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPIDFile, path)
	}

	return pid, nil
}

// Alive probes pid with signal 0.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// CleanupPIDFile removes a PID file whose process is gone. It reports
// whether the file was removed.
func CleanupPIDFile(path string) (bool, error) {
	pid, err := ReadPIDFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err == nil && Alive(pid) {
		return false, nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	return true, nil
}
