package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Command runs a binary directly, without a shell.
type Command struct {
	Command string
	Args    []string
	Dir     string
}

func NewCommand(command string, args ...string) *Command {
	return &Command{
		Command: command,
		Args:    args,
	}
}

// Execute returns trimmed stdout. A non-zero exit is reported as
// ErrCommandFailed together with the exit code.
func (c *Command) Execute(ctx context.Context) (string, int, error) {
	cmd := exec.CommandContext(ctx, c.Command, c.Args...)

	if c.Dir != "" {
		cmd.Dir = c.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return strings.TrimSpace(stdout.String()), exitErr.ExitCode(), fmt.Errorf("%w: %v: %s", ErrCommandFailed, err, strings.TrimSpace(stderr.String()))
		}
		return "", -1, fmt.Errorf("%w: %v", ErrCommandFailed, err)
	}

	return strings.TrimSpace(stdout.String()), 0, nil
}
