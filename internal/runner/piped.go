package runner

import (
	"fmt"
	"io"
	"os/exec"
	"time"

	"fleetbuddy/internal/logger"
)

// runPiped runs the command with plain pipes. In sudo mode the password is
// written to stdin once, right after spawn, and stdin is closed.
func (r *Runner) runPiped(command string, mode runMode, creds Credentials, timeoutMs int, red *redactor, sink *eventSink) *Result {
	if mode == modeSudo {
		command = withSudoStdin(command)
	}

	cmd := exec.Command(r.shell, "-c", command)
	setProcessGroup(cmd)
	cmd.WaitDelay = r.killGrace

	stdout := newCapture(StreamStdout, red, sink)
	stderr := newCapture(StreamStderr, red, sink)
	defer stdout.Flush()
	defer stderr.Flush()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	var stdin io.WriteCloser

	if mode == modeSudo {
		var err error
		stdin, err = cmd.StdinPipe()
		if err != nil {
			return newResult("", "", nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err))
		}
	}

	if err := cmd.Start(); err != nil {
		return newResult("", "", nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err))
	}

	if stdin != nil {
		if _, err := io.WriteString(stdin, creds.SudoPassword+"\n"); err != nil {
			logger.Debug("sudo password was not consumed: %v", err)
		}
		_ = stdin.Close()
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case waitErr := <-done:
		exitCode, err := exitOutcome(waitErr, cmd.ProcessState)
		return newResult(stdout.String(), stderr.String(), exitCode, err)
	case <-timer.C:
		logger.Warn("command exceeded %dms, terminating", timeoutMs)
		r.terminate(cmd.Process.Pid, done)
		return newResult(stdout.String(), stderr.String(), nil, timeoutErr(timeoutMs))
	}
}
