package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"fleetbuddy/internal/logger"

	"github.com/creack/pty"
)

// ptyDrainTimeout bounds how long output is drained after the shell exits;
// a daemonized child can keep the terminal open indefinitely.
const ptyDrainTimeout = 250 * time.Millisecond

// runTunnel drives a tunnel command through a pseudo-terminal, since ssh and
// sudo read secrets from the controlling tty. The combined output goes to
// Stdout.
func (r *Runner) runTunnel(command string, creds Credentials, timeoutMs int, red *redactor, sink *eventSink) *Result {
	cmd := exec.Command(r.shell, "-c", command)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return newResult("", "", nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err))
	}

	stop := make(chan struct{})
	defer func() {
		close(stop)
		_ = ptmx.Close()
	}()

	output := newCapture(StreamStdout, red, sink)
	defer output.Flush()
	machine := newPromptMachine(creds)

	chunks := make(chan []byte, 16)
	go pumpPTY(ptmx, chunks, stop)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer timer.Stop()

	var (
		exited  bool
		waitErr error
		drain   <-chan time.Time
	)

	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				chunks = nil
				if exited {
					return r.tunnelExited(cmd, waitErr, output)
				}
				continue
			}

			_, _ = output.Write(chunk)

			for _, reply := range machine.Feed(string(chunk)) {
				if _, err := io.WriteString(ptmx, reply); err != nil {
					logger.Warn("failed to answer prompt: %v", err)
				}
			}

			if machine.Terminal() {
				return r.tunnelTerminal(cmd, done, exited, waitErr, machine, output)
			}
		case waitErr = <-done:
			exited = true
			done = nil
			if chunks == nil {
				return r.tunnelExited(cmd, waitErr, output)
			}
			drain = time.After(ptyDrainTimeout)
		case <-drain:
			return r.tunnelExited(cmd, waitErr, output)
		case <-timer.C:
			logger.Warn("tunnel command exceeded %dms (prompt state: %s), terminating", timeoutMs, machine.State())
			if !exited {
				r.terminate(cmd.Process.Pid, done)
			}
			return newResult(output.String(), "", nil, machine.TimeoutErr(timeoutMs))
		}
	}
}

// tunnelExited handles a shell that exited before any terminal marker.
func (r *Runner) tunnelExited(cmd *exec.Cmd, waitErr error, output *capture) *Result {
	exitCode, err := exitOutcome(waitErr, cmd.ProcessState)
	return newResult(output.String(), "", exitCode, err)
}

func (r *Runner) tunnelTerminal(cmd *exec.Cmd, done <-chan error, exited bool, waitErr error, machine *promptMachine, output *capture) *Result {
	if !machine.Succeeded() {
		var exitCode *int
		if exited {
			exitCode, _ = exitOutcome(waitErr, cmd.ProcessState)
		} else {
			r.terminate(cmd.Process.Pid, done)
		}
		return newResult(output.String(), "", exitCode, machine.Err())
	}

	if !exited {
		select {
		case waitErr = <-done:
			exited = true
		case <-time.After(r.settleDelay):
		}
	}

	if exited {
		exitCode, err := exitOutcome(waitErr, cmd.ProcessState)
		return newResult(output.String(), "", exitCode, err)
	}

	// Still alive after connecting: leave it running and confirm liveness
	// independently rather than trusting the missing exit code.
	logger.Info("tunnel process %d stayed in the background", cmd.Process.Pid)

	if r.checker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), livenessProbeTimeout)
		defer cancel()

		if !r.checker.Running(ctx, r.tunnelProcess) {
			return newResult(output.String(), "", nil, ErrTunnelNotRunning)
		}
	}

	return newResult(output.String(), "", nil, nil)
}

func pumpPTY(f *os.File, out chan<- []byte, stop <-chan struct{}) {
	defer close(out)

	buf := make([]byte, 4096)

	for {
		n, err := f.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			select {
			case out <- chunk:
			case <-stop:
				return
			}
		}

		// EIO once the slave side is closed
		if err != nil {
			return
		}
	}
}
