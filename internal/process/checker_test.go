package process

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePIDFile(t *testing.T, pid int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tunnel.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644))
	return path
}

func TestCommandExecute(t *testing.T) {
	out, code, err := NewCommand("sh", "-c", "echo '  trimmed  '").Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "trimmed", out)

	_, code, err = NewCommand("sh", "-c", "echo nope >&2; exit 4").Execute(context.Background())
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.Equal(t, 4, code)
	assert.Contains(t, err.Error(), "nope")
}

func TestCheckerFindsRunningProcess(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	checker := NewChecker(nil)
	status := checker.IsRunning(context.Background(), "sleep 30")

	assert.True(t, status.Running)
	assert.Equal(t, SourceProcessTable, status.Source)
	assert.Positive(t, status.PID)
}

func TestCheckerIsIdempotent(t *testing.T) {
	checker := NewChecker(nil)
	name := "fleetbuddy-no-such-process-7f3a"

	first := checker.Running(context.Background(), name)
	second := checker.Running(context.Background(), name)

	assert.False(t, first)
	assert.Equal(t, first, second)
}

func TestCheckerFallsBackToPIDFile(t *testing.T) {
	checker := &Checker{
		Pgrep:    "/nonexistent/pgrep",
		PIDFiles: map[string]string{"sshuttle": writePIDFile(t, os.Getpid())},
	}

	status := checker.IsRunning(context.Background(), "sshuttle")

	assert.True(t, status.Running)
	assert.Equal(t, SourcePIDFile, status.Source)
	assert.Equal(t, os.Getpid(), status.PID)
}

func TestCheckerStalePIDFile(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())

	checker := &Checker{
		Pgrep:    "/nonexistent/pgrep",
		PIDFiles: map[string]string{"sshuttle": writePIDFile(t, cmd.Process.Pid)},
	}

	status := checker.IsRunning(context.Background(), "sshuttle")

	assert.False(t, status.Running)
	assert.Equal(t, SourceNone, status.Source)
}

func TestReadPIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	_, err := ReadPIDFile(path)
	assert.ErrorIs(t, err, ErrInvalidPIDFile)

	_, err = ReadPIDFile(filepath.Join(t.TempDir(), "missing.pid"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCleanupPIDFile(t *testing.T) {
	live := writePIDFile(t, os.Getpid())
	removed, err := CleanupPIDFile(live)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.FileExists(t, live)

	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())

	stale := writePIDFile(t, cmd.Process.Pid)
	removed, err = CleanupPIDFile(stale)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoFileExists(t, stale)

	removed, err = CleanupPIDFile(filepath.Join(t.TempDir(), "missing.pid"))
	require.NoError(t, err)
	assert.False(t, removed)
}
