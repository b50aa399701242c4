package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fleetbuddy/cmd/fleetbuddy/config"
	"fleetbuddy/internal/database"
	"fleetbuddy/internal/fleet"
	"fleetbuddy/internal/history"
	"fleetbuddy/internal/runner"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	commands  []string
	stdout    map[string]string
	exitCodes map[string]int
}

func (s *stubRunner) Run(command string, cfg runner.RunConfig) *runner.Result {
	s.commands = append(s.commands, command)

	out := s.stdout[command]
	if cfg.Realtime && cfg.OnOutput != nil && out != "" {
		cfg.OnOutput(runner.OutputEvent{Stream: runner.StreamStdout, Chunk: out})
	}

	code := s.exitCodes[command]
	result := &runner.Result{Success: code == 0, Stdout: out, ExitCode: &code}
	if code != 0 {
		result.ErrorMessage = fmt.Sprintf("command exited with non-zero status: %d", code)
	}
	return result
}

func newTestApp(t *testing.T, stub *stubRunner) *App {
	t.Helper()

	dir := t.TempDir()

	db, err := database.InitDB(filepath.Join(dir, "fleetbuddy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(db) })

	repo := history.NewRepository(db, history.DefaultKeep)

	cfg := *config.Config
	cfg.SettingsPath = filepath.Join(dir, "settings.yaml")

	return &App{
		Config:  &cfg,
		History: repo,
		Fleet: &fleet.Service{
			Runner:   stub,
			History:  repo,
			Settings: config.DefaultSettings(),
			PIDFile:  filepath.Join(dir, "sshuttle.pid"),
			Opener:   "true",
		},
	}
}

func execute(t *testing.T, app *App, args ...string) (string, string) {
	t.Helper()

	root := &cobra.Command{Use: "fleetbuddy"}
	RegisterCommands(root, app)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	require.NoError(t, root.Execute())

	return stdout.String(), stderr.String()
}

func TestRunCommandJSON(t *testing.T) {
	stub := &stubRunner{stdout: map[string]string{"echo hello": "hello\n"}}
	app := newTestApp(t, stub)

	stdout, _ := execute(t, app, "run", "--json", "--", "echo", "hello")

	var result runner.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))

	assert.True(t, result.Success)
	assert.Equal(t, "hello\n", result.Stdout)
	require.NotNil(t, result.ExitCode)
	assert.Equal(t, 0, *result.ExitCode)
	assert.Equal(t, []string{"echo hello"}, stub.commands)
}

func TestRunCommandStreams(t *testing.T) {
	stub := &stubRunner{stdout: map[string]string{"echo hello": "hello\n"}}
	app := newTestApp(t, stub)

	stdout, _ := execute(t, app, "run", "--", "echo", "hello")

	assert.Equal(t, "hello\n", stdout)
}

func TestHistoryCommand(t *testing.T) {
	stub := &stubRunner{}
	app := newTestApp(t, stub)

	execute(t, app, "run", "--", "ocm", "whoami")
	execute(t, app, "ocm", "token")

	stdout, _ := execute(t, app, "history")

	assert.Contains(t, stdout, "ACTION")
	assert.Contains(t, stdout, fleet.ActionCustom)
	assert.Contains(t, stdout, fleet.ActionToken)
	assert.Less(t, strings.Index(stdout, fleet.ActionCustom), strings.Index(stdout, fleet.ActionToken))

	stdout, _ = execute(t, app, "history", "--limit", "1", "--json")

	var records []history.Record
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, fleet.ActionToken, records[0].Action)

	execute(t, app, "history", "--clear")
	stdout, _ = execute(t, app, "history")
	assert.Contains(t, stdout, "No history")
}

func TestSettingsSet(t *testing.T) {
	app := newTestApp(t, &stubRunner{})

	stdout, _ := execute(t, app, "settings", "set", "ocm_env", "staging")
	assert.Contains(t, stdout, "ocm_env updated")
	assert.Equal(t, "staging", app.Fleet.Settings.OCMEnv)

	_, err := os.Stat(app.Config.SettingsPath)
	require.NoError(t, err)

	_, stderr := execute(t, app, "settings", "set", "cidr", "not-a-cidr")
	assert.Contains(t, stderr, "invalid settings")
	assert.Equal(t, "10.164.0.0/16", app.Fleet.Settings.CIDR)

	stdout, _ = execute(t, app, "settings", "show")
	assert.Contains(t, stdout, "staging")
}

func TestEnvCommand(t *testing.T) {
	kubeconfig := filepath.Join(t.TempDir(), "hive01ue1")
	require.NoError(t, os.WriteFile(kubeconfig, []byte("apiVersion: v1\n"), 0o600))

	stub := &stubRunner{stdout: map[string]string{"ocm token": "tok-123\n"}}
	app := newTestApp(t, stub)
	app.Fleet.Settings.Kubeconfig = kubeconfig

	stdout, _ := execute(t, app, "env")

	assert.Contains(t, stdout, "export SUPER_ADMIN_USER_TOKEN=tok-123\n")
	assert.Contains(t, stdout, "export OCM_ENV=integration\n")
}

func TestStatusJSON(t *testing.T) {
	stub := &stubRunner{stdout: map[string]string{"ocm whoami": "User: dev\n"}}
	app := newTestApp(t, stub)

	stdout, _ := execute(t, app, "status", "--json")

	var report fleet.StatusReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	assert.True(t, report.OCMLoggedIn)
	assert.False(t, report.HiveConnected)
	assert.Equal(t, fleet.LevelYellow, report.Level)
}

func TestOpenRejectsUnknownTarget(t *testing.T) {
	app := newTestApp(t, &stubRunner{})

	_, stderr := execute(t, app, "open", "grafana")
	assert.Contains(t, stderr, "unknown open target")
}

func TestHiveDisconnect(t *testing.T) {
	stub := &stubRunner{exitCodes: map[string]int{"pkill -f sshuttle": 1}}
	app := newTestApp(t, stub)

	stdout, stderr := execute(t, app, "hive", "disconnect")

	assert.Contains(t, stdout, "sshuttle was not running")
	assert.NotContains(t, stderr, "Error")

	stub.exitCodes = nil
	stdout, _ = execute(t, app, "hive", "disconnect")
	assert.Contains(t, stdout, "sshuttle process has been stopped")
}
