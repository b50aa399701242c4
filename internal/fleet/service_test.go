package fleet

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"fleetbuddy/cmd/fleetbuddy/config"
	"fleetbuddy/internal/database"
	"fleetbuddy/internal/history"
	"fleetbuddy/internal/process"
	"fleetbuddy/internal/runner"
	"fleetbuddy/internal/ssh"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runCall struct {
	command string
	cfg     runner.RunConfig
}

type rule struct {
	prefix string
	result runner.Result
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []runCall
	rules []rule
}

func (f *fakeRunner) on(prefix string, result runner.Result) *fakeRunner {
	f.rules = append(f.rules, rule{prefix: prefix, result: result})
	return f
}

func (f *fakeRunner) Run(command string, cfg runner.RunConfig) *runner.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, runCall{command: command, cfg: cfg})

	for _, r := range f.rules {
		if strings.HasPrefix(command, r.prefix) {
			result := r.result
			return &result
		}
	}

	return succeeded("")
}

func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, c := range f.calls {
		out = append(out, c.command)
	}
	return out
}

func succeeded(stdout string) *runner.Result {
	code := 0
	return &runner.Result{Success: true, Stdout: stdout, ExitCode: &code}
}

func failed(code int, message string) runner.Result {
	return runner.Result{ExitCode: &code, ErrorMessage: message, Err: errors.New(message)}
}

type fakeChecker struct {
	running bool
}

func (f fakeChecker) IsRunning(_ context.Context, name string) process.Status {
	if f.running {
		return process.Status{Name: name, Running: true, PID: 4242, Source: process.SourceProcessTable}
	}
	return process.Status{Name: name, Source: process.SourceNone}
}

type fakeKeys struct {
	err        error
	passphrase string
}

func (f *fakeKeys) VerifyKey(_ string, passphrase string) error {
	f.passphrase = passphrase
	return f.err
}

func testSettings() *config.Settings {
	return &config.Settings{
		Bastion:    "bastion.ci.int.devshift.net",
		CIDR:       "10.164.0.0/16",
		Interface:  "en0",
		Kubeconfig: "/nonexistent/kubeconfig",
		OCMEnv:     "integration",
		TimeoutMs:  30000,
		ConsoleURL: "https://console.example.com/dashboards",
		TokenURL:   "https://console.redhat.com/openshift/token",
	}
}

func newTestService(t *testing.T, fake *fakeRunner) *Service {
	t.Helper()

	db, err := database.InitDB(filepath.Join(t.TempDir(), "fleetbuddy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(db) })

	return &Service{
		Runner:   fake,
		Checker:  fakeChecker{},
		History:  history.NewRepository(db, history.DefaultKeep),
		Settings: testSettings(),
		PIDFile:  "/tmp/fleetbuddy/sshuttle.pid",
	}
}

func recent(t *testing.T, svc *Service) []*history.Record {
	t.Helper()

	records, err := svc.History.ListRecent(0)
	require.NoError(t, err)
	return records
}

var testCreds = runner.Credentials{SudoPassword: "sudo-secret", SSHPassphrase: "ssh-secret"}

func TestConnectHiveRunsRouteThenTunnel(t *testing.T) {
	fake := &fakeRunner{}
	svc := newTestService(t, fake)

	report, err := svc.ConnectHive(testCreds, nil)
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, []string{
		"sudo route add -net 10.164.0.0/16 -interface en0",
		"sshuttle --daemon --pidfile /tmp/fleetbuddy/sshuttle.pid -r bastion.ci.int.devshift.net 10.164.0.0/16",
	}, fake.commands())

	for _, call := range fake.calls {
		assert.True(t, call.cfg.AutoAuth)
		assert.Equal(t, testCreds, call.cfg.Credentials)
		assert.Equal(t, 30000, call.cfg.TimeoutMs)
	}

	assert.Len(t, recent(t, svc), 2)
}

func TestConnectHiveStopsAtFirstFailure(t *testing.T) {
	fake := (&fakeRunner{}).on("sudo route", failed(1, "route: writing to routing socket: File exists"))
	svc := newTestService(t, fake)

	report, err := svc.ConnectHive(testCreds, nil)

	assert.ErrorIs(t, err, ErrRouteFailed)
	assert.False(t, report.Success)
	assert.Len(t, report.Steps, 1)
	assert.Len(t, fake.commands(), 1)

	records := recent(t, svc)
	require.Len(t, records, 1)
	assert.Equal(t, ActionRoute, records[0].Action)
	assert.False(t, records[0].Success)
}

func TestConnectHiveTunnelFailure(t *testing.T) {
	fake := (&fakeRunner{}).on("sshuttle", failed(1, "tunnel failed: Permission denied (publickey)"))
	svc := newTestService(t, fake)

	_, err := svc.ConnectHive(testCreds, nil)

	assert.ErrorIs(t, err, ErrTunnelFailed)
	assert.Len(t, fake.commands(), 2)
}

func TestConnectHiveChecksKeyFirst(t *testing.T) {
	fake := &fakeRunner{}
	keys := &fakeKeys{err: errors.New("incorrect private key passphrase")}

	svc := newTestService(t, fake)
	svc.Keys = keys
	svc.Settings.SSHKeyPath = "~/.ssh/id_ed25519"

	_, err := svc.ConnectHive(testCreds, nil)

	assert.ErrorIs(t, err, ErrSSHKeyCheckFailed)
	assert.Equal(t, "ssh-secret", keys.passphrase)
	assert.Empty(t, fake.commands())
}

func TestConnectHivePassesKeyToSSH(t *testing.T) {
	fake := &fakeRunner{}
	svc := newTestService(t, fake)
	svc.Keys = &fakeKeys{}
	svc.Settings.SSHKeyPath = "/home/dev/.ssh/id_ed25519"
	svc.Settings.BastionUser = "dev"

	_, err := svc.ConnectHive(testCreds, nil)
	require.NoError(t, err)

	commands := fake.commands()
	require.Len(t, commands, 2)
	assert.Contains(t, commands[1], "-e 'ssh -i /home/dev/.ssh/id_ed25519'")
	assert.Contains(t, commands[1], "-r dev@bastion.ci.int.devshift.net")
}

func TestHistoryNeverStoresSecrets(t *testing.T) {
	fake := &fakeRunner{}
	svc := newTestService(t, fake)

	svc.Custom("echo sudo-secret | sudo -S true", runner.RunConfig{AutoAuth: true, Credentials: testCreds})

	records := recent(t, svc)
	require.Len(t, records, 1)
	assert.Equal(t, "echo **** | sudo -S true", records[0].Command)
	assert.Equal(t, ActionCustom, records[0].Action)
}

func TestDisconnectHiveCleansPIDFile(t *testing.T) {
	dead := exec.Command("true")
	require.NoError(t, dead.Run())

	pidFile := filepath.Join(t.TempDir(), "sshuttle.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte(strconv.Itoa(dead.Process.Pid)), 0o644))

	fake := &fakeRunner{}
	svc := newTestService(t, fake)
	svc.PIDFile = pidFile

	report, err := svc.DisconnectHive(context.Background())
	require.NoError(t, err)

	assert.True(t, report.WasRunning)
	assert.Equal(t, []string{"pkill -f sshuttle"}, fake.commands())
	_, statErr := os.Stat(pidFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDisconnectHiveWhenAlreadyStopped(t *testing.T) {
	fake := (&fakeRunner{}).on("pkill", failed(1, "command exited with non-zero status: 1"))
	svc := newTestService(t, fake)

	report, err := svc.DisconnectHive(context.Background())
	require.NoError(t, err)

	assert.False(t, report.WasRunning)
	assert.False(t, report.Result.Success)
}

func TestDisconnectHiveFailure(t *testing.T) {
	fake := (&fakeRunner{}).on("pkill", failed(2, "command exited with non-zero status: 2"))
	svc := newTestService(t, fake)

	_, err := svc.DisconnectHive(context.Background())
	assert.ErrorIs(t, err, ErrDisconnectFailed)
}

func TestStatusLevels(t *testing.T) {
	tests := []struct {
		name      string
		tunnel    bool
		ocm       bool
		want      Level
		connected bool
	}{
		{"tunnel and ocm", true, true, LevelGreen, true},
		{"tunnel only", true, false, LevelYellow, false},
		{"ocm only", false, true, LevelYellow, false},
		{"nothing", false, false, LevelRed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRunner{}
			if tt.ocm {
				fake.on("ocm whoami", *succeeded("ID: 1abc\nUser: dev\n"))
			} else {
				fake.on("ocm whoami", failed(1, "Not logged in"))
			}

			svc := newTestService(t, fake)
			svc.Checker = fakeChecker{running: tt.tunnel}

			report := svc.Status(context.Background())

			assert.Equal(t, tt.want, report.Level)
			assert.Equal(t, tt.connected, report.HiveConnected)
			assert.Equal(t, tt.tunnel, report.Tunnel.Running)
			assert.Equal(t, tt.ocm, report.OCMLoggedIn)
			assert.Empty(t, recent(t, svc), "status probes are not recorded")
		})
	}
}

func TestStatusKubeconfig(t *testing.T) {
	kubeconfig := filepath.Join(t.TempDir(), "hive01ue1")
	require.NoError(t, os.WriteFile(kubeconfig, []byte("apiVersion: v1\n"), 0o600))

	svc := newTestService(t, &fakeRunner{})
	svc.Settings.Kubeconfig = kubeconfig

	assert.True(t, svc.Status(context.Background()).KubeconfigExists)

	svc.Settings.Kubeconfig = kubeconfig + ".missing"
	assert.False(t, svc.Status(context.Background()).KubeconfigExists)
}

func TestWatchReportsUntilCancelled(t *testing.T) {
	svc := newTestService(t, &fakeRunner{})

	ctx, cancel := context.WithCancel(context.Background())
	var reports int

	svc.Watch(ctx, 10*time.Millisecond, func(*StatusReport) {
		reports++
		if reports == 3 {
			cancel()
		}
	})

	assert.Equal(t, 3, reports)
}

func TestTestEnv(t *testing.T) {
	kubeconfig := filepath.Join(t.TempDir(), "hive01ue1")
	require.NoError(t, os.WriteFile(kubeconfig, []byte("apiVersion: v1\nkind: Config\n"), 0o600))

	fake := (&fakeRunner{}).on("ocm token", *succeeded("tok-123\n"))
	svc := newTestService(t, fake)
	svc.Settings.Kubeconfig = kubeconfig

	out := filepath.Join(t.TempDir(), "env", "test.env")
	env, err := svc.TestEnv(out)
	require.NoError(t, err)

	assert.Contains(t, env.Script, "export SUPER_ADMIN_USER_TOKEN=tok-123\n")
	assert.Contains(t, env.Script, "export AWS_ACCOUNT_OPERATOR_KUBECONFIG='apiVersion: v1\nkind: Config\n'\n")
	assert.Contains(t, env.Script, "export OCM_ENV=integration\n")
	assert.Equal(t, out, env.Written)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, env.Script, string(written))
}

func TestTestEnvErrors(t *testing.T) {
	fake := (&fakeRunner{}).on("ocm token", failed(1, "Not logged in"))
	svc := newTestService(t, fake)

	_, err := svc.TestEnv("")
	assert.ErrorIs(t, err, ErrTokenFailed)

	svc = newTestService(t, (&fakeRunner{}).on("ocm token", *succeeded("tok")))
	_, err = svc.TestEnv("")
	assert.ErrorIs(t, err, ErrKubeconfigMissing)
}

func TestOCMCommands(t *testing.T) {
	fake := &fakeRunner{}
	svc := newTestService(t, fake)

	svc.RefreshToken(runner.RunConfig{})
	svc.OCMLogin(runner.RunConfig{})
	svc.OCMWhoAmI(runner.RunConfig{})
	svc.OCWhoAmI(runner.RunConfig{TimeoutMs: 5000})

	assert.Equal(t, []string{
		"ocm token",
		"ocm login --use-auth-code --url=integration",
		"ocm whoami",
		"oc whoami",
	}, fake.commands())
	assert.Equal(t, 5000, fake.calls[3].cfg.TimeoutMs)
}

func TestOpen(t *testing.T) {
	fake := &fakeRunner{}
	svc := newTestService(t, fake)
	svc.Opener = "xdg-open"

	_, err := svc.Open("token")
	require.NoError(t, err)
	assert.Equal(t, []string{"xdg-open https://console.redhat.com/openshift/token"}, fake.commands())

	_, err = svc.Open("grafana")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

type fakeProber struct {
	got *ssh.Credentials
	err error
}

func (f *fakeProber) Probe(creds *ssh.Credentials) error {
	f.got = creds
	return f.err
}

func TestCheckBastion(t *testing.T) {
	svc := newTestService(t, &fakeRunner{})
	prober := &fakeProber{}
	svc.Keys = &fakeKeys{}
	svc.Bastion = prober

	assert.ErrorIs(t, svc.CheckBastion(testCreds), ErrNoSSHKey)

	svc.Settings.SSHKeyPath = "~/.ssh/id_ed25519"
	svc.Settings.BastionUser = "dev"

	require.NoError(t, svc.CheckBastion(testCreds))
	require.NotNil(t, prober.got)
	assert.Equal(t, "bastion.ci.int.devshift.net", prober.got.Host)
	assert.Equal(t, "dev", prober.got.Username)
	assert.Equal(t, "ssh-secret", prober.got.Passphrase)

	svc.Keys = &fakeKeys{err: errors.New("bad key")}
	assert.ErrorIs(t, svc.CheckBastion(testCreds), ErrSSHKeyCheckFailed)
}
