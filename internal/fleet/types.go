package fleet

import (
	"time"

	"fleetbuddy/internal/process"
	"fleetbuddy/internal/runner"
)

// Actions recorded in the history log
const (
	ActionRoute      = "hive-route"
	ActionTunnel     = "hive-tunnel"
	ActionDisconnect = "hive-disconnect"
	ActionToken      = "ocm-token"
	ActionLogin      = "ocm-login"
	ActionOCMWhoAmI  = "ocm-whoami"
	ActionOCWhoAmI   = "oc-whoami"
	ActionTestEnv    = "test-env"
	ActionCustom     = "custom"
	ActionOpen       = "open"
)

type Level string

const (
	LevelGreen  Level = "green"
	LevelYellow Level = "yellow"
	LevelRed    Level = "red"
)

func (l Level) Icon() string {
	switch l {
	case LevelGreen:
		return "🟢"
	case LevelYellow:
		return "🟡"
	}
	return "🔴"
}

type StatusReport struct {
	Tunnel           process.Status `json:"tunnel"`
	OCMLoggedIn      bool           `json:"ocmLoggedIn"`
	OCMUser          string         `json:"ocmUser,omitempty"`
	KubeconfigPath   string         `json:"kubeconfigPath"`
	KubeconfigExists bool           `json:"kubeconfigExists"`
	HiveConnected    bool           `json:"hiveConnected"`
	Level            Level          `json:"level"`
	CheckedAt        time.Time      `json:"checkedAt"`
}

// StepResult is one command run as part of a multi-step operation.
type StepResult struct {
	Name    string         `json:"name"`
	Command string         `json:"command"`
	Result  *runner.Result `json:"result"`
}

type ConnectReport struct {
	Steps   []StepResult `json:"steps"`
	Success bool         `json:"success"`
}

type TestEnv struct {
	Script  string `json:"-"`
	Written string `json:"written,omitempty"`
}

type DisconnectReport struct {
	Result *runner.Result `json:"result"`
	// WasRunning is false when there was no sshuttle process to stop.
	WasRunning bool `json:"wasRunning"`
}
