package runner

import "time"

// DefaultTimeoutMs applies when RunConfig.TimeoutMs is zero.
const DefaultTimeoutMs = 30000

type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// Credentials are held only for the duration of one Run and are never logged.
type Credentials struct {
	SudoPassword  string
	SSHPassphrase string
}

func (c Credentials) IsEmpty() bool {
	return c.SudoPassword == "" && c.SSHPassphrase == ""
}

// OutputEvent is a chunk of process output delivered while the command runs.
type OutputEvent struct {
	Stream    Stream    `json:"stream"`
	Chunk     string    `json:"chunk"`
	Timestamp time.Time `json:"timestamp"`
}

type OutputHandler func(OutputEvent)

type RunConfig struct {
	TimeoutMs   int `validate:"gte=0"`
	Realtime    bool
	AutoAuth    bool
	Credentials Credentials
	// OnOutput receives OutputEvents when Realtime is set. Calls are serialized.
	OnOutput OutputHandler
}

// Result is produced exactly once per Run. ExitCode is nil when the process
// never started, was killed, or was left running in the background.
type Result struct {
	Success      bool   `json:"success"`
	Stdout       string `json:"stdout"`
	Stderr       string `json:"stderr"`
	ExitCode     *int   `json:"exitCode"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Err          error  `json:"-"`
}

func newResult(stdout, stderr string, exitCode *int, err error) *Result {
	result := &Result{
		Success:  err == nil,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: exitCode,
		Err:      err,
	}

	if err != nil {
		result.ErrorMessage = err.Error()
	}

	return result
}

func intPtr(v int) *int {
	return &v
}
