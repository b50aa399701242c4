package runner

import "errors"

// Run failures, reported through Result.Err and Result.ErrorMessage
var (
	ErrInvalidConfig = errors.New("invalid run configuration")
	ErrEmptyCommand  = errors.New("command is empty")
	ErrSpawnFailed   = errors.New("failed to start command")
	ErrTimeout       = errors.New("command timed out")
	ErrNonZeroExit   = errors.New("command exited with non-zero status")
	ErrTerminated    = errors.New("command terminated by signal")
)

// Prompt automation failures
var (
	ErrPromptNotObserved = errors.New("expected prompt was never observed")
	ErrMissingCredential = errors.New("no credential available for prompt")
	ErrTunnelFailed      = errors.New("tunnel setup failed")
	ErrTunnelNotRunning  = errors.New("tunnel process not running after connect")
)
