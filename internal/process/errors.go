package process

import "errors"

var (
	ErrCommandFailed  = errors.New("command failed")
	ErrInvalidPIDFile = errors.New("invalid pid file")
)
