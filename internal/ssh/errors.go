package ssh

import "errors"

// Key errors
var (
	ErrKeyNotReadable      = errors.New("private key is not readable")
	ErrPassphraseRequired  = errors.New("private key is encrypted and needs a passphrase")
	ErrIncorrectPassphrase = errors.New("incorrect private key passphrase")
	ErrInvalidPrivateKey   = errors.New("invalid private key")
)

// SSH connection errors
var (
	ErrNoAuthMethodProvided        = errors.New("no valid authentication method provided")
	ErrSSHConnectionNotEstablished = errors.New("SSH connection not established")
	ErrFailedToCreateAuth          = errors.New("failed to create auth")
	ErrFailedToCreateSSHClient     = errors.New("failed to create SSH client")
	ErrFailedToTestSSHConnection   = errors.New("failed to test SSH connection")
)
