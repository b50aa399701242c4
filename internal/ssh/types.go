package ssh

// Credentials for reaching the bastion host
type Credentials struct {
	Host     string
	Port     uint
	Username string
	// Key-based authentication
	PrivateKeyPath string
	// Passphrase for private key (if encrypted)
	Passphrase string
	// KnownHostsPath enables host key checking when set and present
	KnownHostsPath string
}

type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Error    error
}
