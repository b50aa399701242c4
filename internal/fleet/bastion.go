package fleet

import (
	"errors"
	"fmt"
	"os/user"

	"fleetbuddy/internal/logger"
	"fleetbuddy/internal/runner"
	"fleetbuddy/internal/ssh"
)

var ErrNoSSHKey = errors.New("no SSH key configured (settings set ssh_key_path <path>)")

type BastionProber interface {
	Probe(creds *ssh.Credentials) error
}

func (s *Service) bastionCredentials(creds runner.Credentials) (*ssh.Credentials, error) {
	if s.Settings.SSHKeyPath == "" {
		return nil, ErrNoSSHKey
	}

	username := s.Settings.BastionUser
	if username == "" {
		current, err := user.Current()
		if err != nil {
			return nil, fmt.Errorf("failed to determine SSH user: %w", err)
		}
		username = current.Username
	}

	return &ssh.Credentials{
		Host:           s.Settings.Bastion,
		Port:           22,
		Username:       username,
		PrivateKeyPath: s.Settings.SSHKeyPath,
		Passphrase:     creds.SSHPassphrase,
		KnownHostsPath: s.Settings.KnownHosts,
	}, nil
}

// CheckBastion verifies the SSH key and opens a test session on the bastion
// without touching routes or starting a tunnel.
func (s *Service) CheckBastion(creds runner.Credentials) error {
	sshCreds, err := s.bastionCredentials(creds)
	if err != nil {
		return err
	}

	if s.Keys != nil {
		if err := s.Keys.VerifyKey(sshCreds.PrivateKeyPath, sshCreds.Passphrase); err != nil {
			return fmt.Errorf("%w: %v", ErrSSHKeyCheckFailed, err)
		}
	}

	if s.Bastion == nil {
		return nil
	}

	logger.Info("Probing %s@%s", sshCreds.Username, sshCreds.Host)

	return s.Bastion.Probe(sshCreds)
}
