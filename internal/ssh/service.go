package ssh

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"fleetbuddy/internal/fileio"
	"fleetbuddy/internal/logger"

	"github.com/melbahja/goph"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const dialTimeout = 10 * time.Second

// Service checks bastion access before a tunnel is started, so a wrong
// passphrase is reported up front instead of as a stuck prompt.
type Service struct {
	client *goph.Client
	creds  *Credentials
}

func NewService() *Service {
	return &Service{}
}

// VerifyKey parses the private key at path with the given passphrase.
func (s *Service) VerifyKey(path string, passphrase string) error {
	keyBytes, err := os.ReadFile(fileio.ExpandHome(path))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyNotReadable, err)
	}

	_, err = parseSigner(keyBytes, passphrase)
	return err
}

func parseSigner(keyBytes []byte, passphrase string) (ssh.Signer, error) {
	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err == nil {
		// unencrypted key; any passphrase is ignored
		return signer, nil
	}

	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}

	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}

	signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(passphrase))
	if err != nil {
		if errors.Is(err, x509.IncorrectPasswordError) {
			return nil, ErrIncorrectPassphrase
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}

	return signer, nil
}

func hostKeyCallback(creds *Credentials) ssh.HostKeyCallback {
	if creds.KnownHostsPath != "" && fileio.Exists(creds.KnownHostsPath) {
		callback, err := knownhosts.New(fileio.ExpandHome(creds.KnownHostsPath))
		if err == nil {
			return callback
		}
		logger.Warn("Could not load known hosts from %s: %v", creds.KnownHostsPath, err)
	}

	// sshuttle itself confirms unknown host keys through its own prompt
	return ssh.InsecureIgnoreHostKey()
}

func (s *Service) Connect(creds *Credentials) error {
	var authMethods []ssh.AuthMethod

	if creds.PrivateKeyPath == "" {
		return ErrNoAuthMethodProvided
	}

	keyBytes, err := os.ReadFile(fileio.ExpandHome(creds.PrivateKeyPath))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToCreateAuth, err)
	}

	signer, err := parseSigner(keyBytes, creds.Passphrase)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToCreateAuth, err)
	}
	authMethods = append(authMethods, ssh.PublicKeys(signer))

	sshConfig := &ssh.ClientConfig{
		User:            creds.Username,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback(creds),
		Timeout:         dialTimeout,
	}

	port := creds.Port
	if port == 0 {
		port = 22
	}

	hostPort := net.JoinHostPort(creds.Host, fmt.Sprintf("%d", port))

	conn, err := net.DialTimeout("tcp", hostPort, sshConfig.Timeout)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToCreateSSHClient, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, hostPort, sshConfig)

	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: %v", ErrFailedToCreateSSHClient, err)
	}

	s.client = &goph.Client{Client: ssh.NewClient(sshConn, chans, reqs)}
	s.creds = creds

	result, err := s.executeCommand("echo 'connection test'")

	if err != nil || result.ExitCode != 0 {
		s.Close()
		if err == nil {
			err = result.Error
		}
		return fmt.Errorf("%w: %v", ErrFailedToTestSSHConnection, err)
	}

	return nil
}

// Probe connects to the bastion, runs the connection test and disconnects.
func (s *Service) Probe(creds *Credentials) error {
	if err := s.Connect(creds); err != nil {
		return err
	}
	return s.Close()
}

func (s *Service) Close() error {
	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

func (s *Service) executeCommand(command string) (*CommandResult, error) {
	if s.client == nil {
		return nil, ErrSSHConnectionNotEstablished
	}

	// Use Command method to get separate stdout and stderr
	cmd, err := s.client.Command(command)
	if err != nil {
		return nil, fmt.Errorf("failed to create command: %w", err)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	result := &CommandResult{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		result.Error = err
		if exitErr, ok := err.(*ssh.ExitError); ok {
			result.ExitCode = exitErr.ExitStatus()
		} else {
			result.ExitCode = -1
		}
	} else {
		result.ExitCode = 0
	}

	return result, nil
}
