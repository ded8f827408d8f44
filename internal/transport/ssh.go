// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"mvdan.cc/sh/v3/syntax"

	"github.com/hostprobe/hostprobe/internal/hostenv"
	"github.com/hostprobe/hostprobe/pkg/types"
)

const (
	// DefaultSSHPort is used when SSHConfig.Port is zero.
	DefaultSSHPort types.Port = 22
	// DefaultSSHTimeout bounds connection setup when SSHConfig.Timeout is zero.
	DefaultSSHTimeout = 10 * time.Second
)

var (
	// ErrInvalidSSHConfig is the sentinel error wrapped by InvalidSSHConfigError.
	ErrInvalidSSHConfig = errors.New("invalid SSH configuration")

	// ErrNoSSHAuth is returned when neither an identity file nor a password is configured.
	ErrNoSSHAuth = errors.New("no SSH authentication method configured")
)

type (
	// SSHConfig describes how to reach and authenticate to a remote host.
	SSHConfig struct {
		Host string
		Port types.Port
		User string
		// IdentityFile is a private key used for public key authentication.
		IdentityFile string
		// Password enables password authentication.
		Password string
		// KnownHostsFile verifies the host key. Defaults to ~/.ssh/known_hosts.
		KnownHostsFile string
		// InsecureIgnoreHostKey disables host key verification.
		InsecureIgnoreHostKey bool
		// Timeout bounds the TCP connect and SSH handshake.
		Timeout time.Duration
	}

	// InvalidSSHConfigError is returned when an SSHConfig fails validation.
	InvalidSSHConfigError struct {
		Reason string
	}

	// SSH reads the filesystem of a remote host over an SSH connection. Each
	// call opens its own session, so an SSH backend may be used concurrently.
	SSH struct {
		client *ssh.Client
		addr   string
		logger *log.Logger
	}
)

// Error implements the error interface.
func (e *InvalidSSHConfigError) Error() string {
	return "invalid SSH configuration: " + e.Reason
}

// Unwrap returns ErrInvalidSSHConfig so callers can use errors.Is for programmatic detection.
func (e *InvalidSSHConfigError) Unwrap() error { return ErrInvalidSSHConfig }

// Validate checks the fields that can be checked without touching the network.
func (c SSHConfig) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return &InvalidSSHConfigError{Reason: "host is required"}
	}
	if err := c.Port.Validate(); err != nil {
		return &InvalidSSHConfigError{Reason: err.Error()}
	}
	if c.Timeout < 0 {
		return &InvalidSSHConfigError{Reason: "timeout must not be negative"}
	}
	return nil
}

// Address returns host:port with defaults applied.
func (c SSHConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port.OrDefault(DefaultSSHPort).String())
}

// DialSSH connects and authenticates to the host described by cfg.
func DialSSH(ctx context.Context, cfg SSHConfig, opts ...Option) (*SSH, error) {
	o := applyOptions(opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientCfg, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultSSHTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := cfg.Address()
	o.logger.Debug("dialing SSH host", "address", addr, "user", clientCfg.User)

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if deadline, ok := dialCtx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, clientCfg)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("SSH handshake with %s failed: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	return &SSH{client: ssh.NewClient(c, chans, reqs), addr: addr, logger: o.logger}, nil
}

func clientConfig(cfg SSHConfig) (*ssh.ClientConfig, error) {
	user := cfg.User
	if user == "" {
		user = currentUser()
	}

	var auth []ssh.AuthMethod
	if cfg.IdentityFile != "" {
		key, err := os.ReadFile(cfg.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read identity file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse identity file %s: %w", cfg.IdentityFile, err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}
	if len(auth) == 0 {
		return nil, ErrNoSSHAuth
	}

	hostKey, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostKey,
	}, nil
}

func hostKeyCallback(cfg SSHConfig) (ssh.HostKeyCallback, error) {
	if cfg.InsecureIgnoreHostKey {
		//nolint:gosec // explicitly requested by configuration
		return ssh.InsecureIgnoreHostKey(), nil
	}
	file := cfg.KnownHostsFile
	if file == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot locate known_hosts: %w", err)
		}
		file = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts from %s: %w", file, err)
	}
	return cb, nil
}

func currentUser() string {
	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "root"
}

// Name implements Backend.
func (s *SSH) Name() string { return "ssh://" + s.addr }

// Stat implements Backend.
func (s *SSH) Stat(ctx context.Context, path string) (FileInfo, error) {
	return remoteStat(ctx, s.Name(), s, path)
}

// ReadFile implements Backend.
func (s *SSH) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return remoteReadFile(ctx, s.Name(), s, path)
}

// Environ implements EnvironmentProvider.
func (s *SSH) Environ(ctx context.Context) (hostenv.Map, error) {
	return remoteEnviron(ctx, s.Name(), s)
}

// PathSeparator implements Backend. Remote hosts are assumed to be POSIX.
func (s *SSH) PathSeparator() byte { return '/' }

// PathListSeparator implements Backend.
func (s *SSH) PathListSeparator() byte { return ':' }

// Close closes the underlying connection.
func (s *SSH) Close() error {
	return s.client.Close()
}

func (s *SSH) run(ctx context.Context, argv []string) (stdout, stderr []byte, exitCode int, err error) {
	line, err := ShellJoin(argv)
	if err != nil {
		return nil, nil, 0, err
	}

	session, err := s.client.NewSession()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to open SSH session: %w", err)
	}
	defer func() { _ = session.Close() }()

	var outBuf, errBuf bytes.Buffer
	session.Stdout = &outBuf
	session.Stderr = &errBuf

	done := make(chan error, 1)
	go func() { done <- session.Run(line) }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		s.logger.Debug("SSH command cancelled", "command", line, "error", ctx.Err())
		return nil, nil, 0, ctx.Err()
	case err = <-done:
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return outBuf.Bytes(), errBuf.Bytes(), exitErr.ExitStatus(), nil
		}
		return nil, nil, 0, fmt.Errorf("SSH command %q failed: %w", line, err)
	}
	return outBuf.Bytes(), errBuf.Bytes(), 0, nil
}

// ShellJoin quotes argv for a POSIX shell command line.
func ShellJoin(argv []string) (string, error) {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("cannot quote argument %q: %w", arg, err)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " "), nil
}

var _ interface {
	Backend
	EnvironmentProvider
} = (*SSH)(nil)
