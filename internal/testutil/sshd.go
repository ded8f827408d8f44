// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	gossh "golang.org/x/crypto/ssh"
)

type (
	// SSHServer is an in-process SSH server that runs every session command
	// with /bin/sh -c. It accepts a single user/password pair.
	SSHServer struct {
		Host     string
		Port     int
		User     string
		Password string
		// Env is appended to the environment of every command.
		Env []string
		srv *ssh.Server
	}
)

// StartSSHServer starts an SSHServer on a random loopback port and stops it
// when the test finishes. env is appended to the environment of every command.
func StartSSHServer(t testing.TB, env ...string) *SSHServer {
	t.Helper()

	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("skipping SSH test: /bin/sh not available")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := listener.Addr().(*net.TCPAddr)

	s := &SSHServer{
		Host:     "127.0.0.1",
		Port:     addr.Port,
		User:     "probe",
		Password: "probe-secret",
		Env:      env,
	}

	srv, err := wish.NewServer(
		wish.WithAddress(listener.Addr().String()),
		wish.WithHostKeyPEM(hostKeyPEM(t)),
		wish.WithPasswordAuth(func(ctx ssh.Context, password string) bool {
			return ctx.User() == s.User && password == s.Password
		}),
		wish.WithMiddleware(s.commandMiddleware()),
	)
	if err != nil {
		_ = listener.Close()
		t.Fatalf("failed to create SSH server: %v", err)
	}
	s.srv = srv

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			t.Logf("SSH server stopped: %v", err)
		}
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return s
}

// Addr returns host:port.
func (s *SSHServer) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

func (s *SSHServer) commandMiddleware() wish.Middleware {
	return func(ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			raw := sess.RawCommand()
			if raw == "" {
				_, _ = fmt.Fprintln(sess.Stderr(), "interactive sessions are not supported")
				_ = sess.Exit(1)
				return
			}

			cmd := exec.CommandContext(sess.Context(), "/bin/sh", "-c", raw)
			cmd.Env = append(os.Environ(), s.Env...)
			cmd.Stdout = sess
			cmd.Stderr = sess.Stderr()

			if err := cmd.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					_ = sess.Exit(exitErr.ExitCode())
					return
				}
				_, _ = fmt.Fprintf(sess.Stderr(), "Error: %v\n", err)
				_ = sess.Exit(1)
				return
			}
			_ = sess.Exit(0)
		}
	}
}

// hostKeyPEM generates a throwaway ed25519 host key so that wish does not
// write one into the working directory.
func hostKeyPEM(t testing.TB) []byte {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate host key: %v", err)
	}
	block, err := gossh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatalf("failed to marshal host key: %v", err)
	}
	return pem.EncodeToMemory(block)
}
