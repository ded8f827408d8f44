// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/internal/hostenv"
	"github.com/hostprobe/hostprobe/internal/transport"
)

type (
	// staticConfig is a ConfigProvider returning a fresh copy of cfg.
	staticConfig struct {
		cfg  *config.Config
		path string
	}

	// fakeTarget is an in-memory machine with its own environment.
	fakeTarget struct {
		*transport.FS
		env hostenv.Map
	}

	cliResult struct {
		stdout string
		stderr string
		err    error
	}
)

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, string, error) {
	cfg := *s.cfg
	cfg.Search.ExtraPath = append([]string(nil), s.cfg.Search.ExtraPath...)
	return &cfg, s.path, nil
}

func (f *fakeTarget) Environ(context.Context) (hostenv.Map, error) {
	return f.env, nil
}

// targetFS is a small Debian-like machine.
func targetFS() fstest.MapFS {
	return fstest.MapFS{
		"usr/local/bin/notexec":            {Data: []byte("x"), Mode: 0o644},
		"usr/bin/git":                      {Data: []byte("#!"), Mode: 0o755},
		"usr/bin/python3":                  {Data: []byte("#!"), Mode: 0o755},
		"bin/git":                          {Data: []byte("#!"), Mode: 0o755},
		"opt/tools/bin/deploy":             {Data: []byte("#!"), Mode: 0o755},
		"proc/1/comm":                      {Data: []byte("systemd\n")},
		"usr/sbin/update-rc.d":             {Data: []byte("#!"), Mode: 0o755},
		"etc/init.d/ssh":                   {Data: []byte("#!"), Mode: 0o755},
		"lib/systemd/system/nginx.service": {Data: []byte("[Unit]")},
	}
}

// newTestApp returns an App whose target is the in-memory machine and whose
// configuration is cfg (defaults when nil).
func newTestApp(cfg *config.Config) (*App, *bytes.Buffer, *bytes.Buffer) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: staticConfig{cfg: cfg},
		Connect: func(_ context.Context, _ *config.Config, logger *log.Logger) (transport.Backend, error) {
			return &fakeTarget{
				FS: transport.NewFS(targetFS(), "fake", transport.WithLogger(logger)),
				env: hostenv.Map{
					"PATH": "/usr/local/bin:/usr/bin:/bin",
					"HOME": "/root",
				},
			}, nil
		},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	return app, &stdout, &stderr
}

func runCLI(t *testing.T, app *App, args ...string) cliResult {
	t.Helper()
	root := NewRootCommand(app)
	root.SetArgs(args)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(t.Context())
	stdout, _ := app.stdout.(*bytes.Buffer)
	stderr, _ := app.stderr.(*bytes.Buffer)
	res := cliResult{err: err}
	if stdout != nil {
		res.stdout = stdout.String()
	}
	if stderr != nil {
		res.stderr = stderr.String()
	}
	return res
}
