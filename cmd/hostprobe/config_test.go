// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostprobe/hostprobe/internal/config"
)

// newConfigTestApp uses the real config provider rooted at dir, or at a new
// temporary directory when dir is empty. Tests using it must not run in
// parallel.
func newConfigTestApp(t *testing.T, dir string) (*App, string) {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	config.SetConfigDirOverride(dir)
	t.Cleanup(config.Reset)

	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{Stdout: &stdout, Stderr: &stderr})
	return app, dir
}

func TestConfigCommands(t *testing.T) {
	app, dir := newConfigTestApp(t, "")
	cfgPath := filepath.Join(dir, "config.cue")

	res := runCLI(t, app, "config", "path")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Config file: "+cfgPath)

	app, _ = newConfigTestApp(t, dir)
	res = runCLI(t, app, "config", "init")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Created default configuration")
	assert.FileExists(t, cfgPath)

	app, _ = newConfigTestApp(t, dir)
	res = runCLI(t, app, "config", "init")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "already exists")

	app, _ = newConfigTestApp(t, dir)
	res = runCLI(t, app, "config", "set", "transport.ssh.host", "web1.example.com")
	require.NoError(t, res.err)

	app, _ = newConfigTestApp(t, dir)
	res = runCLI(t, app, "config", "set", "search.concurrency", "8")
	require.NoError(t, res.err)

	cfg, path, err := config.NewProvider().Load(t.Context(), config.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)
	assert.Equal(t, "web1.example.com", cfg.Transport.SSH.Host)
	assert.Equal(t, 8, cfg.Search.Concurrency)

	app, _ = newConfigTestApp(t, dir)
	res = runCLI(t, app, "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, cfgPath)
	assert.Contains(t, res.stdout, "web1.example.com")

	app, _ = newConfigTestApp(t, dir)
	res = runCLI(t, app, "config", "dump")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"web1.example.com"`)
}

func TestConfigSet_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		wantCode int
	}{
		{name: "unknown key", key: "ui.interactive", value: "true", wantCode: 2},
		{name: "bad number", key: "search.concurrency", value: "many", wantCode: 1},
		{name: "invalid value", key: "transport.kind", value: "telnet", wantCode: 1},
		{name: "below minimum", key: "search.concurrency", value: "0", wantCode: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, dir := newConfigTestApp(t, "")
			res := runCLI(t, app, "config", "set", tt.key, tt.value)
			assert.Equal(t, tt.wantCode, exitCodeFor(res.err))

			_, err := os.Stat(filepath.Join(dir, "config.cue"))
			assert.ErrorIs(t, err, os.ErrNotExist, "nothing is written on failure")
		})
	}
}

func TestConfigShow_Defaults(t *testing.T) {
	app, _ := newConfigTestApp(t, "")
	res := runCLI(t, app, "config", "show", "--transport", "rootfs", "--root", "/srv/image")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "(using defaults)")
	assert.Contains(t, res.stdout, "rootfs")
	assert.Contains(t, res.stdout, "/srv/image")
}

func TestExplicitConfigFileMissing(t *testing.T) {
	app, dir := newConfigTestApp(t, "")
	res := runCLI(t, app, "--config", filepath.Join(dir, "nope.cue"), "config", "show")
	require.Error(t, res.err)
	assert.Contains(t, formatErrorForDisplay(res.err, false), "nope.cue")
}
