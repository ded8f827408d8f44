// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/internal/testutil"
)

func loadFromDir(t *testing.T, dir string) (*Config, string, error) {
	t.Helper()
	return NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: dir})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), content, 0o644)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Transport.Kind != TransportLocal {
		t.Errorf("Transport.Kind = %q, want local", cfg.Transport.Kind)
	}
	if cfg.Transport.SSH.Port != DefaultSSHPort {
		t.Errorf("Transport.SSH.Port = %d, want %d", cfg.Transport.SSH.Port, DefaultSSHPort)
	}
	if cfg.Transport.SSH.Timeout != DefaultSSHTimeout {
		t.Errorf("Transport.SSH.Timeout = %s, want %s", cfg.Transport.SSH.Timeout, DefaultSSHTimeout)
	}
	if cfg.Transport.Container.Engine != ContainerEngineDocker {
		t.Errorf("Transport.Container.Engine = %q, want docker", cfg.Transport.Container.Engine)
	}
	if cfg.Search.Concurrency != 1 {
		t.Errorf("Search.Concurrency = %d, want 1", cfg.Search.Concurrency)
	}
	if len(cfg.Search.ExtraPath) != 0 {
		t.Errorf("Search.ExtraPath = %v, want empty", cfg.Search.ExtraPath)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup only applies on Linux")
	}

	testXDGPath := "/tmp/test-xdg-config"
	restoreXDG := testutil.MustSetenv(t, "XDG_CONFIG_HOME", testXDGPath)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join(testXDGPath, AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}

	restoreXDG()
	defer testutil.MustUnsetenv(t, "XDG_CONFIG_HOME")()

	home := t.TempDir()
	defer testutil.SetHomeDir(t, home)()

	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join(home, ".config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}
}

func TestConfigDirOverride(t *testing.T) {
	SetConfigDirOverride("/custom/dir")
	defer Reset()

	dir, err := ConfigDir()
	if err != nil || dir != "/custom/dir" {
		t.Errorf("ConfigDir() = %q, %v, want /custom/dir", dir, err)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadFromDir(t, t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.Transport.Kind != TransportLocal || cfg.Search.Concurrency != 1 {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
transport: {
	kind: "ssh"
	ssh: {
		host: "db1.example.com"
		port: 2222
		user: "ops"
		timeout: "1m30s"
	}
}
search: {
	extra_path: ["/opt/chef/bin", "$HOME/bin"]
	concurrency: 4
}
attributes: file: "/var/lib/node.json"
log: level: "warn"
ui: color_scheme: "dark"
`)

	cfg, path, err := loadFromDir(t, dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(dir, "config.cue"); path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}

	ssh := cfg.Transport.SSH
	if cfg.Transport.Kind != TransportSSH || ssh.Host != "db1.example.com" || ssh.Port != 2222 || ssh.User != "ops" {
		t.Errorf("Transport = %+v", cfg.Transport)
	}
	if ssh.Timeout != 90*time.Second {
		t.Errorf("SSH.Timeout = %s, want 1m30s", ssh.Timeout)
	}
	if cfg.Transport.Container.Engine != ContainerEngineDocker {
		t.Errorf("unset Container.Engine = %q, want default docker", cfg.Transport.Container.Engine)
	}
	if len(cfg.Search.ExtraPath) != 2 || cfg.Search.ExtraPath[0] != "/opt/chef/bin" {
		t.Errorf("Search.ExtraPath = %v", cfg.Search.ExtraPath)
	}
	if cfg.Search.Concurrency != 4 {
		t.Errorf("Search.Concurrency = %d, want 4", cfg.Search.Concurrency)
	}
	if cfg.Attributes.File != "/var/lib/node.json" {
		t.Errorf("Attributes.File = %q", cfg.Attributes.File)
	}
	if cfg.Log.Level != LogLevelWarn || cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("Log/UI = %+v / %+v", cfg.Log, cfg.UI)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown transport", content: `transport: kind: "telnet"`},
		{name: "unknown engine", content: `transport: container: engine: "lxc"`},
		{name: "port out of range", content: `transport: ssh: port: 70000`},
		{name: "bad timeout", content: `transport: ssh: timeout: "soon"`},
		{name: "zero concurrency", content: `search: concurrency: 0`},
		{name: "extra path not a list", content: `search: extra_path: "/opt/bin"`},
		{name: "unknown field", content: `unknown_section: true`},
		{name: "syntax error", content: `transport: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := loadFromDir(t, writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be *issue.ActionableError, got %T", err)
			}
			if !ae.HasSuggestions() {
				t.Error("error should carry suggestions")
			}
		})
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `ui: verbose: true`)
	path := filepath.Join(dir, "config.cue")

	cfg, resolved, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if resolved != path || !cfg.UI.Verbose {
		t.Errorf("Load() = %+v from %q", cfg.UI, resolved)
	}

	_, _, err = NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: filepath.Join(dir, "missing.cue")})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("missing explicit file error = %v, want *issue.ActionableError", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	defer testutil.MustSetenv(t, "HOSTPROBE_SEARCH_CONCURRENCY", "8")()
	defer testutil.MustSetenv(t, "HOSTPROBE_TRANSPORT_KIND", "container")()
	defer testutil.MustSetenv(t, "HOSTPROBE_TRANSPORT_CONTAINER_ID", "web-1")()

	cfg, _, err := loadFromDir(t, writeConfig(t, `search: concurrency: 2`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Search.Concurrency != 8 {
		t.Errorf("Search.Concurrency = %d, want 8 from env", cfg.Search.Concurrency)
	}
	if cfg.Transport.Kind != TransportContainer || cfg.Transport.Container.ID != "web-1" {
		t.Errorf("Transport = %+v", cfg.Transport)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	defer testutil.MustSetenv(t, "HOSTPROBE_UI_COLOR_SCHEME", "neon")()

	_, _, err := loadFromDir(t, t.TempDir())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := contextWithCancel(t)
	cancel()
	if _, _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); err == nil {
		t.Error("Load() with canceled context should fail")
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Transport.Kind = TransportRootFS
	cfg.Transport.RootFS.Path = "/srv/images/debian"
	cfg.Transport.SSH.Host = "build.internal"
	cfg.Transport.SSH.Timeout = 3 * time.Second
	cfg.Search.ExtraPath = []string{"/opt/bin", "~/bin"}
	cfg.Search.Concurrency = 3
	cfg.Attributes.File = "node.yaml"
	cfg.Log.Level = LogLevelDebug
	cfg.UI.Verbose = true

	dir := t.TempDir()
	path := filepath.Join(dir, "config.cue")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _, err := loadFromDir(t, dir)
	if err != nil {
		t.Fatalf("Load() of generated config error = %v\n%s", err, GenerateCUE(cfg))
	}
	if got.Transport.RootFS.Path != cfg.Transport.RootFS.Path || got.Transport.SSH.Timeout != 3*time.Second {
		t.Errorf("Transport = %+v, want %+v", got.Transport, cfg.Transport)
	}
	if len(got.Search.ExtraPath) != 2 || got.Search.ExtraPath[1] != "~/bin" || got.Search.Concurrency != 3 {
		t.Errorf("Search = %+v", got.Search)
	}
	if got.Attributes.File != "node.yaml" || got.Log.Level != LogLevelDebug || !got.UI.Verbose {
		t.Errorf("config = %+v", got)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")

	path, created, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created || path != filepath.Join(dir, "config.cue") {
		t.Errorf("CreateDefaultConfig() = %q, %v", path, created)
	}

	_, created, err = CreateDefaultConfig(dir)
	if err != nil || created {
		t.Errorf("second CreateDefaultConfig() = created %v, err %v; want existing file kept", created, err)
	}

	cfg, _, err := loadFromDir(t, dir)
	if err != nil {
		t.Fatalf("Load() of default config error = %v", err)
	}
	if cfg.Transport.Kind != TransportLocal {
		t.Errorf("Transport.Kind = %q", cfg.Transport.Kind)
	}
}

func TestExpandExtraPath(t *testing.T) {
	t.Parallel()

	env := map[string]string{"HOME": "/home/ops", "TOOLS": "/opt/tools"}
	getenv := func(k string) string { return env[k] }

	got, err := ExpandExtraPath([]string{"~/bin", "$TOOLS/bin", "${TOOLS}/sbin", "/usr/local/bin", "$UNSET"}, getenv)
	if err != nil {
		t.Fatalf("ExpandExtraPath() error = %v", err)
	}
	want := []string{"/home/ops/bin", "/opt/tools/bin", "/opt/tools/sbin", "/usr/local/bin"}
	if len(got) != len(want) {
		t.Fatalf("ExpandExtraPath() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExpandExtraPath()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := ExpandExtraPath([]string{"${unterminated"}, getenv); err == nil {
		t.Error("ExpandExtraPath() with malformed entry should fail")
	}
}
