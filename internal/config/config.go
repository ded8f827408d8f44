// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
	"mvdan.cc/sh/v3/shell"

	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/pkg/cueutil"
	"github.com/hostprobe/hostprobe/pkg/platform"
)

const (
	// AppName is the application name.
	AppName = "hostprobe"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variable overrides (HOSTPROBE_UI_VERBOSE).
	EnvPrefix = "HOSTPROBE"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the hostprobe configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the default config file location inside dir, or inside
// ConfigDir when dir is empty.
func ConfigFilePath(dir string) (string, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading. It returns the
// config and the file it was read from ("" when only defaults apply).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""

	// An explicit --config file is used exclusively and must exist.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'hostprobe config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cuePath, err := ConfigFilePath(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}
		if fileExists(cuePath) {
			resolvedPath = cuePath
		} else if localCuePath := ConfigFileName + "." + ConfigFileExt; fileExists(localCuePath) {
			resolvedPath = localCuePath
		}
		// No config file at all means defaults.
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'hostprobe config dump' to print a valid configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema, so check the result again.
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check HOSTPROBE_* environment variables for typos").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("transport.kind", defaults.Transport.Kind)
	v.SetDefault("transport.ssh.host", defaults.Transport.SSH.Host)
	v.SetDefault("transport.ssh.port", defaults.Transport.SSH.Port)
	v.SetDefault("transport.ssh.user", defaults.Transport.SSH.User)
	v.SetDefault("transport.ssh.identity_file", defaults.Transport.SSH.IdentityFile)
	v.SetDefault("transport.ssh.known_hosts_file", defaults.Transport.SSH.KnownHostsFile)
	v.SetDefault("transport.ssh.insecure_ignore_host_key", defaults.Transport.SSH.InsecureIgnoreHostKey)
	v.SetDefault("transport.ssh.timeout", defaults.Transport.SSH.Timeout)
	v.SetDefault("transport.container.engine", defaults.Transport.Container.Engine)
	v.SetDefault("transport.container.id", defaults.Transport.Container.ID)
	v.SetDefault("transport.rootfs.path", defaults.Transport.RootFS.Path)
	v.SetDefault("search.extra_path", defaults.Search.ExtraPath)
	v.SetDefault("search.concurrency", defaults.Search.Concurrency)
	v.SetDefault("attributes.file", defaults.Attributes.File)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// This does not use cueutil.ParseAndDecode: the result is merged into Viper as
// a map, and fields are optional so validation runs with Concrete(false).
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	// Merging keeps defaults and env overrides in effect.
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// ExpandExtraPath expands ~, $VAR and ${VAR} in each entry using getenv.
// Entries that expand to nothing are dropped.
func ExpandExtraPath(paths []string, getenv func(string) string) ([]string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		expanded, err := shell.Expand(p, getenv)
		if err != nil {
			return nil, fmt.Errorf("failed to expand extra path %q: %w", p, err)
		}
		if expanded != "" {
			out = append(out, expanded)
		}
	}
	return out, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config into dir (ConfigDir when
// empty) unless a config file already exists there. It returns the file path
// and whether it was created.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgPath, err := ConfigFilePath(dir)
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := Save(DefaultConfig(), cfgPath); err != nil {
		return "", false, err
	}
	return cfgPath, true, nil
}

// Save writes cfg as CUE to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// hostprobe configuration file\n")
	sb.WriteString("// Every field is optional. Environment variables prefixed with HOSTPROBE_ override it.\n\n")

	t := cfg.Transport
	sb.WriteString("transport: {\n")
	fmt.Fprintf(&sb, "\tkind: %q\n", t.Kind)
	sb.WriteString("\tssh: {\n")
	if t.SSH.Host != "" {
		fmt.Fprintf(&sb, "\t\thost: %q\n", t.SSH.Host)
	}
	fmt.Fprintf(&sb, "\t\tport: %d\n", t.SSH.Port)
	if t.SSH.User != "" {
		fmt.Fprintf(&sb, "\t\tuser: %q\n", t.SSH.User)
	}
	if t.SSH.IdentityFile != "" {
		fmt.Fprintf(&sb, "\t\tidentity_file: %q\n", t.SSH.IdentityFile)
	}
	if t.SSH.KnownHostsFile != "" {
		fmt.Fprintf(&sb, "\t\tknown_hosts_file: %q\n", t.SSH.KnownHostsFile)
	}
	fmt.Fprintf(&sb, "\t\tinsecure_ignore_host_key: %v\n", t.SSH.InsecureIgnoreHostKey)
	fmt.Fprintf(&sb, "\t\ttimeout: %q\n", t.SSH.Timeout.String())
	sb.WriteString("\t}\n")
	sb.WriteString("\tcontainer: {\n")
	fmt.Fprintf(&sb, "\t\tengine: %q\n", t.Container.Engine)
	if t.Container.ID != "" {
		fmt.Fprintf(&sb, "\t\tid: %q\n", t.Container.ID)
	}
	sb.WriteString("\t}\n")
	if t.RootFS.Path != "" {
		fmt.Fprintf(&sb, "\trootfs: path: %q\n", t.RootFS.Path)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nsearch: {\n")
	sb.WriteString("\textra_path: [")
	for i, p := range cfg.Search.ExtraPath {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", p)
	}
	sb.WriteString("]\n")
	fmt.Fprintf(&sb, "\tconcurrency: %d\n", cfg.Search.Concurrency)
	sb.WriteString("}\n")

	if cfg.Attributes.File != "" {
		fmt.Fprintf(&sb, "\nattributes: file: %q\n", cfg.Attributes.File)
	}

	fmt.Fprintf(&sb, "\nlog: level: %q\n", cfg.Log.Level)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}
