// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// TransportLocal probes the machine hostprobe runs on.
	TransportLocal TransportKind = "local"
	// TransportSSH probes a remote host over SSH.
	TransportSSH TransportKind = "ssh"
	// TransportContainer probes a running Docker or Podman container.
	TransportContainer TransportKind = "container"
	// TransportRootFS probes an unpacked root filesystem directory.
	TransportRootFS TransportKind = "rootfs"

	// ContainerEngineDocker drives containers with the docker CLI.
	ContainerEngineDocker ContainerEngine = "docker"
	// ContainerEnginePodman drives containers with the podman CLI.
	ContainerEnginePodman ContainerEngine = "podman"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// LogLevelDefault leaves the level to the --verbose flag.
	LogLevelDefault LogLevel = ""
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarn    LogLevel = "warn"
	LogLevelError   LogLevel = "error"

	// DefaultSSHPort is the SSH port used when none is configured.
	DefaultSSHPort = 22
	// DefaultSSHTimeout bounds SSH connection setup.
	DefaultSSHTimeout = 10 * time.Second
)

var (
	// ErrInvalidTransportKind is the sentinel error wrapped by InvalidTransportKindError.
	ErrInvalidTransportKind = errors.New("invalid transport kind")
	// ErrInvalidContainerEngine is the sentinel error wrapped by InvalidContainerEngineError.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidColorScheme is the sentinel error wrapped by InvalidColorSchemeError.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is the sentinel error wrapped by InvalidLogLevelError.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// TransportKind selects how the target machine is reached.
	TransportKind string

	// InvalidTransportKindError is returned when a TransportKind value is not recognized.
	InvalidTransportKindError struct {
		Value TransportKind
	}

	// ContainerEngine specifies which container CLI to use.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum level of log messages written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It collects every field-level error found.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Transport selects and configures the target machine connection
		Transport TransportConfig `json:"transport" mapstructure:"transport"`
		// Search tunes executable resolution
		Search SearchConfig `json:"search" mapstructure:"search"`
		// Attributes points at the platform attribute file of the target
		Attributes AttributesConfig `json:"attributes" mapstructure:"attributes"`
		// Log configures diagnostic output
		Log LogConfig `json:"log" mapstructure:"log"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// TransportConfig selects the transport and holds the settings of each kind.
	TransportConfig struct {
		Kind      TransportKind   `json:"kind" mapstructure:"kind"`
		SSH       SSHConfig       `json:"ssh" mapstructure:"ssh"`
		Container ContainerConfig `json:"container" mapstructure:"container"`
		RootFS    RootFSConfig    `json:"rootfs" mapstructure:"rootfs"`
	}

	// SSHConfig configures the SSH transport.
	SSHConfig struct {
		Host                  string        `json:"host" mapstructure:"host"`
		Port                  int           `json:"port" mapstructure:"port"`
		User                  string        `json:"user" mapstructure:"user"`
		IdentityFile          string        `json:"identity_file" mapstructure:"identity_file"`
		KnownHostsFile        string        `json:"known_hosts_file" mapstructure:"known_hosts_file"`
		InsecureIgnoreHostKey bool          `json:"insecure_ignore_host_key" mapstructure:"insecure_ignore_host_key"`
		Timeout               time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// ContainerConfig configures the container transport.
	ContainerConfig struct {
		Engine ContainerEngine `json:"engine" mapstructure:"engine"`
		// ID is the container name or ID
		ID string `json:"id" mapstructure:"id"`
	}

	// RootFSConfig configures the root filesystem transport.
	RootFSConfig struct {
		Path string `json:"path" mapstructure:"path"`
	}

	// SearchConfig tunes executable resolution.
	SearchConfig struct {
		// ExtraPath is appended to the target PATH. Entries may use ~ and $VAR.
		ExtraPath []string `json:"extra_path" mapstructure:"extra_path"`
		// Concurrency is the number of candidates checked at once
		Concurrency int `json:"concurrency" mapstructure:"concurrency"`
	}

	// AttributesConfig locates the platform attribute file.
	AttributesConfig struct {
		File string `json:"file" mapstructure:"file"`
	}

	// LogConfig configures diagnostic output.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Kind: TransportLocal,
			SSH: SSHConfig{
				Port:    DefaultSSHPort,
				Timeout: DefaultSSHTimeout,
			},
			Container: ContainerConfig{
				Engine: ContainerEngineDocker,
			},
		},
		Search: SearchConfig{
			ExtraPath:   []string{},
			Concurrency: 1,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Validate returns an InvalidConfigError listing every invalid field.
func (c Config) Validate() error {
	var errs []error
	for _, err := range []error{
		c.Transport.Kind.Validate(),
		c.Transport.Container.Engine.Validate(),
		c.Log.Level.Validate(),
		c.UI.ColorScheme.Validate(),
	} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if c.Transport.SSH.Port < 0 || c.Transport.SSH.Port > 65535 {
		errs = append(errs, fmt.Errorf("transport.ssh.port %d out of range", c.Transport.SSH.Port))
	}
	if c.Transport.SSH.Timeout < 0 {
		errs = append(errs, fmt.Errorf("transport.ssh.timeout %s must not be negative", c.Transport.SSH.Timeout))
	}
	if c.Search.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("search.concurrency %d must be at least 1", c.Search.Concurrency))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the TransportKind.
func (k TransportKind) String() string { return string(k) }

// Validate returns an error if the TransportKind is not recognized.
func (k TransportKind) Validate() error {
	switch k {
	case TransportLocal, TransportSSH, TransportContainer, TransportRootFS:
		return nil
	default:
		return &InvalidTransportKindError{Value: k}
	}
}

// Error implements the error interface.
func (e *InvalidTransportKindError) Error() string {
	return fmt.Sprintf("invalid transport kind %q (valid: local, ssh, container, rootfs)", e.Value)
}

// Unwrap returns ErrInvalidTransportKind for errors.Is() compatibility.
func (e *InvalidTransportKindError) Unwrap() error { return ErrInvalidTransportKind }

// String returns the string representation of the ContainerEngine.
func (ce ContainerEngine) String() string { return string(ce) }

// Validate returns an error if the ContainerEngine is not recognized.
func (ce ContainerEngine) Validate() error {
	switch ce {
	case ContainerEngineDocker, ContainerEnginePodman:
		return nil
	default:
		return &InvalidContainerEngineError{Value: ce}
	}
}

// Error implements the error interface.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: docker, podman)", e.Value)
}

// Unwrap returns ErrInvalidContainerEngine for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error { return ErrInvalidContainerEngine }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// Validate returns an error if the ColorScheme is not recognized.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Validate returns an error if the LogLevel is not recognized.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDefault, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }
