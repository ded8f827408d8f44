// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"testing"
)

func contextWithCancel(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithCancel(t.Context())
}

func TestTypedValues_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		validate func() error
		sentinel error
	}{
		{"TransportKind valid", TransportSSH.Validate, nil},
		{"TransportKind invalid", TransportKind("ftp").Validate, ErrInvalidTransportKind},
		{"TransportKind empty", TransportKind("").Validate, ErrInvalidTransportKind},
		{"ContainerEngine valid", ContainerEnginePodman.Validate, nil},
		{"ContainerEngine invalid", ContainerEngine("containerd").Validate, ErrInvalidContainerEngine},
		{"ColorScheme valid", ColorSchemeLight.Validate, nil},
		{"ColorScheme invalid", ColorScheme("sepia").Validate, ErrInvalidColorScheme},
		{"LogLevel default", LogLevelDefault.Validate, nil},
		{"LogLevel valid", LogLevelError.Validate, nil},
		{"LogLevel invalid", LogLevel("trace").Validate, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.validate()
			if tt.sentinel == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Validate() = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Transport.Kind = "carrier-pigeon"
	cfg.Search.Concurrency = 0
	cfg.Transport.SSH.Port = -1

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
	}
	var cfgErr *InvalidConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error should be *InvalidConfigError, got %T", err)
	}
	if len(cfgErr.FieldErrors) != 3 {
		t.Errorf("FieldErrors = %v, want 3 entries", cfgErr.FieldErrors)
	}
	if !errors.Is(cfgErr.FieldErrors[0], ErrInvalidTransportKind) {
		t.Errorf("FieldErrors[0] = %v, want ErrInvalidTransportKind", cfgErr.FieldErrors[0])
	}
}
