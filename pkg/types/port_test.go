// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestPort_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		port    Port
		wantErr bool
	}{
		{0, false},
		{22, false},
		{2222, false},
		{65535, false},
		{-1, true},
		{65536, true},
	}

	for _, tt := range tests {
		err := tt.port.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Port(%d).Validate() error = %v, wantErr %v", tt.port, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidPort) {
			t.Errorf("Port(%d).Validate() error does not wrap ErrInvalidPort", tt.port)
		}
	}
}

func TestPort_OrDefault(t *testing.T) {
	t.Parallel()

	if got := Port(0).OrDefault(22); got != 22 {
		t.Errorf("Port(0).OrDefault(22) = %d, want 22", got)
	}
	if got := Port(2222).OrDefault(22); got != 2222 {
		t.Errorf("Port(2222).OrDefault(22) = %d, want 2222", got)
	}
	if got := Port(8022).String(); got != "8022" {
		t.Errorf("Port(8022).String() = %q", got)
	}
}
