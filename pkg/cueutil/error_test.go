// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "test.cue"); err != nil {
			t.Errorf("FormatError(nil) = %v, want nil", err)
		}
	})

	t.Run("non-CUE error is prefixed with the file", func(t *testing.T) {
		t.Parallel()

		original := errors.New("some error")
		err := FormatError(original, "test.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.HasPrefix(err.Error(), "test.cue: ") {
			t.Errorf("error should start with file path, got: %v", err)
		}
		if !errors.Is(err, original) {
			t.Errorf("error should wrap the original, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []string
		want string
	}{
		{name: "empty path", path: nil, want: ""},
		{name: "single element", path: []string{"search"}, want: "search"},
		{name: "nested path", path: []string{"transport", "ssh", "port"}, want: "transport.ssh.port"},
		{name: "array index", path: []string{"search", "extra_path", "0"}, want: "search.extra_path[0]"},
		{name: "nested arrays", path: []string{"items", "0", "values", "1"}, want: "items[0].values[1]"},
		{name: "leading numeric element", path: []string{"0", "name"}, want: "0.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "within limit", size: 11, wantErr: false},
		{name: "exact limit", size: 100, wantErr: false},
		{name: "empty", size: 0, wantErr: false},
		{name: "exceeds limit", size: 101, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CheckFileSize(make([]byte, tt.size), 100, "test.cue")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckFileSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
			}
			if err != nil && (!strings.Contains(err.Error(), "test.cue") || !strings.Contains(err.Error(), "101")) {
				t.Errorf("error should name the file and size, got: %v", err)
			}
		})
	}
}
