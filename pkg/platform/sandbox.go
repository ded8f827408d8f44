// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap indicates a Snap sandbox environment.
	SandboxSnap SandboxType = "snap"

	// FlatpakInfoPath exists inside every Flatpak sandbox.
	FlatpakInfoPath = "/.flatpak-info"
	// SnapNameEnv is set for every process started by snapd.
	SnapNameEnv = "SNAP_NAME"
)

// detectOnce caches the sandbox of the running process.
// detectSandboxFrom must not panic: sync.OnceValue would re-panic on every call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return DetectSandboxFrom(os.Getenv, statFile)
})

// SandboxType identifies the application sandbox a process runs in, if any.
type SandboxType string

// String returns the sandbox name, or "none".
func (st SandboxType) String() string {
	if st == SandboxNone {
		return "none"
	}
	return string(st)
}

// DetectSandbox returns the sandbox of the running process. The result is
// computed once.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// SpawnCommandFor returns the helper that runs a command on the host from
// inside the given sandbox ("flatpak-spawn", "snap"), or "" outside a sandbox.
func SpawnCommandFor(st SandboxType) string {
	switch st {
	case SandboxFlatpak:
		return "flatpak-spawn"
	case SandboxSnap:
		return "snap"
	default:
		return ""
	}
}

// SpawnArgsFor returns the arguments placed between SpawnCommandFor and the
// host command.
func SpawnArgsFor(st SandboxType) []string {
	switch st {
	case SandboxFlatpak:
		return []string{"--host"}
	case SandboxSnap:
		return []string{"run", "--shell"}
	default:
		return nil
	}
}

// DetectSandboxFrom classifies a sandbox from an environment getter and a file
// probe. Flatpak wins over Snap. statFile returns nil when the path exists.
func DetectSandboxFrom(getenv func(string) string, statFile func(string) error) SandboxType {
	if statFile(FlatpakInfoPath) == nil {
		return SandboxFlatpak
	}
	if getenv(SnapNameEnv) != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
