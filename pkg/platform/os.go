// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"runtime"
	"strings"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// windowsPlatformMarkers are the substrings that identify a Windows build in a
// runtime platform string.
var windowsPlatformMarkers = []string{"mswin", "mingw32", "windows"}

// RuntimePlatform returns the platform string of the running process in
// "<arch>-<os>" form, e.g. "amd64-linux" or "arm64-windows".
func RuntimePlatform() string {
	return runtime.GOARCH + "-" + runtime.GOOS
}

// MatchesWindowsPlatform reports whether a runtime platform string denotes a
// Windows build. The match is a case-sensitive substring test.
func MatchesWindowsPlatform(platform string) bool {
	for _, marker := range windowsPlatformMarkers {
		if strings.Contains(platform, marker) {
			return true
		}
	}
	return false
}

// IsWindowsRuntime reports whether this process was built for Windows. It says
// nothing about the machine being managed, which may be a remote host.
func IsWindowsRuntime() bool {
	return MatchesWindowsPlatform(RuntimePlatform())
}
