// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/hostprobe/hostprobe/internal/hostenv"
)

// Unix st_mode file type and special bits, as printed by stat -c %f.
const (
	unixTypeMask = 0o170000
	unixFIFO     = 0o010000
	unixChar     = 0o020000
	unixDir      = 0o040000
	unixBlock    = 0o060000
	unixRegular  = 0o100000
	unixSymlink  = 0o120000
	unixSocket   = 0o140000
	unixSetuid   = 0o4000
	unixSetgid   = 0o2000
	unixSticky   = 0o1000
)

// ErrRemoteCommand is wrapped by RemoteCommandError.
var ErrRemoteCommand = errors.New("remote command failed")

type (
	// commandRunner runs argv on a remote machine and returns its output and
	// exit status. err is reserved for transport failures; a command that ran
	// and exited non-zero reports that through exitCode.
	commandRunner interface {
		run(ctx context.Context, argv []string) (stdout, stderr []byte, exitCode int, err error)
	}

	// RemoteCommandError reports a command that ran on the target but failed.
	RemoteCommandError struct {
		Backend  string
		Command  string
		ExitCode int
		Stderr   string
	}
)

// Error implements the error interface.
func (e *RemoteCommandError) Error() string {
	msg := fmt.Sprintf("%s: %q exited with status %d", e.Backend, e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns ErrRemoteCommand so callers can use errors.Is for programmatic detection.
func (e *RemoteCommandError) Unwrap() error { return ErrRemoteCommand }

func statArgv(path string) []string     { return []string{"stat", "-L", "-c", "%f", path} }
func readFileArgv(path string) []string { return []string{"cat", path} }
func environArgv() []string             { return []string{"env"} }

// remoteStat stats path by running stat(1) on the target.
func remoteStat(ctx context.Context, backend string, r commandRunner, path string) (FileInfo, error) {
	stdout, stderr, code, err := r.run(ctx, statArgv(path))
	if err != nil {
		return FileInfo{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	if code != 0 {
		return FileInfo{}, &fs.PathError{Op: "stat", Path: path, Err: classifyFailure(backend, statArgv(path), code, stderr)}
	}
	raw, err := strconv.ParseUint(strings.TrimSpace(string(stdout)), 16, 32)
	if err != nil {
		return FileInfo{}, &fs.PathError{Op: "stat", Path: path, Err: fmt.Errorf("unexpected stat output %q: %w", stdout, err)}
	}
	return FileInfo{Mode: FileModeFromUnix(uint32(raw))}, nil
}

// remoteReadFile reads path by running cat(1) on the target.
func remoteReadFile(ctx context.Context, backend string, r commandRunner, path string) ([]byte, error) {
	stdout, stderr, code, err := r.run(ctx, readFileArgv(path))
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: path, Err: err}
	}
	if code != 0 {
		return nil, &fs.PathError{Op: "read", Path: path, Err: classifyFailure(backend, readFileArgv(path), code, stderr)}
	}
	return stdout, nil
}

// remoteEnviron captures the target's login environment with env(1).
func remoteEnviron(ctx context.Context, backend string, r commandRunner) (hostenv.Map, error) {
	stdout, stderr, code, err := r.run(ctx, environArgv())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read environment: %w", backend, err)
	}
	if code != 0 {
		return nil, classifyFailure(backend, environArgv(), code, stderr)
	}
	return hostenv.ParseEnviron(string(stdout)), nil
}

// classifyFailure turns a failed coreutils invocation into fs.ErrNotExist or
// fs.ErrPermission when stderr says so.
func classifyFailure(backend string, argv []string, code int, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	switch {
	case strings.Contains(msg, "No such file or directory"), strings.Contains(msg, "Not a directory"):
		return fs.ErrNotExist
	case strings.Contains(msg, "Permission denied"):
		return fs.ErrPermission
	default:
		return &RemoteCommandError{Backend: backend, Command: strings.Join(argv, " "), ExitCode: code, Stderr: msg}
	}
}

// FileModeFromUnix converts a raw Unix st_mode into an fs.FileMode.
func FileModeFromUnix(raw uint32) fs.FileMode {
	mode := fs.FileMode(raw & 0o777)
	switch raw & unixTypeMask {
	case unixDir:
		mode |= fs.ModeDir
	case unixSymlink:
		mode |= fs.ModeSymlink
	case unixFIFO:
		mode |= fs.ModeNamedPipe
	case unixSocket:
		mode |= fs.ModeSocket
	case unixChar:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case unixBlock:
		mode |= fs.ModeDevice
	case unixRegular:
	}
	if raw&unixSetuid != 0 {
		mode |= fs.ModeSetuid
	}
	if raw&unixSetgid != 0 {
		mode |= fs.ModeSetgid
	}
	if raw&unixSticky != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}
