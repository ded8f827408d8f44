// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"io"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hostprobe/hostprobe/internal/hostenv"
)

// OwnerExec is the owner-execute permission bit.
const OwnerExec fs.FileMode = 0o100

type (
	// Backend reads file metadata and contents on a target machine.
	// Stat follows symbolic links. Errors for missing files satisfy
	// errors.Is(err, fs.ErrNotExist).
	Backend interface {
		// Name identifies the backend in logs and error messages.
		Name() string
		Stat(ctx context.Context, path string) (FileInfo, error)
		ReadFile(ctx context.Context, path string) ([]byte, error)
		// PathSeparator separates directory and file names on the target.
		PathSeparator() byte
		// PathListSeparator separates entries of the target's PATH variable.
		PathListSeparator() byte
	}

	// EnvironmentProvider is implemented by backends that can report the
	// environment of the target machine.
	EnvironmentProvider interface {
		Environ(ctx context.Context) (hostenv.Map, error)
	}

	// FileInfo is the subset of file metadata the probes need.
	FileInfo struct {
		// Mode carries the type bits (fs.ModeDir, ...) and the permission bits.
		Mode fs.FileMode
	}

	// Option configures a backend.
	Option func(*options)

	options struct {
		logger *log.Logger
		env    hostenv.Environment
	}
)

// IsDir reports whether the file is a directory.
func (fi FileInfo) IsDir() bool { return fi.Mode.IsDir() }

// OwnerExecutable reports whether the owner-execute bit is set.
func (fi FileInfo) OwnerExecutable() bool { return fi.Mode&OwnerExec != 0 }

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEnvironment sets the environment a Local backend reads PATHEXT from and
// reports through Environ. The default is the process environment.
func WithEnvironment(env hostenv.Environment) Option {
	return func(o *options) {
		o.env = env
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: log.New(io.Discard), env: hostenv.Process{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Exists reports whether path exists on the backend. Any error counts as absent.
func Exists(ctx context.Context, b Backend, path string) bool {
	_, err := b.Stat(ctx, path)
	return err == nil
}

// IsDir reports whether path is a directory. Any error counts as not a directory.
func IsDir(ctx context.Context, b Backend, path string) bool {
	fi, err := b.Stat(ctx, path)
	return err == nil && fi.IsDir()
}

// StatMode returns the mode of path.
func StatMode(ctx context.Context, b Backend, path string) (fs.FileMode, error) {
	fi, err := b.Stat(ctx, path)
	if err != nil {
		return 0, err
	}
	return fi.Mode, nil
}

// Join joins dir and name with the backend's path separator, without
// doubling a trailing separator on dir.
func Join(b Backend, dir, name string) string {
	sep := string(b.PathSeparator())
	if dir == "" {
		return name
	}
	if strings.HasSuffix(dir, sep) {
		return dir + name
	}
	return dir + sep + name
}
