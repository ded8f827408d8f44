// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hostprobe/hostprobe/internal/hostenv"
	"github.com/hostprobe/hostprobe/pkg/platform"
)

const defaultPathExt = ".COM;.EXE;.BAT;.CMD"

// Local reads the filesystem of the running process.
type Local struct {
	logger  *log.Logger
	env     hostenv.Environment
	windows bool
}

// NewLocal creates a backend for the local filesystem.
func NewLocal(opts ...Option) *Local {
	o := applyOptions(opts)
	return &Local{
		logger:  o.logger,
		env:     o.env,
		windows: platform.IsWindowsRuntime(),
	}
}

// Name implements Backend.
func (l *Local) Name() string { return "local" }

// Stat implements Backend. Windows has no execute bit, so regular files whose
// extension is listed in PATHEXT are reported as executable there.
func (l *Local) Stat(ctx context.Context, path string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	mode := st.Mode()
	if l.windows && mode.IsRegular() && l.hasExecutableExt(path) {
		mode |= 0o111
	}
	return FileInfo{Mode: mode}, nil
}

// ReadFile implements Backend.
func (l *Local) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// PathSeparator implements Backend.
func (l *Local) PathSeparator() byte {
	if l.windows {
		return '\\'
	}
	return '/'
}

// PathListSeparator implements Backend.
func (l *Local) PathListSeparator() byte {
	if l.windows {
		return ';'
	}
	return ':'
}

// Environ implements EnvironmentProvider.
func (l *Local) Environ(context.Context) (hostenv.Map, error) {
	if m, ok := l.env.(hostenv.Map); ok {
		return m, nil
	}
	return hostenv.FromEnviron(os.Environ()), nil
}

func (l *Local) hasExecutableExt(path string) bool {
	ext := strings.ToUpper(filepath.Ext(path))
	if ext == "" {
		return false
	}
	pathext, ok := l.env.LookupEnv("PATHEXT")
	if !ok || strings.TrimSpace(pathext) == "" {
		pathext = defaultPathExt
	}
	exts := strings.Split(strings.ToUpper(pathext), ";")
	return slices.Contains(exts, ext)
}

var _ interface {
	Backend
	EnvironmentProvider
} = (*Local)(nil)
