// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/charmbracelet/log"
)

// maxSymlinks bounds symlink expansion during one lookup, as Linux does.
const maxSymlinks = 40

var errSymlinkLoop = errors.New("too many levels of symbolic links")

// FS serves an io/fs.FS as if it were the root filesystem of a machine.
// Absolute paths such as "/usr/bin/ls" are resolved relative to the FS root.
// When the FS implements fs.ReadLinkFS, symlinks are expanded inside the root,
// so an absolute link target like "/etc/alternatives/java" never reaches the
// filesystem the FS was opened from.
type FS struct {
	fsys   fs.FS
	name   string
	logger *log.Logger
}

// NewFS creates a backend for fsys. name appears in logs, e.g. the directory
// the FS was opened from.
func NewFS(fsys fs.FS, name string, opts ...Option) *FS {
	o := applyOptions(opts)
	if name == "" {
		name = "fs"
	}
	return &FS{fsys: fsys, name: name, logger: o.logger}
}

// Name implements Backend.
func (f *FS) Name() string { return f.name }

// Stat implements Backend.
func (f *FS) Stat(ctx context.Context, name string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	rel, err := f.resolve("stat", name)
	if err != nil {
		return FileInfo{}, err
	}
	st, err := fs.Stat(f.fsys, rel)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{Mode: st.Mode()}, nil
}

// ReadFile implements Backend.
func (f *FS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := f.resolve("read", name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", name, f.name, err)
	}
	data, err := fs.ReadFile(f.fsys, rel)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", name, f.name, err)
	}
	return data, nil
}

// PathSeparator implements Backend.
func (f *FS) PathSeparator() byte { return '/' }

// PathListSeparator implements Backend.
func (f *FS) PathListSeparator() byte { return ':' }

// rel maps an absolute target path onto the FS namespace.
func (f *FS) rel(op, name string) (string, error) {
	rel := strings.TrimPrefix(path.Clean("/"+name), "/")
	if rel == "" {
		rel = "."
	}
	if !fs.ValidPath(rel) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return rel, nil
}

// resolve maps name onto the FS namespace and expands every symlink along the
// way. Absolute targets restart from the FS root; ".." never climbs above it.
func (f *FS) resolve(op, name string) (string, error) {
	rel, err := f.rel(op, name)
	if err != nil {
		return "", err
	}
	rl, ok := f.fsys.(fs.ReadLinkFS)
	if !ok || rel == "." {
		return rel, nil
	}

	pending := strings.Split(rel, "/")
	resolved := ""
	hops := 0
	for len(pending) > 0 {
		part := pending[0]
		pending = pending[1:]

		switch part {
		case "", ".":
			continue
		case "..":
			if resolved = path.Dir(resolved); resolved == "." {
				resolved = ""
			}
			continue
		}

		next := path.Join(resolved, part)
		st, err := rl.Lstat(next)
		if err != nil {
			return "", err
		}
		if st.Mode()&fs.ModeSymlink == 0 {
			resolved = next
			continue
		}

		if hops++; hops > maxSymlinks {
			return "", &fs.PathError{Op: op, Path: name, Err: errSymlinkLoop}
		}
		target, err := rl.ReadLink(next)
		if err != nil {
			return "", err
		}
		if path.IsAbs(target) {
			resolved = ""
		}
		pending = append(strings.Split(target, "/"), pending...)
	}

	if resolved == "" {
		return ".", nil
	}
	return resolved, nil
}

var _ Backend = (*FS)(nil)
