// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"testing/fstest"

	"github.com/hostprobe/hostprobe/internal/testutil"
)

func TestFS_ReadFile(t *testing.T) {
	t.Parallel()

	b := rootFS()

	data, err := b.ReadFile(t.Context(), "/proc/1/comm")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "systemd\n" {
		t.Errorf("ReadFile() = %q", data)
	}

	if _, err := b.ReadFile(t.Context(), "/proc/2/comm"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestFS_PathNormalization(t *testing.T) {
	t.Parallel()

	b := rootFS()
	ctx := t.Context()

	for _, p := range []string{"/usr/bin/ls", "usr/bin/ls", "/usr//bin/./ls", "/usr/local/../bin/ls", "/../usr/bin/ls"} {
		if !Exists(ctx, b, p) {
			t.Errorf("Exists(%q) = false, want true", p)
		}
	}
	if !IsDir(ctx, b, "/") {
		t.Error("IsDir(/) = false, want true")
	}
}

func TestFS_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := rootFS().Stat(ctx, "/usr/bin/ls"); !errors.Is(err, context.Canceled) {
		t.Errorf("Stat() with cancelled context error = %v, want context.Canceled", err)
	}
}

func TestFS_Separators(t *testing.T) {
	t.Parallel()

	b := rootFS()
	if b.PathSeparator() != '/' || b.PathListSeparator() != ':' {
		t.Errorf("separators = %q %q", b.PathSeparator(), b.PathListSeparator())
	}
	if b.Name() != "fixture" {
		t.Errorf("Name() = %q, want fixture", b.Name())
	}
	if NewFS(nil, "").Name() != "fs" {
		t.Error("default name should be fs")
	}
}

func TestFS_SymlinksResolveInsideRoot(t *testing.T) {
	t.Parallel()

	b := NewFS(fstest.MapFS{
		"usr/lib/jvm/bin/java":  {Data: []byte("elf"), Mode: 0o755},
		"etc/alternatives/java": {Data: []byte("/usr/lib/jvm/bin/java"), Mode: fs.ModeSymlink},
		"usr/bin/java":          {Data: []byte("/etc/alternatives/java"), Mode: fs.ModeSymlink},
		"usr/bin/climb":         {Data: []byte("../../../../etc/alternatives/java"), Mode: fs.ModeSymlink},
		"usr/bin/dangling":      {Data: []byte("/nope/java"), Mode: fs.ModeSymlink},
		"usr/bin/loop":          {Data: []byte("/usr/bin/loop"), Mode: fs.ModeSymlink},
		"bin":                   {Data: []byte("usr/bin"), Mode: fs.ModeSymlink},
	}, "fixture")
	ctx := t.Context()

	for _, p := range []string{"/usr/bin/java", "/bin/java", "/usr/bin/climb"} {
		fi, err := b.Stat(ctx, p)
		if err != nil {
			t.Errorf("Stat(%q) error = %v", p, err)
			continue
		}
		if !fi.OwnerExecutable() || fi.IsDir() {
			t.Errorf("Stat(%q) mode = %v, want an executable file", p, fi.Mode)
		}
	}

	data, err := b.ReadFile(ctx, "/bin/java")
	if err != nil || string(data) != "elf" {
		t.Errorf("ReadFile(/bin/java) = %q, %v; want elf", data, err)
	}
	if !IsDir(ctx, b, "/bin") {
		t.Error("IsDir(/bin) = false, want true through the relative link")
	}
	if _, err := b.Stat(ctx, "/usr/bin/dangling"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat(dangling) error = %v, want fs.ErrNotExist", err)
	}
	if _, err := b.Stat(ctx, "/usr/bin/loop"); !errors.Is(err, errSymlinkLoop) {
		t.Errorf("Stat(loop) error = %v, want errSymlinkLoop", err)
	}
}

func TestFS_DirFSAbsoluteSymlink(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	root := t.TempDir()
	testutil.MustWriteExecutable(t, filepath.Join(root, "etc", "alternatives", "hostprobe-java"))
	testutil.MustMkdirAll(t, filepath.Join(root, "usr", "bin"), 0o755)
	if err := os.Symlink("/etc/alternatives/hostprobe-java", filepath.Join(root, "usr", "bin", "hostprobe-java")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	b := NewFS(os.DirFS(root), "rootfs://"+root)
	fi, err := b.Stat(t.Context(), "/usr/bin/hostprobe-java")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !fi.OwnerExecutable() {
		t.Errorf("Stat() mode = %v, want owner executable", fi.Mode)
	}
}
