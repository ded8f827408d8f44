// SPDX-License-Identifier: MPL-2.0

package introspect

import (
	"bufio"
	"bytes"
	"context"
	"regexp"

	"github.com/hostprobe/hostprobe/internal/hostenv"
	"github.com/hostprobe/hostprobe/internal/transport"
	"github.com/hostprobe/hostprobe/pkg/attrs"
)

const (
	// KitchenEnv is set by Test Kitchen runs.
	KitchenEnv = "TEST_KITCHEN"
	// CIEnv is set by most CI providers.
	CIEnv = "CI"

	pid1CommPath = "/proc/1/comm"
)

// systemdLoadPaths are the directories systemd loads unit files from.
var systemdLoadPaths = []string{"/etc", "/usr/lib", "/lib", "/run"}

// templateInstance matches the instance part of a template unit name ("getty@tty1").
var templateInstance = regexp.MustCompile(`@.*$`)

// Inspector answers introspection questions about one machine.
type Inspector struct {
	// Files reaches the machine's filesystem.
	Files transport.Backend
	// Env is the environment checked by IsKitchen and IsCI. Nil reads nothing.
	Env hostenv.Environment
}

// New creates an Inspector.
func New(files transport.Backend, env hostenv.Environment) *Inspector {
	return &Inspector{Files: files, Env: env}
}

// IsDocker reports whether src describes a Docker guest.
func IsDocker(src attrs.Source) bool {
	return attrs.String(src, "virtualization", "systems", "docker") == "guest"
}

// IsSystemd reports whether PID 1 is systemd.
func (in *Inspector) IsSystemd(ctx context.Context) bool {
	data, err := in.Files.ReadFile(ctx, pid1CommPath)
	if err != nil {
		return false
	}
	line, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	return string(bytes.TrimSpace(line)) == "systemd"
}

// IsKitchen reports whether the environment has TEST_KITCHEN set, to any value.
func (in *Inspector) IsKitchen() bool {
	return hostenv.HasKey(in.Env, KitchenEnv)
}

// IsCI reports whether the environment has CI set, to any value.
func (in *Inspector) IsCI() bool {
	return hostenv.HasKey(in.Env, CIEnv)
}

// HasSystemdServiceUnit reports whether a .service unit file for name exists in
// any systemd load path. Template instances ("getty@tty1") resolve to the
// template unit ("getty@.service").
func (in *Inspector) HasSystemdServiceUnit(ctx context.Context, name string) bool {
	unit := templateInstance.ReplaceAllString(name, "@") + ".service"
	return in.anyLoadPathHas(ctx, unit)
}

// HasSystemdUnit reports whether a unit file with exactly this name exists in
// any systemd load path.
func (in *Inspector) HasSystemdUnit(ctx context.Context, name string) bool {
	return in.anyLoadPathHas(ctx, name)
}

func (in *Inspector) anyLoadPathHas(ctx context.Context, unit string) bool {
	for _, base := range systemdLoadPaths {
		if transport.Exists(ctx, in.Files, base+"/systemd/system/"+unit) {
			return true
		}
	}
	return false
}
