// SPDX-License-Identifier: MPL-2.0

package introspect

import (
	"context"
	"io/fs"

	"github.com/hostprobe/hostprobe/internal/hostenv"
	"github.com/hostprobe/hostprobe/pkg/attrs"
	"github.com/hostprobe/hostprobe/pkg/platform"
)

type (
	// ServiceTools records which service management tools are installed.
	ServiceTools struct {
		DebianRCD bool `json:"debian_rcd" yaml:"debian_rcd"`
		InvokeRCD bool `json:"invoke_rcd" yaml:"invoke_rcd"`
		Upstart   bool `json:"upstart" yaml:"upstart"`
		Insserv   bool `json:"insserv" yaml:"insserv"`
		RedhatRCD bool `json:"redhat_rcd" yaml:"redhat_rcd"`
	}

	// Facts is the result of every introspection check on one machine.
	Facts struct {
		Backend        string               `json:"backend" yaml:"backend"`
		Platform       string               `json:"platform,omitempty" yaml:"platform,omitempty"`
		PlatformFamily string               `json:"platform_family,omitempty" yaml:"platform_family,omitempty"`
		Categories     []platform.Category  `json:"categories" yaml:"categories"`
		Docker         bool                 `json:"docker" yaml:"docker"`
		Systemd        bool                 `json:"systemd" yaml:"systemd"`
		Kitchen        bool                 `json:"kitchen" yaml:"kitchen"`
		CI             bool                 `json:"ci" yaml:"ci"`
		Sandbox        platform.SandboxType `json:"sandbox" yaml:"sandbox"`
		ServiceTools   ServiceTools         `json:"service_tools" yaml:"service_tools"`
	}
)

// Sandbox reports the application sandbox of the machine: Flatpak when
// /.flatpak-info exists, otherwise Snap when SNAP_NAME is set.
func (in *Inspector) Sandbox(ctx context.Context) platform.SandboxType {
	return platform.DetectSandboxFrom(
		func(key string) string { return hostenv.Get(in.Env, key) },
		func(path string) error {
			if in.exists(ctx, path) {
				return nil
			}
			return fs.ErrNotExist
		},
	)
}

// Report runs every check. src may be nil, in which case the attribute-based
// facts are left empty.
func (in *Inspector) Report(ctx context.Context, src attrs.Source) Facts {
	d := attrs.DescriptorOf(src)
	f := Facts{
		Backend:        in.Files.Name(),
		Platform:       d.Platform,
		PlatformFamily: d.PlatformFamily,
		Categories:     platform.Resolve(src),
		Docker:         IsDocker(src),
		Systemd:        in.IsSystemd(ctx),
		Kitchen:        in.IsKitchen(),
		CI:             in.IsCI(),
		Sandbox:        in.Sandbox(ctx),
		ServiceTools: ServiceTools{
			DebianRCD: in.HasDebianRCD(ctx),
			InvokeRCD: in.HasInvokeRCD(ctx),
			Upstart:   in.HasUpstart(ctx),
			Insserv:   in.HasInsserv(ctx),
			RedhatRCD: in.HasRedhatRCD(ctx),
		},
	}
	if f.Categories == nil {
		f.Categories = []platform.Category{}
	}
	return f
}
