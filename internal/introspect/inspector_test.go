// SPDX-License-Identifier: MPL-2.0

package introspect

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/hostprobe/hostprobe/internal/hostenv"
	"github.com/hostprobe/hostprobe/internal/transport"
	"github.com/hostprobe/hostprobe/pkg/attrs"
)

func newInspector(files fstest.MapFS, env hostenv.Map) *Inspector {
	return New(transport.NewFS(files, "fixture"), env)
}

func TestIsDocker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  attrs.Source
		want bool
	}{
		{name: "nil source", src: nil, want: false},
		{name: "no virtualization", src: attrs.Map{"platform": "ubuntu"}, want: false},
		{name: "docker guest", src: attrs.Map{"virtualization": map[string]any{"systems": map[string]any{"docker": "guest"}}}, want: true},
		{name: "docker host", src: attrs.Map{"virtualization": map[string]any{"systems": map[string]any{"docker": "host"}}}, want: false},
		{name: "kvm guest", src: attrs.Map{"virtualization": map[string]any{"systems": map[string]any{"kvm": "guest"}}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsDocker(tt.src); got != tt.want {
				t.Errorf("IsDocker() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsSystemd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		comm *fstest.MapFile
		want bool
	}{
		{name: "systemd", comm: &fstest.MapFile{Data: []byte("systemd\n")}, want: true},
		{name: "systemd without newline", comm: &fstest.MapFile{Data: []byte("systemd")}, want: true},
		{name: "only first line counts", comm: &fstest.MapFile{Data: []byte("init\nsystemd\n")}, want: false},
		{name: "sysvinit", comm: &fstest.MapFile{Data: []byte("init\n")}, want: false},
		{name: "empty", comm: &fstest.MapFile{Data: nil}, want: false},
		{name: "missing", comm: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			files := fstest.MapFS{}
			if tt.comm != nil {
				files["proc/1/comm"] = tt.comm
			}
			if got := newInspector(files, nil).IsSystemd(t.Context()); got != tt.want {
				t.Errorf("IsSystemd() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsKitchenAndCI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		env         hostenv.Map
		wantKitchen bool
		wantCI      bool
	}{
		{name: "neither", env: hostenv.Map{"PATH": "/bin"}},
		{name: "kitchen set", env: hostenv.Map{"TEST_KITCHEN": "1"}, wantKitchen: true},
		{name: "ci set empty", env: hostenv.Map{"CI": ""}, wantCI: true},
		{name: "both", env: hostenv.Map{"CI": "true", "TEST_KITCHEN": "yes"}, wantKitchen: true, wantCI: true},
		{name: "nil env", env: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := newInspector(fstest.MapFS{}, tt.env)
			if got := in.IsKitchen(); got != tt.wantKitchen {
				t.Errorf("IsKitchen() = %v, want %v", got, tt.wantKitchen)
			}
			if got := in.IsCI(); got != tt.wantCI {
				t.Errorf("IsCI() = %v, want %v", got, tt.wantCI)
			}
		})
	}
}

func TestSystemdUnits(t *testing.T) {
	t.Parallel()

	in := newInspector(fstest.MapFS{
		"lib/systemd/system/ssh.service":             {},
		"usr/lib/systemd/system/getty@.service":      {},
		"run/systemd/system/docker.socket":           {},
		"etc/systemd/system/multi-user.target.wants": {Mode: fs.ModeDir | 0o755},
	}, nil)
	ctx := t.Context()

	tests := []struct {
		name        string
		unit        string
		wantService bool
		wantUnit    bool
	}{
		{name: "service in /lib", unit: "ssh", wantService: true},
		{name: "service file name as unit", unit: "ssh.service", wantUnit: true},
		{name: "template instance", unit: "getty@tty1", wantService: true},
		{name: "template name", unit: "getty@", wantService: true},
		{name: "socket unit", unit: "docker.socket", wantUnit: true},
		{name: "missing", unit: "nginx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := in.HasSystemdServiceUnit(ctx, tt.unit); got != tt.wantService {
				t.Errorf("HasSystemdServiceUnit(%q) = %v, want %v", tt.unit, got, tt.wantService)
			}
			if got := in.HasSystemdUnit(ctx, tt.unit); got != tt.wantUnit {
				t.Errorf("HasSystemdUnit(%q) = %v, want %v", tt.unit, got, tt.wantUnit)
			}
		})
	}
}
