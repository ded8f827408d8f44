// SPDX-License-Identifier: MPL-2.0

package introspect

import (
	"context"
	"errors"
	"fmt"

	"github.com/hostprobe/hostprobe/internal/transport"
)

// Service script locations understood by ServiceScriptExists.
const (
	// ServiceTypeInitd is a SysV script in /etc/init.d.
	ServiceTypeInitd ServiceType = "initd"
	// ServiceTypeUpstart is an Upstart job in /etc/init/<name>.conf.
	ServiceTypeUpstart ServiceType = "upstart"
	// ServiceTypeXinetd is an xinetd service in /etc/xinetd.d.
	ServiceTypeXinetd ServiceType = "xinetd"
	// ServiceTypeEtcRCD is a BSD-style script in /etc/rc.d.
	ServiceTypeEtcRCD ServiceType = "etc_rcd"
	// ServiceTypeSystemd is an init.d script or a systemd unit.
	ServiceTypeSystemd ServiceType = "systemd"
)

// Service management tool locations.
const (
	updateRCDPath = "/usr/sbin/update-rc.d"
	invokeRCDPath = "/usr/sbin/invoke-rc.d"
	initctlPath   = "/sbin/initctl"
	insservPath   = "/sbin/insserv"
	chkconfigPath = "/sbin/chkconfig"
)

// ErrUnknownServiceType is the sentinel error wrapped by UnknownServiceTypeError.
var ErrUnknownServiceType = errors.New("unknown service type")

type (
	// ServiceType names a service management style.
	ServiceType string

	// UnknownServiceTypeError is returned for a ServiceType outside ServiceTypes().
	UnknownServiceTypeError struct {
		Value ServiceType
	}
)

// Error implements the error interface.
func (e *UnknownServiceTypeError) Error() string {
	return fmt.Sprintf("unknown service type %q (valid: initd, upstart, xinetd, etc_rcd, systemd)", e.Value)
}

// Unwrap returns ErrUnknownServiceType for errors.Is() compatibility.
func (e *UnknownServiceTypeError) Unwrap() error { return ErrUnknownServiceType }

// ServiceTypes returns every known service type.
func ServiceTypes() []ServiceType {
	return []ServiceType{ServiceTypeInitd, ServiceTypeUpstart, ServiceTypeXinetd, ServiceTypeEtcRCD, ServiceTypeSystemd}
}

// String returns the string representation of the ServiceType.
func (t ServiceType) String() string { return string(t) }

// Validate returns an error if the ServiceType is not known.
func (t ServiceType) Validate() error {
	switch t {
	case ServiceTypeInitd, ServiceTypeUpstart, ServiceTypeXinetd, ServiceTypeEtcRCD, ServiceTypeSystemd:
		return nil
	default:
		return &UnknownServiceTypeError{Value: t}
	}
}

// ServiceScriptExists reports whether a service script named script exists for
// the given service type. For systemd an init.d script, a service unit and a
// plain unit all count. An unknown type is an error.
func (in *Inspector) ServiceScriptExists(ctx context.Context, t ServiceType, script string) (bool, error) {
	switch t {
	case ServiceTypeInitd:
		return in.exists(ctx, "/etc/init.d/"+script), nil
	case ServiceTypeUpstart:
		return in.exists(ctx, "/etc/init/"+script+".conf"), nil
	case ServiceTypeXinetd:
		return in.exists(ctx, "/etc/xinetd.d/"+script), nil
	case ServiceTypeEtcRCD:
		return in.exists(ctx, "/etc/rc.d/"+script), nil
	case ServiceTypeSystemd:
		return in.exists(ctx, "/etc/init.d/"+script) ||
			in.HasSystemdServiceUnit(ctx, script) ||
			in.HasSystemdUnit(ctx, script), nil
	default:
		return false, &UnknownServiceTypeError{Value: t}
	}
}

// HasDebianRCD reports whether update-rc.d is installed.
func (in *Inspector) HasDebianRCD(ctx context.Context) bool { return in.exists(ctx, updateRCDPath) }

// HasInvokeRCD reports whether invoke-rc.d is installed.
func (in *Inspector) HasInvokeRCD(ctx context.Context) bool { return in.exists(ctx, invokeRCDPath) }

// HasUpstart reports whether upstart's initctl is installed.
func (in *Inspector) HasUpstart(ctx context.Context) bool { return in.exists(ctx, initctlPath) }

// HasInsserv reports whether insserv is installed.
func (in *Inspector) HasInsserv(ctx context.Context) bool { return in.exists(ctx, insservPath) }

// HasRedhatRCD reports whether chkconfig is installed.
func (in *Inspector) HasRedhatRCD(ctx context.Context) bool { return in.exists(ctx, chkconfigPath) }

func (in *Inspector) exists(ctx context.Context, path string) bool {
	return transport.Exists(ctx, in.Files, path)
}
