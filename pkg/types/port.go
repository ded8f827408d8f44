// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidPort is the sentinel error wrapped by InvalidPortError.
var ErrInvalidPort = errors.New("invalid port")

type (
	// Port is a TCP port number. The zero value means "use the protocol default".
	Port int

	// InvalidPortError is returned when a Port is outside 0-65535.
	InvalidPortError struct {
		Value Port
	}
)

// String returns the decimal string representation of the Port.
func (p Port) String() string { return strconv.Itoa(int(p)) }

// Validate returns an error if the Port is negative or above 65535.
func (p Port) Validate() error {
	if p < 0 || p > 65535 {
		return &InvalidPortError{Value: p}
	}
	return nil
}

// OrDefault returns p, or def when p is zero.
func (p Port) OrDefault(def Port) Port {
	if p == 0 {
		return def
	}
	return p
}

// Error implements the error interface.
func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("invalid port %d: must be 0 (default) or 1-65535", e.Value)
}

// Unwrap returns ErrInvalidPort for errors.Is() compatibility.
func (e *InvalidPortError) Unwrap() error { return ErrInvalidPort }
