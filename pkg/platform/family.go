// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"strings"
)

// Platform family values as reported in the platform_family attribute.
const (
	FamilyArch         Family = "arch"
	FamilyAIX          Family = "aix"
	FamilyDebian       Family = "debian"
	FamilyFedora       Family = "fedora"
	FamilyMacOSX       Family = "mac_os_x"
	FamilyRHEL         Family = "rhel"
	FamilyAmazon       Family = "amazon"
	FamilySolaris2     Family = "solaris2"
	FamilySmartOS      Family = "smartos"
	FamilySUSE         Family = "suse"
	FamilyGentoo       Family = "gentoo"
	FamilyFreeBSD      Family = "freebsd"
	FamilyOpenBSD      Family = "openbsd"
	FamilyNetBSD       Family = "netbsd"
	FamilyDragonflyBSD Family = "dragonflybsd"
	FamilyWindows      Family = "windows"
)

// ErrInvalidFamily is returned when a Family value is not a known platform family.
var ErrInvalidFamily = errors.New("invalid platform family")

// familyAliases maps alternate spellings to canonical families.
var familyAliases = map[string]Family{
	"arch_linux":    FamilyArch,
	"osx":           FamilyMacOSX,
	"mac":           FamilyMacOSX,
	"macos":         FamilyMacOSX,
	"el":            FamilyRHEL,
	"amazon_linux":  FamilyAmazon,
	"solaris":       FamilySolaris2,
	"dragonfly":     FamilyDragonflyBSD,
	"dragonfly_bsd": FamilyDragonflyBSD,
}

type (
	// Family is a platform family such as "debian" or "rhel".
	Family string

	// InvalidFamilyError is returned when a Family value is not recognized.
	InvalidFamilyError struct {
		Value Family
	}
)

// Error implements the error interface.
func (e *InvalidFamilyError) Error() string {
	return fmt.Sprintf("invalid platform family %q", e.Value)
}

// Unwrap returns ErrInvalidFamily so callers can use errors.Is for programmatic detection.
func (e *InvalidFamilyError) Unwrap() error { return ErrInvalidFamily }

// Families returns every known platform family in a stable order.
func Families() []Family {
	return []Family{
		FamilyArch, FamilyAIX, FamilyDebian, FamilyFedora, FamilyMacOSX,
		FamilyRHEL, FamilyAmazon, FamilySolaris2, FamilySmartOS, FamilySUSE,
		FamilyGentoo, FamilyFreeBSD, FamilyOpenBSD, FamilyNetBSD,
		FamilyDragonflyBSD, FamilyWindows,
	}
}

// String returns the string representation of the Family.
func (f Family) String() string { return string(f) }

// Validate returns nil if the Family is known, or an *InvalidFamilyError otherwise.
func (f Family) Validate() error {
	for _, known := range Families() {
		if f == known {
			return nil
		}
	}
	return &InvalidFamilyError{Value: f}
}

// ParseFamily resolves a family name or one of its aliases, ignoring case and
// surrounding whitespace.
func ParseFamily(name string) (Family, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := familyAliases[normalized]; ok {
		return alias, nil
	}
	f := Family(normalized)
	if err := f.Validate(); err != nil {
		return "", &InvalidFamilyError{Value: Family(name)}
	}
	return f, nil
}
