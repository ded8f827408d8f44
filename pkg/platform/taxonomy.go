// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"slices"

	"github.com/hostprobe/hostprobe/pkg/attrs"
)

var (
	solarisPlatforms = []string{"solaris2", "smartos", "omnios", "openindiana", "opensolaris", "nexentacore"}
	// mac_os_x is deliberately absent.
	bsdPlatforms = []string{"netbsd", "freebsd", "openbsd", "dragonflybsd"}
)

func familyIs(src attrs.Source, f Family) bool {
	v := attrs.String(src, attrs.KeyPlatformFamily)
	return v != "" && v == string(f)
}

func platformIn(src attrs.Source, platforms []string) bool {
	v := attrs.String(src, attrs.KeyPlatform)
	return v != "" && slices.Contains(platforms, v)
}

// IsArch reports whether the node is in the Arch Linux family.
func IsArch(src attrs.Source) bool { return familyIs(src, FamilyArch) }

// IsArchLinux is an alias of IsArch.
func IsArchLinux(src attrs.Source) bool { return IsArch(src) }

// IsAIX reports whether the node is in the AIX family.
func IsAIX(src attrs.Source) bool { return familyIs(src, FamilyAIX) }

// IsDebian reports whether the node is in the Debian family (Debian, Ubuntu,
// Linux Mint, Raspbian, ...).
func IsDebian(src attrs.Source) bool { return familyIs(src, FamilyDebian) }

// IsFedora reports whether the node is in the Fedora family, which excludes RHEL.
func IsFedora(src attrs.Source) bool { return familyIs(src, FamilyFedora) }

// IsMacOSX reports whether the node is in the macOS family.
func IsMacOSX(src attrs.Source) bool { return familyIs(src, FamilyMacOSX) }

// IsOSX is an alias of IsMacOSX.
func IsOSX(src attrs.Source) bool { return IsMacOSX(src) }

// IsMac is an alias of IsMacOSX.
func IsMac(src attrs.Source) bool { return IsMacOSX(src) }

// IsMacOS is an alias of IsMacOSX.
func IsMacOS(src attrs.Source) bool { return IsMacOSX(src) }

// IsRHEL reports whether the node is in the RHEL family (RHEL, CentOS, Oracle,
// Scientific, ...). Fedora and Amazon have their own families.
func IsRHEL(src attrs.Source) bool { return familyIs(src, FamilyRHEL) }

// IsEL is an alias of IsRHEL.
func IsEL(src attrs.Source) bool { return IsRHEL(src) }

// IsAmazon reports whether the node is in the Amazon Linux family.
func IsAmazon(src attrs.Source) bool { return familyIs(src, FamilyAmazon) }

// IsAmazonLinux is an alias of IsAmazon.
func IsAmazonLinux(src attrs.Source) bool { return IsAmazon(src) }

// IsSolaris2 reports whether the node is in the Solaris family. SmartOS and the
// illumos distributions report other families; see IsSolarisBased.
func IsSolaris2(src attrs.Source) bool { return familyIs(src, FamilySolaris2) }

// IsSolaris is an alias of IsSolaris2.
func IsSolaris(src attrs.Source) bool { return IsSolaris2(src) }

// IsSmartOS reports whether the node is in the SmartOS family.
func IsSmartOS(src attrs.Source) bool { return familyIs(src, FamilySmartOS) }

// IsSUSE reports whether the node is in the SUSE family (SLES, openSUSE).
func IsSUSE(src attrs.Source) bool { return familyIs(src, FamilySUSE) }

// IsGentoo reports whether the node is in the Gentoo family.
func IsGentoo(src attrs.Source) bool { return familyIs(src, FamilyGentoo) }

// IsFreeBSD reports whether the node is in the FreeBSD family.
func IsFreeBSD(src attrs.Source) bool { return familyIs(src, FamilyFreeBSD) }

// IsOpenBSD reports whether the node is in the OpenBSD family.
func IsOpenBSD(src attrs.Source) bool { return familyIs(src, FamilyOpenBSD) }

// IsNetBSD reports whether the node is in the NetBSD family.
func IsNetBSD(src attrs.Source) bool { return familyIs(src, FamilyNetBSD) }

// IsDragonflyBSD reports whether the node is in the DragonFly BSD family.
func IsDragonflyBSD(src attrs.Source) bool { return familyIs(src, FamilyDragonflyBSD) }

// IsWindows reports whether the node is in the Windows family. When src is nil
// the answer comes from IsWindowsRuntime instead, so the result describes the
// machine running this process rather than a managed node.
func IsWindows(src attrs.Source) bool {
	if src == nil {
		return IsWindowsRuntime()
	}
	return familyIs(src, FamilyWindows)
}

// IsRedhatBased reports whether the node is RHEL or Fedora.
func IsRedhatBased(src attrs.Source) bool {
	return IsRHEL(src) || IsFedora(src)
}

// IsFedoraDerived reports whether the node is Red Hat based or Amazon Linux.
func IsFedoraDerived(src attrs.Source) bool {
	return IsRedhatBased(src) || IsAmazon(src)
}

// IsRPMBased reports whether the node is Fedora derived or SUSE, i.e. uses RPM
// as its native package format.
func IsRPMBased(src attrs.Source) bool {
	return IsFedoraDerived(src) || IsSUSE(src)
}

// IsSolarisBased reports whether the platform is Solaris or one of the illumos
// distributions (SmartOS, OmniOS, OpenIndiana, OpenSolaris, NexentaCore).
func IsSolarisBased(src attrs.Source) bool {
	return platformIn(src, solarisPlatforms)
}

// IsBSDBased reports whether the platform is one of the open-source BSDs.
func IsBSDBased(src attrs.Source) bool {
	return platformIn(src, bsdPlatforms)
}
