// SPDX-License-Identifier: MPL-2.0

package attrs

// Descriptor is the platform identity of a machine. It is itself a Source that
// answers only KeyPlatform and KeyPlatformFamily, so predicates can be evaluated
// against a bare descriptor without building a Map.
type Descriptor struct {
	Platform       string `json:"platform" yaml:"platform" toml:"platform"`
	PlatformFamily string `json:"platform_family" yaml:"platform_family" toml:"platform_family"`
}

// DescriptorOf reads the platform identity out of src. A nil src yields the zero
// Descriptor.
func DescriptorOf(src Source) Descriptor {
	return Descriptor{
		Platform:       String(src, KeyPlatform),
		PlatformFamily: String(src, KeyPlatformFamily),
	}
}

// Lookup implements Source. Empty fields are reported as absent.
func (d Descriptor) Lookup(path ...string) (any, bool) {
	keys := splitPath(path)
	if len(keys) != 1 {
		return nil, false
	}
	switch keys[0] {
	case KeyPlatform:
		return d.Platform, d.Platform != ""
	case KeyPlatformFamily:
		return d.PlatformFamily, d.PlatformFamily != ""
	default:
		return nil, false
	}
}
