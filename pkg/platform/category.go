// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"

	"github.com/hostprobe/hostprobe/pkg/attrs"
)

// Base categories mirror the platform families.
const (
	CategoryArch         Category = "arch"
	CategoryAIX          Category = "aix"
	CategoryDebian       Category = "debian"
	CategoryFedora       Category = "fedora"
	CategoryMacOSX       Category = "mac_os_x"
	CategoryRHEL         Category = "rhel"
	CategoryAmazon       Category = "amazon"
	CategorySolaris2     Category = "solaris2"
	CategorySmartOS      Category = "smartos"
	CategorySUSE         Category = "suse"
	CategoryGentoo       Category = "gentoo"
	CategoryFreeBSD      Category = "freebsd"
	CategoryOpenBSD      Category = "openbsd"
	CategoryNetBSD       Category = "netbsd"
	CategoryDragonflyBSD Category = "dragonflybsd"
	CategoryWindows      Category = "windows"

	CategoryRedhatBased   Category = "redhat_based"
	CategoryFedoraDerived Category = "fedora_derived"
	CategoryRPMBased      Category = "rpm_based"
	CategorySolarisBased  Category = "solaris_based"
	CategoryBSDBased      Category = "bsd_based"
)

// ErrUnknownCategory is returned when a Category value has no predicate.
var ErrUnknownCategory = errors.New("unknown platform category")

type (
	// Category names a platform predicate.
	Category string

	// Predicate tests an attribute source for membership in a category.
	Predicate func(attrs.Source) bool

	// UnknownCategoryError is returned when a Category value has no predicate.
	UnknownCategoryError struct {
		Value Category
	}

	categoryEntry struct {
		category  Category
		predicate Predicate
	}
)

// categoryTable lists categories in definition order. Composites follow the
// categories they are built from.
var categoryTable = []categoryEntry{
	{CategoryArch, IsArch},
	{CategoryAIX, IsAIX},
	{CategoryDebian, IsDebian},
	{CategoryFedora, IsFedora},
	{CategoryMacOSX, IsMacOSX},
	{CategoryRHEL, IsRHEL},
	{CategoryAmazon, IsAmazon},
	{CategorySolaris2, IsSolaris2},
	{CategorySmartOS, IsSmartOS},
	{CategorySUSE, IsSUSE},
	{CategoryGentoo, IsGentoo},
	{CategoryFreeBSD, IsFreeBSD},
	{CategoryOpenBSD, IsOpenBSD},
	{CategoryNetBSD, IsNetBSD},
	{CategoryDragonflyBSD, IsDragonflyBSD},
	{CategoryWindows, isWindowsFamily},
	{CategoryRedhatBased, IsRedhatBased},
	{CategoryFedoraDerived, IsFedoraDerived},
	{CategoryRPMBased, IsRPMBased},
	{CategorySolarisBased, IsSolarisBased},
	{CategoryBSDBased, IsBSDBased},
}

// Error implements the error interface.
func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown platform category %q", e.Value)
}

// Unwrap returns ErrUnknownCategory so callers can use errors.Is for programmatic detection.
func (e *UnknownCategoryError) Unwrap() error { return ErrUnknownCategory }

// String returns the string representation of the Category.
func (c Category) String() string { return string(c) }

// Validate returns nil if the Category is known, or an *UnknownCategoryError otherwise.
func (c Category) Validate() error {
	if _, ok := lookupCategory(c); ok {
		return nil
	}
	return &UnknownCategoryError{Value: c}
}

// Categories returns every category in definition order.
func Categories() []Category {
	out := make([]Category, len(categoryTable))
	for i, e := range categoryTable {
		out[i] = e.category
	}
	return out
}

// ParseCategory resolves a category name. Names that are not categories
// themselves may still be a platform family or one of its aliases ("osx",
// "el", ...), which select the base category of that family.
func ParseCategory(name string) (Category, error) {
	if c := Category(name); c.Validate() == nil {
		return c, nil
	}
	f, err := ParseFamily(name)
	if err != nil {
		return "", &UnknownCategoryError{Value: Category(name)}
	}
	return Category(f), nil
}

// PredicateFor returns the predicate backing a category.
func PredicateFor(c Category) (Predicate, error) {
	p, ok := lookupCategory(c)
	if !ok {
		return nil, &UnknownCategoryError{Value: c}
	}
	return p, nil
}

// Resolve returns every category that holds for src, in definition order.
// A nil src yields no categories.
func Resolve(src attrs.Source) []Category {
	var out []Category
	for _, e := range categoryTable {
		if e.predicate(src) {
			out = append(out, e.category)
		}
	}
	return out
}

func lookupCategory(c Category) (Predicate, bool) {
	for _, e := range categoryTable {
		if e.category == c {
			return e.predicate, true
		}
	}
	return nil, false
}

// isWindowsFamily is IsWindows without the runtime fallback, so that Resolve on
// a nil source stays empty on every host.
func isWindowsFamily(src attrs.Source) bool {
	return familyIs(src, FamilyWindows)
}
