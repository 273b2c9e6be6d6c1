package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameKey normalises a user-visible name for uniqueness checks.
func NameKey(name string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(name))
}

// SameName compares two names the way uniqueness rules do.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}

// Blank reports whether s has no visible content.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
