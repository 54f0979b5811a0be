// Package ranking holds the ordering rules for tiers and items: validation,
// the position recompute walk, bulk reorder planning and adjacent-tier lookup.
// It is pure; internal/storage runs it inside transactions.
package ranking

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxNameLength bounds tier and item names when no limit is configured.
const DefaultMaxNameLength = 64

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateColor accepts #RRGGBB.
func ValidateColor(color string) error {
	if !colorPattern.MatchString(color) {
		return Invalid("color", "%q is not a #RRGGBB color", color)
	}
	return nil
}

// ValidateName rejects empty names, names with surrounding whitespace and
// names longer than max runes.
func ValidateName(field, name string, max int) error {
	if max <= 0 {
		max = DefaultMaxNameLength
	}
	if strings.TrimSpace(name) == "" {
		return Invalid(field, "must not be empty")
	}
	if strings.TrimSpace(name) != name {
		return Invalid(field, "%q has leading or trailing whitespace", name)
	}
	if n := utf8.RuneCountInString(name); n > max {
		return Invalid(field, "length %d exceeds %d", n, max)
	}
	return nil
}
