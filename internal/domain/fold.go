package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldHandle returns the comparison key for a product handle.
// Handles are joined case-insensitively across the source table, mapping store and catalog.
func FoldHandle(handle string) string {
	return cases.Fold().String(strings.TrimSpace(handle))
}

// FoldOptionName normalizes a variant option name so "Size Type", "size_type" and "SIZE-TYPE" match.
func FoldOptionName(name string) string {
	n := cases.Fold().String(strings.TrimSpace(name))
	n = strings.NewReplacer("_", " ", "-", " ").Replace(n)
	return strings.Join(strings.Fields(n), " ")
}
