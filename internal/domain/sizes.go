package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// SizeSet is an ordered set of size labels. Membership is case-insensitive; the first spelling wins.
type SizeSet []string

// NewSizeSet builds a set from raw values; values are trimmed and empty values dropped
func NewSizeSet(values ...string) SizeSet {
	return SizeSet(nil).Add(values...)
}

// Add returns the set extended with values not already present
func (s SizeSet) Add(values ...string) SizeSet {
	out := make(SizeSet, len(s), len(s)+len(values))
	copy(out, s)
	seen := make(map[string]struct{}, len(s)+len(values))
	fold := cases.Fold()
	for _, v := range s {
		seen[fold.String(v)] = struct{}{}
	}
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		key := fold.String(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Merge returns the union of s and other, keeping s's order first
func (s SizeSet) Merge(other SizeSet) SizeSet {
	return s.Add(other...)
}

// OrNil returns nil for an empty set so it is persisted as NULL
func (s SizeSet) OrNil() SizeSet {
	if len(s) == 0 {
		return nil
	}
	return s
}
