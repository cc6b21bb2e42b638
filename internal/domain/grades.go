package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SplitGrades splits a comma separated grade field into trimmed, non-empty tokens in input order.
// Duplicates are kept; callers that need a set dedupe themselves.
func SplitGrades(raw interface{}) []string {
	var s string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		s = fmt.Sprint(v)
	}

	var tokens []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// HasGrade reports whether the grade field lists the given token
func HasGrade(raw interface{}, grade string) bool {
	grade = strings.TrimSpace(grade)
	for _, t := range SplitGrades(raw) {
		if t == grade {
			return true
		}
	}
	return false
}

// SortGrades orders grade tokens numerically when both sides parse as numbers,
// numbers before words, and lexically otherwise ("K" < "Pre-K" after "1".."12").
func SortGrades(grades []string) {
	sort.SliceStable(grades, func(i, j int) bool {
		return gradeLess(grades[i], grades[j])
	})
}

func gradeLess(a, b string) bool {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// GradeSet collects distinct grade tokens in first-seen order
type GradeSet struct {
	seen   map[string]struct{}
	tokens []string
}

func NewGradeSet() *GradeSet {
	return &GradeSet{seen: make(map[string]struct{})}
}

// AddRaw adds every token of a raw grade field
func (g *GradeSet) AddRaw(raw interface{}) {
	for _, t := range SplitGrades(raw) {
		if _, ok := g.seen[t]; ok {
			continue
		}
		g.seen[t] = struct{}{}
		g.tokens = append(g.tokens, t)
	}
}

func (g *GradeSet) Len() int {
	return len(g.tokens)
}

// Sorted returns a sorted copy of the tokens
func (g *GradeSet) Sorted() []string {
	out := make([]string, len(g.tokens))
	copy(out, g.tokens)
	SortGrades(out)
	return out
}

// Tokens returns the tokens in first-seen order
func (g *GradeSet) Tokens() []string {
	out := make([]string, len(g.tokens))
	copy(out, g.tokens)
	return out
}
