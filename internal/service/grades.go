package service

import (
	"strings"

	"github.com/jafarshop/gradeoverlay/internal/domain"
)

// gradeAll marks a product that is offered to every grade
const gradeAll = "all"

// AggregateAvailableGrades returns the sorted distinct grade tokens across rows
func AggregateAvailableGrades(rows []*domain.MappingRow) []string {
	set := domain.NewGradeSet()
	for _, r := range rows {
		set.AddRaw(r.GradeValue())
	}
	return set.Sorted()
}

// gradeSummary joins the distinct tokens of a handle's rows, or reports "all" when none constrain it
func gradeSummary(rows []*domain.MappingRow) string {
	set := domain.NewGradeSet()
	for _, r := range rows {
		set.AddRaw(r.GradeValue())
	}
	if set.Len() == 0 {
		return gradeAll
	}
	return strings.Join(set.Tokens(), ",")
}
