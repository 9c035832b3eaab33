package models

import (
	"fmt"
	"strings"
	"time"
)

// EmploymentStatus is a teacher's standing, gating course assignment.
type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusOnLeave    EmploymentStatus = "on_leave"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// ValidEmploymentStatus reports whether s is a known employment status.
func ValidEmploymentStatus(s EmploymentStatus) bool {
	switch s {
	case EmploymentStatusActive, EmploymentStatusOnLeave, EmploymentStatusTerminated:
		return true
	}
	return false
}

// Teacher joins a persons row with its teachers row.
type Teacher struct {
	Person
	Department       string           `db:"department" json:"department"`
	Subjects         CSVList          `db:"subjects" json:"subjects"`
	Qualifications   CSVList          `db:"qualifications" json:"qualifications"`
	AssignedClasses  string           `db:"assigned_classes" json:"assigned_classes"`
	EmploymentStatus EmploymentStatus `db:"employment_status" json:"employment_status"`
	HireDate         time.Time        `db:"hire_date" json:"hire_date"`
}

// DisplayInfo renders the teacher's report label.
func (t Teacher) DisplayInfo() string {
	return fmt.Sprintf("%s - %s Teacher (%s)", t.Name, t.Department, t.ID)
}

// CanTeach reports whether the teacher is qualified for the subject.
// Subject comparison is case-insensitive.
func (t Teacher) CanTeach(subject string) bool {
	return t.Subjects.Contains(subject)
}

// CanBeAssigned reports whether the teacher's standing allows new course assignments.
func (t Teacher) CanBeAssigned() bool {
	return t.EmploymentStatus == EmploymentStatusActive
}

// DedupSubjects normalises a subject list, dropping case-insensitive
// duplicates while preserving first-seen casing and order.
func DedupSubjects(subjects []string) CSVList {
	seen := make(map[string]struct{}, len(subjects))
	out := make(CSVList, 0, len(subjects))
	for _, subject := range subjects {
		trimmed := strings.TrimSpace(subject)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search           string
	Department       string
	EmploymentStatus EmploymentStatus
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}
