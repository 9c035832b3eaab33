package models

import (
	"fmt"
	"time"
)

// AcademicStatus is a student's standing, gating enrollment eligibility.
type AcademicStatus string

const (
	AcademicStatusActive      AcademicStatus = "active"
	AcademicStatusSuspended   AcademicStatus = "suspended"
	AcademicStatusGraduated   AcademicStatus = "graduated"
	AcademicStatusTransferred AcademicStatus = "transferred"
)

// ValidAcademicStatus reports whether s is a known academic status.
func ValidAcademicStatus(s AcademicStatus) bool {
	switch s {
	case AcademicStatusActive, AcademicStatusSuspended, AcademicStatusGraduated, AcademicStatusTransferred:
		return true
	}
	return false
}

// ValidGradeLevel reports whether the grade level is within the high-school range.
func ValidGradeLevel(level int) bool {
	return level >= 10 && level <= 12
}

// Student joins a persons row with its students row.
type Student struct {
	Person
	GradeLevel     int            `db:"grade_level" json:"grade_level"`
	AcademicStatus AcademicStatus `db:"academic_status" json:"academic_status"`
	ParentName     *string        `db:"parent_name" json:"parent_name,omitempty"`
	ParentPhone    *string        `db:"parent_phone" json:"parent_phone,omitempty"`
}

// DisplayInfo renders the student's report label.
func (s Student) DisplayInfo() string {
	return fmt.Sprintf("%s - Grade Level %d (%s)", s.Name, s.GradeLevel, s.ID)
}

// CanEnroll reports whether the student's standing allows new enrollments.
func (s Student) CanEnroll() bool {
	return s.AcademicStatus == AcademicStatusActive
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search         string
	GradeLevel     int
	AcademicStatus AcademicStatus
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// Achievement records a student accomplishment.
type Achievement struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	AwardedOn   time.Time `db:"awarded_on" json:"awarded_on"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
