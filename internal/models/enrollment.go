package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Enrollments are never physically deleted; dropping flips the status.
const (
	EnrollmentStatusActive  EnrollmentStatus = "active"
	EnrollmentStatusDropped EnrollmentStatus = "dropped"
)

// Enrollment is the relation linking one student to one course. The
// (student_id, course_id) pair is unique; re-enrolling a dropped pair
// reactivates the same record instead of duplicating it.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	CourseID   string           `db:"course_id" json:"course_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	DroppedAt  *time.Time       `db:"dropped_at" json:"dropped_at,omitempty"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	GradeLevel  int    `db:"grade_level" json:"grade_level"`
	CourseName  string `db:"course_name" json:"course_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Status    EnrollmentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
