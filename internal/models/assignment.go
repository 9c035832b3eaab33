package models

import "time"

// AssignmentStatus represents the grading lifecycle of an assignment.
type AssignmentStatus string

const (
	AssignmentStatusActive AssignmentStatus = "active"
	AssignmentStatusClosed AssignmentStatus = "closed"
)

// ValidAssignmentStatus reports whether s is a known assignment status.
func ValidAssignmentStatus(s AssignmentStatus) bool {
	return s == AssignmentStatusActive || s == AssignmentStatusClosed
}

// AssignmentType enumerates gradable assignment kinds.
type AssignmentType string

const (
	AssignmentTypeAssignment AssignmentType = "assignment"
	AssignmentTypeQuiz       AssignmentType = "quiz"
)

// ValidAssignmentType reports whether t is a known assignment type.
func ValidAssignmentType(t AssignmentType) bool {
	return t == AssignmentTypeAssignment || t == AssignmentTypeQuiz
}

// Assignment is a gradable sub-entity owned by its course.
type Assignment struct {
	ID          string           `db:"id" json:"id"`
	CourseID    string           `db:"course_id" json:"course_id"`
	Title       string           `db:"title" json:"title"`
	Description string           `db:"description" json:"description"`
	DueDate     time.Time        `db:"due_date" json:"due_date"`
	MinScore    float64          `db:"min_score" json:"min_score"`
	MaxScore    float64          `db:"max_score" json:"max_score"`
	Type        AssignmentType   `db:"type" json:"type"`
	Status      AssignmentStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// SubmissionStatus tracks whether a submission has been graded.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusGraded    SubmissionStatus = "graded"
)

// Submission is one student's work for an assignment. At most one per
// (assignment, student); re-submission and re-grading overwrite it.
type Submission struct {
	AssignmentID string           `db:"assignment_id" json:"assignment_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	Content      string           `db:"content" json:"content"`
	SubmittedAt  time.Time        `db:"submitted_at" json:"submitted_at"`
	IsLate       bool             `db:"is_late" json:"is_late"`
	Score        *float64         `db:"score" json:"score,omitempty"`
	GradedAt     *time.Time       `db:"graded_at" json:"graded_at,omitempty"`
	Status       SubmissionStatus `db:"status" json:"status"`
}

// SubmissionDetail enriches Submission with the student name for listings.
type SubmissionDetail struct {
	Submission
	StudentName string `db:"student_name" json:"student_name"`
}
