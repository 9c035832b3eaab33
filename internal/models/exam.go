package models

import "time"

// ExamStatus represents the exam lifecycle.
type ExamStatus string

const (
	ExamStatusScheduled  ExamStatus = "scheduled"
	ExamStatusInProgress ExamStatus = "in_progress"
	ExamStatusCompleted  ExamStatus = "completed"
	ExamStatusCancelled  ExamStatus = "cancelled"
)

// ValidExamStatus reports whether s is a known exam status.
func ValidExamStatus(s ExamStatus) bool {
	switch s {
	case ExamStatusScheduled, ExamStatusInProgress, ExamStatusCompleted, ExamStatusCancelled:
		return true
	}
	return false
}

var examTransitions = map[ExamStatus][]ExamStatus{
	ExamStatusScheduled:  {ExamStatusInProgress, ExamStatusCancelled},
	ExamStatusInProgress: {ExamStatusCompleted, ExamStatusCancelled},
}

// CanTransitionExam reports whether moving from one status to the next is allowed.
func CanTransitionExam(from, to ExamStatus) bool {
	for _, allowed := range examTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ExamType enumerates exam kinds.
type ExamType string

const (
	ExamTypeExam    ExamType = "exam"
	ExamTypeMidterm ExamType = "midterm"
	ExamTypeFinal   ExamType = "final"
)

// ValidExamType reports whether t is a known exam type.
func ValidExamType(t ExamType) bool {
	switch t {
	case ExamTypeExam, ExamTypeMidterm, ExamTypeFinal:
		return true
	}
	return false
}

// Exam is a gradable sub-entity owned by its course.
type Exam struct {
	ID              string     `db:"id" json:"id"`
	CourseID        string     `db:"course_id" json:"course_id"`
	Title           string     `db:"title" json:"title"`
	ExamDate        time.Time  `db:"exam_date" json:"exam_date"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	MinScore        float64    `db:"min_score" json:"min_score"`
	MaxScore        float64    `db:"max_score" json:"max_score"`
	ExamType        ExamType   `db:"exam_type" json:"exam_type"`
	Status          ExamStatus `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// AcceptsResults reports whether results may be recorded in the current state.
func (e Exam) AcceptsResults() bool {
	return e.Status == ExamStatusInProgress || e.Status == ExamStatusCompleted
}

// ExamResult is one student's outcome for an exam. At most one per
// (exam, student); re-recording overwrites it.
type ExamResult struct {
	ExamID          string    `db:"exam_id" json:"exam_id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	Score           float64   `db:"score" json:"score"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
}

// ExamResultDetail enriches ExamResult with the student name for listings.
type ExamResultDetail struct {
	ExamResult
	StudentName string `db:"student_name" json:"student_name"`
}

// ExamStats summarises recorded results for one exam.
type ExamStats struct {
	TotalParticipants int     `json:"total_participants"`
	AverageScore      float64 `json:"average_score"`
	HighestScore      float64 `json:"highest_score"`
	LowestScore       float64 `json:"lowest_score"`
	PassingRate       float64 `json:"passing_rate"`
}
