package models

import "time"

// GradeEntry is a single recorded assessment score for a student in a course.
// Course GPA is the mean of score/max_score percentages over these entries.
type GradeEntry struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Type       string    `db:"type" json:"type"`
	Title      string    `db:"title" json:"title"`
	Score      float64   `db:"score" json:"score"`
	MaxScore   float64   `db:"max_score" json:"max_score"`
	GradedOn   time.Time `db:"graded_on" json:"graded_on"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// Percentage returns the entry's score as a percentage of its max.
func (g GradeEntry) Percentage() float64 {
	if g.MaxScore <= 0 {
		return 0
	}
	return g.Score / g.MaxScore * 100
}

// CourseGPA computes the mean percentage over the given entries, 0 when empty.
func CourseGPA(entries []GradeEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var total float64
	for _, entry := range entries {
		total += entry.Percentage()
	}
	return total / float64(len(entries))
}

// AttendanceStatus enumerates attendance outcomes.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceSick    AttendanceStatus = "sick"
)

// ValidAttendanceStatus reports whether s is a known attendance status.
func ValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceSick:
		return true
	}
	return false
}

// AttendanceEntry records one attendance mark for a student in a course.
type AttendanceEntry struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	CourseID   string           `db:"course_id" json:"course_id"`
	Date       time.Time        `db:"date" json:"date"`
	Status     AttendanceStatus `db:"status" json:"status"`
	RecordedAt time.Time        `db:"recorded_at" json:"recorded_at"`
}
