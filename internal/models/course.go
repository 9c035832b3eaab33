package models

import "time"

// CourseStatus represents the lifecycle of a course.
type CourseStatus string

const (
	CourseStatusActive    CourseStatus = "active"
	CourseStatusCompleted CourseStatus = "completed"
	CourseStatusCancelled CourseStatus = "cancelled"
)

// ValidCourseStatus reports whether s is a known course status.
func ValidCourseStatus(s CourseStatus) bool {
	switch s {
	case CourseStatusActive, CourseStatusCompleted, CourseStatusCancelled:
		return true
	}
	return false
}

// Course is the container for enrollments, assignments and exams.
// The teacher reference is nullable; exactly one teacher at a time.
type Course struct {
	ID                string       `db:"id" json:"id"`
	Name              string       `db:"name" json:"name"`
	Subject           string       `db:"subject" json:"subject"`
	Code              string       `db:"code" json:"code"`
	Description       string       `db:"description" json:"description"`
	ScheduleDays      CSVList      `db:"schedule_days" json:"schedule_days"`
	ScheduleTime      string       `db:"schedule_time" json:"schedule_time"`
	ScheduleRoom      string       `db:"schedule_room" json:"schedule_room"`
	TeacherID         *string      `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherAssignedAt *time.Time   `db:"teacher_assigned_at" json:"teacher_assigned_at,omitempty"`
	Status            CourseStatus `db:"status" json:"status"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseDetail enriches Course with derived counts and the teacher name.
type CourseDetail struct {
	Course
	StudentCount int     `db:"student_count" json:"student_count"`
	TeacherName  *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	Search    string
	Subject   string
	Status    CourseStatus
	TeacherID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
