package models

import "time"

// Report result types. Reports are read-only derived views recomputed on
// every call; none of them is cached or persisted.

// StudentCourseReport is the per-course row of a student report.
type StudentCourseReport struct {
	CourseName string           `json:"course_name"`
	CourseCode string           `json:"course_code"`
	CourseGPA  float64          `json:"course_gpa"`
	Status     EnrollmentStatus `json:"status"`
}

// StudentReport summarises one student's academic standing.
type StudentReport struct {
	StudentInfo     string                `json:"student_info"`
	StudentID       string                `json:"student_id"`
	GradeLevel      int                   `json:"grade_level"`
	AcademicStatus  AcademicStatus        `json:"academic_status"`
	EnrolledCourses int                   `json:"enrolled_courses"`
	Courses         []StudentCourseReport `json:"courses"`
	AcademicYear    int                   `json:"academic_year"`
	GeneratedAt     time.Time             `json:"generated_at"`
}

// OverallGPA returns the mean of the per-course GPAs, 0 when no courses.
func (r StudentReport) OverallGPA() float64 {
	if len(r.Courses) == 0 {
		return 0
	}
	var total float64
	for _, course := range r.Courses {
		total += course.CourseGPA
	}
	return total / float64(len(r.Courses))
}

// TeacherCourseReport is the per-course row of a teacher report.
type TeacherCourseReport struct {
	CourseName   string    `json:"course_name"`
	CourseCode   string    `json:"course_code"`
	StudentCount int       `json:"student_count"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// TeacherReport summarises a teacher's active teaching load.
type TeacherReport struct {
	TeacherInfo      string                `json:"teacher_info"`
	TeacherID        string                `json:"teacher_id"`
	Department       string                `json:"department"`
	Subjects         []string              `json:"subjects"`
	EmploymentStatus EmploymentStatus      `json:"employment_status"`
	TeachingLoad     int                   `json:"teaching_load"`
	Courses          []TeacherCourseReport `json:"courses"`
	GeneratedAt      time.Time             `json:"generated_at"`
}

// CourseStudentReport is the per-student row of a course report.
type CourseStudentReport struct {
	DisplayInfo string           `json:"display_info"`
	StudentID   string           `json:"student_id"`
	EnrolledAt  time.Time        `json:"enrolled_at"`
	Status      EnrollmentStatus `json:"status"`
	GPA         float64          `json:"gpa"`
}

// AssessmentSummary is the assignment/exam metadata row of a course report.
type AssessmentSummary struct {
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	MaxScore float64   `json:"max_score"`
}

// CourseReport summarises a course and its roster.
type CourseReport struct {
	CourseID     string                `json:"course_id"`
	CourseName   string                `json:"course_name"`
	CourseCode   string                `json:"course_code"`
	Subject      string                `json:"subject"`
	Status       CourseStatus          `json:"status"`
	TeacherInfo  string                `json:"teacher_info"`
	StudentCount int                   `json:"student_count"`
	Students     []CourseStudentReport `json:"students"`
	Assignments  []AssessmentSummary   `json:"assignments"`
	Exams        []AssessmentSummary   `json:"exams"`
	AcademicYear int                   `json:"academic_year"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// GroupCount is one bucket of a grouped breakdown.
type GroupCount struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RankedStudent is one row of the top-students ranking.
type RankedStudent struct {
	StudentID   string  `json:"student_id"`
	DisplayInfo string  `json:"display_info"`
	OverallGPA  float64 `json:"overall_gpa"`
}

// RankedCourse is one row of the top-courses ranking.
type RankedCourse struct {
	CourseID     string `json:"course_id"`
	CourseName   string `json:"course_name"`
	CourseCode   string `json:"course_code"`
	StudentCount int    `json:"student_count"`
}

// EnrollmentSummary breaks the enrollment relation down by status.
type EnrollmentSummary struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Dropped int `json:"dropped"`
}

// SystemOverview is the whole-school derived view.
type SystemOverview struct {
	TotalStudents    int               `json:"total_students"`
	TotalTeachers    int               `json:"total_teachers"`
	TotalCourses     int               `json:"total_courses"`
	ByGradeLevel     []GroupCount      `json:"by_grade_level"`
	ByAcademicStatus []GroupCount      `json:"by_academic_status"`
	CoursesBySubject []GroupCount      `json:"courses_by_subject"`
	Enrollments      EnrollmentSummary `json:"enrollments"`
	TopStudentsByGPA []RankedStudent   `json:"top_students_by_gpa"`
	TopCoursesBySize []RankedCourse    `json:"top_courses_by_size"`
	AcademicYear     int               `json:"academic_year"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
