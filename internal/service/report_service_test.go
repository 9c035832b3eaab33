package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/school-mgmt-api/pkg/errors"
)

type fakeReportStudents struct {
	students map[string]*models.Student
	all      []models.Student
}

func (f *fakeReportStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReportStudents) ListAll(ctx context.Context) ([]models.Student, error) {
	return f.all, nil
}

type fakeReportTeachers struct {
	teachers map[string]*models.Teacher
	all      []models.Teacher
}

func (f *fakeReportTeachers) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if tc, ok := f.teachers[id]; ok {
		return tc, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReportTeachers) ListAll(ctx context.Context) ([]models.Teacher, error) {
	return f.all, nil
}

type fakeReportCourses struct {
	courses   map[string]*models.CourseDetail
	all       []models.CourseDetail
	byTeacher map[string][]models.CourseDetail
}

func (f *fakeReportCourses) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReportCourses) ListAll(ctx context.Context) ([]models.CourseDetail, error) {
	return f.all, nil
}

func (f *fakeReportCourses) ListByTeacher(ctx context.Context, teacherID string, status models.CourseStatus) ([]models.CourseDetail, error) {
	return f.byTeacher[teacherID], nil
}

type fakeReportEnrollments struct {
	byStudent map[string][]models.EnrollmentDetail
	byCourse  map[string][]models.EnrollmentDetail
	summary   models.EnrollmentSummary
}

func (f *fakeReportEnrollments) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return f.byStudent[studentID], nil
}

func (f *fakeReportEnrollments) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	return f.byCourse[courseID], nil
}

func (f *fakeReportEnrollments) Summary(ctx context.Context) (*models.EnrollmentSummary, error) {
	summary := f.summary
	return &summary, nil
}

type fakeReportGrades struct {
	byPair map[string][]models.GradeEntry
}

func (f *fakeReportGrades) ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]models.GradeEntry, error) {
	return f.byPair[pairKey(studentID, courseID)], nil
}

func (f *fakeReportGrades) ListByStudent(ctx context.Context, studentID string) ([]models.GradeEntry, error) {
	var out []models.GradeEntry
	for _, entries := range f.byPair {
		for _, entry := range entries {
			if entry.StudentID == studentID {
				out = append(out, entry)
			}
		}
	}
	return out, nil
}

func (f *fakeReportGrades) ListAll(ctx context.Context) ([]models.GradeEntry, error) {
	var out []models.GradeEntry
	for _, entries := range f.byPair {
		out = append(out, entries...)
	}
	return out, nil
}

func gradeEntry(studentID, courseID string, score, max float64) models.GradeEntry {
	return models.GradeEntry{StudentID: studentID, CourseID: courseID, Score: score, MaxScore: max}
}

func newReportService(
	students *fakeReportStudents,
	teachers *fakeReportTeachers,
	courses *fakeReportCourses,
	enrollments *fakeReportEnrollments,
	grades *fakeReportGrades,
) *ReportService {
	return NewReportService(
		students, teachers, courses, enrollments, grades,
		&fakeAssignmentRepo{}, &fakeExamRepo{},
		2026, nil,
	)
}

func TestStudentReport(t *testing.T) {
	students := &fakeReportStudents{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}}
	enrollments := &fakeReportEnrollments{byStudent: map[string][]models.EnrollmentDetail{
		"stu-1": {
			{
				Enrollment: models.Enrollment{StudentID: "stu-1", CourseID: "crs-1", Status: models.EnrollmentStatusActive},
				CourseName: "Algebra II", CourseCode: "MATH-201",
			},
			{
				Enrollment: models.Enrollment{StudentID: "stu-1", CourseID: "crs-2", Status: models.EnrollmentStatusDropped},
				CourseName: "Biology", CourseCode: "BIO-101",
			},
		},
	}}
	grades := &fakeReportGrades{byPair: map[string][]models.GradeEntry{
		pairKey("stu-1", "crs-1"): {
			gradeEntry("stu-1", "crs-1", 80, 100),
			gradeEntry("stu-1", "crs-1", 90, 100),
		},
		pairKey("stu-1", "crs-2"): {
			gradeEntry("stu-1", "crs-2", 50, 100),
		},
	}}
	svc := newReportService(students, &fakeReportTeachers{}, &fakeReportCourses{}, enrollments, grades)

	report, err := svc.StudentReport(context.Background(), "stu-1")
	require.NoError(t, err)
	// Only the active enrollment counts toward the enrolled total.
	assert.Equal(t, 1, report.EnrolledCourses)
	require.Len(t, report.Courses, 2)
	assert.InDelta(t, 85.0, report.Courses[0].CourseGPA, 1e-9)
	assert.InDelta(t, 50.0, report.Courses[1].CourseGPA, 1e-9)
	assert.InDelta(t, 67.5, report.OverallGPA(), 1e-9)
	assert.Equal(t, 2026, report.AcademicYear)
}

func TestStudentReportNotFound(t *testing.T) {
	svc := newReportService(&fakeReportStudents{}, &fakeReportTeachers{}, &fakeReportCourses{}, &fakeReportEnrollments{}, &fakeReportGrades{})

	_, err := svc.StudentReport(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTeacherReport(t *testing.T) {
	assignedAt := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	algebra := *mathCourse("crs-1")
	algebra.TeacherAssignedAt = &assignedAt
	algebra.StudentCount = 24
	calculus := *mathCourse("crs-2")
	calculus.Name = "Calculus"
	calculus.Code = "MATH-301"

	teachers := &fakeReportTeachers{teachers: map[string]*models.Teacher{"tch-1": mathTeacher("tch-1")}}
	courses := &fakeReportCourses{byTeacher: map[string][]models.CourseDetail{
		"tch-1": {algebra, calculus},
	}}
	svc := newReportService(&fakeReportStudents{}, teachers, courses, &fakeReportEnrollments{}, &fakeReportGrades{})

	report, err := svc.TeacherReport(context.Background(), "tch-1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.TeachingLoad)
	require.Len(t, report.Courses, 2)
	assert.Equal(t, 24, report.Courses[0].StudentCount)
	assert.Equal(t, assignedAt, report.Courses[0].AssignedAt)
	assert.Equal(t, models.EmploymentStatusActive, report.EmploymentStatus)
}

func TestCourseReport(t *testing.T) {
	courses := &fakeReportCourses{courses: map[string]*models.CourseDetail{"crs-1": mathCourse("crs-1")}}
	enrollments := &fakeReportEnrollments{byCourse: map[string][]models.EnrollmentDetail{
		"crs-1": {
			{
				Enrollment:  models.Enrollment{StudentID: "stu-1", CourseID: "crs-1", Status: models.EnrollmentStatusActive},
				StudentName: "Maria Lopez", GradeLevel: 10,
			},
			{
				Enrollment:  models.Enrollment{StudentID: "stu-2", CourseID: "crs-1", Status: models.EnrollmentStatusActive},
				StudentName: "Ken Adams", GradeLevel: 11,
			},
		},
	}}
	grades := &fakeReportGrades{byPair: map[string][]models.GradeEntry{
		pairKey("stu-1", "crs-1"): {gradeEntry("stu-1", "crs-1", 75, 100)},
	}}
	assignments := &fakeAssignmentRepo{assignments: map[string]*models.Assignment{
		"asg-1": activeAssignment("asg-1", "crs-1", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)),
	}}
	exams := &fakeExamRepo{exams: map[string]*models.Exam{"exm-1": inProgressExam("exm-1", "crs-1")}}
	svc := NewReportService(&fakeReportStudents{}, &fakeReportTeachers{}, courses, enrollments, grades, assignments, exams, 2026, nil)

	report, err := svc.CourseReport(context.Background(), "crs-1")
	require.NoError(t, err)
	assert.Equal(t, "unassigned", report.TeacherInfo)
	require.Len(t, report.Students, 2)
	assert.InDelta(t, 75.0, report.Students[0].GPA, 1e-9)
	assert.Zero(t, report.Students[1].GPA)
	require.Len(t, report.Assignments, 1)
	assert.Equal(t, "Essay 1", report.Assignments[0].Title)
	require.Len(t, report.Exams, 1)
	assert.Equal(t, "Midterm", report.Exams[0].Title)
}

func TestSystemOverview(t *testing.T) {
	grade10 := *activeStudent("stu-1")
	grade11 := *activeStudent("stu-2")
	grade11.GradeLevel = 11
	graduated := *activeStudent("stu-3")
	graduated.AcademicStatus = models.AcademicStatusGraduated

	math1 := *mathCourse("crs-1")
	math1.StudentCount = 12
	math2 := *mathCourse("crs-2")
	math2.StudentCount = 30
	science := *mathCourse("crs-3")
	science.Subject = "Science"
	science.StudentCount = 5

	students := &fakeReportStudents{all: []models.Student{grade10, grade11, graduated}}
	teachers := &fakeReportTeachers{all: []models.Teacher{*mathTeacher("tch-1")}}
	courses := &fakeReportCourses{all: []models.CourseDetail{math1, math2, science}}
	enrollments := &fakeReportEnrollments{summary: models.EnrollmentSummary{Total: 5, Active: 4, Dropped: 1}}
	// stu-2's second course has far more entries than the first; the ranking
	// must average per-course GPAs, not pool every entry.
	grades := &fakeReportGrades{byPair: map[string][]models.GradeEntry{
		pairKey("stu-1", "crs-1"): {gradeEntry("stu-1", "crs-1", 90, 100)},
		pairKey("stu-2", "crs-1"): {gradeEntry("stu-2", "crs-1", 100, 100)},
		pairKey("stu-2", "crs-3"): {
			gradeEntry("stu-2", "crs-3", 0, 100),
			gradeEntry("stu-2", "crs-3", 0, 100),
			gradeEntry("stu-2", "crs-3", 0, 100),
			gradeEntry("stu-2", "crs-3", 0, 100),
		},
	}}
	svc := newReportService(students, teachers, courses, enrollments, grades)

	overview, err := svc.SystemOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, overview.TotalStudents)
	assert.Equal(t, 1, overview.TotalTeachers)
	assert.Equal(t, 3, overview.TotalCourses)
	assert.Equal(t, 4, overview.Enrollments.Active)

	require.Len(t, overview.ByGradeLevel, 2)
	assert.Equal(t, "grade_10", overview.ByGradeLevel[0].Key)
	assert.Equal(t, 2, overview.ByGradeLevel[0].Count)
	assert.InDelta(t, 66.66, overview.ByGradeLevel[0].Percentage, 0.01)

	require.Len(t, overview.CoursesBySubject, 2)
	assert.Equal(t, "Math", overview.CoursesBySubject[0].Key)
	assert.Equal(t, 2, overview.CoursesBySubject[0].Count)

	require.Len(t, overview.TopStudentsByGPA, 3)
	assert.Equal(t, "stu-1", overview.TopStudentsByGPA[0].StudentID)
	assert.InDelta(t, 90.0, overview.TopStudentsByGPA[0].OverallGPA, 1e-9)
	// (100 + 0) / 2 courses, not the pooled mean of five entries.
	assert.Equal(t, "stu-2", overview.TopStudentsByGPA[1].StudentID)
	assert.InDelta(t, 50.0, overview.TopStudentsByGPA[1].OverallGPA, 1e-9)
	// Students without grades rank last at zero.
	assert.Equal(t, "stu-3", overview.TopStudentsByGPA[2].StudentID)
	assert.Zero(t, overview.TopStudentsByGPA[2].OverallGPA)

	require.Len(t, overview.TopCoursesBySize, 3)
	assert.Equal(t, "crs-2", overview.TopCoursesBySize[0].CourseID)
}
