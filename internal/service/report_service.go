package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/school-mgmt-api/pkg/errors"
)

// How many rows the overview rankings keep.
const overviewTopN = 5

type reportStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListAll(ctx context.Context) ([]models.Student, error)
}

type reportTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListAll(ctx context.Context) ([]models.Teacher, error)
}

type reportCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
	ListAll(ctx context.Context) ([]models.CourseDetail, error)
	ListByTeacher(ctx context.Context, teacherID string, status models.CourseStatus) ([]models.CourseDetail, error)
}

type reportEnrollmentReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
	Summary(ctx context.Context) (*models.EnrollmentSummary, error)
}

type reportGradeReader interface {
	ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]models.GradeEntry, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.GradeEntry, error)
	ListAll(ctx context.Context) ([]models.GradeEntry, error)
}

type reportAssignmentReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error)
}

type reportExamReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Exam, error)
}

// ReportService builds read-only derived views. Every report is recomputed
// from current data on each call; nothing here is cached or persisted.
type ReportService struct {
	students     reportStudentReader
	teachers     reportTeacherReader
	courses      reportCourseReader
	enrollments  reportEnrollmentReader
	grades       reportGradeReader
	assignments  reportAssignmentReader
	exams        reportExamReader
	academicYear int
	logger       *zap.Logger
	now          func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(
	students reportStudentReader,
	teachers reportTeacherReader,
	courses reportCourseReader,
	enrollments reportEnrollmentReader,
	grades reportGradeReader,
	assignments reportAssignmentReader,
	exams reportExamReader,
	academicYear int,
	logger *zap.Logger,
) *ReportService {
	if academicYear <= 0 {
		academicYear = time.Now().UTC().Year()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:     students,
		teachers:     teachers,
		courses:      courses,
		enrollments:  enrollments,
		grades:       grades,
		assignments:  assignments,
		exams:        exams,
		academicYear: academicYear,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// StudentReport summarises one student's enrollments and per-course GPA.
func (s *ReportService) StudentReport(ctx context.Context, studentID string) (*models.StudentReport, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load student")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list enrollments")
	}

	report := &models.StudentReport{
		StudentInfo:    student.DisplayInfo(),
		StudentID:      student.ID,
		GradeLevel:     student.GradeLevel,
		AcademicStatus: student.AcademicStatus,
		Courses:        make([]models.StudentCourseReport, 0, len(enrollments)),
		AcademicYear:   s.academicYear,
		GeneratedAt:    s.now(),
	}
	for _, enrollment := range enrollments {
		entries, err := s.grades.ListByStudentCourse(ctx, studentID, enrollment.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list grades")
		}
		report.Courses = append(report.Courses, models.StudentCourseReport{
			CourseName: enrollment.CourseName,
			CourseCode: enrollment.CourseCode,
			CourseGPA:  models.CourseGPA(entries),
			Status:     enrollment.Status,
		})
		if enrollment.Status == models.EnrollmentStatusActive {
			report.EnrolledCourses++
		}
	}
	return report, nil
}

// TeacherReport summarises a teacher's active teaching load.
func (s *ReportService) TeacherReport(ctx context.Context, teacherID string) (*models.TeacherReport, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load teacher")
	}
	courses, err := s.courses.ListByTeacher(ctx, teacherID, models.CourseStatusActive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list courses")
	}

	report := &models.TeacherReport{
		TeacherInfo:      teacher.DisplayInfo(),
		TeacherID:        teacher.ID,
		Department:       teacher.Department,
		Subjects:         teacher.Subjects,
		EmploymentStatus: teacher.EmploymentStatus,
		TeachingLoad:     len(courses),
		Courses:          make([]models.TeacherCourseReport, 0, len(courses)),
		GeneratedAt:      s.now(),
	}
	for _, course := range courses {
		row := models.TeacherCourseReport{
			CourseName:   course.Name,
			CourseCode:   course.Code,
			StudentCount: course.StudentCount,
		}
		if course.TeacherAssignedAt != nil {
			row.AssignedAt = *course.TeacherAssignedAt
		}
		report.Courses = append(report.Courses, row)
	}
	return report, nil
}

// CourseReport summarises a course, its roster, and its assessments.
func (s *ReportService) CourseReport(ctx context.Context, courseID string) (*models.CourseReport, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load course")
	}
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list enrollments")
	}
	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list assignments")
	}
	exams, err := s.exams.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list exams")
	}

	teacherInfo := "unassigned"
	if course.TeacherName != nil {
		teacherInfo = *course.TeacherName
	}
	report := &models.CourseReport{
		CourseID:     course.ID,
		CourseName:   course.Name,
		CourseCode:   course.Code,
		Subject:      course.Subject,
		Status:       course.Status,
		TeacherInfo:  teacherInfo,
		StudentCount: course.StudentCount,
		Students:     make([]models.CourseStudentReport, 0, len(enrollments)),
		Assignments:  make([]models.AssessmentSummary, 0, len(assignments)),
		Exams:        make([]models.AssessmentSummary, 0, len(exams)),
		AcademicYear: s.academicYear,
		GeneratedAt:  s.now(),
	}
	for _, enrollment := range enrollments {
		entries, err := s.grades.ListByStudentCourse(ctx, enrollment.StudentID, courseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list grades")
		}
		report.Students = append(report.Students, models.CourseStudentReport{
			DisplayInfo: fmt.Sprintf("%s - Grade Level %d (%s)", enrollment.StudentName, enrollment.GradeLevel, enrollment.StudentID),
			StudentID:   enrollment.StudentID,
			EnrolledAt:  enrollment.EnrolledAt,
			Status:      enrollment.Status,
			GPA:         models.CourseGPA(entries),
		})
	}
	for _, assignment := range assignments {
		report.Assignments = append(report.Assignments, models.AssessmentSummary{
			Title:    assignment.Title,
			Date:     assignment.DueDate,
			MaxScore: assignment.MaxScore,
		})
	}
	for _, exam := range exams {
		report.Exams = append(report.Exams, models.AssessmentSummary{
			Title:    exam.Title,
			Date:     exam.ExamDate,
			MaxScore: exam.MaxScore,
		})
	}
	return report, nil
}

// SystemOverview builds the whole-school derived view: totals, grouped
// breakdowns, the enrollment summary, and the top-N rankings.
func (s *ReportService) SystemOverview(ctx context.Context) (*models.SystemOverview, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list students")
	}
	teachers, err := s.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list teachers")
	}
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list courses")
	}
	summary, err := s.enrollments.Summary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to summarise enrollments")
	}
	grades, err := s.grades.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list grades")
	}

	overview := &models.SystemOverview{
		TotalStudents:    len(students),
		TotalTeachers:    len(teachers),
		TotalCourses:     len(courses),
		Enrollments:      *summary,
		AcademicYear:     s.academicYear,
		GeneratedAt:      s.now(),
		ByGradeLevel:     groupStudentsBy(students, func(st models.Student) string { return fmt.Sprintf("grade_%d", st.GradeLevel) }),
		ByAcademicStatus: groupStudentsBy(students, func(st models.Student) string { return string(st.AcademicStatus) }),
		CoursesBySubject: groupCoursesBySubject(courses),
		TopStudentsByGPA: topStudentsByGPA(students, grades),
		TopCoursesBySize: topCoursesBySize(courses),
	}
	return overview, nil
}

func groupStudentsBy(students []models.Student, key func(models.Student) string) []models.GroupCount {
	counts := map[string]int{}
	order := []string{}
	for _, student := range students {
		k := key(student)
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	sort.Strings(order)
	out := make([]models.GroupCount, 0, len(order))
	for _, k := range order {
		bucket := models.GroupCount{Key: k, Count: counts[k]}
		if len(students) > 0 {
			bucket.Percentage = float64(counts[k]) / float64(len(students)) * 100
		}
		out = append(out, bucket)
	}
	return out
}

func groupCoursesBySubject(courses []models.CourseDetail) []models.GroupCount {
	counts := map[string]int{}
	order := []string{}
	for _, course := range courses {
		if _, ok := counts[course.Subject]; !ok {
			order = append(order, course.Subject)
		}
		counts[course.Subject]++
	}
	sort.Strings(order)
	out := make([]models.GroupCount, 0, len(order))
	for _, subject := range order {
		bucket := models.GroupCount{Key: subject, Count: counts[subject]}
		if len(courses) > 0 {
			bucket.Percentage = float64(counts[subject]) / float64(len(courses)) * 100
		}
		out = append(out, bucket)
	}
	return out
}

// topStudentsByGPA ranks students by the mean of their per-course GPAs, the
// same definition StudentReport.OverallGPA uses. Students without grades rank
// at zero.
func topStudentsByGPA(students []models.Student, grades []models.GradeEntry) []models.RankedStudent {
	byCourse := map[string]map[string][]models.GradeEntry{}
	for _, entry := range grades {
		if byCourse[entry.StudentID] == nil {
			byCourse[entry.StudentID] = map[string][]models.GradeEntry{}
		}
		byCourse[entry.StudentID][entry.CourseID] = append(byCourse[entry.StudentID][entry.CourseID], entry)
	}
	ranked := make([]models.RankedStudent, 0, len(students))
	for _, student := range students {
		var total float64
		courses := byCourse[student.ID]
		for _, entries := range courses {
			total += models.CourseGPA(entries)
		}
		var overall float64
		if len(courses) > 0 {
			overall = total / float64(len(courses))
		}
		ranked = append(ranked, models.RankedStudent{
			StudentID:   student.ID,
			DisplayInfo: student.DisplayInfo(),
			OverallGPA:  overall,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].OverallGPA > ranked[j].OverallGPA })
	if len(ranked) > overviewTopN {
		ranked = ranked[:overviewTopN]
	}
	return ranked
}

func topCoursesBySize(courses []models.CourseDetail) []models.RankedCourse {
	ranked := make([]models.RankedCourse, 0, len(courses))
	for _, course := range courses {
		ranked = append(ranked, models.RankedCourse{
			CourseID:     course.ID,
			CourseName:   course.Name,
			CourseCode:   course.Code,
			StudentCount: course.StudentCount,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].StudentCount > ranked[j].StudentCount })
	if len(ranked) > overviewTopN {
		ranked = ranked[:overviewTopN]
	}
	return ranked
}
