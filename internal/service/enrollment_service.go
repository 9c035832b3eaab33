package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/school-mgmt-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	CountActiveByCourse(ctx context.Context, courseID string) (int, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Reactivate(ctx context.Context, id string) error
	Drop(ctx context.Context, id string, droppedAt time.Time) error
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
}

type enrollmentStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type enrollmentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
}

// EnrollmentService handles the student-course relation.
type EnrollmentService struct {
	repo        enrollmentRepository
	students    enrollmentStudentReader
	courses     enrollmentCourseReader
	maxPerClass int
	logger      *zap.Logger
}

// NewEnrollmentService constructs the enrollment service. maxPerClass caps
// active enrollments per course.
func NewEnrollmentService(repo enrollmentRepository, students enrollmentStudentReader, courses enrollmentCourseReader, maxPerClass int, logger *zap.Logger) *EnrollmentService {
	if maxPerClass <= 0 {
		maxPerClass = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, courses: courses, maxPerClass: maxPerClass, logger: logger}
}

// List returns enrollments and pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return enrollments, pagination, nil
}

// Enroll links a student to a course. Re-enrolling a dropped pair reactivates
// the existing record; an already-active pair is a conflict. The capacity
// check counts only active enrollments.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load student")
	}
	if !student.CanEnroll() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not in active standing")
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load course")
	}
	if course.Status != models.CourseStatusActive {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "course is not active")
	}

	existing, err := s.repo.FindByPair(ctx, studentID, courseID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load enrollment")
	}
	if existing != nil && existing.Status == models.EnrollmentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in the course")
	}

	active, err := s.repo.CountActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to count enrollments")
	}
	if active >= s.maxPerClass {
		return nil, appErrors.Clone(appErrors.ErrCourseFull, "")
	}

	if existing != nil {
		if err := s.repo.Reactivate(ctx, existing.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to reactivate enrollment")
		}
		existing.Status = models.EnrollmentStatusActive
		existing.DroppedAt = nil
		s.logger.Info("enrollment reactivated",
			zap.String("student_id", studentID),
			zap.String("course_id", courseID))
		return existing, nil
	}

	enrollment := &models.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    models.EnrollmentStatusActive,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create enrollment")
	}
	s.logger.Info("student enrolled",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID))
	return enrollment, nil
}

// Drop marks the active enrollment for a pair as dropped. The record is kept
// so the pair can later be reactivated.
func (s *EnrollmentService) Drop(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByPair(ctx, studentID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active enrollment for the pair")
	}
	droppedAt := time.Now().UTC()
	if err := s.repo.Drop(ctx, enrollment.ID, droppedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to drop enrollment")
	}
	enrollment.Status = models.EnrollmentStatusDropped
	enrollment.DroppedAt = &droppedAt
	s.logger.Info("enrollment dropped",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID))
	return enrollment, nil
}

// ListByStudent returns all of a student's enrollments.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// ListByCourse returns all of a course's enrollments.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list enrollments")
	}
	return enrollments, nil
}
