package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/school-mgmt-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	AssignTeacher(ctx context.Context, courseID, teacherID string, assignedAt time.Time) error
}

type courseTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	Name         string   `json:"name" validate:"required"`
	Subject      string   `json:"subject" validate:"required"`
	Code         string   `json:"code" validate:"required"`
	Description  string   `json:"description"`
	ScheduleDays []string `json:"schedule_days"`
	ScheduleTime string   `json:"schedule_time"`
	ScheduleRoom string   `json:"schedule_room"`
}

// UpdateCourseRequest holds payload for updating courses.
type UpdateCourseRequest struct {
	Name         string              `json:"name" validate:"required"`
	Subject      string              `json:"subject" validate:"required"`
	Code         string              `json:"code" validate:"required"`
	Description  string              `json:"description"`
	ScheduleDays []string            `json:"schedule_days"`
	ScheduleTime string              `json:"schedule_time"`
	ScheduleRoom string              `json:"schedule_room"`
	Status       models.CourseStatus `json:"status" validate:"required"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo      courseRepository
	teachers  courseTeacherReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, teachers courseTeacherReader, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// List returns courses and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list courses")
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
	return courses, pagination, nil
}

// Get returns one course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load course")
	}
	return course, nil
}

// Create opens a new course without a teacher.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{
		Name:         req.Name,
		Subject:      req.Subject,
		Code:         req.Code,
		Description:  req.Description,
		ScheduleDays: models.CSVList(req.ScheduleDays),
		ScheduleTime: req.ScheduleTime,
		ScheduleRoom: req.ScheduleRoom,
		Status:       models.CourseStatusActive,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("code", course.Code))
	return course, nil
}

// Update modifies an existing course record.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if !models.ValidCourseStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown course status")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	course := detail.Course
	course.Name = req.Name
	course.Subject = req.Subject
	course.Code = req.Code
	course.Description = req.Description
	course.ScheduleDays = models.CSVList(req.ScheduleDays)
	course.ScheduleTime = req.ScheduleTime
	course.ScheduleRoom = req.ScheduleRoom
	course.Status = req.Status
	if err := s.repo.Update(ctx, &course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update course")
	}
	return &course, nil
}

// AssignTeacher puts a teacher in charge of a course, replacing any previous
// assignment. The teacher must be actively employed and qualified for the
// course subject.
func (s *CourseService) AssignTeacher(ctx context.Context, courseID, teacherID string) (*models.CourseDetail, error) {
	detail, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if detail.Status != models.CourseStatusActive {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "course is not active")
	}
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load teacher")
	}
	if !teacher.CanBeAssigned() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher is not actively employed")
	}
	if !teacher.CanTeach(detail.Subject) {
		return nil, appErrors.Clone(appErrors.ErrSubjectMismatch, "")
	}
	assignedAt := time.Now().UTC()
	if err := s.repo.AssignTeacher(ctx, courseID, teacherID, assignedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to assign teacher")
	}
	s.logger.Info("teacher assigned",
		zap.String("course_id", courseID),
		zap.String("teacher_id", teacherID))
	detail.TeacherID = &teacher.ID
	detail.TeacherAssignedAt = &assignedAt
	detail.TeacherName = &teacher.Name
	return detail, nil
}
