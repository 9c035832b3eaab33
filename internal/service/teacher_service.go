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

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
}

// CreateTeacherRequest holds payload for registering teachers.
type CreateTeacherRequest struct {
	Name           string    `json:"name" validate:"required"`
	Email          string    `json:"email" validate:"required"`
	Phone          string    `json:"phone" validate:"required"`
	Address        string    `json:"address"`
	BirthDate      time.Time `json:"birth_date" validate:"required"`
	Department     string    `json:"department" validate:"required"`
	Subjects       []string  `json:"subjects" validate:"required,min=1"`
	Qualifications []string  `json:"qualifications"`
	HireDate       time.Time `json:"hire_date"`
}

// UpdateTeacherRequest holds payload for updating teachers.
type UpdateTeacherRequest struct {
	Name           string    `json:"name" validate:"required"`
	Email          string    `json:"email" validate:"required"`
	Phone          string    `json:"phone" validate:"required"`
	Address        string    `json:"address"`
	BirthDate      time.Time `json:"birth_date" validate:"required"`
	Department     string    `json:"department" validate:"required"`
	Subjects       []string  `json:"subjects" validate:"required,min=1"`
	Qualifications []string  `json:"qualifications"`
}

// TeacherService handles teacher use-cases.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns teachers and pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list teachers")
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
	return teachers, pagination, nil
}

// Get returns one teacher by ID.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher. Subject lists are deduplicated
// case-insensitively before storage.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if err := models.ValidatePersonFields(req.Name, req.Email, req.Phone); err != nil {
		return nil, err
	}
	subjects := models.DedupSubjects(req.Subjects)
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one subject is required")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	teacher := &models.Teacher{
		Person: models.Person{
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			Address:   req.Address,
			BirthDate: req.BirthDate,
		},
		Department:       req.Department,
		Subjects:         subjects,
		Qualifications:   models.CSVList(req.Qualifications),
		EmploymentStatus: models.EmploymentStatusActive,
		HireDate:         req.HireDate,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create teacher")
	}
	s.logger.Info("teacher registered", zap.String("teacher_id", teacher.ID), zap.String("department", teacher.Department))
	return teacher, nil
}

// Update modifies an existing teacher record.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if err := models.ValidatePersonFields(req.Name, req.Email, req.Phone); err != nil {
		return nil, err
	}
	subjects := models.DedupSubjects(req.Subjects)
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one subject is required")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load teacher")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	teacher.Name = req.Name
	teacher.Email = req.Email
	teacher.Phone = req.Phone
	teacher.Address = req.Address
	teacher.BirthDate = req.BirthDate
	teacher.Department = req.Department
	teacher.Subjects = subjects
	teacher.Qualifications = models.CSVList(req.Qualifications)
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update teacher")
	}
	return teacher, nil
}

// SetEmploymentStatus changes a teacher's standing.
func (s *TeacherService) SetEmploymentStatus(ctx context.Context, id string, status models.EmploymentStatus) (*models.Teacher, error) {
	if !models.ValidEmploymentStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown employment status")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load teacher")
	}
	teacher.EmploymentStatus = status
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update teacher")
	}
	s.logger.Info("employment status changed", zap.String("teacher_id", id), zap.String("status", string(status)))
	return teacher, nil
}
