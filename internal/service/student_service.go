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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	CreateAchievement(ctx context.Context, achievement *models.Achievement) error
	ListAchievements(ctx context.Context, studentID string) ([]models.Achievement, error)
}

type studentEnrollmentReader interface {
	FindByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
}

type gradeWriter interface {
	Create(ctx context.Context, entry *models.GradeEntry) error
	ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]models.GradeEntry, error)
	CreateAttendance(ctx context.Context, entry *models.AttendanceEntry) error
	ListAttendance(ctx context.Context, studentID, courseID string) ([]models.AttendanceEntry, error)
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	Name        string    `json:"name" validate:"required"`
	Email       string    `json:"email" validate:"required"`
	Phone       string    `json:"phone" validate:"required"`
	Address     string    `json:"address"`
	BirthDate   time.Time `json:"birth_date" validate:"required"`
	GradeLevel  int       `json:"grade_level" validate:"required"`
	ParentName  *string   `json:"parent_name"`
	ParentPhone *string   `json:"parent_phone"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	Name        string    `json:"name" validate:"required"`
	Email       string    `json:"email" validate:"required"`
	Phone       string    `json:"phone" validate:"required"`
	Address     string    `json:"address"`
	BirthDate   time.Time `json:"birth_date" validate:"required"`
	GradeLevel  int       `json:"grade_level" validate:"required"`
	ParentName  *string   `json:"parent_name"`
	ParentPhone *string   `json:"parent_phone"`
}

// RecordGradeRequest holds payload for recording an assessment score.
type RecordGradeRequest struct {
	CourseID string    `json:"course_id" validate:"required"`
	Type     string    `json:"type" validate:"required"`
	Title    string    `json:"title" validate:"required"`
	Score    float64   `json:"score"`
	MaxScore float64   `json:"max_score" validate:"required"`
	GradedOn time.Time `json:"graded_on"`
}

// MarkAttendanceRequest holds payload for recording one attendance mark.
type MarkAttendanceRequest struct {
	CourseID string                  `json:"course_id" validate:"required"`
	Date     time.Time               `json:"date" validate:"required"`
	Status   models.AttendanceStatus `json:"status" validate:"required"`
}

// AddAchievementRequest holds payload for recording an achievement.
type AddAchievementRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category" validate:"required"`
	AwardedOn   time.Time `json:"awarded_on"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo        studentRepository
	enrollments studentEnrollmentReader
	grades      gradeWriter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, enrollments studentEnrollmentReader, grades gradeWriter, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, enrollments: enrollments, grades: grades, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns one student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. The identity fields are validated before
// anything is written so a rejected request leaves no partial record.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := models.ValidatePersonFields(req.Name, req.Email, req.Phone); err != nil {
		return nil, err
	}
	if !models.ValidGradeLevel(req.GradeLevel) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade level must be between 10 and 12")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	student := &models.Student{
		Person: models.Person{
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			Address:   req.Address,
			BirthDate: req.BirthDate,
		},
		GradeLevel:     req.GradeLevel,
		AcademicStatus: models.AcademicStatusActive,
		ParentName:     req.ParentName,
		ParentPhone:    req.ParentPhone,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create student")
	}
	s.logger.Info("student registered", zap.String("student_id", student.ID), zap.Int("grade_level", student.GradeLevel))
	return student, nil
}

// Update modifies an existing student record. Validation runs first; a failed
// update leaves the stored record unchanged.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := models.ValidatePersonFields(req.Name, req.Email, req.Phone); err != nil {
		return nil, err
	}
	if !models.ValidGradeLevel(req.GradeLevel) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade level must be between 10 and 12")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load student")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	student.Name = req.Name
	student.Email = req.Email
	student.Phone = req.Phone
	student.Address = req.Address
	student.BirthDate = req.BirthDate
	student.GradeLevel = req.GradeLevel
	student.ParentName = req.ParentName
	student.ParentPhone = req.ParentPhone
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update student")
	}
	return student, nil
}

// SetAcademicStatus changes a student's standing.
func (s *StudentService) SetAcademicStatus(ctx context.Context, id string, status models.AcademicStatus) (*models.Student, error) {
	if !models.ValidAcademicStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown academic status")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load student")
	}
	student.AcademicStatus = status
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update student")
	}
	s.logger.Info("academic status changed", zap.String("student_id", id), zap.String("status", string(status)))
	return student, nil
}

// RecordGrade stores an assessment score for a student in a course. The
// student must hold an active enrollment in the course and the score must
// fall within [0, max].
func (s *StudentService) RecordGrade(ctx context.Context, studentID string, req RecordGradeRequest) (*models.GradeEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if req.MaxScore <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "max score must be positive")
	}
	if req.Score < 0 || req.Score > req.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrScoreOutOfRange, "score must be between 0 and the max score")
	}
	if _, err := s.Get(ctx, studentID); err != nil {
		return nil, err
	}
	enrollment, err := s.enrollments.FindByPair(ctx, studentID, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not enrolled in the course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not actively enrolled in the course")
	}
	entry := &models.GradeEntry{
		StudentID: studentID,
		CourseID:  req.CourseID,
		Type:      req.Type,
		Title:     req.Title,
		Score:     req.Score,
		MaxScore:  req.MaxScore,
		GradedOn:  req.GradedOn,
	}
	if err := s.grades.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to record grade")
	}
	return entry, nil
}

// ListGrades returns a student's grade entries for one course.
func (s *StudentService) ListGrades(ctx context.Context, studentID, courseID string) ([]models.GradeEntry, error) {
	if _, err := s.Get(ctx, studentID); err != nil {
		return nil, err
	}
	entries, err := s.grades.ListByStudentCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list grades")
	}
	return entries, nil
}

// MarkAttendance records one attendance mark. Like grades, attendance
// requires an active enrollment.
func (s *StudentService) MarkAttendance(ctx context.Context, studentID string, req MarkAttendanceRequest) (*models.AttendanceEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !models.ValidAttendanceStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}
	enrollment, err := s.enrollments.FindByPair(ctx, studentID, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not enrolled in the course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not actively enrolled in the course")
	}
	entry := &models.AttendanceEntry{
		StudentID: studentID,
		CourseID:  req.CourseID,
		Date:      req.Date,
		Status:    req.Status,
	}
	if err := s.grades.CreateAttendance(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to record attendance")
	}
	return entry, nil
}

// ListAttendance returns a student's attendance history in one course.
func (s *StudentService) ListAttendance(ctx context.Context, studentID, courseID string) ([]models.AttendanceEntry, error) {
	entries, err := s.grades.ListAttendance(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list attendance")
	}
	return entries, nil
}

// AddAchievement records a student accomplishment.
func (s *StudentService) AddAchievement(ctx context.Context, studentID string, req AddAchievementRequest) (*models.Achievement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid achievement payload")
	}
	if _, err := s.Get(ctx, studentID); err != nil {
		return nil, err
	}
	awardedOn := req.AwardedOn
	if awardedOn.IsZero() {
		awardedOn = time.Now().UTC()
	}
	achievement := &models.Achievement{
		StudentID:   studentID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		AwardedOn:   awardedOn,
	}
	if err := s.repo.CreateAchievement(ctx, achievement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to record achievement")
	}
	return achievement, nil
}

// ListAchievements returns a student's achievements.
func (s *StudentService) ListAchievements(ctx context.Context, studentID string) ([]models.Achievement, error) {
	if _, err := s.Get(ctx, studentID); err != nil {
		return nil, err
	}
	achievements, err := s.repo.ListAchievements(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list achievements")
	}
	return achievements, nil
}
