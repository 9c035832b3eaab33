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

type examRepository interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	UpdateStatus(ctx context.Context, id string, status models.ExamStatus) error
	UpsertResult(ctx context.Context, result *models.ExamResult) error
	ListResults(ctx context.Context, examID string) ([]models.ExamResultDetail, error)
}

// Passing an exam requires at least this fraction of the max score.
const examPassingFraction = 0.6

// CreateExamRequest holds payload for scheduling exams.
type CreateExamRequest struct {
	CourseID        string          `json:"course_id" validate:"required"`
	Title           string          `json:"title" validate:"required"`
	ExamDate        time.Time       `json:"exam_date" validate:"required"`
	DurationMinutes int             `json:"duration_minutes" validate:"required,min=1"`
	MinScore        float64         `json:"min_score"`
	MaxScore        float64         `json:"max_score" validate:"required"`
	ExamType        models.ExamType `json:"exam_type" validate:"required"`
}

// RecordResultRequest holds payload for recording a student's exam result.
type RecordResultRequest struct {
	StudentID string    `json:"student_id" validate:"required"`
	Score     float64   `json:"score"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// ExamService handles exam and result use-cases.
type ExamService struct {
	repo        examRepository
	courses     enrollmentCourseReader
	enrollments studentEnrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewExamService constructs the exam service.
func NewExamService(repo examRepository, courses enrollmentCourseReader, enrollments studentEnrollmentReader, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, courses: courses, enrollments: enrollments, validator: validate, logger: logger}
}

// Get returns one exam by ID.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load exam")
	}
	return exam, nil
}

// ListByCourse returns a course's exams.
func (s *ExamService) ListByCourse(ctx context.Context, courseID string) ([]models.Exam, error) {
	exams, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list exams")
	}
	return exams, nil
}

// Create schedules an exam for a course.
func (s *ExamService) Create(ctx context.Context, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	if !models.ValidExamType(req.ExamType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown exam type")
	}
	if req.MinScore < 0 || req.MaxScore <= req.MinScore {
		return nil, appErrors.Clone(appErrors.ErrValidation, "max score must exceed min score and min score must not be negative")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load course")
	}
	if course.Status != models.CourseStatusActive {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "course is not active")
	}
	exam := &models.Exam{
		CourseID:        req.CourseID,
		Title:           req.Title,
		ExamDate:        req.ExamDate,
		DurationMinutes: req.DurationMinutes,
		MinScore:        req.MinScore,
		MaxScore:        req.MaxScore,
		ExamType:        req.ExamType,
		Status:          models.ExamStatusScheduled,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create exam")
	}
	s.logger.Info("exam scheduled", zap.String("exam_id", exam.ID), zap.String("course_id", exam.CourseID))
	return exam, nil
}

// SetStatus moves an exam through its lifecycle. Only the transitions
// scheduled>in_progress>completed plus cancellation are allowed.
func (s *ExamService) SetStatus(ctx context.Context, id string, status models.ExamStatus) (*models.Exam, error) {
	if !models.ValidExamStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown exam status")
	}
	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionExam(exam.Status, status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "exam status transition not allowed")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update exam status")
	}
	exam.Status = status
	s.logger.Info("exam status changed", zap.String("exam_id", id), zap.String("status", string(status)))
	return exam, nil
}

// RecordResult stores a student's exam outcome. Results are only accepted
// while the exam is in progress or completed; re-recording overwrites. The
// duration is derived from the start and end times.
func (s *ExamService) RecordResult(ctx context.Context, examID string, req RecordResultRequest) (*models.ExamResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !exam.AcceptsResults() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "exam is not accepting results")
	}
	if req.Score < 0 || req.Score > exam.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrScoreOutOfRange, "score must be between 0 and the exam max score")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	enrollment, err := s.enrollments.FindByPair(ctx, req.StudentID, exam.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not enrolled in the course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not actively enrolled in the course")
	}
	result := &models.ExamResult{
		ExamID:          examID,
		StudentID:       req.StudentID,
		Score:           req.Score,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: int(req.EndTime.Sub(req.StartTime).Minutes()),
	}
	if err := s.repo.UpsertResult(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store exam result")
	}
	return result, nil
}

// ListResults returns an exam's results.
func (s *ExamService) ListResults(ctx context.Context, examID string) ([]models.ExamResultDetail, error) {
	if _, err := s.Get(ctx, examID); err != nil {
		return nil, err
	}
	results, err := s.repo.ListResults(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list exam results")
	}
	return results, nil
}

// Stats summarises recorded results for one exam. The passing rate counts
// scores at or above 60% of the max score.
func (s *ExamService) Stats(ctx context.Context, examID string) (*models.ExamStats, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	results, err := s.repo.ListResults(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list exam results")
	}
	stats := &models.ExamStats{TotalParticipants: len(results)}
	if len(results) == 0 {
		return stats, nil
	}
	passingScore := exam.MaxScore * examPassingFraction
	var total float64
	var passed int
	stats.HighestScore = results[0].Score
	stats.LowestScore = results[0].Score
	for _, result := range results {
		total += result.Score
		if result.Score > stats.HighestScore {
			stats.HighestScore = result.Score
		}
		if result.Score < stats.LowestScore {
			stats.LowestScore = result.Score
		}
		if result.Score >= passingScore {
			passed++
		}
	}
	stats.AverageScore = total / float64(len(results))
	stats.PassingRate = float64(passed) / float64(len(results)) * 100
	return stats, nil
}
