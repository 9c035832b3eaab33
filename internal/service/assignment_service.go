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

type assignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus) error
	FindSubmission(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	UpsertSubmission(ctx context.Context, submission *models.Submission) error
	ListSubmissions(ctx context.Context, assignmentID string) ([]models.SubmissionDetail, error)
}

// CreateAssignmentRequest holds payload for creating assignments.
type CreateAssignmentRequest struct {
	CourseID    string                `json:"course_id" validate:"required"`
	Title       string                `json:"title" validate:"required"`
	Description string                `json:"description"`
	DueDate     time.Time             `json:"due_date" validate:"required"`
	MinScore    float64               `json:"min_score"`
	MaxScore    float64               `json:"max_score" validate:"required"`
	Type        models.AssignmentType `json:"type" validate:"required"`
}

// SubmitAssignmentRequest holds payload for a student submission.
type SubmitAssignmentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Content   string `json:"content" validate:"required"`
}

// GradeSubmissionRequest holds payload for grading a submission.
type GradeSubmissionRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	Score     float64 `json:"score"`
}

// AssignmentService handles assignment and submission use-cases.
type AssignmentService struct {
	repo        assignmentRepository
	courses     enrollmentCourseReader
	enrollments studentEnrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(repo assignmentRepository, courses enrollmentCourseReader, enrollments studentEnrollmentReader, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		repo:        repo,
		courses:     courses,
		enrollments: enrollments,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Get returns one assignment by ID.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load assignment")
	}
	return assignment, nil
}

// ListByCourse returns a course's assignments.
func (s *AssignmentService) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	assignments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Create adds an assignment to a course. A zero minimum score is allowed;
// the maximum must exceed it.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if !models.ValidAssignmentType(req.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown assignment type")
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
	assignment := &models.Assignment{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		MinScore:    req.MinScore,
		MaxScore:    req.MaxScore,
		Type:        req.Type,
		Status:      models.AssignmentStatusActive,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create assignment")
	}
	s.logger.Info("assignment created", zap.String("assignment_id", assignment.ID), zap.String("course_id", assignment.CourseID))
	return assignment, nil
}

// Close stops accepting submissions for an assignment.
func (s *AssignmentService) Close(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.Status == models.AssignmentStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "assignment is already closed")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.AssignmentStatusClosed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to close assignment")
	}
	assignment.Status = models.AssignmentStatusClosed
	return assignment, nil
}

// Submit stores a student's work. Re-submitting overwrites the previous
// submission and resets any grade. Submissions after the due date are
// accepted but flagged late.
func (s *AssignmentService) Submit(ctx context.Context, assignmentID string, req SubmitAssignmentRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	assignment, err := s.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != models.AssignmentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "assignment is closed")
	}
	enrollment, err := s.enrollments.FindByPair(ctx, req.StudentID, assignment.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not enrolled in the course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not actively enrolled in the course")
	}
	submittedAt := s.now()
	submission := &models.Submission{
		AssignmentID: assignmentID,
		StudentID:    req.StudentID,
		Content:      req.Content,
		SubmittedAt:  submittedAt,
		IsLate:       submittedAt.After(assignment.DueDate),
		Status:       models.SubmissionStatusSubmitted,
	}
	if err := s.repo.UpsertSubmission(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store submission")
	}
	return submission, nil
}

// Grade scores an existing submission. Re-grading overwrites the previous
// score.
func (s *AssignmentService) Grade(ctx context.Context, assignmentID string, req GradeSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading payload")
	}
	assignment, err := s.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if req.Score < 0 || req.Score > assignment.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrScoreOutOfRange, "score must be between 0 and the assignment max score")
	}
	submission, err := s.repo.FindSubmission(ctx, assignmentID, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load submission")
	}
	gradedAt := s.now()
	submission.Score = &req.Score
	submission.GradedAt = &gradedAt
	submission.Status = models.SubmissionStatusGraded
	if err := s.repo.UpsertSubmission(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store grade")
	}
	return submission, nil
}

// ListSubmissions returns an assignment's submissions.
func (s *AssignmentService) ListSubmissions(ctx context.Context, assignmentID string) ([]models.SubmissionDetail, error) {
	if _, err := s.Get(ctx, assignmentID); err != nil {
		return nil, err
	}
	submissions, err := s.repo.ListSubmissions(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list submissions")
	}
	return submissions, nil
}

// AverageScore computes the mean over graded submissions, 0 when none.
func (s *AssignmentService) AverageScore(ctx context.Context, assignmentID string) (float64, error) {
	submissions, err := s.ListSubmissions(ctx, assignmentID)
	if err != nil {
		return 0, err
	}
	var total float64
	var graded int
	for _, submission := range submissions {
		if submission.Status == models.SubmissionStatusGraded && submission.Score != nil {
			total += *submission.Score
			graded++
		}
	}
	if graded == 0 {
		return 0, nil
	}
	return total / float64(graded), nil
}
