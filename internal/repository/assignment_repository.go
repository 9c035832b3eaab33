package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-mgmt-api/internal/models"
)

const assignmentColumns = `id, course_id, title, description, due_date, min_score, max_score, type, status, created_at`

const submissionColumns = `assignment_id, student_id, content, submitted_at, is_late, score, graded_at, status`

// AssignmentRepository handles persistence of assignments and their submissions.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID returns an assignment by its ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE id = $1", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListByCourse returns a course's assignments ordered by due date.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE course_id = $1 ORDER BY due_date", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, courseID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// Create persists a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusActive
	}
	const query = `INSERT INTO assignments (id, course_id, title, description, due_date, min_score, max_score, type, status, created_at)
        VALUES (:id, :course_id, :title, :description, :due_date, :min_score, :max_score, :type, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// UpdateStatus moves the assignment to a new lifecycle state.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus) error {
	const query = `UPDATE assignments SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	return nil
}

// FindSubmission returns one student's submission for an assignment.
func (r *AssignmentRepository) FindSubmission(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM assignment_submissions WHERE assignment_id = $1 AND student_id = $2", submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, assignmentID, studentID); err != nil {
		return nil, err
	}
	return &submission, nil
}

// UpsertSubmission inserts or overwrites the single submission a student may
// have per assignment.
func (r *AssignmentRepository) UpsertSubmission(ctx context.Context, submission *models.Submission) error {
	existing, err := r.FindSubmission(ctx, submission.AssignmentID, submission.StudentID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("find submission: %w", err)
	}
	if existing == nil {
		const query = `INSERT INTO assignment_submissions (assignment_id, student_id, content, submitted_at, is_late, score, graded_at, status)
        VALUES (:assignment_id, :student_id, :content, :submitted_at, :is_late, :score, :graded_at, :status)`
		if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		return nil
	}
	const query = `UPDATE assignment_submissions SET content = :content, submitted_at = :submitted_at, is_late = :is_late,
        score = :score, graded_at = :graded_at, status = :status
        WHERE assignment_id = :assignment_id AND student_id = :student_id`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	return nil
}

// ListSubmissions returns an assignment's submissions with student names.
func (r *AssignmentRepository) ListSubmissions(ctx context.Context, assignmentID string) ([]models.SubmissionDetail, error) {
	const query = `SELECT sub.assignment_id, sub.student_id, sub.content, sub.submitted_at, sub.is_late, sub.score, sub.graded_at, sub.status,
        p.name AS student_name
        FROM assignment_submissions sub
        JOIN persons p ON p.id = sub.student_id
        WHERE sub.assignment_id = $1
        ORDER BY sub.submitted_at`
	var submissions []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &submissions, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}
