package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-mgmt-api/internal/models"
)

const gradeColumns = `id, student_id, course_id, type, title, score, max_score, graded_on, recorded_at`

// GradeRepository handles persistence of grade and attendance entries.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Create persists a new grade entry.
func (r *GradeRepository) Create(ctx context.Context, entry *models.GradeEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	if entry.GradedOn.IsZero() {
		entry.GradedOn = entry.RecordedAt
	}
	const query = `INSERT INTO grades (id, student_id, course_id, type, title, score, max_score, graded_on, recorded_at)
        VALUES (:id, :student_id, :course_id, :type, :title, :score, :max_score, :graded_on, :recorded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create grade entry: %w", err)
	}
	return nil
}

// ListByStudentCourse returns a student's grade entries for one course, newest first.
func (r *GradeRepository) ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]models.GradeEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE student_id = $1 AND course_id = $2 ORDER BY graded_on DESC", gradeColumns)
	var entries []models.GradeEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return entries, nil
}

// ListByStudent returns all grade entries for one student.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.GradeEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE student_id = $1 ORDER BY graded_on DESC", gradeColumns)
	var entries []models.GradeEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return entries, nil
}

// ListAll returns every grade entry. The system overview scans the full set.
func (r *GradeRepository) ListAll(ctx context.Context) ([]models.GradeEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM grades", gradeColumns)
	var entries []models.GradeEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list all grades: %w", err)
	}
	return entries, nil
}

// CreateAttendance persists one attendance mark.
func (r *GradeRepository) CreateAttendance(ctx context.Context, entry *models.AttendanceEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance (id, student_id, course_id, date, status, recorded_at)
        VALUES (:id, :student_id, :course_id, :date, :status, :recorded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create attendance entry: %w", err)
	}
	return nil
}

// ListAttendance returns a student's attendance for one course, newest first.
func (r *GradeRepository) ListAttendance(ctx context.Context, studentID, courseID string) ([]models.AttendanceEntry, error) {
	const query = `SELECT id, student_id, course_id, date, status, recorded_at
        FROM attendance WHERE student_id = $1 AND course_id = $2 ORDER BY date DESC`
	var entries []models.AttendanceEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return entries, nil
}
