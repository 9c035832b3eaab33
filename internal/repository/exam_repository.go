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

const examColumns = `id, course_id, title, exam_date, duration_minutes, min_score, max_score, exam_type, status, created_at`

// ExamRepository handles persistence of exams and their results.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// FindByID returns an exam by its ID.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	query := fmt.Sprintf("SELECT %s FROM exams WHERE id = $1", examColumns)
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListByCourse returns a course's exams ordered by date.
func (r *ExamRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Exam, error) {
	query := fmt.Sprintf("SELECT %s FROM exams WHERE course_id = $1 ORDER BY exam_date", examColumns)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, courseID); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// Create persists a new exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = time.Now().UTC()
	}
	if exam.Status == "" {
		exam.Status = models.ExamStatusScheduled
	}
	const query = `INSERT INTO exams (id, course_id, title, exam_date, duration_minutes, min_score, max_score, exam_type, status, created_at)
        VALUES (:id, :course_id, :title, :exam_date, :duration_minutes, :min_score, :max_score, :exam_type, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// UpdateStatus moves the exam to a new lifecycle state.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id string, status models.ExamStatus) error {
	const query = `UPDATE exams SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update exam status: %w", err)
	}
	return nil
}

// FindResult returns one student's result for an exam.
func (r *ExamRepository) FindResult(ctx context.Context, examID, studentID string) (*models.ExamResult, error) {
	const query = `SELECT exam_id, student_id, score, start_time, end_time, duration_minutes
        FROM exam_results WHERE exam_id = $1 AND student_id = $2`
	var result models.ExamResult
	if err := r.db.GetContext(ctx, &result, query, examID, studentID); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpsertResult inserts or overwrites the single result a student may have per exam.
func (r *ExamRepository) UpsertResult(ctx context.Context, result *models.ExamResult) error {
	existing, err := r.FindResult(ctx, result.ExamID, result.StudentID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("find exam result: %w", err)
	}
	if existing == nil {
		const query = `INSERT INTO exam_results (exam_id, student_id, score, start_time, end_time, duration_minutes)
        VALUES (:exam_id, :student_id, :score, :start_time, :end_time, :duration_minutes)`
		if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
			return fmt.Errorf("insert exam result: %w", err)
		}
		return nil
	}
	const query = `UPDATE exam_results SET score = :score, start_time = :start_time, end_time = :end_time, duration_minutes = :duration_minutes
        WHERE exam_id = :exam_id AND student_id = :student_id`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("update exam result: %w", err)
	}
	return nil
}

// ListResults returns an exam's results with student names.
func (r *ExamRepository) ListResults(ctx context.Context, examID string) ([]models.ExamResultDetail, error) {
	const query = `SELECT res.exam_id, res.student_id, res.score, res.start_time, res.end_time, res.duration_minutes,
        p.name AS student_name
        FROM exam_results res
        JOIN persons p ON p.id = res.student_id
        WHERE res.exam_id = $1
        ORDER BY res.score DESC`
	var results []models.ExamResultDetail
	if err := r.db.SelectContext(ctx, &results, query, examID); err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return results, nil
}
