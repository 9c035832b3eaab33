package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-mgmt-api/internal/models"
)

const enrollmentDetailColumns = `e.id, e.student_id, e.course_id, e.status, e.enrolled_at, e.dropped_at,
        p.name AS student_name, s.grade_level, c.name AS course_name, c.code AS course_code`

const enrollmentDetailBase = `FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN persons p ON p.id = s.id
        JOIN courses c ON c.id = e.course_id`

// EnrollmentRepository handles persistence of the student-course relation.
// Rows are never deleted; dropping flips status and stamps dropped_at.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := " WHERE " + strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"enrolled_at":  "e.enrolled_at",
		"student_name": "p.name",
		"course_name":  "c.name",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "e.enrolled_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d",
		enrollmentDetailColumns, enrollmentDetailBase+clause, column, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", enrollmentDetailBase+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByPair returns the enrollment for a (student, course) pair regardless
// of status. The pair is unique by construction.
func (r *EnrollmentRepository) FindByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, status, enrolled_at, dropped_at
        FROM enrollments WHERE student_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CountActiveByCourse returns the number of active enrollments in a course.
func (r *EnrollmentRepository) CountActiveByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, status, enrolled_at, dropped_at)
        VALUES (:id, :student_id, :course_id, :status, :enrolled_at, :dropped_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Reactivate flips a dropped enrollment back to active, keeping the record.
func (r *EnrollmentRepository) Reactivate(ctx context.Context, id string) error {
	const query = `UPDATE enrollments SET status = $2, dropped_at = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.EnrollmentStatusActive); err != nil {
		return fmt.Errorf("reactivate enrollment: %w", err)
	}
	return nil
}

// Drop marks an enrollment dropped and stamps dropped_at.
func (r *EnrollmentRepository) Drop(ctx context.Context, id string, droppedAt time.Time) error {
	const query = `UPDATE enrollments SET status = $2, dropped_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.EnrollmentStatusDropped, droppedAt); err != nil {
		return fmt.Errorf("drop enrollment: %w", err)
	}
	return nil
}

// ListByStudent returns all of a student's enrollments with course context.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE e.student_id = $1 ORDER BY e.enrolled_at DESC",
		enrollmentDetailColumns, enrollmentDetailBase)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByCourse returns all of a course's enrollments with student context.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE e.course_id = $1 ORDER BY e.enrolled_at DESC",
		enrollmentDetailColumns, enrollmentDetailBase)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// Summary counts enrollments by status across the whole relation.
func (r *EnrollmentRepository) Summary(ctx context.Context) (*models.EnrollmentSummary, error) {
	const query = `SELECT status, COUNT(*) AS count FROM enrollments GROUP BY status`
	rows := []struct {
		Status models.EnrollmentStatus `db:"status"`
		Count  int                     `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("enrollment summary: %w", err)
	}

	summary := &models.EnrollmentSummary{}
	for _, row := range rows {
		summary.Total += row.Count
		switch row.Status {
		case models.EnrollmentStatusActive:
			summary.Active = row.Count
		case models.EnrollmentStatusDropped:
			summary.Dropped = row.Count
		}
	}
	return summary, nil
}
