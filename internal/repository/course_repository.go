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

const courseColumns = `c.id, c.name, c.subject, c.code, c.description, c.schedule_days, c.schedule_time, c.schedule_room,
        c.teacher_id, c.teacher_assigned_at, c.status, c.created_at, c.updated_at,
        (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.status = 'active') AS student_count,
        p.name AS teacher_name`

const courseBase = `FROM courses c LEFT JOIN persons p ON p.id = c.teacher_id`

// CourseRepository handles persistence of courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses filtered by the provided criteria. The active
// enrollment count is derived, never stored.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.subject) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.name) LIKE $%d OR LOWER(c.code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	clause := " WHERE " + strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"name":       "c.name",
		"code":       "c.code",
		"subject":    "c.subject",
		"created_at": "c.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "c.name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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
		courseColumns, courseBase+clause, column, order, size, offset)

	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", courseBase+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// ListAll returns every course for report scans.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.CourseDetail, error) {
	query := fmt.Sprintf("SELECT %s %s ORDER BY c.name", courseColumns, courseBase)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list all courses: %w", err)
	}
	return courses, nil
}

// ListByTeacher returns a teacher's courses, optionally restricted by status.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID string, status models.CourseStatus) ([]models.CourseDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.teacher_id = $1", courseColumns, courseBase)
	args := []interface{}{teacherID}
	if status != "" {
		query += " AND c.status = $2"
		args = append(args, status)
	}
	query += " ORDER BY c.name"

	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course with derived detail by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.id = $1", courseColumns, courseBase)
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create persists a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = models.CourseStatusActive
	}
	const query = `INSERT INTO courses (id, name, subject, code, description, schedule_days, schedule_time, schedule_room, teacher_id, teacher_assigned_at, status, created_at, updated_at)
        VALUES (:id, :name, :subject, :code, :description, :schedule_days, :schedule_time, :schedule_room, :teacher_id, :teacher_assigned_at, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update rewrites the course row and bumps updated_at.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, subject = :subject, code = :code, description = :description,
        schedule_days = :schedule_days, schedule_time = :schedule_time, schedule_room = :schedule_room,
        status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// AssignTeacher sets the course's single teacher reference, replacing any
// previous assignment.
func (r *CourseRepository) AssignTeacher(ctx context.Context, courseID, teacherID string, assignedAt time.Time) error {
	const query = `UPDATE courses SET teacher_id = $2, teacher_assigned_at = $3, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, courseID, teacherID, assignedAt); err != nil {
		return fmt.Errorf("assign teacher: %w", err)
	}
	return nil
}
