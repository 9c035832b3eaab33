package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-mgmt-api/internal/models"
	"github.com/noah-isme/school-mgmt-api/pkg/database"
)

const teacherColumns = `p.id, p.name, p.email, p.phone, p.address, p.birth_date, p.role, p.created_at, p.updated_at,
        t.department, t.subjects, t.qualifications, t.assigned_classes, t.employment_status, t.hire_date`

// TeacherRepository manages persistence for teacher records, which span the
// persons and teachers tables.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers matching the provided filters.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers t JOIN persons p ON p.id = t.id"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(t.department) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.EmploymentStatus != "" {
		conditions = append(conditions, fmt.Sprintf("t.employment_status = $%d", len(args)+1))
		args = append(args, filter.EmploymentStatus)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(p.name) LIKE $%d OR LOWER(p.email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "p.name",
		"department": "t.department",
		"hire_date":  "t.hire_date",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "p.name"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", teacherColumns, base, column, order, size, offset)

	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// ListAll returns every teacher for report scans.
func (r *TeacherRepository) ListAll(ctx context.Context) ([]models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers t JOIN persons p ON p.id = t.id ORDER BY p.name", teacherColumns)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list all teachers: %w", err)
	}
	return teachers, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers t JOIN persons p ON p.id = t.id WHERE t.id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ExistsByEmail checks whether a person with the email exists, optionally excluding an ID.
func (r *TeacherRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT 1 FROM persons WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts the person row and the teacher row in one transaction.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	if teacher.HireDate.IsZero() {
		teacher.HireDate = now
	}
	teacher.Role = models.RoleTeacher

	return database.WithinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const personQuery = `INSERT INTO persons (id, name, email, phone, address, birth_date, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		if _, err := tx.ExecContext(ctx, personQuery,
			teacher.ID, teacher.Name, teacher.Email, teacher.Phone, teacher.Address,
			teacher.BirthDate, teacher.Role, teacher.CreatedAt, teacher.UpdatedAt); err != nil {
			return fmt.Errorf("insert person: %w", err)
		}

		const teacherQuery = `INSERT INTO teachers (id, department, subjects, qualifications, assigned_classes, employment_status, hire_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.ExecContext(ctx, teacherQuery,
			teacher.ID, teacher.Department, teacher.Subjects, teacher.Qualifications,
			teacher.AssignedClasses, teacher.EmploymentStatus, teacher.HireDate); err != nil {
			return fmt.Errorf("insert teacher: %w", err)
		}
		return nil
	})
}

// Update rewrites both rows in one transaction and bumps updated_at.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()

	return database.WithinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const personQuery = `UPDATE persons SET name = $2, email = $3, phone = $4, address = $5, birth_date = $6, updated_at = $7 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, personQuery,
			teacher.ID, teacher.Name, teacher.Email, teacher.Phone, teacher.Address,
			teacher.BirthDate, teacher.UpdatedAt); err != nil {
			return fmt.Errorf("update person: %w", err)
		}

		const teacherQuery = `UPDATE teachers SET department = $2, subjects = $3, qualifications = $4, assigned_classes = $5, employment_status = $6 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, teacherQuery,
			teacher.ID, teacher.Department, teacher.Subjects, teacher.Qualifications,
			teacher.AssignedClasses, teacher.EmploymentStatus); err != nil {
			return fmt.Errorf("update teacher: %w", err)
		}
		return nil
	})
}
