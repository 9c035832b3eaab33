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

const studentColumns = `p.id, p.name, p.email, p.phone, p.address, p.birth_date, p.role, p.created_at, p.updated_at,
        s.grade_level, s.academic_status, s.parent_name, s.parent_phone`

// StudentRepository manages persistence for student records, which span the
// persons and students tables.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students s JOIN persons p ON p.id = s.id"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.GradeLevel != 0 {
		conditions = append(conditions, fmt.Sprintf("s.grade_level = $%d", len(args)+1))
		args = append(args, filter.GradeLevel)
	}
	if filter.AcademicStatus != "" {
		conditions = append(conditions, fmt.Sprintf("s.academic_status = $%d", len(args)+1))
		args = append(args, filter.AcademicStatus)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(p.name) LIKE $%d OR LOWER(p.email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":        "p.name",
		"grade_level": "s.grade_level",
		"created_at":  "p.created_at",
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll returns every student. Reports scan the full collection.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s JOIN persons p ON p.id = s.id ORDER BY p.name", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s JOIN persons p ON p.id = s.id WHERE s.id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByEmail checks whether a person with the email exists, optionally excluding an ID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
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

// Create inserts the person row and the student row in one transaction.
// Either both rows persist or neither does.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	student.Role = models.RoleStudent

	return database.WithinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const personQuery = `INSERT INTO persons (id, name, email, phone, address, birth_date, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		if _, err := tx.ExecContext(ctx, personQuery,
			student.ID, student.Name, student.Email, student.Phone, student.Address,
			student.BirthDate, student.Role, student.CreatedAt, student.UpdatedAt); err != nil {
			return fmt.Errorf("insert person: %w", err)
		}

		const studentQuery = `INSERT INTO students (id, grade_level, academic_status, parent_name, parent_phone)
        VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.ExecContext(ctx, studentQuery,
			student.ID, student.GradeLevel, student.AcademicStatus, student.ParentName, student.ParentPhone); err != nil {
			return fmt.Errorf("insert student: %w", err)
		}
		return nil
	})
}

// Update rewrites both rows in one transaction and bumps updated_at.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()

	return database.WithinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const personQuery = `UPDATE persons SET name = $2, email = $3, phone = $4, address = $5, birth_date = $6, updated_at = $7 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, personQuery,
			student.ID, student.Name, student.Email, student.Phone, student.Address,
			student.BirthDate, student.UpdatedAt); err != nil {
			return fmt.Errorf("update person: %w", err)
		}

		const studentQuery = `UPDATE students SET grade_level = $2, academic_status = $3, parent_name = $4, parent_phone = $5 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, studentQuery,
			student.ID, student.GradeLevel, student.AcademicStatus, student.ParentName, student.ParentPhone); err != nil {
			return fmt.Errorf("update student: %w", err)
		}
		return nil
	})
}

// CreateAchievement records a student accomplishment.
func (r *StudentRepository) CreateAchievement(ctx context.Context, achievement *models.Achievement) error {
	if achievement.ID == "" {
		achievement.ID = uuid.NewString()
	}
	if achievement.CreatedAt.IsZero() {
		achievement.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO achievements (id, student_id, title, description, category, awarded_on, created_at)
        VALUES (:id, :student_id, :title, :description, :category, :awarded_on, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, achievement); err != nil {
		return fmt.Errorf("create achievement: %w", err)
	}
	return nil
}

// ListAchievements returns a student's achievements, newest first.
func (r *StudentRepository) ListAchievements(ctx context.Context, studentID string) ([]models.Achievement, error) {
	const query = `SELECT id, student_id, title, description, category, awarded_on, created_at
        FROM achievements WHERE student_id = $1 ORDER BY awarded_on DESC`
	var achievements []models.Achievement
	if err := r.db.SelectContext(ctx, &achievements, query, studentID); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return achievements, nil
}
