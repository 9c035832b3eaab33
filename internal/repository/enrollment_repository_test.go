package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-mgmt-api/internal/models"
)

func TestEnrollmentRepositoryFindByPair(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "status", "enrolled_at", "dropped_at"}).
		AddRow("enr-1", "stu-1", "crs-1", "active", now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, course_id, status, enrolled_at, dropped_at")).
		WithArgs("stu-1", "crs-1").
		WillReturnRows(rows)

	enrollment, err := repo.FindByPair(context.Background(), "stu-1", "crs-1")
	require.NoError(t, err)
	require.Equal(t, "enr-1", enrollment.ID)
	require.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	require.Nil(t, enrollment.DroppedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCountActiveByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments")).
		WithArgs("crs-1", models.EnrollmentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	count, err := repo.CountActiveByCourse(context.Background(), "crs-1")
	require.NoError(t, err)
	require.Equal(t, 17, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	enrollment := &models.Enrollment{StudentID: "stu-1", CourseID: "crs-1"}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	require.NotEmpty(t, enrollment.ID)
	require.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	require.False(t, enrollment.EnrolledAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryReactivateAndDrop(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2, dropped_at = NULL")).
		WithArgs("enr-1", models.EnrollmentStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Reactivate(context.Background(), "enr-1"))

	droppedAt := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2, dropped_at = $3")).
		WithArgs("enr-1", models.EnrollmentStatusDropped, droppedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Drop(context.Background(), "enr-1", droppedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("active", 42).
		AddRow("dropped", 8)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS count FROM enrollments GROUP BY status")).
		WillReturnRows(rows)

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 50, summary.Total)
	require.Equal(t, 42, summary.Active)
	require.Equal(t, 8, summary.Dropped)
	require.NoError(t, mock.ExpectationsWereMet())
}
