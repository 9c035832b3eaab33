package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/school-mgmt-api/pkg/errors"
)

type fakeEnrollmentRepo struct {
	byPair      map[string]models.Enrollment
	activeCount int
	created     *models.Enrollment
	reactivated []string
	dropped     []string
}

func pairKey(studentID, courseID string) string { return studentID + "|" + courseID }

func (f *fakeEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeEnrollmentRepo) FindByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	if e, ok := f.byPair[pairKey(studentID, courseID)]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) CountActiveByCourse(ctx context.Context, courseID string) (int, error) {
	return f.activeCount, nil
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = "enr-new"
	}
	if f.byPair == nil {
		f.byPair = map[string]models.Enrollment{}
	}
	f.byPair[pairKey(enrollment.StudentID, enrollment.CourseID)] = *enrollment
	f.created = enrollment
	return nil
}

func (f *fakeEnrollmentRepo) Reactivate(ctx context.Context, id string) error {
	f.reactivated = append(f.reactivated, id)
	return nil
}

func (f *fakeEnrollmentRepo) Drop(ctx context.Context, id string, droppedAt time.Time) error {
	f.dropped = append(f.dropped, id)
	return nil
}

func (f *fakeEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

func (f *fakeEnrollmentRepo) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

type fakeStudentReader struct {
	students map[string]*models.Student
}

func (f *fakeStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type fakeCourseReader struct {
	courses map[string]*models.CourseDetail
}

func (f *fakeCourseReader) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func activeStudent(id string) *models.Student {
	return &models.Student{
		Person:         models.Person{ID: id, Name: "Test Student"},
		GradeLevel:     10,
		AcademicStatus: models.AcademicStatusActive,
	}
}

func activeCourse(id string) *models.CourseDetail {
	return &models.CourseDetail{Course: models.Course{ID: id, Name: "Algebra", Status: models.CourseStatusActive}}
}

func TestEnrollCreatesNewEnrollment(t *testing.T) {
	repo := &fakeEnrollmentRepo{}
	students := &fakeStudentReader{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}}
	courses := &fakeCourseReader{courses: map[string]*models.CourseDetail{"crs-1": activeCourse("crs-1")}}
	svc := NewEnrollmentService(repo, students, courses, 30, nil)

	enrollment, err := svc.Enroll(context.Background(), "stu-1", "crs-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	require.NotNil(t, repo.created)
	assert.Equal(t, "stu-1", repo.created.StudentID)
}

func TestEnrollActivePairIsConflict(t *testing.T) {
	repo := &fakeEnrollmentRepo{byPair: map[string]models.Enrollment{
		pairKey("stu-1", "crs-1"): {ID: "enr-1", StudentID: "stu-1", CourseID: "crs-1", Status: models.EnrollmentStatusActive},
	}}
	students := &fakeStudentReader{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}}
	courses := &fakeCourseReader{courses: map[string]*models.CourseDetail{"crs-1": activeCourse("crs-1")}}
	svc := NewEnrollmentService(repo, students, courses, 30, nil)

	_, err := svc.Enroll(context.Background(), "stu-1", "crs-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestEnrollDroppedPairReactivates(t *testing.T) {
	repo := &fakeEnrollmentRepo{byPair: map[string]models.Enrollment{
		pairKey("stu-1", "crs-1"): {ID: "enr-1", StudentID: "stu-1", CourseID: "crs-1", Status: models.EnrollmentStatusDropped},
	}}
	students := &fakeStudentReader{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}}
	courses := &fakeCourseReader{courses: map[string]*models.CourseDetail{"crs-1": activeCourse("crs-1")}}
	svc := NewEnrollmentService(repo, students, courses, 30, nil)

	enrollment, err := svc.Enroll(context.Background(), "stu-1", "crs-1")
	require.NoError(t, err)
	assert.Equal(t, "enr-1", enrollment.ID)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.Nil(t, enrollment.DroppedAt)
	assert.Equal(t, []string{"enr-1"}, repo.reactivated)
	assert.Nil(t, repo.created)
}

func TestEnrollFullCourseRejected(t *testing.T) {
	repo := &fakeEnrollmentRepo{activeCount: 30}
	students := &fakeStudentReader{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}}
	courses := &fakeCourseReader{courses: map[string]*models.CourseDetail{"crs-1": activeCourse("crs-1")}}
	svc := NewEnrollmentService(repo, students, courses, 30, nil)

	_, err := svc.Enroll(context.Background(), "stu-1", "crs-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCourseFull.Code, appErrors.FromError(err).Code)
}

func TestEnrollSuspendedStudentRejected(t *testing.T) {
	repo := &fakeEnrollmentRepo{}
	suspended := activeStudent("stu-1")
	suspended.AcademicStatus = models.AcademicStatusSuspended
	students := &fakeStudentReader{students: map[string]*models.Student{"stu-1": suspended}}
	courses := &fakeCourseReader{courses: map[string]*models.CourseDetail{"crs-1": activeCourse("crs-1")}}
	svc := NewEnrollmentService(repo, students, courses, 30, nil)

	_, err := svc.Enroll(context.Background(), "stu-1", "crs-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestEnrollInactiveCourseRejected(t *testing.T) {
	repo := &fakeEnrollmentRepo{}
	students := &fakeStudentReader{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}}
	cancelled := activeCourse("crs-1")
	cancelled.Status = models.CourseStatusCancelled
	courses := &fakeCourseReader{courses: map[string]*models.CourseDetail{"crs-1": cancelled}}
	svc := NewEnrollmentService(repo, students, courses, 30, nil)

	_, err := svc.Enroll(context.Background(), "stu-1", "crs-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestDropActiveEnrollment(t *testing.T) {
	repo := &fakeEnrollmentRepo{byPair: map[string]models.Enrollment{
		pairKey("stu-1", "crs-1"): {ID: "enr-1", StudentID: "stu-1", CourseID: "crs-1", Status: models.EnrollmentStatusActive},
	}}
	svc := NewEnrollmentService(repo, &fakeStudentReader{}, &fakeCourseReader{}, 30, nil)

	enrollment, err := svc.Drop(context.Background(), "stu-1", "crs-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDropped, enrollment.Status)
	require.NotNil(t, enrollment.DroppedAt)
	assert.Equal(t, []string{"enr-1"}, repo.dropped)
}

func TestDropWithoutActiveEnrollment(t *testing.T) {
	repo := &fakeEnrollmentRepo{byPair: map[string]models.Enrollment{
		pairKey("stu-1", "crs-1"): {ID: "enr-1", StudentID: "stu-1", CourseID: "crs-1", Status: models.EnrollmentStatusDropped},
	}}
	svc := NewEnrollmentService(repo, &fakeStudentReader{}, &fakeCourseReader{}, 30, nil)

	_, err := svc.Drop(context.Background(), "stu-1", "crs-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Drop(context.Background(), "stu-2", "crs-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
