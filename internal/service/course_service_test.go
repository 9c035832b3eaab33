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

type fakeCourseRepo struct {
	courses  map[string]*models.CourseDetail
	created  *models.Course
	updated  *models.Course
	assigned []string
}

func (f *fakeCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeCourseRepo) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	if c, ok := f.courses[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "crs-new"
	}
	f.created = course
	return nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	f.updated = course
	return nil
}

func (f *fakeCourseRepo) AssignTeacher(ctx context.Context, courseID, teacherID string, assignedAt time.Time) error {
	f.assigned = append(f.assigned, courseID+":"+teacherID)
	return nil
}

type fakeTeacherReader struct {
	teachers map[string]*models.Teacher
}

func (f *fakeTeacherReader) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if tc, ok := f.teachers[id]; ok {
		return tc, nil
	}
	return nil, sql.ErrNoRows
}

func mathTeacher(id string) *models.Teacher {
	return &models.Teacher{
		Person:           models.Person{ID: id, Name: "Alan Turing"},
		Department:       "Mathematics",
		Subjects:         models.CSVList{"Math", "Computer Science"},
		EmploymentStatus: models.EmploymentStatusActive,
	}
}

func mathCourse(id string) *models.CourseDetail {
	return &models.CourseDetail{Course: models.Course{
		ID:      id,
		Name:    "Algebra II",
		Subject: "Math",
		Code:    "MATH-201",
		Status:  models.CourseStatusActive,
	}}
}

func TestCourseCreate(t *testing.T) {
	repo := &fakeCourseRepo{}
	svc := NewCourseService(repo, &fakeTeacherReader{}, nil, nil)

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:    "Algebra II",
		Subject: "Math",
		Code:    "MATH-201",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusActive, course.Status)
	assert.Nil(t, course.TeacherID)
}

func TestAssignTeacher(t *testing.T) {
	repo := &fakeCourseRepo{courses: map[string]*models.CourseDetail{"crs-1": mathCourse("crs-1")}}
	teachers := &fakeTeacherReader{teachers: map[string]*models.Teacher{"tch-1": mathTeacher("tch-1")}}
	svc := NewCourseService(repo, teachers, nil, nil)

	course, err := svc.AssignTeacher(context.Background(), "crs-1", "tch-1")
	require.NoError(t, err)
	require.NotNil(t, course.TeacherID)
	assert.Equal(t, "tch-1", *course.TeacherID)
	require.NotNil(t, course.TeacherAssignedAt)
	assert.Equal(t, []string{"crs-1:tch-1"}, repo.assigned)
}

func TestAssignTeacherSubjectMismatch(t *testing.T) {
	repo := &fakeCourseRepo{courses: map[string]*models.CourseDetail{"crs-1": mathCourse("crs-1")}}
	biology := mathTeacher("tch-1")
	biology.Subjects = models.CSVList{"Biology"}
	teachers := &fakeTeacherReader{teachers: map[string]*models.Teacher{"tch-1": biology}}
	svc := NewCourseService(repo, teachers, nil, nil)

	_, err := svc.AssignTeacher(context.Background(), "crs-1", "tch-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSubjectMismatch.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.assigned)
}

func TestAssignTeacherCaseInsensitiveSubject(t *testing.T) {
	course := mathCourse("crs-1")
	course.Subject = "MATH"
	repo := &fakeCourseRepo{courses: map[string]*models.CourseDetail{"crs-1": course}}
	teachers := &fakeTeacherReader{teachers: map[string]*models.Teacher{"tch-1": mathTeacher("tch-1")}}
	svc := NewCourseService(repo, teachers, nil, nil)

	_, err := svc.AssignTeacher(context.Background(), "crs-1", "tch-1")
	require.NoError(t, err)
}

func TestAssignTeacherOnLeaveRejected(t *testing.T) {
	repo := &fakeCourseRepo{courses: map[string]*models.CourseDetail{"crs-1": mathCourse("crs-1")}}
	onLeave := mathTeacher("tch-1")
	onLeave.EmploymentStatus = models.EmploymentStatusOnLeave
	teachers := &fakeTeacherReader{teachers: map[string]*models.Teacher{"tch-1": onLeave}}
	svc := NewCourseService(repo, teachers, nil, nil)

	_, err := svc.AssignTeacher(context.Background(), "crs-1", "tch-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestAssignTeacherInactiveCourseRejected(t *testing.T) {
	completed := mathCourse("crs-1")
	completed.Status = models.CourseStatusCompleted
	repo := &fakeCourseRepo{courses: map[string]*models.CourseDetail{"crs-1": completed}}
	teachers := &fakeTeacherReader{teachers: map[string]*models.Teacher{"tch-1": mathTeacher("tch-1")}}
	svc := NewCourseService(repo, teachers, nil, nil)

	_, err := svc.AssignTeacher(context.Background(), "crs-1", "tch-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}
