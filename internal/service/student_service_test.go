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

type fakeStudentRepo struct {
	students     map[string]*models.Student
	emails       map[string]string
	created      *models.Student
	updated      *models.Student
	achievements []models.Achievement
}

func (f *fakeStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	id, ok := f.emails[email]
	if !ok {
		return false, nil
	}
	return id != excludeID, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "stu-new"
	}
	if f.students == nil {
		f.students = map[string]*models.Student{}
	}
	clone := *student
	f.students[student.ID] = &clone
	f.created = student
	return nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	clone := *student
	f.students[student.ID] = &clone
	f.updated = student
	return nil
}

func (f *fakeStudentRepo) CreateAchievement(ctx context.Context, achievement *models.Achievement) error {
	if achievement.ID == "" {
		achievement.ID = "ach-new"
	}
	f.achievements = append(f.achievements, *achievement)
	return nil
}

func (f *fakeStudentRepo) ListAchievements(ctx context.Context, studentID string) ([]models.Achievement, error) {
	return f.achievements, nil
}

type fakeGradeStore struct {
	grades     []models.GradeEntry
	attendance []models.AttendanceEntry
}

func (f *fakeGradeStore) Create(ctx context.Context, entry *models.GradeEntry) error {
	if entry.ID == "" {
		entry.ID = "grd-new"
	}
	f.grades = append(f.grades, *entry)
	return nil
}

func (f *fakeGradeStore) ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]models.GradeEntry, error) {
	return f.grades, nil
}

func (f *fakeGradeStore) CreateAttendance(ctx context.Context, entry *models.AttendanceEntry) error {
	if entry.ID == "" {
		entry.ID = "att-new"
	}
	f.attendance = append(f.attendance, *entry)
	return nil
}

func (f *fakeGradeStore) ListAttendance(ctx context.Context, studentID, courseID string) ([]models.AttendanceEntry, error) {
	return f.attendance, nil
}

func validCreateStudentRequest() CreateStudentRequest {
	return CreateStudentRequest{
		Name:       "Maria Lopez",
		Email:      "maria@school.edu",
		Phone:      "081234567890",
		BirthDate:  time.Date(2009, 3, 1, 0, 0, 0, 0, time.UTC),
		GradeLevel: 10,
	}
}

func TestStudentCreate(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := NewStudentService(repo, &fakeEnrollmentRepo{}, &fakeGradeStore{}, nil, nil)

	student, err := svc.Create(context.Background(), validCreateStudentRequest())
	require.NoError(t, err)
	assert.Equal(t, models.AcademicStatusActive, student.AcademicStatus)
	assert.Equal(t, 10, student.GradeLevel)
	require.NotNil(t, repo.created)
}

func TestStudentCreateValidation(t *testing.T) {
	svc := NewStudentService(&fakeStudentRepo{}, &fakeEnrollmentRepo{}, &fakeGradeStore{}, nil, nil)

	cases := []struct {
		name   string
		mutate func(*CreateStudentRequest)
	}{
		{"short name", func(r *CreateStudentRequest) { r.Name = " a " }},
		{"bad email", func(r *CreateStudentRequest) { r.Email = "not-an-email" }},
		{"short phone", func(r *CreateStudentRequest) { r.Phone = "12345" }},
		{"non-digit phone", func(r *CreateStudentRequest) { r.Phone = "08123456789x" }},
		{"grade level too low", func(r *CreateStudentRequest) { r.GradeLevel = 9 }},
		{"grade level too high", func(r *CreateStudentRequest) { r.GradeLevel = 13 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateStudentRequest()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestStudentCreateDuplicateEmail(t *testing.T) {
	repo := &fakeStudentRepo{emails: map[string]string{"maria@school.edu": "stu-1"}}
	svc := NewStudentService(repo, &fakeEnrollmentRepo{}, &fakeGradeStore{}, nil, nil)

	_, err := svc.Create(context.Background(), validCreateStudentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentUpdateNotFound(t *testing.T) {
	svc := NewStudentService(&fakeStudentRepo{}, &fakeEnrollmentRepo{}, &fakeGradeStore{}, nil, nil)

	req := UpdateStudentRequest{
		Name:       "Maria Lopez",
		Email:      "maria@school.edu",
		Phone:      "081234567890",
		BirthDate:  time.Date(2009, 3, 1, 0, 0, 0, 0, time.UTC),
		GradeLevel: 11,
	}
	_, err := svc.Update(context.Background(), "missing", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSetAcademicStatus(t *testing.T) {
	repo := &fakeStudentRepo{students: map[string]*models.Student{
		"stu-1": activeStudent("stu-1"),
	}}
	svc := NewStudentService(repo, &fakeEnrollmentRepo{}, &fakeGradeStore{}, nil, nil)

	student, err := svc.SetAcademicStatus(context.Background(), "stu-1", models.AcademicStatusGraduated)
	require.NoError(t, err)
	assert.Equal(t, models.AcademicStatusGraduated, student.AcademicStatus)

	_, err = svc.SetAcademicStatus(context.Background(), "stu-1", "expelled")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordGrade(t *testing.T) {
	repo := &fakeStudentRepo{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}}
	enrollments := &fakeEnrollmentRepo{byPair: map[string]models.Enrollment{
		pairKey("stu-1", "crs-1"): {ID: "enr-1", StudentID: "stu-1", CourseID: "crs-1", Status: models.EnrollmentStatusActive},
	}}
	grades := &fakeGradeStore{}
	svc := NewStudentService(repo, enrollments, grades, nil, nil)

	entry, err := svc.RecordGrade(context.Background(), "stu-1", RecordGradeRequest{
		CourseID: "crs-1",
		Type:     "quiz",
		Title:    "Quiz 1",
		Score:    42,
		MaxScore: 50,
	})
	require.NoError(t, err)
	assert.InDelta(t, 84.0, entry.Percentage(), 1e-9)
	assert.Len(t, grades.grades, 1)
}

func TestRecordGradeScoreBounds(t *testing.T) {
	repo := &fakeStudentRepo{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}}
	enrollments := &fakeEnrollmentRepo{byPair: map[string]models.Enrollment{
		pairKey("stu-1", "crs-1"): {ID: "enr-1", StudentID: "stu-1", CourseID: "crs-1", Status: models.EnrollmentStatusActive},
	}}
	svc := NewStudentService(repo, enrollments, &fakeGradeStore{}, nil, nil)

	_, err := svc.RecordGrade(context.Background(), "stu-1", RecordGradeRequest{
		CourseID: "crs-1", Type: "quiz", Title: "Quiz 1", Score: 60, MaxScore: 50,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScoreOutOfRange.Code, appErrors.FromError(err).Code)

	_, err = svc.RecordGrade(context.Background(), "stu-1", RecordGradeRequest{
		CourseID: "crs-1", Type: "quiz", Title: "Quiz 1", Score: -1, MaxScore: 50,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScoreOutOfRange.Code, appErrors.FromError(err).Code)
}

func TestRecordGradeRequiresActiveEnrollment(t *testing.T) {
	repo := &fakeStudentRepo{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}}
	enrollments := &fakeEnrollmentRepo{byPair: map[string]models.Enrollment{
		pairKey("stu-1", "crs-1"): {ID: "enr-1", StudentID: "stu-1", CourseID: "crs-1", Status: models.EnrollmentStatusDropped},
	}}
	svc := NewStudentService(repo, enrollments, &fakeGradeStore{}, nil, nil)

	req := RecordGradeRequest{CourseID: "crs-1", Type: "quiz", Title: "Quiz 1", Score: 40, MaxScore: 50}
	_, err := svc.RecordGrade(context.Background(), "stu-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	req.CourseID = "crs-unknown"
	_, err = svc.RecordGrade(context.Background(), "stu-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestAddAchievement(t *testing.T) {
	repo := &fakeStudentRepo{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}}
	svc := NewStudentService(repo, &fakeEnrollmentRepo{}, &fakeGradeStore{}, nil, nil)

	achievement, err := svc.AddAchievement(context.Background(), "stu-1", AddAchievementRequest{
		Title:    "Science Fair Winner",
		Category: "academic",
	})
	require.NoError(t, err)
	assert.False(t, achievement.AwardedOn.IsZero())
	assert.Len(t, repo.achievements, 1)
}
