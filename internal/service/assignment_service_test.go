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

type fakeAssignmentRepo struct {
	assignments map[string]*models.Assignment
	submissions map[string]*models.Submission
	upserts     int
}

func subKey(assignmentID, studentID string) string { return assignmentID + "|" + studentID }

func (f *fakeAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := f.assignments[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAssignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.CourseID == courseID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = "asg-new"
	}
	if f.assignments == nil {
		f.assignments = map[string]*models.Assignment{}
	}
	clone := *assignment
	f.assignments[assignment.ID] = &clone
	return nil
}

func (f *fakeAssignmentRepo) UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus) error {
	f.assignments[id].Status = status
	return nil
}

func (f *fakeAssignmentRepo) FindSubmission(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	if s, ok := f.submissions[subKey(assignmentID, studentID)]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAssignmentRepo) UpsertSubmission(ctx context.Context, submission *models.Submission) error {
	if f.submissions == nil {
		f.submissions = map[string]*models.Submission{}
	}
	clone := *submission
	f.submissions[subKey(submission.AssignmentID, submission.StudentID)] = &clone
	f.upserts++
	return nil
}

func (f *fakeAssignmentRepo) ListSubmissions(ctx context.Context, assignmentID string) ([]models.SubmissionDetail, error) {
	var out []models.SubmissionDetail
	for _, s := range f.submissions {
		if s.AssignmentID == assignmentID {
			out = append(out, models.SubmissionDetail{Submission: *s})
		}
	}
	return out, nil
}

func activeAssignment(id, courseID string, due time.Time) *models.Assignment {
	return &models.Assignment{
		ID:       id,
		CourseID: courseID,
		Title:    "Essay 1",
		DueDate:  due,
		MaxScore: 100,
		Type:     models.AssignmentTypeAssignment,
		Status:   models.AssignmentStatusActive,
	}
}

func newAssignmentService(repo *fakeAssignmentRepo, enrollments *fakeEnrollmentRepo) *AssignmentService {
	courses := &fakeCourseReader{courses: map[string]*models.CourseDetail{"crs-1": activeCourse("crs-1")}}
	return NewAssignmentService(repo, courses, enrollments, nil, nil)
}

func activePair(studentID, courseID string) *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{byPair: map[string]models.Enrollment{
		pairKey(studentID, courseID): {ID: "enr-1", StudentID: studentID, CourseID: courseID, Status: models.EnrollmentStatusActive},
	}}
}

func TestAssignmentCreateScoreBounds(t *testing.T) {
	svc := newAssignmentService(&fakeAssignmentRepo{}, &fakeEnrollmentRepo{})

	req := CreateAssignmentRequest{
		CourseID: "crs-1",
		Title:    "Essay 1",
		DueDate:  time.Now().Add(24 * time.Hour),
		MaxScore: 100,
		Type:     models.AssignmentTypeAssignment,
	}

	// Zero minimum is allowed.
	assignment, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusActive, assignment.Status)

	req.MinScore = 100
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req.MinScore = -1
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubmitOnTimeAndLate(t *testing.T) {
	due := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeAssignmentRepo{assignments: map[string]*models.Assignment{
		"asg-1": activeAssignment("asg-1", "crs-1", due),
	}}
	svc := newAssignmentService(repo, activePair("stu-1", "crs-1"))

	svc.now = func() time.Time { return due.Add(-time.Hour) }
	submission, err := svc.Submit(context.Background(), "asg-1", SubmitAssignmentRequest{StudentID: "stu-1", Content: "draft"})
	require.NoError(t, err)
	assert.False(t, submission.IsLate)
	assert.Equal(t, models.SubmissionStatusSubmitted, submission.Status)

	svc.now = func() time.Time { return due.Add(time.Hour) }
	submission, err = svc.Submit(context.Background(), "asg-1", SubmitAssignmentRequest{StudentID: "stu-1", Content: "final"})
	require.NoError(t, err)
	assert.True(t, submission.IsLate)
	assert.Equal(t, "final", submission.Content)
	// Resubmission overwrites, it does not duplicate.
	assert.Len(t, repo.submissions, 1)
}

func TestSubmitClosedAssignmentRejected(t *testing.T) {
	closed := activeAssignment("asg-1", "crs-1", time.Now())
	closed.Status = models.AssignmentStatusClosed
	repo := &fakeAssignmentRepo{assignments: map[string]*models.Assignment{"asg-1": closed}}
	svc := newAssignmentService(repo, activePair("stu-1", "crs-1"))

	_, err := svc.Submit(context.Background(), "asg-1", SubmitAssignmentRequest{StudentID: "stu-1", Content: "late work"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestSubmitRequiresActiveEnrollment(t *testing.T) {
	repo := &fakeAssignmentRepo{assignments: map[string]*models.Assignment{
		"asg-1": activeAssignment("asg-1", "crs-1", time.Now().Add(time.Hour)),
	}}
	svc := newAssignmentService(repo, &fakeEnrollmentRepo{})

	_, err := svc.Submit(context.Background(), "asg-1", SubmitAssignmentRequest{StudentID: "stu-1", Content: "work"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestGradeSubmission(t *testing.T) {
	repo := &fakeAssignmentRepo{
		assignments: map[string]*models.Assignment{
			"asg-1": activeAssignment("asg-1", "crs-1", time.Now()),
		},
		submissions: map[string]*models.Submission{
			subKey("asg-1", "stu-1"): {AssignmentID: "asg-1", StudentID: "stu-1", Status: models.SubmissionStatusSubmitted},
		},
	}
	svc := newAssignmentService(repo, &fakeEnrollmentRepo{})

	submission, err := svc.Grade(context.Background(), "asg-1", GradeSubmissionRequest{StudentID: "stu-1", Score: 88})
	require.NoError(t, err)
	require.NotNil(t, submission.Score)
	assert.Equal(t, 88.0, *submission.Score)
	assert.Equal(t, models.SubmissionStatusGraded, submission.Status)
	require.NotNil(t, submission.GradedAt)

	// Re-grading overwrites the previous score.
	submission, err = svc.Grade(context.Background(), "asg-1", GradeSubmissionRequest{StudentID: "stu-1", Score: 91})
	require.NoError(t, err)
	assert.Equal(t, 91.0, *submission.Score)
	assert.Len(t, repo.submissions, 1)
}

func TestGradeWithoutSubmissionRejected(t *testing.T) {
	repo := &fakeAssignmentRepo{assignments: map[string]*models.Assignment{
		"asg-1": activeAssignment("asg-1", "crs-1", time.Now()),
	}}
	svc := newAssignmentService(repo, &fakeEnrollmentRepo{})

	_, err := svc.Grade(context.Background(), "asg-1", GradeSubmissionRequest{StudentID: "stu-1", Score: 80})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGradeScoreBounds(t *testing.T) {
	repo := &fakeAssignmentRepo{
		assignments: map[string]*models.Assignment{
			"asg-1": activeAssignment("asg-1", "crs-1", time.Now()),
		},
		submissions: map[string]*models.Submission{
			subKey("asg-1", "stu-1"): {AssignmentID: "asg-1", StudentID: "stu-1", Status: models.SubmissionStatusSubmitted},
		},
	}
	svc := newAssignmentService(repo, &fakeEnrollmentRepo{})

	_, err := svc.Grade(context.Background(), "asg-1", GradeSubmissionRequest{StudentID: "stu-1", Score: 101})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScoreOutOfRange.Code, appErrors.FromError(err).Code)
}

func TestAverageScore(t *testing.T) {
	score80, score90 := 80.0, 90.0
	repo := &fakeAssignmentRepo{
		assignments: map[string]*models.Assignment{
			"asg-1": activeAssignment("asg-1", "crs-1", time.Now()),
		},
		submissions: map[string]*models.Submission{
			subKey("asg-1", "stu-1"): {AssignmentID: "asg-1", StudentID: "stu-1", Status: models.SubmissionStatusGraded, Score: &score80},
			subKey("asg-1", "stu-2"): {AssignmentID: "asg-1", StudentID: "stu-2", Status: models.SubmissionStatusGraded, Score: &score90},
			subKey("asg-1", "stu-3"): {AssignmentID: "asg-1", StudentID: "stu-3", Status: models.SubmissionStatusSubmitted},
		},
	}
	svc := newAssignmentService(repo, &fakeEnrollmentRepo{})

	average, err := svc.AverageScore(context.Background(), "asg-1")
	require.NoError(t, err)
	assert.InDelta(t, 85.0, average, 1e-9)
}
