package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chumcred/academy-lmp-api/internal/models"
)

type mockSubmissionRepo struct {
	byPair    map[string]*models.Submission
	upsertErr error
	ungraded  []models.SubmissionDetail
	byUser    map[string][]models.SubmissionDetail
}

func pairKey(assignmentID, userID string) string {
	return assignmentID + "|" + userID
}

func (m *mockSubmissionRepo) Upsert(ctx context.Context, submission *models.Submission) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.byPair == nil {
		m.byPair = make(map[string]*models.Submission)
	}
	key := pairKey(submission.AssignmentID, submission.UserID)
	if existing, ok := m.byPair[key]; ok {
		// Mirrors the conflict clause: replace content fields, keep grade.
		existing.FilePath = submission.FilePath
		existing.TextResponse = submission.TextResponse
		existing.SubmittedAt = time.Now().UTC()
		return nil
	}
	submission.ID = "sub-" + key
	submission.SubmittedAt = time.Now().UTC()
	m.byPair[key] = submission
	return nil
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	for _, s := range m.byPair {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubmissionRepo) FindByAssignmentAndUser(ctx context.Context, assignmentID, userID string) (*models.Submission, error) {
	if s, ok := m.byPair[pairKey(assignmentID, userID)]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubmissionRepo) Grade(ctx context.Context, id string, grade float64, feedback *string, gradedBy string, gradedAt time.Time) error {
	for _, s := range m.byPair {
		if s.ID == id {
			s.Grade = &grade
			s.Feedback = feedback
			s.GradedBy = &gradedBy
			s.GradedAt = &gradedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockSubmissionRepo) ListUngraded(ctx context.Context) ([]models.SubmissionDetail, error) {
	return m.ungraded, nil
}

func (m *mockSubmissionRepo) ListByUser(ctx context.Context, userID string) ([]models.SubmissionDetail, error) {
	return m.byUser[userID], nil
}

func (m *mockSubmissionRepo) ListAll(ctx context.Context) ([]models.SubmissionDetail, error) {
	var all []models.SubmissionDetail
	for _, details := range m.byUser {
		all = append(all, details...)
	}
	return all, nil
}

type mockAssignmentReader struct {
	assignments map[string]*models.Assignment
}

func (m *mockAssignmentReader) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

type mockUserReader struct {
	users map[string]*models.User
}

func (m *mockUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func submissionFixture() (*SubmissionService, *mockSubmissionRepo) {
	repo := &mockSubmissionRepo{}
	assignments := &mockAssignmentReader{assignments: map[string]*models.Assignment{
		"asg1": {ID: "asg1", ModuleID: "mod1", Title: "Week 1 Assignment"},
	}}
	users := &mockUserReader{users: map[string]*models.User{
		"stu1":   {ID: "stu1", FullName: "Ada Obi", Role: models.RoleStudent, Active: true},
		"frozen": {ID: "frozen", FullName: "Gone Person", Role: models.RoleStudent, Active: false},
		"adm1":   {ID: "adm1", FullName: "Admin", Role: models.RoleAdmin, Active: true},
	}}
	svc := NewSubmissionService(repo, assignments, users, validator.New(), zap.NewNop())
	return svc, repo
}

func TestSubmissionUpsertCreatesThenReplacesKeepingGrade(t *testing.T) {
	svc, repo := submissionFixture()
	ctx := context.Background()

	text := "first attempt"
	first, err := svc.Upsert(ctx, UpsertSubmissionRequest{
		AssignmentID: "asg1", UserID: "stu1", TextResponse: &text,
	})
	require.NoError(t, err)
	require.NotNil(t, first.TextResponse)
	assert.Equal(t, "first attempt", *first.TextResponse)
	assert.Nil(t, first.Grade)

	// Grade the work, then resubmit. The grade must survive.
	graded, err := svc.Grade(ctx, GradeSubmissionRequest{
		SubmissionID: first.ID, Grade: 85, GraderID: "adm1",
	})
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)

	revised := "second attempt"
	second, err := svc.Upsert(ctx, UpsertSubmissionRequest{
		AssignmentID: "asg1", UserID: "stu1", TextResponse: &revised,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "second attempt", *second.TextResponse)
	require.NotNil(t, second.Grade)
	assert.Equal(t, 85.0, *second.Grade)
	assert.Len(t, repo.byPair, 1)
}

func TestSubmissionUpsertRequiresContent(t *testing.T) {
	svc, _ := submissionFixture()

	_, err := svc.Upsert(context.Background(), UpsertSubmissionRequest{
		AssignmentID: "asg1", UserID: "stu1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file or a text response")
}

func TestSubmissionUpsertUnknownAssignment(t *testing.T) {
	svc, _ := submissionFixture()

	text := "x"
	_, err := svc.Upsert(context.Background(), UpsertSubmissionRequest{
		AssignmentID: "missing", UserID: "stu1", TextResponse: &text,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assignment not found")
}

func TestSubmissionUpsertInactiveUser(t *testing.T) {
	svc, _ := submissionFixture()

	text := "x"
	_, err := svc.Upsert(context.Background(), UpsertSubmissionRequest{
		AssignmentID: "asg1", UserID: "frozen", TextResponse: &text,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}

func TestSubmissionGradeValidatesRange(t *testing.T) {
	svc, _ := submissionFixture()

	_, err := svc.Grade(context.Background(), GradeSubmissionRequest{
		SubmissionID: "sub1", Grade: 101, GraderID: "adm1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 100")
}

func TestSubmissionGradeReplacesPreviousGrade(t *testing.T) {
	svc, _ := submissionFixture()
	ctx := context.Background()

	text := "work"
	sub, err := svc.Upsert(ctx, UpsertSubmissionRequest{
		AssignmentID: "asg1", UserID: "stu1", TextResponse: &text,
	})
	require.NoError(t, err)

	feedback := "needs detail"
	_, err = svc.Grade(ctx, GradeSubmissionRequest{
		SubmissionID: sub.ID, Grade: 55, Feedback: &feedback, GraderID: "adm1",
	})
	require.NoError(t, err)

	regraded, err := svc.Grade(ctx, GradeSubmissionRequest{
		SubmissionID: sub.ID, Grade: 72, GraderID: "adm1",
	})
	require.NoError(t, err)
	require.NotNil(t, regraded.Grade)
	assert.Equal(t, 72.0, *regraded.Grade)
	assert.Nil(t, regraded.Feedback)
}

func TestSubmissionExportCSV(t *testing.T) {
	svc, repo := submissionFixture()

	grade := 85.0
	detail := models.SubmissionDetail{
		AssignmentTitle: "Week 1 Assignment",
		WeekNumber:      1,
		StudentName:     "Ada Obi",
	}
	detail.SubmittedAt = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	detail.Grade = &grade
	repo.byUser = map[string][]models.SubmissionDetail{"stu1": {detail}}

	payload, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)

	csv := string(payload)
	assert.Contains(t, csv, "student,week,assignment,submitted_at,grade,feedback")
	assert.Contains(t, csv, "Ada Obi,1,Week 1 Assignment,2026-08-01T12:00:00Z,85,")
}

func TestSubmissionGradeUnknownSubmission(t *testing.T) {
	svc, _ := submissionFixture()

	_, err := svc.Grade(context.Background(), GradeSubmissionRequest{
		SubmissionID: "nope", Grade: 50, GraderID: "adm1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submission not found")
}
