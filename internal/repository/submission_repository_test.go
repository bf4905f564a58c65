package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chumcred/academy-lmp-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestUpsertSubmissionPreservesGradeColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	// The conflict clause must only overwrite the resubmittable columns.
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (assignment_id, user_id)") + `\s+` +
		regexp.QuoteMeta("DO UPDATE SET file_path = EXCLUDED.file_path, text_response = EXCLUDED.text_response, submitted_at = EXCLUDED.submitted_at")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	submission := &models.Submission{
		AssignmentID: "a1",
		UserID:       "u1",
		TextResponse: strPtr("my write-up"),
	}
	err := repo.Upsert(context.Background(), submission)
	require.NoError(t, err)
	assert.NotEmpty(t, submission.ID)
	assert.False(t, submission.SubmittedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeSubmission(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	gradedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions SET grade = $2, feedback = $3, graded_at = $4, graded_by = $5 WHERE id = $1")).
		WithArgs("s1", 85.0, "well done", gradedAt, "admin-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Grade(context.Background(), "s1", 85.0, strPtr("well done"), "admin-1", gradedAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeSubmissionNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("UPDATE submissions SET grade").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Grade(context.Background(), "missing", 50.0, nil, "admin-1", time.Now())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUngradedOrdering(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "assignment_id", "user_id", "file_path", "text_response", "submitted_at",
		"grade", "feedback", "graded_at", "graded_by", "assignment_title", "week_number", "student_name",
	}).
		AddRow("s2", "a2", "u1", nil, "later", now, nil, nil, nil, nil, "Week 2 Assignment", 2, "Jane").
		AddRow("s1", "a1", "u1", nil, "earlier", now.Add(-time.Hour), nil, nil, nil, nil, "Week 1 Assignment", 1, "Jane")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.grade IS NULL") + `\s+` + regexp.QuoteMeta("ORDER BY s.submitted_at DESC")).
		WillReturnRows(rows)

	details, err := repo.ListUngraded(context.Background())
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "s2", details[0].ID)
	assert.Equal(t, 2, details[0].WeekNumber)
	assert.Equal(t, "Jane", details[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now()
	grade := 70.0
	rows := sqlmock.NewRows([]string{
		"id", "assignment_id", "user_id", "file_path", "text_response", "submitted_at",
		"grade", "feedback", "graded_at", "graded_by", "assignment_title", "week_number", "student_name",
	}).
		AddRow("s1", "a1", "u1", nil, "text", now, grade, "good", now, "admin-1", "Week 1 Assignment", 1, "Jane")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.user_id = $1") + `\s+` + regexp.QuoteMeta("ORDER BY m.week_number")).
		WithArgs("u1").
		WillReturnRows(rows)

	details, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].Grade)
	assert.Equal(t, 70.0, *details[0].Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}
