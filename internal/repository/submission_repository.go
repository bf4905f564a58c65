package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chumcred/academy-lmp-api/internal/models"
)

// SubmissionRepository handles submission persistence. The unique index on
// (assignment_id, user_id) is what makes Upsert race-safe: two concurrent
// first submissions cannot produce two rows.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Upsert inserts a submission or, when a row for (assignment_id, user_id)
// already exists, overwrites file_path, text_response and submitted_at in
// place. Grade, feedback, graded_at and graded_by are never touched here.
func (r *SubmissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO submissions (id, assignment_id, user_id, file_path, text_response, submitted_at)
        VALUES (:id, :assignment_id, :user_id, :file_path, :text_response, :submitted_at)
        ON CONFLICT (assignment_id, user_id)
        DO UPDATE SET file_path = EXCLUDED.file_path, text_response = EXCLUDED.text_response, submitted_at = EXCLUDED.submitted_at`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

// FindByID returns a submission by identifier.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	const query = `SELECT id, assignment_id, user_id, file_path, text_response, submitted_at, grade, feedback, graded_at, graded_by FROM submissions WHERE id = $1 LIMIT 1`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission by id: %w", err)
	}
	return &submission, nil
}

// FindByAssignmentAndUser returns the unique submission for the pair.
func (r *SubmissionRepository) FindByAssignmentAndUser(ctx context.Context, assignmentID, userID string) (*models.Submission, error) {
	const query = `SELECT id, assignment_id, user_id, file_path, text_response, submitted_at, grade, feedback, graded_at, graded_by FROM submissions WHERE assignment_id = $1 AND user_id = $2 LIMIT 1`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, assignmentID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission by assignment and user: %w", err)
	}
	return &submission, nil
}

// Grade records the grading triple, unconditionally replacing any prior
// grade. No history is kept.
func (r *SubmissionRepository) Grade(ctx context.Context, id string, grade float64, feedback *string, gradedBy string, gradedAt time.Time) error {
	const query = `UPDATE submissions SET grade = $2, feedback = $3, graded_at = $4, graded_by = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, grade, feedback, gradedAt, gradedBy)
	if err != nil {
		return fmt.Errorf("grade submission: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListUngraded returns the grading queue: submissions without a grade joined
// with assignment title, week number and submitter name, most recent first.
func (r *SubmissionRepository) ListUngraded(ctx context.Context) ([]models.SubmissionDetail, error) {
	const query = `SELECT s.id, s.assignment_id, s.user_id, s.file_path, s.text_response, s.submitted_at, s.grade, s.feedback, s.graded_at, s.graded_by,
            a.title AS assignment_title, m.week_number, u.full_name AS student_name
        FROM submissions s
        JOIN assignments a ON s.assignment_id = a.id
        JOIN modules m ON a.module_id = m.id
        JOIN users u ON s.user_id = u.id
        WHERE s.grade IS NULL
        ORDER BY s.submitted_at DESC`
	var details []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list ungraded submissions: %w", err)
	}
	return details, nil
}

// ListByUser returns a student's submissions joined with assignment and week
// context, ordered by week.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID string) ([]models.SubmissionDetail, error) {
	const query = `SELECT s.id, s.assignment_id, s.user_id, s.file_path, s.text_response, s.submitted_at, s.grade, s.feedback, s.graded_at, s.graded_by,
            a.title AS assignment_title, m.week_number, u.full_name AS student_name
        FROM submissions s
        JOIN assignments a ON s.assignment_id = a.id
        JOIN modules m ON a.module_id = m.id
        JOIN users u ON s.user_id = u.id
        WHERE s.user_id = $1
        ORDER BY m.week_number`
	var details []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &details, query, userID); err != nil {
		return nil, fmt.Errorf("list user submissions: %w", err)
	}
	return details, nil
}

// ListAll returns every submission with assignment and student context,
// ordered by student then week. Used for the grading export.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]models.SubmissionDetail, error) {
	const query = `SELECT s.id, s.assignment_id, s.user_id, s.file_path, s.text_response, s.submitted_at, s.grade, s.feedback, s.graded_at, s.graded_by,
            a.title AS assignment_title, m.week_number, u.full_name AS student_name
        FROM submissions s
        JOIN assignments a ON s.assignment_id = a.id
        JOIN modules m ON a.module_id = m.id
        JOIN users u ON s.user_id = u.id
        ORDER BY u.full_name, m.week_number`
	var details []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list all submissions: %w", err)
	}
	return details, nil
}
