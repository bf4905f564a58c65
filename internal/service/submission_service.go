package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/chumcred/academy-lmp-api/internal/models"
	appErrors "github.com/chumcred/academy-lmp-api/pkg/errors"
	"github.com/chumcred/academy-lmp-api/pkg/export"
)

type submissionRepo interface {
	Upsert(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByAssignmentAndUser(ctx context.Context, assignmentID, userID string) (*models.Submission, error)
	Grade(ctx context.Context, id string, grade float64, feedback *string, gradedBy string, gradedAt time.Time) error
	ListUngraded(ctx context.Context) ([]models.SubmissionDetail, error)
	ListByUser(ctx context.Context, userID string) ([]models.SubmissionDetail, error)
	ListAll(ctx context.Context) ([]models.SubmissionDetail, error)
}

type assignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
}

type submissionUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// UpsertSubmissionRequest captures a student's submit/resubmit payload. The
// file bytes, if any, are persisted by the storage collaborator before this
// request is built; only the resulting path string travels here.
type UpsertSubmissionRequest struct {
	AssignmentID string  `json:"assignment_id" validate:"required"`
	UserID       string  `json:"-" validate:"required"`
	FilePath     *string `json:"file_path,omitempty"`
	TextResponse *string `json:"text_response,omitempty"`
}

// GradeSubmissionRequest records a grading decision.
type GradeSubmissionRequest struct {
	SubmissionID string  `json:"-" validate:"required"`
	Grade        float64 `json:"grade" validate:"min=0,max=100"`
	Feedback     *string `json:"feedback,omitempty"`
	GraderID     string  `json:"-" validate:"required"`
}

// SubmissionService orchestrates the submission lifecycle: create-or-replace
// submits, the grading workflow and the grading queue.
type SubmissionService struct {
	submissions submissionRepo
	assignments assignmentReader
	users       submissionUserReader
	exporter    *export.CSVExporter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubmissionService constructs SubmissionService.
func NewSubmissionService(submissions submissionRepo, assignments assignmentReader, users submissionUserReader, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		submissions: submissions,
		assignments: assignments,
		users:       users,
		exporter:    export.NewCSVExporter(),
		validator:   validate,
		logger:      logger,
	}
}

// Upsert records a submission. A resubmission overwrites file path, text
// response and submitted_at on the existing row; an existing grade and its
// feedback survive untouched until a grader revisits the work.
func (s *SubmissionService) Upsert(ctx context.Context, req UpsertSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if req.FilePath == nil && req.TextResponse == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a file or a text response is required")
	}

	if _, err := s.assignments.FindByID(ctx, req.AssignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	submission := &models.Submission{
		AssignmentID: req.AssignmentID,
		UserID:       req.UserID,
		FilePath:     req.FilePath,
		TextResponse: req.TextResponse,
	}
	if err := s.submissions.Upsert(ctx, submission); err != nil {
		if isUniqueViolation(err) {
			// The unique index caught a concurrent first submission; the row
			// exists now, so surface a conflict the caller can retry.
			return nil, appErrors.Clone(appErrors.ErrConflict, "submission already exists, retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save submission")
	}

	stored, err := s.submissions.FindByAssignmentAndUser(ctx, req.AssignmentID, req.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return stored, nil
}

// Get returns the unique submission for an (assignment, user) pair.
func (s *SubmissionService) Get(ctx context.Context, assignmentID, userID string) (*models.Submission, error) {
	submission, err := s.submissions.FindByAssignmentAndUser(ctx, assignmentID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return submission, nil
}

// Grade sets the grading triple, silently replacing any previous grade.
func (s *SubmissionService) Grade(ctx context.Context, req GradeSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "grade must be between 0 and 100")
	}

	grader, err := s.users.FindByID(ctx, req.GraderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grader not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grader")
	}

	gradedAt := time.Now().UTC()
	if err := s.submissions.Grade(ctx, req.SubmissionID, req.Grade, req.Feedback, grader.ID, gradedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade submission")
	}

	stored, err := s.submissions.FindByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return stored, nil
}

// ListUngraded returns the grading queue, most recent submission first.
func (s *SubmissionService) ListUngraded(ctx context.Context) ([]models.SubmissionDetail, error) {
	details, err := s.submissions.ListUngraded(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ungraded submissions")
	}
	return details, nil
}

// ListByUser returns a student's submissions with assignment context.
func (s *SubmissionService) ListByUser(ctx context.Context, userID string) ([]models.SubmissionDetail, error) {
	details, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list user submissions")
	}
	return details, nil
}

// ExportCSV renders every submission as a CSV grading sheet.
func (s *SubmissionService) ExportCSV(ctx context.Context) ([]byte, error) {
	details, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	dataset := export.Dataset{
		Headers: []string{"student", "week", "assignment", "submitted_at", "grade", "feedback"},
	}
	for _, d := range details {
		row := map[string]string{
			"student":      d.StudentName,
			"week":         strconv.Itoa(d.WeekNumber),
			"assignment":   d.AssignmentTitle,
			"submitted_at": d.SubmittedAt.Format(time.RFC3339),
		}
		if d.Grade != nil {
			row["grade"] = strconv.FormatFloat(*d.Grade, 'f', -1, 64)
		}
		if d.Feedback != nil {
			row["feedback"] = *d.Feedback
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	payload, err := s.exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return payload, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
