package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chumcred/academy-lmp-api/internal/service"
	appErrors "github.com/chumcred/academy-lmp-api/pkg/errors"
	"github.com/chumcred/academy-lmp-api/pkg/response"
	"github.com/chumcred/academy-lmp-api/pkg/storage"
)

// SubmissionHandler wires the submission lifecycle: student submits, the
// grading queue and grading itself.
type SubmissionHandler struct {
	service     *service.SubmissionService
	metrics     *service.MetricsService
	store       *storage.LocalStorage
	signer      *storage.SignedURLSigner
	maxFileSize int64
}

// NewSubmissionHandler creates a new handler.
func NewSubmissionHandler(svc *service.SubmissionService, metrics *service.MetricsService, store *storage.LocalStorage, signer *storage.SignedURLSigner, maxFileSize int64) *SubmissionHandler {
	return &SubmissionHandler{service: svc, metrics: metrics, store: store, signer: signer, maxFileSize: maxFileSize}
}

// Submit godoc
// @Summary Submit assignment work
// @Description Create or replace the caller's submission for an assignment.
// @Description Resubmitting replaces the content; an existing grade survives.
// @Tags Submissions
// @Accept mpfd
// @Produce json
// @Param assignment_id formData string true "Assignment ID"
// @Param text_response formData string false "Text response"
// @Param file formData file false "Uploaded work"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := service.UpsertSubmissionRequest{
		AssignmentID: c.PostForm("assignment_id"),
		UserID:       claims.UserID,
	}
	if text := c.PostForm("text_response"); text != "" {
		req.TextResponse = &text
	}
	if fileHeader, err := c.FormFile("file"); err == nil {
		if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum upload size"))
			return
		}
		src, err := fileHeader.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
			return
		}
		defer src.Close() //nolint:errcheck

		name := fmt.Sprintf("submissions/%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))
		path, err := h.store.SaveStream(name, src)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload"))
			return
		}
		req.FilePath = &path
	}

	submission, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordSubmission("rejected")
		response.Error(c, err)
		return
	}

	h.metrics.RecordSubmission("accepted")
	response.JSON(c, http.StatusOK, submission, nil)
}

// Mine godoc
// @Summary List own submissions
// @Description List the caller's submissions with assignment context
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/mine [get]
func (h *SubmissionHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	details, err := h.service.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// GetForAssignment godoc
// @Summary Get own submission for an assignment
// @Tags Submissions
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments/{id}/submission [get]
func (h *SubmissionHandler) GetForAssignment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	submission, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Queue godoc
// @Summary Grading queue
// @Description List ungraded submissions, most recent first
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/ungraded [get]
func (h *SubmissionHandler) Queue(c *gin.Context) {
	details, err := h.service.ListUngraded(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// Grade godoc
// @Summary Grade submission
// @Description Record a grade in [0,100] with optional feedback; re-grading replaces silently
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body service.GradeSubmissionRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id}/grade [post]
func (h *SubmissionHandler) Grade(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}
	req.SubmissionID = c.Param("id")
	req.GraderID = claims.UserID

	submission, err := h.service.Grade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordGrade()
	response.JSON(c, http.StatusOK, submission, nil)
}

// ExportCSV godoc
// @Summary Export grading sheet
// @Description Download every submission with grades as CSV
// @Tags Submissions
// @Produce text/csv
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /submissions/export [get]
func (h *SubmissionHandler) ExportCSV(c *gin.Context) {
	payload, err := h.service.ExportCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="grading_sheet.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// DownloadURL godoc
// @Summary Issue download URL for a submission file
// @Tags Submissions
// @Produce json
// @Param id path string true "Assignment ID"
// @Param user_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments/{id}/submissions/{user_id}/download-url [get]
func (h *SubmissionHandler) DownloadURL(c *gin.Context) {
	submission, err := h.service.Get(c.Request.Context(), c.Param("id"), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if submission.FilePath == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "submission has no file"))
		return
	}

	token, expiresAt, err := h.signer.Generate(submission.ID, *submission.FilePath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"url":        fmt.Sprintf("/files/download?token=%s", token),
		"expires_at": expiresAt,
	}, nil)
}
