package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chumcred/academy-lmp-api/internal/models"
	"github.com/chumcred/academy-lmp-api/internal/service"
	appErrors "github.com/chumcred/academy-lmp-api/pkg/errors"
	"github.com/chumcred/academy-lmp-api/pkg/response"
)

// CertificateProvider abstracts the certificate service for testing.
type CertificateProvider interface {
	Eligibility(ctx context.Context, userID string) (*models.Eligibility, error)
	Certificate(ctx context.Context, userID string) (*service.Certificate, error)
}

// CertificateHandler exposes eligibility checks and certificate downloads.
type CertificateHandler struct {
	service CertificateProvider
}

// NewCertificateHandler creates a new handler.
func NewCertificateHandler(svc CertificateProvider) *CertificateHandler {
	return &CertificateHandler{service: svc}
}

// Eligibility godoc
// @Summary Certificate eligibility
// @Description Compute the caller's certificate eligibility on demand
// @Tags Certificates
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /certificates/eligibility [get]
func (h *CertificateHandler) Eligibility(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.Eligibility(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// EligibilityFor godoc
// @Summary Certificate eligibility for a student
// @Tags Certificates
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/eligibility [get]
func (h *CertificateHandler) EligibilityFor(c *gin.Context) {
	result, err := h.service.Eligibility(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download certificate
// @Description Render and download the completion certificate PDF
// @Tags Certificates
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /certificates/download [get]
func (h *CertificateHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	cert, err := h.service.Certificate(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+cert.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", cert.PDF)
}
