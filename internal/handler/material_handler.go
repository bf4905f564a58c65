package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chumcred/academy-lmp-api/internal/models"
	"github.com/chumcred/academy-lmp-api/internal/service"
	appErrors "github.com/chumcred/academy-lmp-api/pkg/errors"
	"github.com/chumcred/academy-lmp-api/pkg/response"
	"github.com/chumcred/academy-lmp-api/pkg/storage"
)

// MaterialHandler exposes the material lifecycle: add, edit, delete and
// signed downloads for file-kind materials.
type MaterialHandler struct {
	service     *service.MaterialService
	store       *storage.LocalStorage
	signer      *storage.SignedURLSigner
	maxFileSize int64
}

// NewMaterialHandler creates a new handler.
func NewMaterialHandler(svc *service.MaterialService, store *storage.LocalStorage, signer *storage.SignedURLSigner, maxFileSize int64) *MaterialHandler {
	return &MaterialHandler{service: svc, store: store, signer: signer, maxFileSize: maxFileSize}
}

// Add godoc
// @Summary Add material
// @Description Attach a link or an uploaded file to a module (multipart form)
// @Tags Materials
// @Accept mpfd
// @Produce json
// @Param module_id formData string true "Module ID"
// @Param title formData string true "Title"
// @Param kind formData string true "link or file"
// @Param url formData string false "URL for link materials"
// @Param file formData file false "Upload for file materials"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /materials [post]
func (h *MaterialHandler) Add(c *gin.Context) {
	req := service.AddMaterialRequest{
		ModuleID: c.PostForm("module_id"),
		Title:    c.PostForm("title"),
		Kind:     models.MaterialKind(c.PostForm("kind")),
	}

	switch req.Kind {
	case models.MaterialKindLink:
		req.PathOrURL = c.PostForm("url")
	case models.MaterialKindFile:
		path, err := h.storeUpload(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		req.PathOrURL = path
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kind must be link or file"))
		return
	}

	material, err := h.service.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, material)
}

// Update godoc
// @Summary Update material
// @Description Partial edit: title always applies, kind and path only when sent
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param payload body service.UpdateMaterialRequest true "Material payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /materials/{id} [patch]
func (h *MaterialHandler) Update(c *gin.Context) {
	var req service.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid material payload"))
		return
	}
	req.MaterialID = c.Param("id")

	material, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, material, nil)
}

// Delete godoc
// @Summary Delete material
// @Description Remove a material; file-kind uploads are removed best effort
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadURL godoc
// @Summary Issue download URL
// @Description Issue a short-lived signed URL for a file-kind material
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /materials/{id}/download-url [get]
func (h *MaterialHandler) DownloadURL(c *gin.Context) {
	material, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if material.Kind != models.MaterialKindFile {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "material is a link, open path_or_url directly"))
		return
	}

	token, expiresAt, err := h.signer.Generate(material.ID, material.PathOrURL)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"url":        fmt.Sprintf("/files/download?token=%s", token),
		"expires_at": expiresAt,
	}, nil)
}

func (h *MaterialHandler) storeUpload(c *gin.Context) (string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "file upload required for file materials")
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return "", appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum upload size")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer src.Close() //nolint:errcheck

	name := fmt.Sprintf("materials/%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))
	path, err := h.store.SaveStream(name, src)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}
	return path, nil
}
