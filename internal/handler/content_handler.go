package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chumcred/academy-lmp-api/internal/service"
	appErrors "github.com/chumcred/academy-lmp-api/pkg/errors"
	"github.com/chumcred/academy-lmp-api/pkg/response"
)

// ContentHandler exposes the curriculum: modules and assignments.
type ContentHandler struct {
	content   *service.ContentService
	materials *service.MaterialService
}

// NewContentHandler creates a new handler.
func NewContentHandler(content *service.ContentService, materials *service.MaterialService) *ContentHandler {
	return &ContentHandler{content: content, materials: materials}
}

// ListModules godoc
// @Summary List modules
// @Description List curriculum weeks ordered by week number
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /modules [get]
func (h *ContentHandler) ListModules(c *gin.Context) {
	modules, err := h.content.ListModules(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

// GetModule godoc
// @Summary Get module
// @Tags Content
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /modules/{id} [get]
func (h *ContentHandler) GetModule(c *gin.Context) {
	module, err := h.content.GetModule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

// CreateModule godoc
// @Summary Create module
// @Description Add a curriculum week; week numbers are unique
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body service.CreateModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /modules [post]
func (h *ContentHandler) CreateModule(c *gin.Context) {
	var req service.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
		return
	}

	module, err := h.content.CreateModule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, module)
}

// ListModuleMaterials godoc
// @Summary List module materials
// @Tags Content
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /modules/{id}/materials [get]
func (h *ContentHandler) ListModuleMaterials(c *gin.Context) {
	materials, err := h.materials.ListByModule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, nil)
}

// ListModuleAssignments godoc
// @Summary List module assignments
// @Tags Content
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /modules/{id}/assignments [get]
func (h *ContentHandler) ListModuleAssignments(c *gin.Context) {
	assignments, err := h.content.ListModuleAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// ListAssignments godoc
// @Summary List all assignments
// @Description List assignments joined with their week numbers
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments [get]
func (h *ContentHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.content.ListAssignments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// CreateAssignment godoc
// @Summary Create assignment
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments [post]
func (h *ContentHandler) CreateAssignment(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.content.CreateAssignment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, assignment)
}
