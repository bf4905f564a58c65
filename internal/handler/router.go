package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/chumcred/academy-lmp-api/internal/middleware"
	"github.com/chumcred/academy-lmp-api/internal/models"
	"github.com/chumcred/academy-lmp-api/internal/service"
)

// Handlers aggregates the API surface for route registration.
type Handlers struct {
	Auth         *AuthHandler
	Users        *UserHandler
	Content      *ContentHandler
	Materials    *MaterialHandler
	Submissions  *SubmissionHandler
	Certificates *CertificateHandler
	Files        *FileHandler
	Metrics      *MetricsHandler
}

// RegisterRoutes attaches every endpoint to the engine. Routes under the
// prefix require a valid JWT except login; admin routes add an RBAC check.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/files/download", h.Files.Download)

	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(auth))

	authed.GET("/auth/me", h.Auth.Me)
	authed.POST("/auth/change-password", h.Auth.ChangePassword)

	authed.GET("/modules", h.Content.ListModules)
	authed.GET("/modules/:id", h.Content.GetModule)
	authed.GET("/modules/:id/materials", h.Content.ListModuleMaterials)
	authed.GET("/modules/:id/assignments", h.Content.ListModuleAssignments)
	authed.GET("/assignments", h.Content.ListAssignments)
	authed.GET("/materials/:id/download-url", h.Materials.DownloadURL)

	authed.POST("/submissions", h.Submissions.Submit)
	authed.GET("/submissions/mine", h.Submissions.Mine)
	authed.GET("/assignments/:id/submission", h.Submissions.GetForAssignment)

	authed.GET("/certificates/eligibility", h.Certificates.Eligibility)
	authed.GET("/certificates/download", h.Certificates.Download)

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	admin.GET("/users", h.Users.List)
	admin.POST("/users", h.Users.Create)
	admin.GET("/users/:id", h.Users.Get)
	admin.PATCH("/users/:id/active", h.Users.SetActive)
	admin.GET("/users/:id/eligibility", h.Certificates.EligibilityFor)

	admin.POST("/modules", h.Content.CreateModule)
	admin.POST("/assignments", h.Content.CreateAssignment)
	admin.POST("/materials", h.Materials.Add)
	admin.PATCH("/materials/:id", h.Materials.Update)
	admin.DELETE("/materials/:id", h.Materials.Delete)

	admin.GET("/submissions/ungraded", h.Submissions.Queue)
	admin.GET("/submissions/export", h.Submissions.ExportCSV)
	admin.POST("/submissions/:id/grade", h.Submissions.Grade)
	admin.GET("/assignments/:id/submissions/:user_id/download-url", h.Submissions.DownloadURL)
}
