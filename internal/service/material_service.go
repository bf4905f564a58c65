package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/chumcred/academy-lmp-api/internal/models"
	appErrors "github.com/chumcred/academy-lmp-api/pkg/errors"
)

type materialRepo interface {
	ListByModule(ctx context.Context, moduleID string) ([]models.Material, error)
	FindByID(ctx context.Context, id string) (*models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, id, title string, kind *models.MaterialKind, pathOrURL *string) error
	Delete(ctx context.Context, id string) error
}

type materialModuleReader interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
}

// fileRemover deletes a stored upload by its path. Removal is best effort;
// a missing file is not an error.
type fileRemover interface {
	Delete(filename string) error
}

// AddMaterialRequest attaches a new resource to a module. For link materials
// PathOrURL carries the URL; for file materials the handler stores the upload
// first and passes the resulting path.
type AddMaterialRequest struct {
	ModuleID  string              `json:"module_id" validate:"required"`
	Title     string              `json:"title" validate:"required"`
	Kind      models.MaterialKind `json:"kind" validate:"required,oneof=link file"`
	PathOrURL string              `json:"path_or_url" validate:"required"`
}

// UpdateMaterialRequest edits a material. Title is always applied; kind and
// path are applied only when present in the payload.
type UpdateMaterialRequest struct {
	MaterialID string               `json:"-" validate:"required"`
	Title      string               `json:"title" validate:"required"`
	Kind       *models.MaterialKind `json:"kind,omitempty" validate:"omitempty,oneof=link file"`
	PathOrURL  *string              `json:"path_or_url,omitempty"`
}

// MaterialService manages the study material lifecycle for modules.
type MaterialService struct {
	materials materialRepo
	modules   materialModuleReader
	files     fileRemover
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMaterialService constructs MaterialService.
func NewMaterialService(materials materialRepo, modules materialModuleReader, files fileRemover, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MaterialService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{
		materials: materials,
		modules:   modules,
		files:     files,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

func materialCacheKey(moduleID string) string {
	return fmt.Sprintf("content:materials:%s", moduleID)
}

// ListByModule returns the materials attached to a module, newest last,
// served from cache when possible.
func (s *MaterialService) ListByModule(ctx context.Context, moduleID string) ([]models.Material, error) {
	key := materialCacheKey(moduleID)
	var cached []models.Material
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	materials, err := s.materials.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list materials")
	}
	_ = s.cache.Set(ctx, key, materials, 0)
	return materials, nil
}

// Add creates a new material after confirming the target module exists.
func (s *MaterialService) Add(ctx context.Context, req AddMaterialRequest) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}

	if _, err := s.modules.FindByID(ctx, req.ModuleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load module")
	}

	material := &models.Material{
		ModuleID:  req.ModuleID,
		Title:     req.Title,
		Kind:      req.Kind,
		PathOrURL: req.PathOrURL,
	}
	if err := s.materials.Create(ctx, material); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create material")
	}

	_ = s.cache.Invalidate(ctx, materialCacheKey(req.ModuleID))
	s.logger.Info("material added",
		zap.String("material_id", material.ID),
		zap.String("module_id", material.ModuleID),
		zap.String("kind", string(material.Kind)))
	return material, nil
}

// Update applies a partial edit and returns the stored row.
func (s *MaterialService) Update(ctx context.Context, req UpdateMaterialRequest) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}

	if err := s.materials.Update(ctx, req.MaterialID, req.Title, req.Kind, req.PathOrURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update material")
	}

	material, err := s.materials.FindByID(ctx, req.MaterialID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "reload material")
	}

	_ = s.cache.Invalidate(ctx, materialCacheKey(material.ModuleID))
	return material, nil
}

// Delete removes a material. For file-kind materials the backing upload is
// removed best effort: a failed or missing file is logged as a warning and
// the row deletion still proceeds.
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	material, err := s.materials.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load material")
	}

	if material.Kind == models.MaterialKindFile && s.files != nil {
		if err := s.files.Delete(material.PathOrURL); err != nil {
			s.logger.Warn("material file removal failed",
				zap.String("material_id", material.ID),
				zap.String("path", material.PathOrURL),
				zap.Error(err))
		}
	}

	if err := s.materials.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete material")
	}

	_ = s.cache.Invalidate(ctx, materialCacheKey(material.ModuleID))
	s.logger.Info("material deleted", zap.String("material_id", id))
	return nil
}

// Get returns a single material by id.
func (s *MaterialService) Get(ctx context.Context, id string) (*models.Material, error) {
	material, err := s.materials.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load material")
	}
	return material, nil
}
