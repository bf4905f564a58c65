package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/chumcred/academy-lmp-api/internal/models"
	appErrors "github.com/chumcred/academy-lmp-api/pkg/errors"
)

const moduleListCacheKey = "content:modules"

type contentModuleRepo interface {
	List(ctx context.Context) ([]models.Module, error)
	FindByID(ctx context.Context, id string) (*models.Module, error)
	FindByWeek(ctx context.Context, week int) (*models.Module, error)
	Create(ctx context.Context, module *models.Module) error
}

type contentAssignmentRepo interface {
	List(ctx context.Context) ([]models.AssignmentWithWeek, error)
	ListByModule(ctx context.Context, moduleID string) ([]models.Assignment, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
}

// CreateModuleRequest adds a new curriculum week.
type CreateModuleRequest struct {
	WeekNumber  int     `json:"week_number" validate:"required,min=1"`
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// CreateAssignmentRequest adds an assignment to an existing module.
type CreateAssignmentRequest struct {
	ModuleID string     `json:"module_id" validate:"required"`
	Title    string     `json:"title" validate:"required"`
	Prompt   *string    `json:"prompt,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

// ContentService exposes the curriculum surfaces: modules and their
// assignments. Listings are cached; mutations invalidate.
type ContentService struct {
	modules     contentModuleRepo
	assignments contentAssignmentRepo
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewContentService constructs ContentService.
func NewContentService(modules contentModuleRepo, assignments contentAssignmentRepo, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{
		modules:     modules,
		assignments: assignments,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// ListModules returns all modules ordered by week number.
func (s *ContentService) ListModules(ctx context.Context) ([]models.Module, error) {
	var cached []models.Module
	if hit, err := s.cache.Get(ctx, moduleListCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	modules, err := s.modules.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list modules")
	}
	_ = s.cache.Set(ctx, moduleListCacheKey, modules, 0)
	return modules, nil
}

// GetModule returns a single module by id.
func (s *ContentService) GetModule(ctx context.Context, id string) (*models.Module, error) {
	module, err := s.modules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load module")
	}
	return module, nil
}

// CreateModule registers a new curriculum week. Week numbers are unique.
func (s *ContentService) CreateModule(ctx context.Context, req CreateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}

	if existing, err := s.modules.FindByWeek(ctx, req.WeekNumber); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("week %d already exists", req.WeekNumber))
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check week")
	}

	module := &models.Module{
		WeekNumber:  req.WeekNumber,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.modules.Create(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create module")
	}

	_ = s.cache.Invalidate(ctx, moduleListCacheKey)
	s.logger.Info("module created",
		zap.String("module_id", module.ID),
		zap.Int("week_number", module.WeekNumber))
	return module, nil
}

// ListAssignments returns all assignments joined with their week numbers.
func (s *ContentService) ListAssignments(ctx context.Context) ([]models.AssignmentWithWeek, error) {
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list assignments")
	}
	return assignments, nil
}

// ListModuleAssignments returns the assignments for one module.
func (s *ContentService) ListModuleAssignments(ctx context.Context, moduleID string) ([]models.Assignment, error) {
	assignments, err := s.assignments.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list module assignments")
	}
	return assignments, nil
}

// GetAssignment returns a single assignment by id.
func (s *ContentService) GetAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load assignment")
	}
	return assignment, nil
}

// CreateAssignment attaches an assignment to an existing module.
func (s *ContentService) CreateAssignment(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.modules.FindByID(ctx, req.ModuleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load module")
	}

	assignment := &models.Assignment{
		ModuleID: req.ModuleID,
		Title:    req.Title,
		Prompt:   req.Prompt,
		DueDate:  req.DueDate,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create assignment")
	}

	s.logger.Info("assignment created",
		zap.String("assignment_id", assignment.ID),
		zap.String("module_id", assignment.ModuleID))
	return assignment, nil
}
