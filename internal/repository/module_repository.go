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

// ModuleRepository handles curriculum module persistence.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository creates a new module repository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// List returns all modules ordered by week number.
func (r *ModuleRepository) List(ctx context.Context) ([]models.Module, error) {
	const query = `SELECT id, week_number, title, description, created_at FROM modules ORDER BY week_number`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// FindByID returns a module by identifier.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.Module, error) {
	const query = `SELECT id, week_number, title, description, created_at FROM modules WHERE id = $1 LIMIT 1`
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find module by id: %w", err)
	}
	return &module, nil
}

// FindByWeek returns the module for a given week number.
func (r *ModuleRepository) FindByWeek(ctx context.Context, week int) (*models.Module, error) {
	const query = `SELECT id, week_number, title, description, created_at FROM modules WHERE week_number = $1 LIMIT 1`
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, week); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find module by week: %w", err)
	}
	return &module, nil
}

// Count returns the total number of module rows.
func (r *ModuleRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM modules`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count modules: %w", err)
	}
	return total, nil
}

// Create inserts a new module.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	if module.CreatedAt.IsZero() {
		module.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO modules (id, week_number, title, description, created_at) VALUES (:id, :week_number, :title, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}
