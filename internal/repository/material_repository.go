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

// MaterialRepository handles study material persistence.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository creates a new material repository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// ListByModule returns the materials attached to a module in insertion order.
func (r *MaterialRepository) ListByModule(ctx context.Context, moduleID string) ([]models.Material, error) {
	const query = `SELECT id, module_id, title, kind, path_or_url, created_at FROM materials WHERE module_id = $1 ORDER BY created_at, id`
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, moduleID); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

// FindByID returns a material by identifier.
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*models.Material, error) {
	const query = `SELECT id, module_id, title, kind, path_or_url, created_at FROM materials WHERE id = $1 LIMIT 1`
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find material by id: %w", err)
	}
	return &material, nil
}

// ExistsTuple reports whether an identical material row already exists. The
// seeding engine uses this per-item check on every run.
func (r *MaterialRepository) ExistsTuple(ctx context.Context, moduleID, title string, kind models.MaterialKind, pathOrURL string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM materials WHERE module_id = $1 AND title = $2 AND kind = $3 AND path_or_url = $4)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, moduleID, title, kind, pathOrURL); err != nil {
		return false, fmt.Errorf("check material tuple: %w", err)
	}
	return exists, nil
}

// Create inserts a new material.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	if material.CreatedAt.IsZero() {
		material.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO materials (id, module_id, title, kind, path_or_url, created_at) VALUES (:id, :module_id, :title, :kind, :path_or_url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// Update applies a partial update. Title is always written; kind and path are
// written only when non-nil, so omission leaves the stored value unchanged.
func (r *MaterialRepository) Update(ctx context.Context, id, title string, kind *models.MaterialKind, pathOrURL *string) error {
	var (
		res sql.Result
		err error
	)
	switch {
	case kind == nil && pathOrURL == nil:
		res, err = r.db.ExecContext(ctx, `UPDATE materials SET title = $2 WHERE id = $1`, id, title)
	case kind == nil:
		res, err = r.db.ExecContext(ctx, `UPDATE materials SET title = $2, path_or_url = $3 WHERE id = $1`, id, title, *pathOrURL)
	case pathOrURL == nil:
		res, err = r.db.ExecContext(ctx, `UPDATE materials SET title = $2, kind = $3 WHERE id = $1`, id, title, *kind)
	default:
		res, err = r.db.ExecContext(ctx, `UPDATE materials SET title = $2, kind = $3, path_or_url = $4 WHERE id = $1`, id, title, *kind, *pathOrURL)
	}
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a material row.
func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM materials WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
