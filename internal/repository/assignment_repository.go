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

// AssignmentRepository handles assignment persistence. Assignments are never
// deleted in this design.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns all assignments joined with their module week number, ordered
// by week.
func (r *AssignmentRepository) List(ctx context.Context) ([]models.AssignmentWithWeek, error) {
	const query = `SELECT a.id, a.module_id, a.title, a.prompt, a.due_date, a.created_at, m.week_number
        FROM assignments a
        JOIN modules m ON a.module_id = m.id
        ORDER BY m.week_number, a.created_at`
	var assignments []models.AssignmentWithWeek
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ListByModule returns a module's assignments in creation order.
func (r *AssignmentRepository) ListByModule(ctx context.Context, moduleID string) ([]models.Assignment, error) {
	const query = `SELECT id, module_id, title, prompt, due_date, created_at FROM assignments WHERE module_id = $1 ORDER BY created_at, id`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, moduleID); err != nil {
		return nil, fmt.Errorf("list module assignments: %w", err)
	}
	return assignments, nil
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, module_id, title, prompt, due_date, created_at FROM assignments WHERE id = $1 LIMIT 1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by id: %w", err)
	}
	return &assignment, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, module_id, title, prompt, due_date, created_at) VALUES (:id, :module_id, :title, :prompt, :due_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}
