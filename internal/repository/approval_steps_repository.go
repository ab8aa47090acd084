package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/thezig/be-sow-service/internal/apperr"
	"github.com/thezig/be-sow-service/internal/database"
	"github.com/thezig/be-sow-service/internal/domain"
)

// ApprovalStepsRepository handles CRUD for the static ordered approval-step
// configuration consumed by the chain evaluator.
type ApprovalStepsRepository struct {
	db *database.DB
}

// NewApprovalStepsRepository creates a new ApprovalStepsRepository.
func NewApprovalStepsRepository(db *database.DB) *ApprovalStepsRepository {
	return &ApprovalStepsRepository{db: db}
}

// List returns all steps in ascending step order.
func (r *ApprovalStepsRepository) List(ctx context.Context) ([]domain.ApprovalStep, error) {
	query := `
		SELECT id, step_order, role, department, min_approvers, threshold,
		       created_at, updated_at
		FROM approval_steps
		ORDER BY step_order ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list approval steps")
	}
	defer rows.Close()

	var steps []domain.ApprovalStep
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// GetByID retrieves a step by primary key.
func (r *ApprovalStepsRepository) GetByID(ctx context.Context, id string) (*domain.ApprovalStep, error) {
	query := `
		SELECT id, step_order, role, department, min_approvers, threshold,
		       created_at, updated_at
		FROM approval_steps
		WHERE id = $1
	`

	step, err := scanStep(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("approval_step", id)
	}
	if err != nil {
		return nil, err
	}
	return &step, nil
}

// Create inserts a new step. Step order must be unique.
func (r *ApprovalStepsRepository) Create(ctx context.Context, step *domain.ApprovalStep) error {
	query := `
		INSERT INTO approval_steps (step_order, role, department, min_approvers, threshold)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		step.Order,
		step.Role,
		step.Department,
		step.MinApprovers,
		step.Threshold,
	).Scan(&step.ID, &step.CreatedAt, &step.UpdatedAt)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create approval step")
	}
	return nil
}

// Update persists changes to an existing step.
func (r *ApprovalStepsRepository) Update(ctx context.Context, step *domain.ApprovalStep) error {
	query := `
		UPDATE approval_steps
		SET step_order    = $2,
		    role          = $3,
		    department    = $4,
		    min_approvers = $5,
		    threshold     = $6,
		    updated_at    = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		step.ID,
		step.Order,
		step.Role,
		step.Department,
		step.MinApprovers,
		step.Threshold,
	).Scan(&step.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("approval_step", step.ID)
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to update approval step")
	}
	return nil
}

// Delete removes a step from the configuration.
func (r *ApprovalStepsRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM approval_steps WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to delete approval step")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("approval_step", id)
	}
	return nil
}

// ── scan helper ──────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStep(row rowScanner) (domain.ApprovalStep, error) {
	var step domain.ApprovalStep
	err := row.Scan(
		&step.ID,
		&step.Order,
		&step.Role,
		&step.Department,
		&step.MinApprovers,
		&step.Threshold,
		&step.CreatedAt,
		&step.UpdatedAt,
	)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return step, apperr.Wrap(err, apperr.CodeInternal, "failed to scan approval step")
	}
	return step, err
}
