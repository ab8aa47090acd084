package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/thezig/be-sow-service/internal/apperr"
	"github.com/thezig/be-sow-service/internal/database"
	"github.com/thezig/be-sow-service/internal/domain"
)

// ProjectRepository persists projects. Team, milestones and risks are stored
// as JSONB documents alongside the budget columns.
type ProjectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project derived from an approved SOW.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	teamJSON, err := json.Marshal(p.Team)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to marshal project team")
	}
	milestonesJSON, err := json.Marshal(p.Milestones)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to marshal project milestones")
	}
	risksJSON, err := json.Marshal(p.Risks)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to marshal project risks")
	}

	query := `
		INSERT INTO projects
		    (sow_id, name, budget_total, budget_allocated, budget_remaining,
		     team, milestones, risks, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRow(ctx, query,
		p.SOWID,
		p.Name,
		p.Budget.Total,
		p.Budget.Allocated,
		p.Budget.Remaining,
		teamJSON,
		milestonesJSON,
		risksJSON,
		p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create project")
	}
	return nil
}

// GetByID retrieves a project by primary key.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `
		SELECT id, sow_id, name, budget_total, budget_allocated, budget_remaining,
		       team, milestones, risks, created_by, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("project", id)
	}
	return p, err
}

// List returns projects newest-first with a total count.
func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]*domain.Project, int64, error) {
	query := `
		SELECT id, sow_id, name, budget_total, budget_allocated, budget_remaining,
		       team, milestones, risks, created_by, created_at, updated_at,
		       COUNT(*) OVER() AS total
		FROM projects
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(err, apperr.CodeInternal, "failed to list projects")
	}
	defer rows.Close()

	var projects []*domain.Project
	var total int64
	for rows.Next() {
		p := &domain.Project{}
		var teamJSON, milestonesJSON, risksJSON []byte
		err := rows.Scan(
			&p.ID, &p.SOWID, &p.Name,
			&p.Budget.Total, &p.Budget.Allocated, &p.Budget.Remaining,
			&teamJSON, &milestonesJSON, &risksJSON,
			&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, apperr.Wrap(err, apperr.CodeInternal, "failed to scan project")
		}
		if err := unmarshalProjectFields(p, teamJSON, milestonesJSON, risksJSON); err != nil {
			return nil, 0, err
		}
		projects = append(projects, p)
	}
	return projects, total, nil
}

// GetBySOWID returns the project created from a SOW, or nil when none exists.
func (r *ProjectRepository) GetBySOWID(ctx context.Context, sowID string) (*domain.Project, error) {
	query := `
		SELECT id, sow_id, name, budget_total, budget_allocated, budget_remaining,
		       team, milestones, risks, created_by, created_at, updated_at
		FROM projects
		WHERE sow_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	p, err := scanProject(r.db.QueryRow(ctx, query, sowID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ── scan helpers ─────────────────────────────────────────────────────────────

func scanProject(row rowScanner) (*domain.Project, error) {
	p := &domain.Project{}
	var teamJSON, milestonesJSON, risksJSON []byte

	err := row.Scan(
		&p.ID, &p.SOWID, &p.Name,
		&p.Budget.Total, &p.Budget.Allocated, &p.Budget.Remaining,
		&teamJSON, &milestonesJSON, &risksJSON,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalProjectFields(p, teamJSON, milestonesJSON, risksJSON); err != nil {
		return nil, err
	}
	return p, nil
}

func unmarshalProjectFields(p *domain.Project, teamJSON, milestonesJSON, risksJSON []byte) error {
	if err := json.Unmarshal(teamJSON, &p.Team); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to unmarshal project team")
	}
	if err := json.Unmarshal(milestonesJSON, &p.Milestones); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to unmarshal project milestones")
	}
	if err := json.Unmarshal(risksJSON, &p.Risks); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to unmarshal project risks")
	}
	return nil
}
