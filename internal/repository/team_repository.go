package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/thezig/be-sow-service/internal/apperr"
	"github.com/thezig/be-sow-service/internal/database"
	"github.com/thezig/be-sow-service/internal/domain"
)

const teamPoolCacheKey = "sow:team:pool"

// TeamRepository reads the team-member and approver directories. The member
// pool is read on every staffing operation, so it goes through an optional
// Redis read-through cache; cache failures degrade to the database.
type TeamRepository struct {
	db       *database.DB
	cache    *redis.Client
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewTeamRepository creates a new TeamRepository. cache may be nil.
func NewTeamRepository(db *database.DB, cache *redis.Client, cacheTTL time.Duration, log zerolog.Logger) *TeamRepository {
	return &TeamRepository{db: db, cache: cache, cacheTTL: cacheTTL, log: log}
}

// ListMembers returns the full team-member pool.
func (r *TeamRepository) ListMembers(ctx context.Context) ([]domain.TeamMember, error) {
	if cached, ok := r.cachedPool(ctx); ok {
		return cached, nil
	}

	query := `
		SELECT id, name, hourly_rate, availability, skills
		FROM team_members
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list team members")
	}
	defer rows.Close()

	members := []domain.TeamMember{}
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.HourlyRate, &m.Availability, &m.Skills); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan team member")
		}
		members = append(members, m)
	}

	r.storePool(ctx, members)
	return members, nil
}

// GetMember returns a single team member by id.
func (r *TeamRepository) GetMember(ctx context.Context, id string) (*domain.TeamMember, error) {
	query := `
		SELECT id, name, hourly_rate, availability, skills
		FROM team_members
		WHERE id = $1
	`
	var m domain.TeamMember
	err := r.db.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.HourlyRate, &m.Availability, &m.Skills)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("team_member", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get team member")
	}
	return &m, nil
}

// GetApprover resolves a user in the approver directory. The boolean mirrors
// the domain.ApproverResolver contract: false means unknown user, not an error.
func (r *TeamRepository) GetApprover(ctx context.Context, userID string) (domain.Approver, bool) {
	query := `SELECT id, role, department FROM approvers WHERE id = $1`

	var a domain.Approver
	err := r.db.QueryRow(ctx, query, userID).Scan(&a.ID, &a.Role, &a.Department)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.log.Warn().Err(err).Str("user_id", userID).Msg("Approver lookup failed")
		}
		return domain.Approver{}, false
	}
	return a, true
}

// InvalidatePool drops the cached member pool, for callers that mutate the
// directory out of band.
func (r *TeamRepository) InvalidatePool(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, teamPoolCacheKey).Err(); err != nil {
		r.log.Warn().Err(err).Msg("Failed to invalidate team pool cache")
	}
}

// ── cache helpers ────────────────────────────────────────────────────────────

func (r *TeamRepository) cachedPool(ctx context.Context) ([]domain.TeamMember, bool) {
	if r.cache == nil {
		return nil, false
	}

	data, err := r.cache.Get(ctx, teamPoolCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Msg("Team pool cache read failed")
		}
		return nil, false
	}

	var members []domain.TeamMember
	if err := json.Unmarshal(data, &members); err != nil {
		r.log.Warn().Err(err).Msg("Team pool cache entry corrupt; ignoring")
		return nil, false
	}
	return members, true
}

func (r *TeamRepository) storePool(ctx context.Context, members []domain.TeamMember) {
	if r.cache == nil {
		return
	}

	data, err := json.Marshal(members)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, teamPoolCacheKey, data, r.cacheTTL).Err(); err != nil {
		r.log.Warn().Err(err).Msg("Team pool cache write failed")
	}
}
