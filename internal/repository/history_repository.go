package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/thezig/be-sow-service/internal/apperr"
	"github.com/thezig/be-sow-service/internal/database"
	"github.com/thezig/be-sow-service/internal/domain"
)

// HistoryRepository reads the append-only document audit trail. Appends happen
// inside DocumentRepository transitions; the table carries a delete-prevention
// trigger so no mutation operations are exposed here.
type HistoryRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// GetByDocumentID returns the full audit trail for a document oldest-first.
func (r *HistoryRepository) GetByDocumentID(ctx context.Context, documentID string) ([]domain.HistoryEntry, error) {
	query := `
		SELECT id, user_id, action, details, occurred_at
		FROM sow_history
		WHERE document_id = $1
		ORDER BY occurred_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get document history")
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

// ListRecent returns the newest entries across all documents, for the
// activity feed.
func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	query := `
		SELECT id, user_id, action, details, occurred_at
		FROM sow_history
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list recent history")
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

func scanHistoryRows(rows pgx.Rows) ([]domain.HistoryEntry, error) {
	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var h domain.HistoryEntry
		if err := rows.Scan(&h.ID, &h.UserID, &h.Action, &h.Details, &h.Timestamp); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan history entry")
		}
		entries = append(entries, h)
	}
	return entries, nil
}
