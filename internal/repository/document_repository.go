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

// DocumentRepository handles SOW document persistence. Approvals and history
// ride along with the document: GetByID always hydrates both, and
// SaveTransition persists a status-machine transition atomically.
type DocumentRepository struct {
	db *database.DB
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *database.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document together with its initial history entries.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.SOWDocument) error {
	return r.db.InTransaction(ctx, func(tx pgx.Tx) error {
		contentJSON, err := marshalContent(doc.Content)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO sow_documents (title, client_name, value, status, content, created_by)
			VALUES ($1, $2, $3, $4::sow_status, $5, $6)
			RETURNING id, version, created_at, updated_at
		`
		err = tx.QueryRow(ctx, query,
			doc.Title,
			doc.ClientName,
			doc.Value,
			doc.Status,
			contentJSON,
			doc.CreatedBy,
		).Scan(&doc.ID, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt)
		if err != nil {
			return apperr.Wrap(err, apperr.CodeInternal, "failed to create sow document")
		}

		return insertHistory(ctx, tx, doc.ID, doc.History)
	})
}

// GetByID retrieves a document with its approvals and full history.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.SOWDocument, error) {
	query := `
		SELECT id, title, client_name, value, status, current_approval_step,
		       content, version, created_by, created_at, updated_at
		FROM sow_documents
		WHERE id = $1
	`

	doc := &domain.SOWDocument{}
	var contentJSON []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.Title,
		&doc.ClientName,
		&doc.Value,
		&doc.Status,
		&doc.CurrentApprovalStep,
		&contentJSON,
		&doc.Version,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("sow_document", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get sow document")
	}

	if contentJSON != nil {
		if err := json.Unmarshal(contentJSON, &doc.Content); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to unmarshal sow content")
		}
	}

	if doc.Approvals, err = r.approvalsFor(ctx, id); err != nil {
		return nil, err
	}
	if doc.History, err = r.historyFor(ctx, id); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns documents filtered by status, newest first, with a total count.
// Listed documents carry no approvals or history; fetch by id for those.
func (r *DocumentRepository) List(ctx context.Context, status *domain.Status, limit, offset int) ([]*domain.SOWDocument, int64, error) {
	query := `
		SELECT id, title, client_name, value, status, current_approval_step,
		       version, created_by, created_at, updated_at,
		       COUNT(*) OVER() AS total
		FROM sow_documents
	`
	args := []any{}
	if status != nil {
		query += " WHERE status = $1::sow_status"
		args = append(args, *status)
	}
	query += " ORDER BY created_at DESC"
	if status != nil {
		query += " LIMIT $2 OFFSET $3"
	} else {
		query += " LIMIT $1 OFFSET $2"
	}
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Wrap(err, apperr.CodeInternal, "failed to list sow documents")
	}
	defer rows.Close()

	var docs []*domain.SOWDocument
	var total int64
	for rows.Next() {
		doc := &domain.SOWDocument{}
		err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.ClientName,
			&doc.Value,
			&doc.Status,
			&doc.CurrentApprovalStep,
			&doc.Version,
			&doc.CreatedBy,
			&doc.CreatedAt,
			&doc.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, apperr.Wrap(err, apperr.CodeInternal, "failed to scan sow document")
		}
		docs = append(docs, doc)
	}
	return docs, total, nil
}

// SaveTransition persists the outcome of a status-machine transition: the
// document row plus any approvals and history entries appended since load, in
// one transaction. The document's version acts as an optimistic-concurrency
// token; a concurrent writer surfaces as a conflict.
func (r *DocumentRepository) SaveTransition(
	ctx context.Context,
	doc *domain.SOWDocument,
	newApprovals []domain.Approval,
	newHistory []domain.HistoryEntry,
) error {
	return r.db.InTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE sow_documents
			SET status                = $3::sow_status,
			    current_approval_step = $4,
			    version               = version + 1,
			    updated_at            = $5
			WHERE id = $1 AND version = $2
			RETURNING version
		`
		err := tx.QueryRow(ctx, query,
			doc.ID,
			doc.Version,
			doc.Status,
			doc.CurrentApprovalStep,
			doc.UpdatedAt,
		).Scan(&doc.Version)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.Conflict("document was modified concurrently; reload and retry")
		}
		if err != nil {
			return apperr.Wrap(err, apperr.CodeInternal, "failed to update sow document")
		}

		approvalQuery := `
			INSERT INTO sow_approvals (document_id, user_id, status, comment, created_at)
			VALUES ($1, $2, $3::approval_status, $4, $5)
			RETURNING id
		`
		for i := range newApprovals {
			a := &newApprovals[i]
			err := tx.QueryRow(ctx, approvalQuery,
				doc.ID, a.UserID, a.Status, a.Comment, a.CreatedAt,
			).Scan(&a.ID)
			if err != nil {
				return apperr.Wrap(err, apperr.CodeInternal, "failed to record approval")
			}
		}

		return insertHistory(ctx, tx, doc.ID, newHistory)
	})
}

// ── internal loaders ─────────────────────────────────────────────────────────

func (r *DocumentRepository) approvalsFor(ctx context.Context, documentID string) ([]domain.Approval, error) {
	query := `
		SELECT id, user_id, status, comment, created_at
		FROM sow_approvals
		WHERE document_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to load approvals")
	}
	defer rows.Close()

	approvals := []domain.Approval{}
	for rows.Next() {
		var a domain.Approval
		if err := rows.Scan(&a.ID, &a.UserID, &a.Status, &a.Comment, &a.CreatedAt); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan approval")
		}
		approvals = append(approvals, a)
	}
	return approvals, nil
}

func (r *DocumentRepository) historyFor(ctx context.Context, documentID string) ([]domain.HistoryEntry, error) {
	query := `
		SELECT id, user_id, action, details, occurred_at
		FROM sow_history
		WHERE document_id = $1
		ORDER BY occurred_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to load history")
	}
	defer rows.Close()

	history := []domain.HistoryEntry{}
	for rows.Next() {
		var h domain.HistoryEntry
		if err := rows.Scan(&h.ID, &h.UserID, &h.Action, &h.Details, &h.Timestamp); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan history entry")
		}
		history = append(history, h)
	}
	return history, nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, documentID string, entries []domain.HistoryEntry) error {
	query := `
		INSERT INTO sow_history (document_id, user_id, action, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for i := range entries {
		h := &entries[i]
		err := tx.QueryRow(ctx, query,
			documentID, h.UserID, h.Action, h.Details, h.Timestamp,
		).Scan(&h.ID)
		if err != nil {
			return apperr.Wrap(err, apperr.CodeInternal, "failed to append history entry")
		}
	}
	return nil
}

func marshalContent(content map[string]any) ([]byte, error) {
	if content == nil {
		return nil, nil
	}
	data, err := json.Marshal(content)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to marshal sow content")
	}
	return data, nil
}
