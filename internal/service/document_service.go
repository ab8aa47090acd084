package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/thezig/be-sow-service/internal/apperr"
	"github.com/thezig/be-sow-service/internal/domain"
	"github.com/thezig/be-sow-service/internal/metrics"
)

// DocumentStore is the persistence surface the document service needs.
type DocumentStore interface {
	Create(ctx context.Context, doc *domain.SOWDocument) error
	GetByID(ctx context.Context, id string) (*domain.SOWDocument, error)
	List(ctx context.Context, status *domain.Status, limit, offset int) ([]*domain.SOWDocument, int64, error)
	SaveTransition(ctx context.Context, doc *domain.SOWDocument, newApprovals []domain.Approval, newHistory []domain.HistoryEntry) error
}

// StepStore provides the approval-step configuration.
type StepStore interface {
	List(ctx context.Context) ([]domain.ApprovalStep, error)
	GetByID(ctx context.Context, id string) (*domain.ApprovalStep, error)
	Create(ctx context.Context, step *domain.ApprovalStep) error
	Update(ctx context.Context, step *domain.ApprovalStep) error
	Delete(ctx context.Context, id string) error
}

// HistoryStore reads the audit trail.
type HistoryStore interface {
	GetByDocumentID(ctx context.Context, documentID string) ([]domain.HistoryEntry, error)
	ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

// ApproverDirectory resolves approvers from the user directory.
type ApproverDirectory interface {
	GetApprover(ctx context.Context, userID string) (domain.Approver, bool)
}

// EventSink publishes document lifecycle events. Implementations never fail
// the calling operation.
type EventSink interface {
	PublishDocumentEvent(eventType, documentID, actorID string, payload map[string]any)
}

// Event types forwarded to the sink.
const (
	eventSubmitted  = "document_submitted"
	eventApproved   = "document_approved"
	eventRejected   = "document_rejected"
	eventOverridden = "status_overridden"
)

// DocumentService orchestrates the SOW document lifecycle: creation, the
// approval chain, status transitions and the audit trail.
//
// Transitions are deliberately lenient. The status machine records whatever
// it is told and the service does not re-guard; an out-of-order action
// succeeds and leaves an audit entry. Tightening this is a product decision,
// not a bug fix.
type DocumentService struct {
	docs      DocumentStore
	steps     StepStore
	history   HistoryStore
	directory ApproverDirectory
	events    EventSink
	log       zerolog.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	docs DocumentStore,
	steps StepStore,
	history HistoryStore,
	directory ApproverDirectory,
	events EventSink,
	log zerolog.Logger,
) *DocumentService {
	return &DocumentService{
		docs:      docs,
		steps:     steps,
		history:   history,
		directory: directory,
		events:    events,
		log:       log,
	}
}

// CreateDocumentRequest carries the fields for a new draft.
type CreateDocumentRequest struct {
	Title      string         `json:"title"`
	ClientName string         `json:"client_name"`
	Value      int64          `json:"value"`
	Content    map[string]any `json:"content,omitempty"`
	CreatedBy  string         `json:"created_by"`
}

// Create validates and persists a new draft document.
func (s *DocumentService) Create(ctx context.Context, req *CreateDocumentRequest) (*domain.SOWDocument, error) {
	if req.Title == "" {
		return nil, apperr.InvalidInput("title", "title is required")
	}
	if req.ClientName == "" {
		return nil, apperr.InvalidInput("client_name", "client name is required")
	}
	if req.Value < 0 {
		return nil, apperr.InvalidInput("value", "value cannot be negative")
	}

	now := time.Now().UTC()
	doc := &domain.SOWDocument{
		Title:      req.Title,
		ClientName: req.ClientName,
		Value:      req.Value,
		Status:     domain.StatusDraft,
		Content:    req.Content,
		History: []domain.HistoryEntry{
			{Timestamp: now, UserID: req.CreatedBy, Action: domain.ActionCreated},
		},
	}
	if req.CreatedBy != "" {
		doc.CreatedBy = &req.CreatedBy
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("document_id", doc.ID).
		Str("client", doc.ClientName).
		Int64("value", doc.Value).
		Msg("SOW document created")

	return doc, nil
}

// Get retrieves a document with approvals and history.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.SOWDocument, error) {
	return s.docs.GetByID(ctx, id)
}

// List returns documents with optional status filtering and pagination.
func (s *DocumentService) List(ctx context.Context, status *domain.Status, page, pageSize int) ([]*domain.SOWDocument, int64, error) {
	if status != nil && !status.Valid() {
		return nil, 0, apperr.InvalidInput("status", "unknown status value")
	}
	offset := (page - 1) * pageSize
	return s.docs.List(ctx, status, pageSize, offset)
}

// Submit moves a document into review and points it at the first approval step.
func (s *DocumentService) Submit(ctx context.Context, id, userID string) (*domain.SOWDocument, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err = s.transition(ctx, doc, func(d *domain.SOWDocument) {
		d.Submit(userID, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	metrics.DocumentTransitions.WithLabelValues(domain.ActionSubmitted).Inc()
	s.events.PublishDocumentEvent(eventSubmitted, doc.ID, userID, map[string]any{"value": doc.Value})
	s.log.Info().
		Str("document_id", doc.ID).
		Str("submitted_by", userID).
		Msg("SOW submitted for approval")

	return doc, nil
}

// Approve records an approval and recomputes the pending approval step.
//
// The document-level status flips to approved on the FIRST approval while the
// document is pending_review, even though the chain evaluator may still have
// unsatisfied steps. That mismatch is long-standing observed behavior and is
// kept as-is; CurrentApprovalStep continues to track the evaluator's real
// progress so callers can see both signals.
func (s *DocumentService) Approve(ctx context.Context, id, userID string, comment *string) (*domain.SOWDocument, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	evaluator, err := s.evaluator(ctx)
	if err != nil {
		return nil, err
	}

	doc, err = s.transition(ctx, doc, func(d *domain.SOWDocument) {
		d.Approve(userID, comment, time.Now().UTC())

		if idx, pending := evaluator.CurrentStep(d.Value, d.Approvals); pending {
			d.CurrentApprovalStep = &idx
		} else {
			d.CurrentApprovalStep = nil
			metrics.ApprovalChainComplete.Inc()
		}
	})
	if err != nil {
		return nil, err
	}

	chainComplete := doc.CurrentApprovalStep == nil
	metrics.DocumentTransitions.WithLabelValues(domain.ActionApproved).Inc()
	s.events.PublishDocumentEvent(eventApproved, doc.ID, userID, map[string]any{
		"chain_complete": chainComplete,
	})
	s.log.Info().
		Str("document_id", doc.ID).
		Str("approved_by", userID).
		Bool("chain_complete", chainComplete).
		Msg("SOW approval recorded")

	return doc, nil
}

// Reject rejects the document from any status, recording the rejecting approval.
func (s *DocumentService) Reject(ctx context.Context, id, userID string, comment *string) (*domain.SOWDocument, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err = s.transition(ctx, doc, func(d *domain.SOWDocument) {
		d.Reject(userID, comment, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	metrics.DocumentTransitions.WithLabelValues(domain.ActionRejected).Inc()
	s.events.PublishDocumentEvent(eventRejected, doc.ID, userID, nil)
	s.log.Info().
		Str("document_id", doc.ID).
		Str("rejected_by", userID).
		Msg("SOW rejected")

	return doc, nil
}

// OverrideStatus is the administrative escape hatch: it sets any status,
// bypassing the transition rules, under its own audit action.
func (s *DocumentService) OverrideStatus(ctx context.Context, id, userID string, status domain.Status) (*domain.SOWDocument, error) {
	if !status.Valid() {
		return nil, apperr.InvalidInput("status", "unknown status value")
	}

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := doc.Status
	doc, err = s.transition(ctx, doc, func(d *domain.SOWDocument) {
		d.OverrideStatus(userID, status, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	metrics.DocumentTransitions.WithLabelValues(domain.ActionStatusUpdated).Inc()
	s.events.PublishDocumentEvent(eventOverridden, doc.ID, userID, map[string]any{
		"from": from,
		"to":   status,
	})
	s.log.Warn().
		Str("document_id", doc.ID).
		Str("user_id", userID).
		Str("from", string(from)).
		Str("to", string(status)).
		Msg("SOW status overridden administratively")

	return doc, nil
}

// History returns the audit trail for a document, oldest first.
func (s *DocumentService) History(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	if _, err := s.docs.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.history.GetByDocumentID(ctx, id)
}

// RecentActivity returns the newest audit entries across all documents.
func (s *DocumentService) RecentActivity(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	return s.history.ListRecent(ctx, limit)
}

// ── Step configuration passthroughs ──────────────────────────────────────────

// ListSteps returns the ordered approval-step configuration.
func (s *DocumentService) ListSteps(ctx context.Context) ([]domain.ApprovalStep, error) {
	return s.steps.List(ctx)
}

// CreateStep adds a step to the configuration.
func (s *DocumentService) CreateStep(ctx context.Context, step *domain.ApprovalStep) error {
	if step.Role == "" {
		return apperr.InvalidInput("role", "role is required")
	}
	if step.MinApprovers < 1 {
		step.MinApprovers = 1
	}
	return s.steps.Create(ctx, step)
}

// UpdateStep modifies an existing step.
func (s *DocumentService) UpdateStep(ctx context.Context, step *domain.ApprovalStep) error {
	if _, err := s.steps.GetByID(ctx, step.ID); err != nil {
		return err
	}
	return s.steps.Update(ctx, step)
}

// DeleteStep removes a step from the configuration.
func (s *DocumentService) DeleteStep(ctx context.Context, id string) error {
	return s.steps.Delete(ctx, id)
}

// ── internals ────────────────────────────────────────────────────────────────

// evaluator builds a chain evaluator over the live step configuration and the
// approver directory.
func (s *DocumentService) evaluator(ctx context.Context) (domain.ChainEvaluator, error) {
	steps, err := s.steps.List(ctx)
	if err != nil {
		return domain.ChainEvaluator{}, err
	}
	resolve := func(userID string) (domain.Approver, bool) {
		return s.directory.GetApprover(ctx, userID)
	}
	return domain.NewChainEvaluator(steps, resolve), nil
}

// transition applies fn to the document and persists exactly the approvals
// and history entries the transition appended.
func (s *DocumentService) transition(
	ctx context.Context,
	doc *domain.SOWDocument,
	fn func(*domain.SOWDocument),
) (*domain.SOWDocument, error) {
	approvalsBefore := len(doc.Approvals)
	historyBefore := len(doc.History)

	fn(doc)

	err := s.docs.SaveTransition(ctx, doc,
		doc.Approvals[approvalsBefore:],
		doc.History[historyBefore:],
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
