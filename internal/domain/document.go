package domain

import "time"

// ── Document lifecycle ────────────────────────────────────────────────────────

// Status is the canonical lifecycle state of a SOW document. Some list views
// collapse this set down to draft/pending_review/approved/completed/rejected;
// that is a display concern, not a second state machine.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusInReview      Status = "in_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusTheZigSigned  Status = "the_zig_signed"
	StatusClientSigned  Status = "client_signed"
	StatusFullyExecuted Status = "fully_executed"
	StatusCancelled     Status = "cancelled"
)

// allStatuses is the closed set accepted on input.
var allStatuses = map[Status]bool{
	StatusDraft:         true,
	StatusPendingReview: true,
	StatusInReview:      true,
	StatusApproved:      true,
	StatusRejected:      true,
	StatusTheZigSigned:  true,
	StatusClientSigned:  true,
	StatusFullyExecuted: true,
	StatusCancelled:     true,
}

// Valid reports whether s is a member of the canonical status set.
func (s Status) Valid() bool { return allStatuses[s] }

// Terminal reports whether no further transitions are expected from s.
func (s Status) Terminal() bool {
	return s == StatusFullyExecuted || s == StatusRejected || s == StatusCancelled
}

// ── Approvals ─────────────────────────────────────────────────────────────────

// ApprovalStatus is the state of a single approval record.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Approval is one approval decision recorded against a document. Its step
// membership is derived by matching the approver's role/department against the
// step configuration, never stored on the approval itself.
type Approval struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Status    ApprovalStatus `json:"status"`
	Comment   *string        `json:"comment,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ApprovalStep is one entry in the static ordered approval-step configuration.
// A step applies to a document only when the document value meets or exceeds
// Threshold; steps without a threshold always apply.
type ApprovalStep struct {
	ID           string    `json:"id,omitempty"`
	Order        int       `json:"order"`
	Role         string    `json:"role"`
	Department   *string   `json:"department,omitempty"`
	MinApprovers int       `json:"min_approvers"`
	Threshold    *int64    `json:"threshold,omitempty"` // cents
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// Approver is the slice of the user directory the approval chain reads.
type Approver struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// ── History ───────────────────────────────────────────────────────────────────

// History actions recorded by the status machine.
const (
	ActionCreated       = "created"
	ActionSubmitted     = "submitted_for_approval"
	ActionApproved      = "approved"
	ActionRejected      = "rejected"
	ActionStatusUpdated = "status_updated"
)

// HistoryEntry is one immutable record in a document's audit trail.
type HistoryEntry struct {
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   *string   `json:"details,omitempty"`
}

// ── Document ──────────────────────────────────────────────────────────────────

// SOWDocument is a statement of work moving through the approval lifecycle.
// Value is in cents. Version is bumped on every persisted update and doubles
// as an optimistic-concurrency token. Content is opaque template data.
type SOWDocument struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	ClientName          string         `json:"client_name"`
	Value               int64          `json:"value"`
	Status              Status         `json:"status"`
	CurrentApprovalStep *int           `json:"current_approval_step,omitempty"`
	Approvals           []Approval     `json:"approvals"`
	History             []HistoryEntry `json:"history"`
	Content             map[string]any `json:"content,omitempty"`
	Version             int            `json:"version"`
	CreatedBy           *string        `json:"created_by,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}
