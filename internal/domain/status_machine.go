package domain

import "time"

// The status machine is deliberately permissive: no transition returns an
// error, and an out-of-order call (for example rejecting a fully executed
// document) still succeeds and records history. Callers that need stricter
// behavior gate on Status/Terminal before calling.

// appendHistory records one immutable entry and bumps UpdatedAt. History is
// append-only; prior entries are never modified or reordered.
func (d *SOWDocument) appendHistory(now time.Time, userID, action string, details *string) {
	d.History = append(d.History, HistoryEntry{
		Timestamp: now,
		UserID:    userID,
		Action:    action,
		Details:   details,
	})
	d.UpdatedAt = now
}

// Submit moves a draft into pending_review and points the document at the
// first applicable approval step.
func (d *SOWDocument) Submit(userID string, now time.Time) {
	d.Status = StatusPendingReview
	first := 0
	d.CurrentApprovalStep = &first
	d.appendHistory(now, userID, ActionSubmitted, nil)
}

// Approve records an approval from userID. The document-level status flips to
// approved on the first approval event while the document is pending_review;
// this intentionally does not wait for the chain evaluator's all-steps-satisfied
// signal; the document service documents that decision where it calls Approve.
// An approved history entry is appended whether or not the status changed.
func (d *SOWDocument) Approve(userID string, comment *string, now time.Time) {
	d.Approvals = append(d.Approvals, Approval{
		UserID:    userID,
		Status:    ApprovalApproved,
		Comment:   comment,
		CreatedAt: now,
	})
	if d.Status == StatusPendingReview {
		d.Status = StatusApproved
	}
	d.appendHistory(now, userID, ActionApproved, comment)
}

// Reject moves the document to rejected from any status, recording the
// rejecting approval. There is no guard on the current status.
func (d *SOWDocument) Reject(userID string, comment *string, now time.Time) {
	d.Approvals = append(d.Approvals, Approval{
		UserID:    userID,
		Status:    ApprovalRejected,
		Comment:   comment,
		CreatedAt: now,
	})
	d.Status = StatusRejected
	d.appendHistory(now, userID, ActionRejected, comment)
}

// OverrideStatus is the administrative escape hatch: it sets any status value,
// bypassing every transition rule, and leaves a status_updated audit entry
// naming the old and new status.
func (d *SOWDocument) OverrideStatus(userID string, status Status, now time.Time) {
	details := "from " + string(d.Status) + " to " + string(status)
	d.Status = status
	d.appendHistory(now, userID, ActionStatusUpdated, &details)
}
