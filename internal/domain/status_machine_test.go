package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftDoc() *SOWDocument {
	return &SOWDocument{
		ID:     "sow-1",
		Title:  "Platform Build-Out",
		Value:  12000000,
		Status: StatusDraft,
	}
}

func TestSubmitMovesDraftToPendingReview(t *testing.T) {
	doc := draftDoc()
	now := time.Now()

	doc.Submit("u-author", now)

	assert.Equal(t, StatusPendingReview, doc.Status)
	require.NotNil(t, doc.CurrentApprovalStep)
	assert.Equal(t, 0, *doc.CurrentApprovalStep)
	require.Len(t, doc.History, 1)
	assert.Equal(t, ActionSubmitted, doc.History[0].Action)
	assert.Equal(t, "u-author", doc.History[0].UserID)
	assert.Equal(t, now, doc.UpdatedAt)
}

func TestApproveFlipsStatusOnFirstApprovalWhilePendingReview(t *testing.T) {
	doc := draftDoc()
	doc.Submit("u-author", time.Now())

	// The document-level status flips on the first approval event, not when
	// the chain evaluator reports all steps satisfied.
	doc.Approve("u-eng", nil, time.Now())
	assert.Equal(t, StatusApproved, doc.Status)
	require.Len(t, doc.Approvals, 1)
	assert.Equal(t, ApprovalApproved, doc.Approvals[0].Status)
}

func TestApproveAppendsHistoryEvenWhenStatusUnchanged(t *testing.T) {
	doc := draftDoc()
	doc.Submit("u-author", time.Now())
	doc.Approve("u-eng", nil, time.Now())
	require.Equal(t, StatusApproved, doc.Status)

	doc.Approve("u-fin", ptrStr("finance sign-off"), time.Now())

	assert.Equal(t, StatusApproved, doc.Status)
	assert.Len(t, doc.Approvals, 2)
	require.Len(t, doc.History, 3)
	assert.Equal(t, ActionApproved, doc.History[2].Action)
	assert.Equal(t, "u-fin", doc.History[2].UserID)
}

func TestRejectIsUnconditional(t *testing.T) {
	doc := draftDoc()
	doc.Status = StatusFullyExecuted // terminal, and reject still goes through

	doc.Reject("u-legal", ptrStr("contract dispute"), time.Now())

	assert.Equal(t, StatusRejected, doc.Status)
	require.Len(t, doc.Approvals, 1)
	assert.Equal(t, ApprovalRejected, doc.Approvals[0].Status)
	require.Len(t, doc.History, 1)
	assert.Equal(t, ActionRejected, doc.History[0].Action)
}

func TestOverrideStatusRecordsOldAndNew(t *testing.T) {
	doc := draftDoc()
	doc.Status = StatusApproved

	doc.OverrideStatus("u-admin", StatusTheZigSigned, time.Now())

	assert.Equal(t, StatusTheZigSigned, doc.Status)
	require.Len(t, doc.History, 1)
	assert.Equal(t, ActionStatusUpdated, doc.History[0].Action)
	require.NotNil(t, doc.History[0].Details)
	assert.Equal(t, "from approved to the_zig_signed", *doc.History[0].Details)
}

func TestHistoryIsAppendOnly(t *testing.T) {
	doc := draftDoc()

	var snapshots [][]HistoryEntry
	record := func() {
		snap := make([]HistoryEntry, len(doc.History))
		copy(snap, doc.History)
		snapshots = append(snapshots, snap)
	}

	record()
	doc.Submit("u-author", time.Now())
	record()
	doc.Approve("u-eng", nil, time.Now())
	record()
	doc.Reject("u-legal", nil, time.Now())
	record()
	doc.OverrideStatus("u-admin", StatusCancelled, time.Now())
	record()

	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1], snapshots[i]
		require.Len(t, cur, len(prev)+1, "each transition appends exactly one entry")
		assert.Equal(t, prev, cur[:len(prev)], "prior entries are untouched")
	}
}

func TestStatusValidityAndTerminality(t *testing.T) {
	assert.True(t, StatusTheZigSigned.Valid())
	assert.False(t, Status("archived").Valid())

	terminal := []Status{StatusFullyExecuted, StatusRejected, StatusCancelled}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), string(s))
	}
	for s := range allStatuses {
		switch s {
		case StatusFullyExecuted, StatusRejected, StatusCancelled:
		default:
			assert.False(t, s.Terminal(), string(s))
		}
	}
}
