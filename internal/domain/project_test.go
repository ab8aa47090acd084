package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectFromSOWBudgetInvariant(t *testing.T) {
	doc := &SOWDocument{ID: "sow-1", Title: "Platform Build-Out", Value: 10000000}
	pool := []TeamMember{
		{ID: "m-pm", Name: "Dana", HourlyRate: 12000},
		{ID: "m-dev", Name: "Lee", HourlyRate: 7500},
	}
	assignments := []Assignment{
		{Role: "Project Manager", MemberID: ptrStr("m-pm"), Hours: 100},
		{Role: "Developer", MemberID: ptrStr("m-dev"), Hours: 200},
	}

	p := NewProjectFromSOW(doc, assignments, pool)

	assert.Equal(t, "sow-1", p.SOWID)
	assert.Equal(t, doc.Title, p.Name)
	require.Len(t, p.Team, 2)
	assert.Equal(t, int64(100*12000+200*7500), p.Budget.Allocated)
	assert.Equal(t, doc.Value, p.Budget.Total)
	assert.Equal(t, p.Budget.Total, p.Budget.Allocated+p.Budget.Remaining)
	assert.Equal(t, int64(12000), p.Team[0].Rate, "rate comes from the directory, not the requirement")
}

func TestNewProjectFromSOWSkipsContributeNothing(t *testing.T) {
	doc := &SOWDocument{ID: "sow-1", Value: 500000}
	assignments := []Assignment{
		{Role: "Developer", MemberID: nil, Hours: 0},
	}

	p := NewProjectFromSOW(doc, assignments, nil)

	assert.Empty(t, p.Team)
	assert.Zero(t, p.Budget.Allocated)
	assert.Equal(t, doc.Value, p.Budget.Remaining)
}

func TestMilestonesCopiedFromContent(t *testing.T) {
	doc := &SOWDocument{
		ID:    "sow-1",
		Value: 100,
		Content: map[string]any{
			"milestones": []any{
				map[string]any{"title": "Discovery", "due_date": "2026-10-01"},
				map[string]any{"title": "Delivery"},
				map[string]any{"notes": "untitled entries are dropped"},
				"malformed",
			},
		},
	}

	p := NewProjectFromSOW(doc, nil, nil)

	require.Len(t, p.Milestones, 2)
	assert.Equal(t, "Discovery", p.Milestones[0].Title)
	require.NotNil(t, p.Milestones[0].DueDate)
	assert.Equal(t, "2026-10-01", *p.Milestones[0].DueDate)
	assert.Nil(t, p.Milestones[1].DueDate)
	assert.False(t, p.Milestones[0].Completed)
}
