package domain

import "time"

// Budget tracks project money in cents. Allocated + Remaining == Total holds
// at creation; later mutations are the caller's responsibility.
type Budget struct {
	Total     int64 `json:"total"`
	Allocated int64 `json:"allocated"`
	Remaining int64 `json:"remaining"`
}

// ProjectMember is one staffed role on a project team.
type ProjectMember struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Hours    int    `json:"hours"`
	Rate     int64  `json:"rate"`
}

// Milestone is a delivery checkpoint copied from the SOW at project creation.
type Milestone struct {
	Title     string  `json:"title"`
	DueDate   *string `json:"due_date,omitempty"`
	Completed bool    `json:"completed"`
}

// Risk is a tracked project risk.
type Risk struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// Project is created from exactly one approved SOW document.
type Project struct {
	ID         string          `json:"id"`
	SOWID      string          `json:"sow_id"`
	Name       string          `json:"name"`
	Budget     Budget          `json:"budget"`
	Team       []ProjectMember `json:"team"`
	Milestones []Milestone     `json:"milestones"`
	Risks      []Risk          `json:"risks"`
	CreatedBy  *string         `json:"created_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewProjectFromSOW derives a project from an approved document and a
// finalized assignment set. Skipped assignments contribute no team entry and
// no allocation. Budget total is the document value; allocated is the cost of
// the staffed team; remaining is the difference, so the budget invariant holds
// by construction.
func NewProjectFromSOW(doc *SOWDocument, assignments []Assignment, pool []TeamMember) *Project {
	byID := make(map[string]TeamMember, len(pool))
	for _, m := range pool {
		byID[m.ID] = m
	}

	var team []ProjectMember
	var allocated int64
	for _, a := range assignments {
		if a.MemberID == nil {
			continue
		}
		member := byID[*a.MemberID]
		team = append(team, ProjectMember{
			MemberID: *a.MemberID,
			Name:     member.Name,
			Role:     a.Role,
			Hours:    a.Hours,
			Rate:     member.HourlyRate,
		})
		allocated += int64(a.Hours) * member.HourlyRate
	}

	return &Project{
		SOWID: doc.ID,
		Name:  doc.Title,
		Budget: Budget{
			Total:     doc.Value,
			Allocated: allocated,
			Remaining: doc.Value - allocated,
		},
		Team:       team,
		Milestones: milestonesFromContent(doc.Content),
		Risks:      []Risk{},
	}
}

// milestonesFromContent pulls milestone titles out of the opaque SOW content.
// The content shape is template-defined, so extraction is best-effort.
func milestonesFromContent(content map[string]any) []Milestone {
	milestones := []Milestone{}
	raw, ok := content["milestones"].([]any)
	if !ok {
		return milestones
	}
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		title, _ := entry["title"].(string)
		if title == "" {
			continue
		}
		ms := Milestone{Title: title}
		if due, ok := entry["due_date"].(string); ok && due != "" {
			ms.DueDate = &due
		}
		milestones = append(milestones, ms)
	}
	return milestones
}
