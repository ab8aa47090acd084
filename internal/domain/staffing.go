package domain

import "strings"

// ── Role requirements ─────────────────────────────────────────────────────────

// RoleRequirement is an ephemeral, derived staffing need. Rate is in cents
// per hour. Requirements are never persisted.
type RoleRequirement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Hours       int    `json:"hours"`
	Rate        int64  `json:"rate"`
}

// RoleRequirementPolicy derives the required roles for a document. Output is
// always non-empty; implementations fall back to a default set rather than
// failing.
type RoleRequirementPolicy interface {
	Derive(doc *SOWDocument) []RoleRequirement
}

// StaticRolePolicy is the default policy: every document gets the same three
// roles regardless of content. Real content-derived logic can replace this
// without touching any caller.
type StaticRolePolicy struct{}

// Derive implements RoleRequirementPolicy.
func (StaticRolePolicy) Derive(*SOWDocument) []RoleRequirement {
	return []RoleRequirement{
		{Title: "Project Manager", Description: "Owns delivery, client communication and scope", Hours: 160, Rate: 12000},
		{Title: "Senior Developer", Description: "Leads technical design and implementation", Hours: 320, Rate: 9500},
		{Title: "Developer", Description: "Feature implementation and testing", Hours: 400, Rate: 7500},
	}
}

// ── Eligibility matching ──────────────────────────────────────────────────────

// TeamMember is one entry from the team directory. HourlyRate is in cents.
// Availability is capacity in hours per week; it is informational and never
// decremented by assignment.
type TeamMember struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	HourlyRate   int64    `json:"hourly_rate"`
	Availability int      `json:"availability"`
	Skills       []string `json:"skills"`
}

// SkillMatchPolicy decides whether a member's skill tags qualify for a role
// title. Kept as a named policy so stricter matching can replace the default
// without touching the aggregator.
type SkillMatchPolicy func(skills []string, roleTitle string) bool

// SubstringSkillMatch is the default policy: some skill tag case-insensitively
// contains the role title as a substring. This is loose — a "Senior Developer"
// tag matches a role titled "Developer" — and that looseness is intentional,
// matching how staffing has historically worked here.
func SubstringSkillMatch(skills []string, roleTitle string) bool {
	title := strings.ToLower(roleTitle)
	for _, skill := range skills {
		if strings.Contains(strings.ToLower(skill), title) {
			return true
		}
	}
	return false
}

// EligibleMembers filters the pool to members who qualify for the role:
// hourly rate at most 20% above the role's budgeted rate, and a matching
// skill tag. A nil policy uses SubstringSkillMatch. Returns an empty (non-nil)
// slice when nobody qualifies.
func EligibleMembers(role RoleRequirement, pool []TeamMember, match SkillMatchPolicy) []TeamMember {
	if match == nil {
		match = SubstringSkillMatch
	}

	eligible := make([]TeamMember, 0, len(pool))
	for _, m := range pool {
		// rate*1.2 without floating point: both sides in tenths of a cent
		if m.HourlyRate*10 > role.Rate*12 {
			continue
		}
		if !match(m.Skills, role.Title) {
			continue
		}
		eligible = append(eligible, m)
	}
	return eligible
}
