package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticRolePolicyAlwaysReturnsThreeRoles(t *testing.T) {
	policy := StaticRolePolicy{}

	reqs := policy.Derive(&SOWDocument{ID: "sow-1", Value: 5000000})
	require.Len(t, reqs, 3)
	assert.Equal(t, "Project Manager", reqs[0].Title)
	assert.Equal(t, "Senior Developer", reqs[1].Title)
	assert.Equal(t, "Developer", reqs[2].Title)

	// content never affects the static policy, including a nil document
	assert.Equal(t, reqs, policy.Derive(nil))
	for _, r := range reqs {
		assert.Positive(t, r.Hours)
		assert.Positive(t, r.Rate)
	}
}

func TestEligibleMembersRateCeiling(t *testing.T) {
	role := RoleRequirement{Title: "Developer", Hours: 400, Rate: 10000} // $100/h

	pool := []TeamMember{
		{ID: "m-cheap", HourlyRate: 8000, Skills: []string{"Developer"}},
		{ID: "m-exact", HourlyRate: 12000, Skills: []string{"Developer"}}, // exactly rate*1.2
		{ID: "m-over", HourlyRate: 12001, Skills: []string{"Developer"}},
	}

	eligible := EligibleMembers(role, pool, nil)
	require.Len(t, eligible, 2)
	assert.Equal(t, "m-cheap", eligible[0].ID)
	assert.Equal(t, "m-exact", eligible[1].ID, "the 20%% premium ceiling is inclusive")
}

func TestEligibleMembersSkillSubstringMatch(t *testing.T) {
	role := RoleRequirement{Title: "Developer", Rate: 10000}

	pool := []TeamMember{
		{ID: "m-senior", HourlyRate: 9000, Skills: []string{"Senior Developer"}},
		{ID: "m-fullstack", HourlyRate: 9000, Skills: []string{"Full Stack developer"}},
		{ID: "m-designer", HourlyRate: 9000, Skills: []string{"Designer", "UX Research"}},
		{ID: "m-caps", HourlyRate: 9000, Skills: []string{"DEVELOPER"}},
	}

	eligible := EligibleMembers(role, pool, nil)
	ids := make([]string, 0, len(eligible))
	for _, m := range eligible {
		ids = append(ids, m.ID)
	}
	// Substring containment is deliberately loose: seniority tags match too.
	assert.Equal(t, []string{"m-senior", "m-fullstack", "m-caps"}, ids)
}

func TestEligibleMembersBothPredicatesRequired(t *testing.T) {
	role := RoleRequirement{Title: "Project Manager", Rate: 10000}

	pool := []TeamMember{
		{ID: "m-skill-only", HourlyRate: 20000, Skills: []string{"Project Manager"}},
		{ID: "m-rate-only", HourlyRate: 5000, Skills: []string{"Developer"}},
	}

	assert.Empty(t, EligibleMembers(role, pool, nil))
}

func TestEligibleMembersCustomPolicy(t *testing.T) {
	role := RoleRequirement{Title: "Developer", Rate: 10000}
	pool := []TeamMember{
		{ID: "m-1", HourlyRate: 9000, Skills: []string{"Senior Developer"}},
	}

	exact := func(skills []string, title string) bool {
		for _, s := range skills {
			if s == title {
				return true
			}
		}
		return false
	}

	assert.Empty(t, EligibleMembers(role, pool, exact),
		"a stricter policy can be substituted without touching the filter")
	assert.Len(t, EligibleMembers(role, pool, nil), 1)
}

func TestEligibleMembersEmptyPool(t *testing.T) {
	eligible := EligibleMembers(RoleRequirement{Title: "Developer", Rate: 100}, nil, nil)
	require.NotNil(t, eligible)
	assert.Empty(t, eligible)
}
