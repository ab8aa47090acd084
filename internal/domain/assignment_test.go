package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stdRequirements() []RoleRequirement {
	return []RoleRequirement{
		{Title: "Project Manager", Hours: 100},
		{Title: "Developer", Hours: 200},
	}
}

func TestValidateReportsMissingRoles(t *testing.T) {
	s := NewAssignmentSession()
	s.Set("Project Manager", ptrStr("m-1"), 100)

	errs := s.Validate(stdRequirements())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `"Developer"`)
}

func TestValidateHoursMustMatchExactly(t *testing.T) {
	s := NewAssignmentSession()
	s.Set("Project Manager", ptrStr("m-1"), 90)
	s.Set("Developer", ptrStr("m-2"), 200)

	errs := s.Validate(stdRequirements())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `"Project Manager"`)
	assert.Contains(t, errs[0], "100")
}

func TestValidateSkipExemptFromHoursCheck(t *testing.T) {
	s := NewAssignmentSession()
	s.Set("Project Manager", ptrStr("m-1"), 100)
	s.Set("Developer", nil, 37) // skipped with nonsense hours

	assert.Empty(t, s.Validate(stdRequirements()))
}

func TestValidateMissingReportedBeforeHoursMismatch(t *testing.T) {
	reqs := []RoleRequirement{
		{Title: "Project Manager", Hours: 100},
		{Title: "Developer", Hours: 200},
		{Title: "QA Engineer", Hours: 80},
	}

	s := NewAssignmentSession()
	s.Set("Developer", ptrStr("m-2"), 150)

	errs := s.Validate(reqs)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], `"Project Manager"`)
	assert.Contains(t, errs[1], `"QA Engineer"`)
	assert.Contains(t, errs[2], `"Developer"`)
}

func TestValidateEmptyWhenFullyAssigned(t *testing.T) {
	s := NewAssignmentSession()
	s.Set("Project Manager", ptrStr("m-1"), 100)
	s.Set("Developer", ptrStr("m-2"), 200)

	errs := s.Validate(stdRequirements())
	require.NotNil(t, errs)
	assert.Empty(t, errs)
}

func TestPartialTeamContinuation(t *testing.T) {
	// Assign the PM, explicitly skip the developer: valid, and finalize emits
	// both entries with the skip carrying zero hours.
	s := NewAssignmentSession()
	s.Set("Project Manager", ptrStr("m-1"), 100)
	s.Set("Developer", nil, 0)

	assert.Empty(t, s.Validate(stdRequirements()))

	final := s.Finalize()
	require.Len(t, final, 2)
	assert.Equal(t, Assignment{Role: "Project Manager", MemberID: ptrStr("m-1"), Hours: 100}, final[0])
	assert.Equal(t, Assignment{Role: "Developer", MemberID: nil, Hours: 0}, final[1])
}

func TestFinalizeZeroesSkippedHours(t *testing.T) {
	s := NewAssignmentSession()
	s.Set("Developer", nil, 42)

	final := s.Finalize()
	require.Len(t, final, 1)
	assert.Zero(t, final[0].Hours)
	assert.Nil(t, final[0].MemberID)
}

func TestSetUpsertsKeepingOrder(t *testing.T) {
	s := NewAssignmentSession()
	s.Set("Project Manager", nil, 0)
	s.Set("Developer", ptrStr("m-2"), 200)
	s.Set("Project Manager", ptrStr("m-1"), 100) // changed my mind about the skip

	final := s.Finalize()
	require.Len(t, final, 2)
	assert.Equal(t, "Project Manager", final[0].Role)
	require.NotNil(t, final[0].MemberID)
	assert.Equal(t, "m-1", *final[0].MemberID)
}

func TestFinalizeDoesNotBlockOnInvalidSession(t *testing.T) {
	s := NewAssignmentSession()
	s.Set("Project Manager", ptrStr("m-1"), 1) // wrong hours

	require.NotEmpty(t, s.Validate(stdRequirements()))
	assert.Len(t, s.Finalize(), 1, "the caller decides whether validation blocks")
}
