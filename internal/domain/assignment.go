package domain

import "fmt"

// Assignment maps a role title to either a member or an explicit skip
// (MemberID == nil). A skip is a first-class terminal decision, distinct from
// "not yet decided", which is the absence of an entry.
type Assignment struct {
	Role     string  `json:"role"`
	MemberID *string `json:"member_id"`
	Hours    int     `json:"hours"`
}

// AssignmentSession collects per-role assignment decisions for one staffing
// workflow. Sessions are ephemeral: discarded on cancel, converted into
// project team entries only on explicit confirm.
type AssignmentSession struct {
	entries map[string]Assignment
	order   []string
}

// NewAssignmentSession returns an empty session.
func NewAssignmentSession() *AssignmentSession {
	return &AssignmentSession{entries: make(map[string]Assignment)}
}

// Set upserts the decision for a role. memberID == nil records an explicit
// skip. Re-setting a role keeps its original position.
func (s *AssignmentSession) Set(role string, memberID *string, hours int) {
	if _, exists := s.entries[role]; !exists {
		s.order = append(s.order, role)
	}
	s.entries[role] = Assignment{Role: role, MemberID: memberID, Hours: hours}
}

// Get returns the recorded decision for a role, if any.
func (s *AssignmentSession) Get(role string) (Assignment, bool) {
	a, ok := s.entries[role]
	return a, ok
}

// Validate checks the session against the requirements and returns
// human-readable problems, empty when valid. Checked in order: first every
// requirement must have an entry (assigned or skipped), then every assigned
// entry's hours must exactly equal the requirement's hours. Skipped entries
// are exempt from the hours check.
func (s *AssignmentSession) Validate(requirements []RoleRequirement) []string {
	errs := []string{}

	for _, req := range requirements {
		if _, ok := s.entries[req.Title]; !ok {
			errs = append(errs, fmt.Sprintf("no assignment recorded for role %q", req.Title))
		}
	}

	for _, req := range requirements {
		entry, ok := s.entries[req.Title]
		if !ok || entry.MemberID == nil {
			continue
		}
		if entry.Hours != req.Hours {
			errs = append(errs, fmt.Sprintf("role %q must be assigned exactly %d hours", req.Title, req.Hours))
		}
	}

	return errs
}

// Finalize returns the recorded decisions in insertion order. Skipped entries
// are emitted with zero hours. Finalize does not gate on Validate — callers
// that allow a partial team may finalize with skips in place.
func (s *AssignmentSession) Finalize() []Assignment {
	out := make([]Assignment, 0, len(s.order))
	for _, role := range s.order {
		entry := s.entries[role]
		if entry.MemberID == nil {
			entry.Hours = 0
		}
		out = append(out, entry)
	}
	return out
}
