package domain

import (
	"sort"
	"strings"
)

// ApproverResolver looks up an approver in the user directory. The second
// return is false when the user is unknown; unknown approvers never satisfy
// a step.
type ApproverResolver func(userID string) (Approver, bool)

// ChainEvaluator answers which approval steps apply to a document value and
// which step is currently pending. It is a pure query over the static step
// configuration — it never mutates document state; the status machine consumes
// its output.
type ChainEvaluator struct {
	steps   []ApprovalStep
	resolve ApproverResolver
}

// NewChainEvaluator builds an evaluator over the given step configuration.
// Steps are copied and ordered by ascending Order.
func NewChainEvaluator(steps []ApprovalStep, resolve ApproverResolver) ChainEvaluator {
	ordered := make([]ApprovalStep, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	return ChainEvaluator{steps: ordered, resolve: resolve}
}

// Steps returns the full ordered configuration.
func (e ChainEvaluator) Steps() []ApprovalStep { return e.steps }

// ApplicableSteps returns the steps that apply to a document of the given
// value: steps with no threshold, or threshold <= value (inclusive), in
// ascending step order. A zero-value document against an all-thresholded
// configuration yields an empty list, meaning zero approvals are required.
func (e ChainEvaluator) ApplicableSteps(value int64) []ApprovalStep {
	applicable := make([]ApprovalStep, 0, len(e.steps))
	for _, step := range e.steps {
		if step.Threshold == nil || *step.Threshold <= value {
			applicable = append(applicable, step)
		}
	}
	return applicable
}

// CurrentStep walks the applicable steps in order and returns the index (into
// the applicable list) of the first unsatisfied step. The second return is
// false when every applicable step is satisfied, i.e. the chain is complete.
func (e ChainEvaluator) CurrentStep(value int64, approvals []Approval) (int, bool) {
	for i, step := range e.ApplicableSteps(value) {
		if !e.stepSatisfied(step, approvals) {
			return i, true
		}
	}
	return 0, false
}

// stepSatisfied counts approved-status approvals whose approver matches the
// step and compares against MinApprovers (treated as at least one).
func (e ChainEvaluator) stepSatisfied(step ApprovalStep, approvals []Approval) bool {
	required := step.MinApprovers
	if required < 1 {
		required = 1
	}

	count := 0
	for _, a := range approvals {
		if a.Status != ApprovalApproved {
			continue
		}
		approver, ok := e.resolve(a.UserID)
		if !ok {
			continue
		}
		if approverMatches(step, approver) {
			count++
			if count >= required {
				return true
			}
		}
	}
	return false
}

// approverMatches matches on department when the step carries one, otherwise
// on role. Comparison is case-insensitive.
func approverMatches(step ApprovalStep, approver Approver) bool {
	if step.Department != nil {
		return strings.EqualFold(*step.Department, approver.Department)
	}
	return strings.EqualFold(step.Role, approver.Role)
}
