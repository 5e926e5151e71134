package engine

import "context"

// EligibilityInput holds the facts gathered for one (user, proposal) pair.
type EligibilityInput struct {
	UserID         int64
	AlreadyVoted   bool
	OrgScoped      bool
	ApprovedMember bool
	// Restricted is true when the proposal carries an explicit voter list rather than ALL.
	Restricted    bool
	AllowedVoters []int64
}

// EligibilityResult holds the outcome of eligibility policy evaluation.
// Code is empty when Allowed is true.
type EligibilityResult struct {
	Allowed bool
	Code    string
	Reason  string
}

// Evaluator evaluates voting eligibility policy using OPA or other engines.
type Evaluator interface {
	// EvaluateEligibility applies the eligibility rules in order; the first failing rule decides the result.
	EvaluateEligibility(ctx context.Context, in EligibilityInput) (EligibilityResult, error)
}
