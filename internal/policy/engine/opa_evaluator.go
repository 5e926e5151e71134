package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const eligibilityQuery = "data.ballot.eligibility.decision"

// Eligibility codes produced by the default policy.
const (
	CodeAlreadyVoted  = "ALREADY_VOTED"
	CodeNotOrgMember  = "NOT_ORG_MEMBER"
	CodeNotAuthorized = "NOT_AUTHORIZED"
)

// Rules are chained with else so the first failing rule wins.
const defaultRegoPolicy = `package ballot.eligibility

default decision := {"allowed": true, "code": "", "reason": ""}

decision := {"allowed": false, "code": "ALREADY_VOTED", "reason": "already voted"} if {
	input.already_voted
} else := {"allowed": false, "code": "NOT_ORG_MEMBER", "reason": "not a member of the owning organization"} if {
	input.org_scoped
	not input.approved_member
} else := {"allowed": false, "code": "NOT_AUTHORIZED", "reason": "not authorized to vote on this proposal"} if {
	input.restricted
	not listed
}

listed if {
	some id in input.allowed_voters
	id == input.user_id
}
`

// OPAEvaluator evaluates voting eligibility using an in-process OPA Rego policy.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles the default eligibility policy and returns an evaluator for it.
func NewOPAEvaluator(ctx context.Context) (*OPAEvaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"eligibility.rego": defaultRegoPolicy})
	if err != nil {
		return nil, fmt.Errorf("compile eligibility policy: %w", err)
	}
	pq, err := rego.New(
		rego.Query(eligibilityQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare eligibility query: %w", err)
	}
	return &OPAEvaluator{query: pq}, nil
}

// HealthCheck verifies that the prepared policy evaluates a minimal input to a decision.
// Does not touch the database. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	res, err := e.EvaluateEligibility(ctx, EligibilityInput{UserID: 1})
	if err != nil {
		return err
	}
	if !res.Allowed {
		return fmt.Errorf("policy self-check denied an unrestricted voter: %s", res.Code)
	}
	return nil
}

// EvaluateEligibility evaluates the eligibility policy for the given facts.
func (e *OPAEvaluator) EvaluateEligibility(ctx context.Context, in EligibilityInput) (EligibilityResult, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(buildInput(in)))
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("eval eligibility policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return EligibilityResult{}, fmt.Errorf("eligibility query returned no result")
	}
	m, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return EligibilityResult{}, fmt.Errorf("eligibility decision has unexpected type %T", rs[0].Expressions[0].Value)
	}
	var out EligibilityResult
	out.Allowed, _ = m["allowed"].(bool)
	out.Code, _ = m["code"].(string)
	out.Reason, _ = m["reason"].(string)
	return out, nil
}

func buildInput(in EligibilityInput) map[string]interface{} {
	voters := make([]interface{}, 0, len(in.AllowedVoters))
	for _, id := range in.AllowedVoters {
		voters = append(voters, id)
	}
	return map[string]interface{}{
		"user_id":         in.UserID,
		"already_voted":   in.AlreadyVoted,
		"org_scoped":      in.OrgScoped,
		"approved_member": in.ApprovedMember,
		"restricted":      in.Restricted,
		"allowed_voters":  voters,
	}
}
