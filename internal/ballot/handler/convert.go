package handler

import (
	"math"
	"strconv"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/types/known/structpb"

	ballot "github.com/vincent-24/GlassBallots-sub001/internal/ballot/service"
	"github.com/vincent-24/GlassBallots-sub001/internal/eligibility"
	proposaldomain "github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
	votedomain "github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

const dateLayout = "2006-01-02"

func invalidField(field, msg string) error {
	return withInfo(codes.InvalidArgument, "invalid "+field+": "+msg, ReasonInvalidArgument, map[string]string{"field": field})
}

func field(req *structpb.Struct, name string) (*structpb.Value, bool) {
	if req == nil {
		return nil, false
	}
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

// requiredID reads a positive integer. JSON numbers arrive as float64; decimal strings are also accepted.
func requiredID(req *structpb.Struct, name string) (int64, error) {
	id, ok, err := optionalID(req, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, invalidField(name, "is required")
	}
	return id, nil
}

func optionalID(req *structpb.Struct, name string) (int64, bool, error) {
	v, ok := field(req, name)
	if !ok {
		return 0, false, nil
	}
	var id int64
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != math.Trunc(n) || n >= 1<<63 || n < math.MinInt64 {
			return 0, false, invalidField(name, "must be an integer")
		}
		id = int64(n)
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(k.StringValue), 10, 64)
		if err != nil {
			return 0, false, invalidField(name, "must be an integer")
		}
		id = n
	default:
		return 0, false, invalidField(name, "must be an integer")
	}
	if id <= 0 {
		return 0, false, invalidField(name, "must be positive")
	}
	return id, true, nil
}

func requiredBool(req *structpb.Struct, name string) (bool, error) {
	v, ok := field(req, name)
	if !ok {
		return false, invalidField(name, "is required")
	}
	b, isBool := v.GetKind().(*structpb.Value_BoolValue)
	if !isBool {
		return false, invalidField(name, "must be a boolean")
	}
	return b.BoolValue, nil
}

func requiredString(req *structpb.Struct, name string) (string, error) {
	v, ok := field(req, name)
	if !ok {
		return "", invalidField(name, "is required")
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", invalidField(name, "must be a string")
	}
	return s.StringValue, nil
}

func newStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, toStatus(err)
	}
	return s, nil
}

func tallyMap(v ballot.TallyView) map[string]interface{} {
	return map[string]interface{}{
		"proposal_id": float64(v.ProposalID),
		"yes_count":   float64(v.Tally.YesCount),
		"no_count":    float64(v.Tally.NoCount),
		"total_votes": float64(v.Tally.TotalVotes),
		"vote_status": string(v.VoteStatus),
	}
}

func voteMap(v *votedomain.Vote) map[string]interface{} {
	m := map[string]interface{}{
		"id":          float64(v.ID),
		"user_id":     float64(v.UserID),
		"proposal_id": float64(v.ProposalID),
		"supports":    v.Supports,
		"created_at":  v.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if p := v.Provenance; p != nil {
		m["wallet_address"] = p.WalletAddress
		m["transaction_hash"] = p.TransactionHash
		m["block_number"] = float64(p.BlockNumber)
	}
	return m
}

func voteResultMap(r *ballot.VoteResult) map[string]interface{} {
	m := map[string]interface{}{
		"vote":              voteMap(r.Vote),
		"tallies":           nil,
		"tallies_available": !r.TalliesUnavailable,
	}
	if !r.TalliesUnavailable {
		m["tallies"] = tallyMap(r.Tallies)
	}
	if r.BlockNumber > 0 {
		m["block_number"] = float64(r.BlockNumber)
	}
	return m
}

func allowedVotersValue(a proposaldomain.AllowedVoters) interface{} {
	if !a.Restricted() {
		return "ALL"
	}
	ids := make([]interface{}, len(a.UserIDs))
	for i, id := range a.UserIDs {
		ids[i] = float64(id)
	}
	return ids
}

func proposalMap(p *proposaldomain.Proposal) map[string]interface{} {
	m := map[string]interface{}{
		"id":             float64(p.ID),
		"title":          p.Title,
		"body":           p.Body,
		"status":         string(p.Status),
		"allowed_voters": allowedVotersValue(p.AllowedVoters),
		"created_at":     p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		"decision_date":  nil,
		"org_id":         nil,
	}
	if p.CreatedBy > 0 {
		m["created_by"] = float64(p.CreatedBy)
	}
	if p.DecisionDate != nil {
		m["decision_date"] = p.DecisionDate.UTC().Format(dateLayout)
	}
	if p.OrganizationID != nil {
		m["org_id"] = float64(*p.OrganizationID)
	}
	return m
}

func proposalViewMap(v ballot.ProposalView) map[string]interface{} {
	m := proposalMap(v.Proposal)
	m["yes_count"] = float64(v.Tally.YesCount)
	m["no_count"] = float64(v.Tally.NoCount)
	m["total_votes"] = float64(v.Tally.TotalVotes)
	m["vote_status"] = string(v.VoteStatus)
	return m
}

func decisionMap(d *eligibility.Decision) map[string]interface{} {
	return map[string]interface{}{
		"allowed":       d.Allowed,
		"code":          string(d.Code),
		"reason":        d.Reason,
		"already_voted": d.AlreadyVoted,
		"restricted":    d.Restricted,
	}
}
