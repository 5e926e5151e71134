package service

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	proposaldomain "github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/telemetry"
	"github.com/vincent-24/GlassBallots-sub001/internal/telemetry/domain"
	votedomain "github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

const (
	pathDirect  = "direct"
	pathHybrid  = "hybrid"
	eventSource = "ballot"

	auditVoteCast     = "vote_cast"
	auditVoteRejected = "vote_rejected"
)

func (s *BallotService) recorded(ctx context.Context, p *proposaldomain.Proposal, v *votedomain.Vote, path string) {
	s.votesRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("path", path)))
	meta := domain.VoteMetadata{ProposalID: v.ProposalID, Supports: v.Supports, Path: path}
	if v.Provenance != nil {
		meta.TransactionHash = v.Provenance.TransactionHash
		meta.BlockNumber = v.Provenance.BlockNumber
	}
	s.publish(ctx, p, v.UserID, domain.EventVoteRecorded, auditVoteCast, meta)
}

// rejected publishes a terminal rejection. Infrastructure failures (empty reason) are not rejections.
func (s *BallotService) rejected(ctx context.Context, p *proposaldomain.Proposal, userID int64, supports bool, path, hash, reason string) {
	if reason == "" {
		return
	}
	meta := domain.VoteMetadata{ProposalID: p.ID, Supports: supports, Path: path, TransactionHash: hash, Reason: reason}
	s.publish(ctx, p, userID, domain.EventVoteRejected, auditVoteRejected, meta)
}

func (s *BallotService) publish(ctx context.Context, p *proposaldomain.Proposal, userID int64, eventType, action string, meta domain.VoteMetadata) {
	payload, _ := json.Marshal(meta)
	var orgID, uid string
	if p.OrganizationID != nil {
		orgID = strconv.FormatInt(*p.OrganizationID, 10)
	}
	if userID > 0 {
		uid = strconv.FormatInt(userID, 10)
	}
	telemetry.EmitAsync(s.Events, ctx, &domain.Event{
		ID:        uuid.NewString(),
		EventType: eventType,
		Source:    eventSource,
		OrgID:     orgID,
		UserID:    uid,
		Metadata:  payload,
		CreatedAt: s.now().UTC(),
	})
	if s.Audit != nil {
		s.Audit.LogEvent(ctx, orgID, uid, action, "proposal:"+strconv.FormatInt(p.ID, 10), string(payload))
	}
}
