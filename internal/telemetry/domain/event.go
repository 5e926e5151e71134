package domain

import (
	"encoding/json"
	"time"
)

// Event types emitted by the server.
const (
	EventVoteRecorded = "vote.recorded"
	EventVoteRejected = "vote.rejected"
	EventGRPCRequest  = "grpc_request"
)

// Event is one telemetry event. Metadata is an arbitrary JSON object.
type Event struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	OrgID     string          `json:"org_id,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// VoteMetadata is the Metadata payload of vote events.
type VoteMetadata struct {
	ProposalID      int64  `json:"proposal_id"`
	Supports        bool   `json:"supports"`
	Path            string `json:"path"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	BlockNumber     uint64 `json:"block_number,omitempty"`
	Reason          string `json:"reason,omitempty"`
}
