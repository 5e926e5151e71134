package verification

import "fmt"

// Reason identifies why a claimed vote does not match its ledger transaction.
type Reason string

const (
	ReasonTransactionNotFound Reason = "TRANSACTION_NOT_FOUND"
	ReasonTransactionReverted Reason = "TRANSACTION_REVERTED"
	ReasonSenderMismatch      Reason = "SENDER_MISMATCH"
	ReasonWrongContract       Reason = "WRONG_CONTRACT"
	ReasonWrongFunction       Reason = "WRONG_FUNCTION"
	ReasonDecodeError         Reason = "DECODE_ERROR"
	ReasonProposalIDMismatch  Reason = "PROPOSAL_ID_MISMATCH"
	ReasonVoteValueMismatch   Reason = "VOTE_VALUE_MISMATCH"
)

// Error is a terminal verification failure. Expected and Actual are empty when not applicable.
type Error struct {
	Reason   Reason
	Expected string
	Actual   string
}

func (e *Error) Error() string {
	if e.Expected == "" && e.Actual == "" {
		return fmt.Sprintf("verification failed: %s", e.Reason)
	}
	return fmt.Sprintf("verification failed: %s (expected %s, got %s)", e.Reason, e.Expected, e.Actual)
}

// InputError reports a malformed field, detected before any ledger call.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
