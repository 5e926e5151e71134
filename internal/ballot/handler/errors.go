package handler

import (
	"context"
	"errors"
	"log"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	ballot "github.com/vincent-24/GlassBallots-sub001/internal/ballot/service"
	"github.com/vincent-24/GlassBallots-sub001/internal/eligibility"
	"github.com/vincent-24/GlassBallots-sub001/internal/ledger"
	"github.com/vincent-24/GlassBallots-sub001/internal/verification"
	votedomain "github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

// ErrorDomain is the ErrorInfo domain of every ballot error.
const ErrorDomain = "glassballots"

// Reasons for errors that have no reason of their own.
const (
	ReasonInvalidArgument        = "INVALID_ARGUMENT"
	ReasonDuplicateVote          = "DUPLICATE_VOTE"
	ReasonTransactionAlreadyUsed = "TRANSACTION_ALREADY_USED"
	ReasonPartialFailure         = "PARTIAL_FAILURE"
	ReasonTransactionPending     = "TRANSACTION_PENDING"
	ReasonLedgerUnavailable      = "LEDGER_UNAVAILABLE"
	ReasonCacheUnavailable       = "CACHE_UNAVAILABLE"
	ReasonVerificationNotCached  = "VERIFICATION_NOT_CACHED"
	ReasonInternal               = "INTERNAL"
)

func withInfo(code codes.Code, msg, reason string, md map[string]string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: ErrorDomain, Metadata: md})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// toStatus maps service errors to gRPC status errors with an ErrorInfo detail. Errors that already carry a
// status (from rbac) pass through.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var (
		inputErr   *verification.InputError
		verifyErr  *verification.Error
		eligErr    *eligibility.Error
		partialErr *ballot.PartialFailureError
	)
	switch {
	case errors.As(err, &inputErr):
		return withInfo(codes.InvalidArgument, err.Error(), ReasonInvalidArgument, map[string]string{"field": inputErr.Field})
	case errors.As(err, &partialErr):
		return withInfo(codes.Unavailable, err.Error(), ReasonPartialFailure, map[string]string{
			"transaction_hash": partialErr.TransactionHash,
			"block_number":     strconv.FormatUint(partialErr.BlockNumber, 10),
		})
	case errors.As(err, &verifyErr):
		return withInfo(codes.FailedPrecondition, err.Error(), string(verifyErr.Reason), map[string]string{
			"expected": verifyErr.Expected,
			"actual":   verifyErr.Actual,
		})
	case errors.As(err, &eligErr):
		code := codes.PermissionDenied
		if eligErr.Code == eligibility.CodeProposalNotFound {
			code = codes.NotFound
		}
		return withInfo(code, err.Error(), string(eligErr.Code), nil)
	case errors.Is(err, votedomain.ErrDuplicateVote):
		return withInfo(codes.AlreadyExists, err.Error(), ReasonDuplicateVote, nil)
	case errors.Is(err, votedomain.ErrTransactionAlreadyUsed):
		return withInfo(codes.AlreadyExists, err.Error(), ReasonTransactionAlreadyUsed, nil)
	case errors.Is(err, ballot.ErrProposalNotFound):
		return withInfo(codes.NotFound, err.Error(), string(eligibility.CodeProposalNotFound), nil)
	case errors.Is(err, ballot.ErrVerificationNotCached):
		return withInfo(codes.NotFound, err.Error(), ReasonVerificationNotCached, nil)
	case errors.Is(err, ledger.ErrTransactionPending):
		return withInfo(codes.Unavailable, err.Error(), ReasonTransactionPending, nil)
	case errors.Is(err, ledger.ErrLedgerUnavailable):
		return withInfo(codes.Unavailable, err.Error(), ReasonLedgerUnavailable, nil)
	case errors.Is(err, ballot.ErrCacheUnavailable):
		return withInfo(codes.Unavailable, err.Error(), ReasonCacheUnavailable, nil)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	log.Printf("ballot: internal error: %v", err)
	return withInfo(codes.Internal, "internal error", ReasonInternal, nil)
}
