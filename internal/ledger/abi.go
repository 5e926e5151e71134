package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// VoteSignature is the ballot contract function a hybrid vote must call.
const VoteSignature = "vote(uint256,bool)"

var (
	// ErrSelectorMismatch means calldata does not start with the selector of the expected function.
	ErrSelectorMismatch = errors.New("ledger: function selector mismatch")
	// ErrDecode means calldata carries the right selector but its arguments cannot be decoded.
	ErrDecode = errors.New("ledger: calldata decode failed")
)

// Call is a decoded contract call. Args follow go-ethereum's ABI mapping (uint256 as *big.Int, bool as bool).
type Call struct {
	Name string
	Args []interface{}
}

// Selector returns the first four bytes of the Keccak-256 hash of a canonical function signature.
func Selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

// HasSelector reports whether calldata begins with the selector of signature.
func HasSelector(signature string, calldata []byte) bool {
	return len(calldata) >= 4 && bytes.Equal(calldata[:4], Selector(signature))
}

// DecodeCall decodes calldata against signature, e.g. "vote(uint256,bool)". Only flat parameter lists of
// elementary types are supported.
func DecodeCall(signature string, calldata []byte) (*Call, error) {
	name, args, err := parseSignature(signature)
	if err != nil {
		return nil, err
	}
	if !HasSelector(signature, calldata) {
		return nil, ErrSelectorMismatch
	}
	values, err := args.Unpack(calldata[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(values) != len(args) {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrDecode, len(values), len(args))
	}
	return &Call{Name: name, Args: values}, nil
}

// EncodeVoteCall packs calldata for vote(proposalID, support).
func EncodeVoteCall(proposalID *big.Int, support bool) ([]byte, error) {
	_, args, err := parseSignature(VoteSignature)
	if err != nil {
		return nil, err
	}
	packed, err := args.Pack(proposalID, support)
	if err != nil {
		return nil, fmt.Errorf("pack vote call: %w", err)
	}
	return append(Selector(VoteSignature), packed...), nil
}

func parseSignature(signature string) (string, abi.Arguments, error) {
	open := strings.IndexByte(signature, '(')
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return "", nil, fmt.Errorf("ledger: malformed signature %q", signature)
	}
	name := signature[:open]
	params := signature[open+1 : len(signature)-1]
	if strings.ContainsAny(params, "() ") {
		return "", nil, fmt.Errorf("ledger: unsupported signature %q", signature)
	}
	var args abi.Arguments
	if params == "" {
		return name, args, nil
	}
	for _, p := range strings.Split(params, ",") {
		typ, err := abi.NewType(p, "", nil)
		if err != nil {
			return "", nil, fmt.Errorf("ledger: signature %q: %w", signature, err)
		}
		args = append(args, abi.Argument{Type: typ})
	}
	return name, args, nil
}
