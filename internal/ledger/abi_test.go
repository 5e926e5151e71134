package ledger

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestSelector(t *testing.T) {
	got := Selector(VoteSignature)
	want := crypto.Keccak256([]byte(VoteSignature))[:4]
	if !bytes.Equal(got, want) {
		t.Errorf("Selector = %s, want %s", hexutil.Encode(got), hexutil.Encode(want))
	}
	if bytes.Equal(Selector("vote(uint256,bool)"), Selector("vote(uint256,uint8)")) {
		t.Error("different signatures should not share a selector")
	}
}

func TestEncodeDecodeVoteCall(t *testing.T) {
	id := new(big.Int).Lsh(big.NewInt(1), 200)
	data, err := EncodeVoteCall(id, true)
	if err != nil {
		t.Fatalf("EncodeVoteCall: %v", err)
	}
	if len(data) != 4+64 {
		t.Fatalf("len(data) = %d, want 68", len(data))
	}
	call, err := DecodeCall(VoteSignature, data)
	if err != nil {
		t.Fatalf("DecodeCall: %v", err)
	}
	if call.Name != "vote" {
		t.Errorf("Name = %q, want vote", call.Name)
	}
	gotID, ok := call.Args[0].(*big.Int)
	if !ok || gotID.Cmp(id) != 0 {
		t.Errorf("Args[0] = %v, want %v", call.Args[0], id)
	}
	if b, ok := call.Args[1].(bool); !ok || !b {
		t.Errorf("Args[1] = %v, want true", call.Args[1])
	}
}

func TestDecodeCall_Errors(t *testing.T) {
	good, err := EncodeVoteCall(big.NewInt(42), false)
	if err != nil {
		t.Fatalf("EncodeVoteCall: %v", err)
	}
	badBool := append([]byte(nil), good...)
	badBool[len(badBool)-1] = 2

	other := append(Selector("transfer(address,uint256)"), good[4:]...)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrSelectorMismatch},
		{"other function", other, ErrSelectorMismatch},
		{"selector only", good[:4], ErrDecode},
		{"truncated args", good[:40], ErrDecode},
		{"bool out of range", badBool, ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCall(VoteSignature, tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeCall_MalformedSignature(t *testing.T) {
	for _, sig := range []string{"vote", "(uint256)", "vote(tuple(uint256))", "vote(notatype)"} {
		if _, err := DecodeCall(sig, []byte{1, 2, 3, 4}); err == nil {
			t.Errorf("DecodeCall(%q) expected error", sig)
		}
	}
}

func TestIsTxHashAndAddress(t *testing.T) {
	if !IsTxHash(testHash) {
		t.Error("IsTxHash(valid) = false")
	}
	for _, h := range []string{"", "0x", testHash[2:], testHash[:65], testHash + "00", "0xzz" + testHash[4:]} {
		if IsTxHash(h) {
			t.Errorf("IsTxHash(%q) = true, want false", h)
		}
	}
	addr := "0x52908400098527886E0F7030069857D2E4169EE7"
	if !IsAddress(addr) {
		t.Error("IsAddress(valid) = false")
	}
	for _, a := range []string{"", addr[2:], addr[:41], addr + "0", "0xg2908400098527886E0F7030069857D2E4169EE7"} {
		if IsAddress(a) {
			t.Errorf("IsAddress(%q) = true, want false", a)
		}
	}
}
