package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
)

type recordingCaller struct {
	blocks []*big.Int
}

func (r *recordingCaller) CallContract(_ context.Context, _ ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	r.blocks = append(r.blocks, blockNumber)
	return nil, nil
}

func TestAtBlockPinsUnsetBlock(t *testing.T) {
	rec := &recordingCaller{}
	caller := AtBlock(rec, 1234)

	if _, err := caller.CallContract(context.Background(), ethereum.CallMsg{}, nil); err != nil {
		t.Fatalf("call: %v", err)
	}
	if _, err := caller.CallContract(context.Background(), ethereum.CallMsg{}, big.NewInt(99)); err != nil {
		t.Fatalf("call: %v", err)
	}

	if len(rec.blocks) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(rec.blocks))
	}
	if rec.blocks[0] == nil || rec.blocks[0].Uint64() != 1234 {
		t.Fatalf("pinned block mismatch: %v", rec.blocks[0])
	}
	if rec.blocks[1].Uint64() != 99 {
		t.Fatalf("explicit block overridden: %v", rec.blocks[1])
	}
}

func TestAtBlockZeroIsLatest(t *testing.T) {
	rec := &recordingCaller{}
	caller := AtBlock(rec, 0)
	if caller != Caller(rec) {
		t.Fatalf("zero block should return the caller unchanged")
	}
	if _, err := caller.CallContract(context.Background(), ethereum.CallMsg{}, nil); err != nil {
		t.Fatalf("call: %v", err)
	}
	if rec.blocks[0] != nil {
		t.Fatalf("expected latest block, got %v", rec.blocks[0])
	}
}
