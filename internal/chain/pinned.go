package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
)

// PinnedCaller sends every call without an explicit block to a fixed block height.
type PinnedCaller struct {
	caller Caller
	block  *big.Int
}

// AtBlock pins caller to number. A zero number leaves calls on the latest block.
func AtBlock(caller Caller, number uint64) Caller {
	if number == 0 {
		return caller
	}
	return &PinnedCaller{caller: caller, block: new(big.Int).SetUint64(number)}
}

// Block returns the pinned height.
func (p *PinnedCaller) Block() uint64 {
	return p.block.Uint64()
}

// CallContract forwards to the wrapped caller at the pinned height unless blockNumber is set.
func (p *PinnedCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if blockNumber == nil {
		blockNumber = new(big.Int).Set(p.block)
	}
	return p.caller.CallContract(ctx, msg, blockNumber)
}
