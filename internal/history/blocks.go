package history

import "fmt"

// SnapshotBlocks lists the heights to snapshot in [from, to]: every step blocks
// starting at from, plus to itself.
func SnapshotBlocks(from, to, step uint64) ([]uint64, error) {
	if step == 0 {
		return nil, fmt.Errorf("step must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	blocks := make([]uint64, 0, (to-from)/step+2)
	for block := from; block <= to; block += step {
		blocks = append(blocks, block)
		if to-block < step {
			break
		}
	}
	if blocks[len(blocks)-1] != to {
		blocks = append(blocks, to)
	}
	return blocks, nil
}

// After drops the heights at or below last.
func After(blocks []uint64, last uint64) []uint64 {
	for i, block := range blocks {
		if block > last {
			return blocks[i:]
		}
	}
	return nil
}
