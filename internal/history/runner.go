package history

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"reserveScope/internal/aave"
	"reserveScope/internal/chain"
	"reserveScope/internal/model"
	"reserveScope/internal/storage"
)

// Chain is the chain access a Runner needs.
type Chain interface {
	chain.Caller
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// SourceFactory binds assembler sources to a block-pinned caller.
type SourceFactory func(caller chain.Caller) (aave.Sources, error)

// RunConfig holds runtime settings for a snapshot run.
type RunConfig struct {
	Version   aave.Version
	Addresses aave.Addresses
	// Assets restricts the run to these reserves; empty means every listed reserve.
	Assets []common.Address

	FromBlock uint64
	// ToBlock 0 means the latest block.
	ToBlock uint64
	Step    uint64

	MaxParallelCalls int
	// CallTimeout bounds the reads of one block; 0 disables it.
	CallTimeout time.Duration

	// Sources overrides the contract-backed sources.
	Sources SourceFactory
}

// Runner snapshots reserves at a series of blocks and writes them to storage.
type Runner struct {
	cfg     RunConfig
	chain   Chain
	storage storage.Storage
	state   StateStore
	logger  *zap.Logger
}

// NewRunner builds a Runner. state may be nil to always start at FromBlock.
func NewRunner(cfg RunConfig, chainClient Chain, sink storage.Storage, state StateStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Step == 0 {
		cfg.Step = 1
	}
	if cfg.Sources == nil {
		version, addrs := cfg.Version, cfg.Addresses
		cfg.Sources = func(caller chain.Caller) (aave.Sources, error) {
			return aave.NewContractSources(version, caller, addrs, logger)
		}
	}
	return &Runner{
		cfg:     cfg,
		chain:   chainClient,
		storage: sink,
		state:   state,
		logger:  logger,
	}
}

// Run executes the snapshot loop. Progress is saved after every block.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}

	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}
	from := r.cfg.FromBlock
	if from == 0 {
		from = to
	}

	blocks, err := SnapshotBlocks(from, to, r.cfg.Step)
	if err != nil {
		return err
	}

	if r.state != nil {
		last, ok, err := r.state.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			blocks = After(blocks, last)
			r.logger.Info("resume from state", zap.Uint64("last_block", last), zap.Int("remaining", len(blocks)))
		}
	}

	if len(blocks) == 0 {
		r.logger.Info("nothing to snapshot", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	for _, block := range blocks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snapshots, err := r.snapshotBlock(ctx, chainID.Uint64(), block)
		if err != nil {
			return fmt.Errorf("block %d: %w", block, err)
		}
		if err := r.storage.PutSnapshots(ctx, snapshots); err != nil {
			return fmt.Errorf("store snapshots: %w", err)
		}
		if r.state != nil {
			if err := r.state.Save(ctx, block); err != nil {
				return err
			}
		}

		r.logger.Info("block complete", zap.Uint64("block", block), zap.Int("reserves", len(snapshots)))
	}

	return nil
}

func (r *Runner) snapshotBlock(ctx context.Context, chainID, block uint64) ([]model.ReserveSnapshot, error) {
	if r.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.CallTimeout)
		defer cancel()
	}

	sources, err := r.cfg.Sources(chain.AtBlock(r.chain, block))
	if err != nil {
		return nil, err
	}
	assembler, err := aave.NewAssembler(aave.Config{
		Version:          r.cfg.Version,
		MaxParallelCalls: r.cfg.MaxParallelCalls,
	}, sources, r.logger)
	if err != nil {
		return nil, err
	}

	infos, err := assembler.GetAllReserveInfo(ctx, r.cfg.Assets)
	if err != nil {
		return nil, err
	}
	ts, err := r.chain.BlockTimestamp(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("block timestamp: %w", err)
	}

	return BuildSnapshots(chainID, r.cfg.Addresses.Pool, block, ts, infos), nil
}

// BuildSnapshots wraps reserve infos read at one block.
func BuildSnapshots(chainID uint64, pool common.Address, block, ts uint64, infos []model.ReserveInfo) []model.ReserveSnapshot {
	out := make([]model.ReserveSnapshot, 0, len(infos))
	for _, info := range infos {
		out = append(out, model.ReserveSnapshot{
			ChainID:     chainID,
			Pool:        pool.Hex(),
			BlockNumber: block,
			Timestamp:   ts,
			Info:        info,
		})
	}
	return out
}
