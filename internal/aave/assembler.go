package aave

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"reserveScope/internal/chain"
	"reserveScope/internal/model"
)

// PoolReader reads reserve records from a lending pool.
type PoolReader interface {
	ReservesList(ctx context.Context) ([]common.Address, error)
	ReserveData(ctx context.Context, asset common.Address) (ReserveDataResult, error)
}

// LiquidityReader reads reserve totals from a protocol data provider.
type LiquidityReader interface {
	ReserveLiquidity(ctx context.Context, asset common.Address) (model.ReserveLiquidity, error)
}

// PriceReader reads oracle prices.
type PriceReader interface {
	AssetPrice(ctx context.Context, asset common.Address) (*big.Int, error)
}

// TokenReader reads ERC20 metadata.
type TokenReader interface {
	TokenMeta(ctx context.Context, token common.Address) (model.TokenMeta, error)
}

// Sources are the external endpoints an Assembler reads from.
// Categories is only used by v3 assemblers.
type Sources struct {
	Pool       PoolReader
	Categories CategoryReader
	Liquidity  LiquidityReader
	Prices     PriceReader
	Tokens     TokenReader
}

// NewContractSources binds Sources to on-chain contracts reached through caller.
func NewContractSources(version Version, caller chain.Caller, addrs Addresses, logger *zap.Logger) (Sources, error) {
	if err := addrs.Validate(); err != nil {
		return Sources{}, err
	}
	sources := Sources{
		Liquidity: NewDataProvider(version, caller, addrs.DataProvider),
		Prices:    NewPriceOracle(caller, addrs.Oracle),
		Tokens:    NewERC20Metadata(caller, logger),
	}
	switch version {
	case V3:
		pool := NewV3Pool(caller, addrs.Pool)
		sources.Pool = pool
		sources.Categories = pool
	case V2:
		sources.Pool = NewV2Pool(caller, addrs.Pool)
	default:
		return Sources{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, string(version))
	}
	return sources, nil
}

// Config controls an Assembler.
type Config struct {
	Version Version
	// MaxParallelCalls bounds the reads issued after decoding. 1 or less runs them one at a time.
	MaxParallelCalls int
}

// Assembler builds ReserveInfo records. It owns one EModeCategoryCache.
type Assembler struct {
	cfg        Config
	sources    Sources
	categories *EModeCategoryCache
	logger     *zap.Logger
}

func NewAssembler(cfg Config, sources Sources, logger *zap.Logger) (*Assembler, error) {
	if _, err := cfg.Version.Fields(); err != nil {
		return nil, err
	}
	if sources.Pool == nil || sources.Liquidity == nil || sources.Prices == nil || sources.Tokens == nil {
		return nil, fmt.Errorf("assembler sources are incomplete")
	}
	if cfg.Version == V3 && sources.Categories == nil {
		return nil, fmt.Errorf("v3 assembler requires a category reader")
	}
	if cfg.MaxParallelCalls < 1 {
		cfg.MaxParallelCalls = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		cfg:        cfg,
		sources:    sources,
		categories: NewEModeCategoryCache(sources.Categories),
		logger:     logger,
	}, nil
}

func (a *Assembler) Version() Version {
	return a.cfg.Version
}

// Categories returns the assembler's category cache.
func (a *Assembler) Categories() *EModeCategoryCache {
	return a.categories
}

// GetReserveInfo reads and decodes one reserve. Any failed read aborts the call.
func (a *Assembler) GetReserveInfo(ctx context.Context, asset common.Address) (model.ReserveInfo, error) {
	raw, err := a.sources.Pool.ReserveData(ctx, asset)
	if err != nil {
		return model.ReserveInfo{}, fmt.Errorf("reserve %s data: %w", asset.Hex(), err)
	}
	if raw.Configuration == nil {
		return model.ReserveInfo{}, fmt.Errorf("reserve %s: missing configuration", asset.Hex())
	}
	fields, err := Decode(a.cfg.Version, raw.Configuration)
	if err != nil {
		return model.ReserveInfo{}, err
	}

	aToken := common.HexToAddress(raw.Data.ATokenAddress)
	categoryID := fields.EModeCategory()

	var (
		liquidity  model.ReserveLiquidity
		price      *big.Int
		assetMeta  model.TokenMeta
		aTokenMeta model.TokenMeta
		category   *model.EModeCategoryData
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxParallelCalls)
	g.Go(func() error {
		var err error
		if liquidity, err = a.sources.Liquidity.ReserveLiquidity(gctx, asset); err != nil {
			return fmt.Errorf("reserve %s liquidity: %w", asset.Hex(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if price, err = a.sources.Prices.AssetPrice(gctx, asset); err != nil {
			return fmt.Errorf("reserve %s price: %w", asset.Hex(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if assetMeta, err = a.sources.Tokens.TokenMeta(gctx, asset); err != nil {
			return fmt.Errorf("reserve %s asset metadata: %w", asset.Hex(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if aTokenMeta, err = a.sources.Tokens.TokenMeta(gctx, aToken); err != nil {
			return fmt.Errorf("reserve %s aToken metadata: %w", asset.Hex(), err)
		}
		return nil
	})
	if a.cfg.Version == V3 && categoryID != 0 {
		g.Go(func() error {
			resolved, err := a.categories.Get(gctx, categoryID)
			if err != nil {
				return fmt.Errorf("reserve %s: %w", asset.Hex(), err)
			}
			category = &resolved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.ReserveInfo{}, err
	}

	a.logger.Debug("reserve assembled",
		zap.String("asset", asset.Hex()),
		zap.String("symbol", assetMeta.Label()),
		zap.Uint8("emode_category", categoryID),
	)

	return model.ReserveInfo{
		Version:   string(a.cfg.Version),
		Asset:     assetMeta,
		AToken:    aTokenMeta,
		Data:      raw.Data,
		Liquidity: liquidity,
		Config:    fields,
		Price:     price,
		Category:  category,
	}, nil
}

// ListReserves returns every reserve listed by the pool.
func (a *Assembler) ListReserves(ctx context.Context) ([]common.Address, error) {
	reserves, err := a.sources.Pool.ReservesList(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reserves: %w", err)
	}
	return reserves, nil
}

// GetAllReserveInfo assembles every listed reserve in pool order. A non-empty
// filter restricts the result to those assets, each of which must be listed.
func (a *Assembler) GetAllReserveInfo(ctx context.Context, filter []common.Address) ([]model.ReserveInfo, error) {
	reserves, err := a.ListReserves(ctx)
	if err != nil {
		return nil, err
	}
	reserves, err = FilterReserves(reserves, filter)
	if err != nil {
		return nil, err
	}

	out := make([]model.ReserveInfo, 0, len(reserves))
	for _, asset := range reserves {
		info, err := a.GetReserveInfo(ctx, asset)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	a.logger.Info("reserves assembled",
		zap.String("version", string(a.cfg.Version)),
		zap.Int("reserves", len(out)),
		zap.Int("emode_categories", a.categories.Len()),
	)
	return out, nil
}

// FilterReserves keeps the listed reserves named in filter, preserving list order.
func FilterReserves(listed, filter []common.Address) ([]common.Address, error) {
	if len(filter) == 0 {
		return listed, nil
	}
	index := make(map[common.Address]struct{}, len(listed))
	for _, asset := range listed {
		index[asset] = struct{}{}
	}
	wanted := make(map[common.Address]struct{}, len(filter))
	for _, asset := range filter {
		if _, ok := index[asset]; !ok {
			return nil, fmt.Errorf("asset %s is not a listed reserve", asset.Hex())
		}
		wanted[asset] = struct{}{}
	}
	out := make([]common.Address, 0, len(wanted))
	for _, asset := range listed {
		if _, ok := wanted[asset]; ok {
			out = append(out, asset)
		}
	}
	return out, nil
}
