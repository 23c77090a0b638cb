package aave

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"reserveScope/internal/chain"
	"reserveScope/internal/model"
)

// ReserveDataResult is a pool reserve record with its undecoded configuration word.
type ReserveDataResult struct {
	Configuration *uint256.Int
	Data          model.PoolReserveData
}

// V3Pool reads an Aave v3 Pool.
type V3Pool struct {
	caller  chain.Caller
	address common.Address
}

func NewV3Pool(caller chain.Caller, address common.Address) *V3Pool {
	return &V3Pool{caller: caller, address: address}
}

// ReservesList returns every reserve listed by the pool.
func (p *V3Pool) ReservesList(ctx context.Context) ([]common.Address, error) {
	parsed, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	return callReservesList(ctx, p.caller, p.address, parsed)
}

// ReserveData returns the raw reserve record for asset.
func (p *V3Pool) ReserveData(ctx context.Context, asset common.Address) (ReserveDataResult, error) {
	parsed, err := V3PoolABI()
	if err != nil {
		return ReserveDataResult{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, p.caller, p.address, parsed, "getReserveData", asset)
	if err != nil {
		return ReserveDataResult{}, err
	}
	if len(values) != 15 {
		return ReserveDataResult{}, fmt.Errorf("unexpected getReserveData values: %d", len(values))
	}

	var out ReserveDataResult
	var conv converter
	out.Configuration = conv.word(values[0])
	out.Data = model.PoolReserveData{
		LiquidityIndex:            conv.bigInt(values[1]),
		CurrentLiquidityRate:      conv.bigInt(values[2]),
		VariableBorrowIndex:       conv.bigInt(values[3]),
		CurrentVariableBorrowRate: conv.bigInt(values[4]),
		CurrentStableBorrowRate:   conv.bigInt(values[5]),
		LastUpdateTimestamp:       conv.uint64(values[6]),
		ID:                        uint16(conv.uint64(values[7])),
		ATokenAddress:             conv.address(values[8]).Hex(),
		StableDebtTokenAddress:    conv.address(values[9]).Hex(),
		VariableDebtTokenAddress:  conv.address(values[10]).Hex(),
		InterestRateStrategy:      conv.address(values[11]).Hex(),
		AccruedToTreasury:         conv.bigInt(values[12]),
		Unbacked:                  conv.bigInt(values[13]),
		IsolationModeTotalDebt:    conv.bigInt(values[14]),
	}
	if conv.err != nil {
		return ReserveDataResult{}, fmt.Errorf("getReserveData %s: %w", asset.Hex(), conv.err)
	}
	out.Data.Configuration = out.Configuration.Hex()
	return out, nil
}

type eModeCategoryOutput struct {
	Ltv                  uint16
	LiquidationThreshold uint16
	LiquidationBonus     uint16
	PriceSource          common.Address
	Label                string
}

// EModeCategory returns the parameters of an e-mode category.
func (p *V3Pool) EModeCategory(ctx context.Context, id uint8) (model.EModeCategoryData, error) {
	parsed, err := V3PoolABI()
	if err != nil {
		return model.EModeCategoryData{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, p.caller, p.address, parsed, "getEModeCategoryData", id)
	if err != nil {
		return model.EModeCategoryData{}, err
	}
	if len(values) != 1 {
		return model.EModeCategoryData{}, fmt.Errorf("unexpected getEModeCategoryData values: %d", len(values))
	}
	category, ok := abi.ConvertType(values[0], new(eModeCategoryOutput)).(*eModeCategoryOutput)
	if !ok {
		return model.EModeCategoryData{}, fmt.Errorf("unexpected e-mode category type %T", values[0])
	}
	return model.EModeCategoryData{
		ID:                   id,
		LTV:                  category.Ltv,
		LiquidationThreshold: category.LiquidationThreshold,
		LiquidationBonus:     category.LiquidationBonus,
		PriceSource:          category.PriceSource.Hex(),
		Label:                category.Label,
	}, nil
}

// V2Pool reads an Aave v2 LendingPool.
type V2Pool struct {
	caller  chain.Caller
	address common.Address
}

func NewV2Pool(caller chain.Caller, address common.Address) *V2Pool {
	return &V2Pool{caller: caller, address: address}
}

// ReservesList returns every reserve listed by the pool.
func (p *V2Pool) ReservesList(ctx context.Context) ([]common.Address, error) {
	parsed, err := V2PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse lending pool abi: %w", err)
	}
	return callReservesList(ctx, p.caller, p.address, parsed)
}

// ReserveData returns the raw reserve record for asset. v3-only counters stay nil.
func (p *V2Pool) ReserveData(ctx context.Context, asset common.Address) (ReserveDataResult, error) {
	parsed, err := V2PoolABI()
	if err != nil {
		return ReserveDataResult{}, fmt.Errorf("parse lending pool abi: %w", err)
	}
	values, err := callMethod(ctx, p.caller, p.address, parsed, "getReserveData", asset)
	if err != nil {
		return ReserveDataResult{}, err
	}
	if len(values) != 12 {
		return ReserveDataResult{}, fmt.Errorf("unexpected getReserveData values: %d", len(values))
	}

	var out ReserveDataResult
	var conv converter
	out.Configuration = conv.word(values[0])
	out.Data = model.PoolReserveData{
		LiquidityIndex:            conv.bigInt(values[1]),
		VariableBorrowIndex:       conv.bigInt(values[2]),
		CurrentLiquidityRate:      conv.bigInt(values[3]),
		CurrentVariableBorrowRate: conv.bigInt(values[4]),
		CurrentStableBorrowRate:   conv.bigInt(values[5]),
		LastUpdateTimestamp:       conv.uint64(values[6]),
		ATokenAddress:             conv.address(values[7]).Hex(),
		StableDebtTokenAddress:    conv.address(values[8]).Hex(),
		VariableDebtTokenAddress:  conv.address(values[9]).Hex(),
		InterestRateStrategy:      conv.address(values[10]).Hex(),
		ID:                        uint16(conv.uint64(values[11])),
	}
	if conv.err != nil {
		return ReserveDataResult{}, fmt.Errorf("getReserveData %s: %w", asset.Hex(), conv.err)
	}
	out.Data.Configuration = out.Configuration.Hex()
	return out, nil
}

// DataProvider reads reserve totals from a protocol data provider.
type DataProvider struct {
	version Version
	caller  chain.Caller
	address common.Address
}

func NewDataProvider(version Version, caller chain.Caller, address common.Address) *DataProvider {
	return &DataProvider{version: version, caller: caller, address: address}
}

// ReserveLiquidity returns supplied (v3) or available (v2) liquidity plus both debts.
func (d *DataProvider) ReserveLiquidity(ctx context.Context, asset common.Address) (model.ReserveLiquidity, error) {
	var parsed abi.ABI
	var err error
	switch d.version {
	case V3:
		parsed, err = V3DataProviderABI()
	case V2:
		parsed, err = V2DataProviderABI()
	default:
		return model.ReserveLiquidity{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, string(d.version))
	}
	if err != nil {
		return model.ReserveLiquidity{}, fmt.Errorf("parse data provider abi: %w", err)
	}

	values, err := callMethod(ctx, d.caller, d.address, parsed, "getReserveData", asset)
	if err != nil {
		return model.ReserveLiquidity{}, err
	}

	var conv converter
	var out model.ReserveLiquidity
	switch d.version {
	case V3:
		if len(values) != 12 {
			return model.ReserveLiquidity{}, fmt.Errorf("unexpected data provider values: %d", len(values))
		}
		out.TotalSupplied = conv.bigInt(values[2])
		out.TotalStableDebt = conv.bigInt(values[3])
		out.TotalVariableDebt = conv.bigInt(values[4])
	case V2:
		if len(values) != 10 {
			return model.ReserveLiquidity{}, fmt.Errorf("unexpected data provider values: %d", len(values))
		}
		out.AvailableLiquidity = conv.bigInt(values[0])
		out.TotalStableDebt = conv.bigInt(values[1])
		out.TotalVariableDebt = conv.bigInt(values[2])
	}
	if conv.err != nil {
		return model.ReserveLiquidity{}, fmt.Errorf("data provider %s: %w", asset.Hex(), conv.err)
	}
	return out, nil
}

// PriceOracle reads asset prices in the pool's base currency.
type PriceOracle struct {
	caller  chain.Caller
	address common.Address
}

func NewPriceOracle(caller chain.Caller, address common.Address) *PriceOracle {
	return &PriceOracle{caller: caller, address: address}
}

// AssetPrice returns the price of asset.
func (o *PriceOracle) AssetPrice(ctx context.Context, asset common.Address) (*big.Int, error) {
	parsed, err := PriceOracleABI()
	if err != nil {
		return nil, fmt.Errorf("parse oracle abi: %w", err)
	}
	values, err := callMethod(ctx, o.caller, o.address, parsed, "getAssetPrice", asset)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected getAssetPrice values: %d", len(values))
	}
	return asBigInt(values[0])
}

// AssetsPrices returns the prices of assets in input order.
func (o *PriceOracle) AssetsPrices(ctx context.Context, assets []common.Address) ([]*big.Int, error) {
	parsed, err := PriceOracleABI()
	if err != nil {
		return nil, fmt.Errorf("parse oracle abi: %w", err)
	}
	values, err := callMethod(ctx, o.caller, o.address, parsed, "getAssetsPrices", assets)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected getAssetsPrices values: %d", len(values))
	}
	prices, ok := values[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getAssetsPrices type %T", values[0])
	}
	if len(prices) != len(assets) {
		return nil, fmt.Errorf("getAssetsPrices returned %d prices for %d assets", len(prices), len(assets))
	}
	return prices, nil
}

func callReservesList(ctx context.Context, caller chain.Caller, pool common.Address, parsed abi.ABI) ([]common.Address, error) {
	values, err := callMethod(ctx, caller, pool, parsed, "getReservesList")
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected getReservesList values: %d", len(values))
	}
	list, ok := values[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("unexpected getReservesList type %T", values[0])
	}
	return list, nil
}

func callMethod(ctx context.Context, caller chain.Caller, target common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if caller == nil {
		return nil, fmt.Errorf("chain caller is nil")
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &target, Data: data}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}
