package export

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"reserveScope/internal/aave"
	"reserveScope/internal/model"
)

// Format controls presentation-only columns.
type Format struct {
	// PriceDecimals is the oracle base currency precision used for price_decimal.
	PriceDecimals int32
}

// Column is one CSV column.
type Column struct {
	Name  string
	Value func(s model.ReserveSnapshot, f Format) string
}

func col(name string, value func(s model.ReserveSnapshot, f Format) string) Column {
	return Column{Name: name, Value: value}
}

func info(name string, value func(i model.ReserveInfo) string) Column {
	return col(name, func(s model.ReserveSnapshot, _ Format) string { return value(s.Info) })
}

func extended(name string, value func(e *model.ExtendedReserveFields) string) Column {
	return info(name, func(i model.ReserveInfo) string {
		if i.Config.Extended == nil {
			return ""
		}
		return value(i.Config.Extended)
	})
}

func category(name string, value func(c *model.EModeCategoryData) string) Column {
	return info(name, func(i model.ReserveInfo) string {
		if i.Category == nil {
			return ""
		}
		return value(i.Category)
	})
}

var leadingColumns = []Column{
	col("block_number", func(s model.ReserveSnapshot, _ Format) string { return formatUint(s.BlockNumber) }),
	col("timestamp", func(s model.ReserveSnapshot, _ Format) string { return formatUint(s.Timestamp) }),
	info("asset_symbol", func(i model.ReserveInfo) string { return i.Asset.Symbol }),
	info("asset_name", func(i model.ReserveInfo) string { return i.Asset.Name }),
	info("asset_address", func(i model.ReserveInfo) string { return i.Asset.Address }),
	info("atoken_symbol", func(i model.ReserveInfo) string { return i.AToken.Symbol }),
	info("atoken_name", func(i model.ReserveInfo) string { return i.AToken.Name }),
	info("atoken_address", func(i model.ReserveInfo) string { return i.AToken.Address }),
}

var debtColumns = []Column{
	info("total_stable_debt", func(i model.ReserveInfo) string { return formatBig(i.Liquidity.TotalStableDebt) }),
	info("total_variable_debt", func(i model.ReserveInfo) string { return formatBig(i.Liquidity.TotalVariableDebt) }),
	info("available_liquidity_units", func(i model.ReserveInfo) string {
		return formatUnits(i.Liquidity.Available(), int32(i.Config.Decimals))
	}),
}

var basicColumns = []Column{
	info("ltv", func(i model.ReserveInfo) string { return formatUint(uint64(i.Config.LTV)) }),
	info("ltv_pct", func(i model.ReserveInfo) string { return formatBps(i.Config.LTV) }),
	info("liquidation_threshold", func(i model.ReserveInfo) string { return formatUint(uint64(i.Config.LiquidationThreshold)) }),
	info("liquidation_threshold_pct", func(i model.ReserveInfo) string { return formatBps(i.Config.LiquidationThreshold) }),
	info("liquidation_bonus", func(i model.ReserveInfo) string { return formatUint(uint64(i.Config.LiquidationBonus)) }),
	info("decimals", func(i model.ReserveInfo) string { return formatUint(uint64(i.Config.Decimals)) }),
	info("reserve_factor", func(i model.ReserveInfo) string { return formatUint(uint64(i.Config.ReserveFactor)) }),
	info("active", func(i model.ReserveInfo) string { return strconv.FormatBool(i.Config.Active) }),
	info("frozen", func(i model.ReserveInfo) string { return strconv.FormatBool(i.Config.Frozen) }),
	info("borrowing_enabled", func(i model.ReserveInfo) string { return strconv.FormatBool(i.Config.BorrowingEnabled) }),
	info("stable_borrowing_enabled", func(i model.ReserveInfo) string {
		return strconv.FormatBool(i.Config.StableBorrowingEnabled)
	}),
}

var extendedColumns = []Column{
	extended("paused", func(e *model.ExtendedReserveFields) string { return strconv.FormatBool(e.Paused) }),
	extended("borrowable_in_isolation", func(e *model.ExtendedReserveFields) string {
		return strconv.FormatBool(e.BorrowableInIsolation)
	}),
	extended("siloed_borrowing", func(e *model.ExtendedReserveFields) string { return strconv.FormatBool(e.SiloedBorrowing) }),
	extended("borrow_cap", func(e *model.ExtendedReserveFields) string { return formatUint(e.BorrowCap) }),
	extended("supply_cap", func(e *model.ExtendedReserveFields) string { return formatUint(e.SupplyCap) }),
	extended("liquidation_protocol_fee", func(e *model.ExtendedReserveFields) string {
		return formatUint(uint64(e.LiquidationProtocolFee))
	}),
	extended("emode_category", func(e *model.ExtendedReserveFields) string { return formatUint(uint64(e.EModeCategory)) }),
	extended("unbacked_mint_cap", func(e *model.ExtendedReserveFields) string { return formatUint(e.UnbackedMintCap) }),
	extended("debt_ceiling", func(e *model.ExtendedReserveFields) string {
		return decimal.NewFromBigInt(new(big.Int).SetUint64(e.DebtCeiling), -aave.DebtCeilingDecimals).StringFixed(aave.DebtCeilingDecimals)
	}),
}

var priceColumns = []Column{
	info("price", func(i model.ReserveInfo) string { return formatBig(i.Price) }),
	col("price_decimal", func(s model.ReserveSnapshot, f Format) string { return formatUnits(s.Info.Price, f.PriceDecimals) }),
}

var poolDataColumns = []Column{
	info("liquidity_index", func(i model.ReserveInfo) string { return formatBig(i.Data.LiquidityIndex) }),
	info("current_liquidity_rate", func(i model.ReserveInfo) string { return formatBig(i.Data.CurrentLiquidityRate) }),
	info("variable_borrow_index", func(i model.ReserveInfo) string { return formatBig(i.Data.VariableBorrowIndex) }),
	info("current_variable_borrow_rate", func(i model.ReserveInfo) string { return formatBig(i.Data.CurrentVariableBorrowRate) }),
	info("current_stable_borrow_rate", func(i model.ReserveInfo) string { return formatBig(i.Data.CurrentStableBorrowRate) }),
	info("last_update_timestamp", func(i model.ReserveInfo) string { return formatUint(i.Data.LastUpdateTimestamp) }),
	info("reserve_id", func(i model.ReserveInfo) string { return formatUint(uint64(i.Data.ID)) }),
	info("configuration", func(i model.ReserveInfo) string { return i.Data.Configuration }),
}

var v3PoolDataColumns = []Column{
	info("accrued_to_treasury", func(i model.ReserveInfo) string { return formatBig(i.Data.AccruedToTreasury) }),
	info("unbacked", func(i model.ReserveInfo) string { return formatBig(i.Data.Unbacked) }),
	info("isolation_mode_total_debt", func(i model.ReserveInfo) string { return formatBig(i.Data.IsolationModeTotalDebt) }),
}

var categoryColumns = []Column{
	category("emode_ltv", func(c *model.EModeCategoryData) string { return formatUint(uint64(c.LTV)) }),
	category("emode_liquidation_threshold", func(c *model.EModeCategoryData) string {
		return formatUint(uint64(c.LiquidationThreshold))
	}),
	category("emode_liquidation_bonus", func(c *model.EModeCategoryData) string { return formatUint(uint64(c.LiquidationBonus)) }),
	category("emode_price_source", func(c *model.EModeCategoryData) string { return c.PriceSource }),
	category("emode_label", func(c *model.EModeCategoryData) string { return c.Label }),
}

// V2Columns is the fixed column order of v2 exports.
var V2Columns = concat(
	leadingColumns,
	[]Column{info("available_liquidity", func(i model.ReserveInfo) string { return formatBig(i.Liquidity.AvailableLiquidity) })},
	debtColumns,
	basicColumns,
	priceColumns,
	poolDataColumns,
)

// V3Columns is the fixed column order of v3 exports.
var V3Columns = concat(
	leadingColumns,
	[]Column{info("total_supplied", func(i model.ReserveInfo) string { return formatBig(i.Liquidity.TotalSupplied) })},
	debtColumns,
	basicColumns,
	extendedColumns,
	priceColumns,
	poolDataColumns,
	v3PoolDataColumns,
	categoryColumns,
)

// ColumnsFor returns the column order for version.
func ColumnsFor(version aave.Version) ([]Column, error) {
	switch version {
	case aave.V2:
		return V2Columns, nil
	case aave.V3:
		return V3Columns, nil
	default:
		return nil, fmt.Errorf("%w: %q", aave.ErrUnsupportedVersion, string(version))
	}
}

// Header returns the column names.
func Header(columns []Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Name
	}
	return out
}

func concat(groups ...[]Column) []Column {
	var out []Column
	for _, group := range groups {
		out = append(out, group...)
	}
	return out
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func formatBig(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// formatBps renders basis points as a percentage with two decimals.
func formatBps(v uint16) string {
	return decimal.New(int64(v), -2).StringFixed(2)
}

// formatUnits scales an integer amount down by decimals.
func formatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return ""
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}
