package model

import "math/big"

// ReserveLiquidity holds the data provider totals for a reserve.
// v3 providers report TotalSupplied, v2 providers report AvailableLiquidity; the
// other one stays nil.
type ReserveLiquidity struct {
	TotalSupplied      *big.Int `json:"total_supplied,omitempty"`
	AvailableLiquidity *big.Int `json:"available_liquidity,omitempty"`
	TotalStableDebt    *big.Int `json:"total_stable_debt"`
	TotalVariableDebt  *big.Int `json:"total_variable_debt"`
}

// Available returns the liquidity that can still be borrowed. For v3 reserves it is
// derived as supplied minus both debts and may be negative if the totals were read
// while the reserve was moving.
func (l ReserveLiquidity) Available() *big.Int {
	if l.AvailableLiquidity != nil {
		return new(big.Int).Set(l.AvailableLiquidity)
	}
	if l.TotalSupplied == nil {
		return nil
	}
	out := new(big.Int).Set(l.TotalSupplied)
	if l.TotalStableDebt != nil {
		out.Sub(out, l.TotalStableDebt)
	}
	if l.TotalVariableDebt != nil {
		out.Sub(out, l.TotalVariableDebt)
	}
	return out
}

// PoolReserveData is the raw record returned by the pool's getReserveData.
// Indices and rates are ray-scaled integers passed through unchanged.
type PoolReserveData struct {
	Configuration             string   `json:"configuration"`
	LiquidityIndex            *big.Int `json:"liquidity_index"`
	CurrentLiquidityRate      *big.Int `json:"current_liquidity_rate"`
	VariableBorrowIndex       *big.Int `json:"variable_borrow_index"`
	CurrentVariableBorrowRate *big.Int `json:"current_variable_borrow_rate"`
	CurrentStableBorrowRate   *big.Int `json:"current_stable_borrow_rate"`
	LastUpdateTimestamp       uint64   `json:"last_update_timestamp"`
	ID                        uint16   `json:"id"`
	ATokenAddress             string   `json:"atoken_address"`
	StableDebtTokenAddress    string   `json:"stable_debt_token_address"`
	VariableDebtTokenAddress  string   `json:"variable_debt_token_address"`
	InterestRateStrategy      string   `json:"interest_rate_strategy"`

	// v3 only.
	AccruedToTreasury      *big.Int `json:"accrued_to_treasury,omitempty"`
	Unbacked               *big.Int `json:"unbacked,omitempty"`
	IsolationModeTotalDebt *big.Int `json:"isolation_mode_total_debt,omitempty"`
}

// EModeCategoryData describes a v3 efficiency-mode category.
type EModeCategoryData struct {
	ID                   uint8  `json:"id"`
	LTV                  uint16 `json:"ltv"`
	LiquidationThreshold uint16 `json:"liquidation_threshold"`
	LiquidationBonus     uint16 `json:"liquidation_bonus"`
	PriceSource          string `json:"price_source"`
	Label                string `json:"label"`
}

// ReserveInfo is a normalized snapshot of one reserve.
type ReserveInfo struct {
	Version   string              `json:"version"`
	Asset     TokenMeta           `json:"asset"`
	AToken    TokenMeta           `json:"atoken"`
	Data      PoolReserveData     `json:"data"`
	Liquidity ReserveLiquidity    `json:"liquidity"`
	Config    ReserveConfigFields `json:"config"`
	// Price is denominated in the oracle's base currency and not rescaled.
	Price    *big.Int           `json:"price"`
	Category *EModeCategoryData `json:"category,omitempty"`
}
