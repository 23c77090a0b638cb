package model

// BasicReserveFields are the configuration fields shared by every pool version
// (bits 0..79 of the configuration word).
type BasicReserveFields struct {
	LTV                    uint16 `json:"ltv"`
	LiquidationThreshold   uint16 `json:"liquidation_threshold"`
	LiquidationBonus       uint16 `json:"liquidation_bonus"`
	Decimals               uint8  `json:"decimals"`
	Active                 bool   `json:"active"`
	Frozen                 bool   `json:"frozen"`
	BorrowingEnabled       bool   `json:"borrowing_enabled"`
	StableBorrowingEnabled bool   `json:"stable_borrowing_enabled"`
	ReserveFactor          uint16 `json:"reserve_factor"`
}

// ExtendedReserveFields are the v3-only configuration fields.
type ExtendedReserveFields struct {
	Paused                 bool   `json:"paused"`
	BorrowableInIsolation  bool   `json:"borrowable_in_isolation"`
	SiloedBorrowing        bool   `json:"siloed_borrowing"`
	BorrowCap              uint64 `json:"borrow_cap"`
	SupplyCap              uint64 `json:"supply_cap"`
	LiquidationProtocolFee uint16 `json:"liquidation_protocol_fee"`
	EModeCategory          uint8  `json:"emode_category"`
	UnbackedMintCap        uint64 `json:"unbacked_mint_cap"`
	// DebtCeiling carries two implicit decimals.
	DebtCeiling uint64 `json:"debt_ceiling"`
}

// ReserveConfigFields is a decoded reserve configuration word.
// Extended is nil for v2 reserves.
type ReserveConfigFields struct {
	BasicReserveFields
	Extended *ExtendedReserveFields `json:"extended,omitempty"`
}

// EModeCategory returns the e-mode category id, 0 when the reserve has none
// or the configuration has no extended fields.
func (f ReserveConfigFields) EModeCategory() uint8 {
	if f.Extended == nil {
		return 0
	}
	return f.Extended.EModeCategory
}
