package aave

import (
	"github.com/holiman/uint256"

	"reserveScope/internal/model"
)

// Configuration masks. Each mask has every bit set except the field's bits.
const (
	LTVMask                    = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF0000"
	LiquidationThresholdMask   = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF0000FFFF"
	LiquidationBonusMask       = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF0000FFFFFFFF"
	DecimalsMask               = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00FFFFFFFFFFFF"
	ActiveMask                 = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFFFFFFFFFF"
	FrozenMask                 = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFDFFFFFFFFFFFFFF"
	BorrowingMask              = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFBFFFFFFFFFFFFFF"
	StableBorrowingMask        = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF7FFFFFFFFFFFFFF"
	PausedMask                 = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFFFFFFFFFFF"
	BorrowableInIsolationMask  = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFDFFFFFFFFFFFFFFF"
	SiloedBorrowingMask        = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFBFFFFFFFFFFFFFFF"
	ReserveFactorMask          = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF0000FFFFFFFFFFFFFFFF"
	BorrowCapMask              = "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF000000000FFFFFFFFFFFFFFFFFFFF"
	SupplyCapMask              = "0xFFFFFFFFFFFFFFFFFFFFFFFFFF000000000FFFFFFFFFFFFFFFFFFFFFFFFFFFFF"
	LiquidationProtocolFeeMask = "0xFFFFFFFFFFFFFFFFFFFFFF0000FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"
	EModeCategoryMask          = "0xFFFFFFFFFFFFFFFFFFFF00FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"
	UnbackedMintCapMask        = "0xFFFFFFFFFFF000000000FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"
	DebtCeilingMask            = "0xF0000000000FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"
)

// Largest values each field width can hold. The decoder does not enforce them.
const (
	MaxValidLTV                    = 65535
	MaxValidLiquidationThreshold   = 65535
	MaxValidLiquidationBonus       = 65535
	MaxValidDecimals               = 255
	MaxValidReserveFactor          = 65535
	MaxValidBorrowCap              = 68719476735
	MaxValidSupplyCap              = 68719476735
	MaxValidLiquidationProtocolFee = 65535
	MaxValidEModeCategory          = 255
	MaxValidUnbackedMintCap        = 68719476735
	MaxValidDebtCeiling            = 1099511627775

	DebtCeilingDecimals = 2
)

// FieldSpec describes one field of the configuration word.
type FieldSpec struct {
	Name   string
	Offset uint
	Width  uint
	Mask   *uint256.Int

	assign func(*model.ReserveConfigFields, *uint256.Int)
}

// IsFlag reports whether the field is a single bit.
func (f FieldSpec) IsFlag() bool {
	return f.Width == 1
}

func field(name string, offset, width uint, mask string, assign func(*model.ReserveConfigFields, *uint256.Int)) FieldSpec {
	return FieldSpec{
		Name:   name,
		Offset: offset,
		Width:  width,
		Mask:   uint256.MustFromHex(mask),
		assign: assign,
	}
}

func extended(f *model.ReserveConfigFields) *model.ExtendedReserveFields {
	if f.Extended == nil {
		f.Extended = &model.ExtendedReserveFields{}
	}
	return f.Extended
}

// BasicFields is the layout shared by v2 and v3, all below bit 80.
var BasicFields = []FieldSpec{
	field("ltv", 0, 16, LTVMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		f.LTV = uint16(v.Uint64())
	}),
	field("liquidationThreshold", 16, 16, LiquidationThresholdMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		f.LiquidationThreshold = uint16(v.Uint64())
	}),
	field("liquidationBonus", 32, 16, LiquidationBonusMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		f.LiquidationBonus = uint16(v.Uint64())
	}),
	field("decimals", 48, 8, DecimalsMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		f.Decimals = uint8(v.Uint64())
	}),
	field("active", 56, 1, ActiveMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		f.Active = !v.IsZero()
	}),
	field("frozen", 57, 1, FrozenMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		f.Frozen = !v.IsZero()
	}),
	field("borrowingEnabled", 58, 1, BorrowingMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		f.BorrowingEnabled = !v.IsZero()
	}),
	field("stableBorrowingEnabled", 59, 1, StableBorrowingMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		f.StableBorrowingEnabled = !v.IsZero()
	}),
	field("reserveFactor", 64, 16, ReserveFactorMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		f.ReserveFactor = uint16(v.Uint64())
	}),
}

// ExtendedFields is the v3-only part of the layout.
var ExtendedFields = []FieldSpec{
	field("paused", 60, 1, PausedMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		extended(f).Paused = !v.IsZero()
	}),
	field("borrowableInIsolation", 61, 1, BorrowableInIsolationMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		extended(f).BorrowableInIsolation = !v.IsZero()
	}),
	field("siloedBorrowing", 62, 1, SiloedBorrowingMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		extended(f).SiloedBorrowing = !v.IsZero()
	}),
	field("borrowCap", 80, 36, BorrowCapMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		extended(f).BorrowCap = v.Uint64()
	}),
	field("supplyCap", 116, 36, SupplyCapMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		extended(f).SupplyCap = v.Uint64()
	}),
	field("liquidationProtocolFee", 152, 16, LiquidationProtocolFeeMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		extended(f).LiquidationProtocolFee = uint16(v.Uint64())
	}),
	field("eModeCategory", 168, 8, EModeCategoryMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		extended(f).EModeCategory = uint8(v.Uint64())
	}),
	field("unbackedMintCap", 176, 36, UnbackedMintCapMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		extended(f).UnbackedMintCap = v.Uint64()
	}),
	field("debtCeiling", 212, 40, DebtCeilingMask, func(f *model.ReserveConfigFields, v *uint256.Int) {
		extended(f).DebtCeiling = v.Uint64()
	}),
}
