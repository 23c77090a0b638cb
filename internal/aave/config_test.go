package aave

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"reserveScope/internal/model"
)

func wordWith(value uint64, offset uint) *uint256.Int {
	return new(uint256.Int).Lsh(uint256.NewInt(value), offset)
}

func maxValue(spec FieldSpec) uint64 {
	return (uint64(1) << spec.Width) - 1
}

func boolValue(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func fieldValue(t *testing.T, f model.ReserveConfigFields, name string) uint64 {
	t.Helper()
	ext := f.Extended
	if ext == nil {
		ext = &model.ExtendedReserveFields{}
	}
	switch name {
	case "ltv":
		return uint64(f.LTV)
	case "liquidationThreshold":
		return uint64(f.LiquidationThreshold)
	case "liquidationBonus":
		return uint64(f.LiquidationBonus)
	case "decimals":
		return uint64(f.Decimals)
	case "active":
		return boolValue(f.Active)
	case "frozen":
		return boolValue(f.Frozen)
	case "borrowingEnabled":
		return boolValue(f.BorrowingEnabled)
	case "stableBorrowingEnabled":
		return boolValue(f.StableBorrowingEnabled)
	case "reserveFactor":
		return uint64(f.ReserveFactor)
	case "paused":
		return boolValue(ext.Paused)
	case "borrowableInIsolation":
		return boolValue(ext.BorrowableInIsolation)
	case "siloedBorrowing":
		return boolValue(ext.SiloedBorrowing)
	case "borrowCap":
		return ext.BorrowCap
	case "supplyCap":
		return ext.SupplyCap
	case "liquidationProtocolFee":
		return uint64(ext.LiquidationProtocolFee)
	case "eModeCategory":
		return uint64(ext.EModeCategory)
	case "unbackedMintCap":
		return ext.UnbackedMintCap
	case "debtCeiling":
		return ext.DebtCeiling
	}
	t.Fatalf("unknown field %q", name)
	return 0
}

func v3Fields(t *testing.T) []FieldSpec {
	t.Helper()
	specs, err := V3.Fields()
	require.NoError(t, err)
	return specs
}

func TestMasksMatchFieldLayout(t *testing.T) {
	for _, spec := range v3Fields(t) {
		fieldBits := new(uint256.Int).Lsh(uint256.NewInt(maxValue(spec)), spec.Offset)
		want := new(uint256.Int).Xor(fieldBits, allOnes)
		require.Truef(t, spec.Mask.Eq(want), "%s mask %s, want %s", spec.Name, spec.Mask.Hex(), want.Hex())
	}
}

func TestBasicFieldsBelowBit80(t *testing.T) {
	require.Len(t, BasicFields, 9)
	require.Len(t, ExtendedFields, 9)
	for _, spec := range BasicFields {
		require.LessOrEqualf(t, spec.Offset+spec.Width, uint(80), "%s reaches past bit 80", spec.Name)
	}
}

func TestMaxValidConstantsMatchWidths(t *testing.T) {
	widths := map[string]uint64{}
	for _, spec := range v3Fields(t) {
		widths[spec.Name] = maxValue(spec)
	}
	require.Equal(t, uint64(MaxValidLTV), widths["ltv"])
	require.Equal(t, uint64(MaxValidLiquidationThreshold), widths["liquidationThreshold"])
	require.Equal(t, uint64(MaxValidLiquidationBonus), widths["liquidationBonus"])
	require.Equal(t, uint64(MaxValidDecimals), widths["decimals"])
	require.Equal(t, uint64(MaxValidReserveFactor), widths["reserveFactor"])
	require.Equal(t, uint64(MaxValidBorrowCap), widths["borrowCap"])
	require.Equal(t, uint64(MaxValidSupplyCap), widths["supplyCap"])
	require.Equal(t, uint64(MaxValidLiquidationProtocolFee), widths["liquidationProtocolFee"])
	require.Equal(t, uint64(MaxValidEModeCategory), widths["eModeCategory"])
	require.Equal(t, uint64(MaxValidUnbackedMintCap), widths["unbackedMintCap"])
	require.Equal(t, uint64(MaxValidDebtCeiling), widths["debtCeiling"])
}

func TestDecodeSingleField(t *testing.T) {
	specs := v3Fields(t)
	for _, spec := range specs {
		for _, value := range []uint64{1, maxValue(spec)} {
			fields := DecodeV3(wordWith(value, spec.Offset))
			for _, other := range specs {
				want := uint64(0)
				if other.Name == spec.Name {
					want = value
				}
				require.Equalf(t, want, fieldValue(t, fields, other.Name),
					"set %s=%d, read %s", spec.Name, value, other.Name)
			}
		}
	}
}

func TestDecodeFieldPairsAreIndependent(t *testing.T) {
	specs := v3Fields(t)
	for i, a := range specs {
		for j, b := range specs {
			if i == j {
				continue
			}
			word := new(uint256.Int).Or(wordWith(maxValue(a), a.Offset), wordWith(maxValue(b), b.Offset))
			fields := DecodeV3(word)
			for _, other := range specs {
				want := uint64(0)
				switch other.Name {
				case a.Name:
					want = maxValue(a)
				case b.Name:
					want = maxValue(b)
				}
				require.Equalf(t, want, fieldValue(t, fields, other.Name),
					"set %s and %s, read %s", a.Name, b.Name, other.Name)
			}
		}
	}
}

func TestDecodeLTVScenario(t *testing.T) {
	word, err := ParseConfigWord("0x00000000000000000000000000000000000000000000000000000000000001F4")
	require.NoError(t, err)

	fields := DecodeV3(word)
	require.Equal(t, uint16(500), fields.LTV)
	require.Zero(t, fields.LiquidationThreshold)
	require.False(t, fields.Active)
}

func TestDecodeActiveScenario(t *testing.T) {
	fields := DecodeV3(wordWith(1, 56))
	require.True(t, fields.Active)
	require.Zero(t, fields.LTV)
	require.Zero(t, fields.Decimals)
	require.False(t, fields.Frozen)
}

func TestDecodeV2IgnoresExtendedBits(t *testing.T) {
	high := new(uint256.Int).Lsh(allOnes, 80)
	high.Or(high, wordWith(0x7, 60))

	fields := DecodeV2(high)
	require.Nil(t, fields.Extended)
	require.Equal(t, model.BasicReserveFields{}, fields.BasicReserveFields)

	all := DecodeV2(allOnes)
	require.Nil(t, all.Extended)
	require.Equal(t, uint16(MaxValidLTV), all.LTV)
	require.Equal(t, uint16(MaxValidReserveFactor), all.ReserveFactor)
	require.True(t, all.StableBorrowingEnabled)
}

func TestDecodeIsIdempotent(t *testing.T) {
	const hex = "0x1e2400000000000103e80001e84800000f424003e805122904203a1f40"
	word := uint256.MustFromHex(hex)
	first := DecodeV3(word)
	_ = DecodeV2(uint256.NewInt(12345))
	second := DecodeV3(word)
	require.Equal(t, first, second)
	require.Equal(t, hex, word.Hex())

	require.Equal(t, uint16(8000), first.LTV)
	require.Equal(t, uint16(8250), first.LiquidationThreshold)
	require.Equal(t, uint16(10500), first.LiquidationBonus)
	require.Equal(t, uint8(18), first.Decimals)
	require.True(t, first.Active)
	require.True(t, first.BorrowingEnabled)
	require.False(t, first.Frozen)
	require.Equal(t, uint16(1000), first.ReserveFactor)
	require.NotNil(t, first.Extended)
	require.Equal(t, uint64(1000000), first.Extended.BorrowCap)
	require.Equal(t, uint64(2000000), first.Extended.SupplyCap)
	require.Equal(t, uint16(1000), first.Extended.LiquidationProtocolFee)
	require.Equal(t, uint8(1), first.Extended.EModeCategory)
	require.Zero(t, first.Extended.UnbackedMintCap)
	require.Equal(t, uint64(123456), first.Extended.DebtCeiling)
}

func TestDecodeVersion(t *testing.T) {
	word := wordWith(3, 168)

	fields, err := Decode(V3, word)
	require.NoError(t, err)
	require.Equal(t, uint8(3), fields.EModeCategory())

	fields, err = Decode(V2, word)
	require.NoError(t, err)
	require.Zero(t, fields.EModeCategory())

	_, err = Decode(Version("v4"), word)
	require.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestExtractField(t *testing.T) {
	word := uint256.MustFromHex("0x1e1d4c1f40")
	require.Equal(t, uint64(8000), ExtractField(word, uint256.MustFromHex(LTVMask), 0).Uint64())
	require.Equal(t, uint64(0x1d4c), ExtractField(word, uint256.MustFromHex(LiquidationThresholdMask), 16).Uint64())
	require.Equal(t, uint64(0x1e), ExtractField(word, uint256.MustFromHex(LiquidationBonusMask), 32).Uint64())
	require.False(t, ExtractFlag(word, uint256.MustFromHex(ActiveMask)))
}

func TestParseConfigWord(t *testing.T) {
	word, err := ParseConfigWord("0x1F4")
	require.NoError(t, err)
	require.Equal(t, uint64(500), word.Uint64())

	word, err = ParseConfigWord(" 0123 ")
	require.NoError(t, err)
	require.Equal(t, uint64(123), word.Uint64())

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	for _, input := range []string{"", "-1", "0xzz", tooBig.String()} {
		_, err := ParseConfigWord(input)
		require.Errorf(t, err, "input %q", input)
	}
}

func TestParseVersion(t *testing.T) {
	for input, want := range map[string]Version{"v2": V2, "2": V2, "V3": V3, " 3 ": V3} {
		got, err := ParseVersion(input)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseVersion("v1")
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}
