package aave

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"reserveScope/internal/model"
)

// Version identifies the pool generation a reserve belongs to.
type Version string

const (
	V2 Version = "v2"
	V3 Version = "v3"
)

var ErrUnsupportedVersion = errors.New("unsupported pool version")

// ParseVersion accepts "v2"/"2" and "v3"/"3" in any case.
func ParseVersion(input string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "v2", "2":
		return V2, nil
	case "v3", "3":
		return V3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedVersion, input)
	}
}

// Fields returns the configuration layout decoded for version.
func (v Version) Fields() ([]FieldSpec, error) {
	switch v {
	case V2:
		return BasicFields, nil
	case V3:
		out := make([]FieldSpec, 0, len(BasicFields)+len(ExtendedFields))
		out = append(out, BasicFields...)
		return append(out, ExtendedFields...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, string(v))
	}
}

var allOnes = new(uint256.Int).Not(uint256.NewInt(0))

// ExtractField isolates a field of word: (word AND NOT maskComplement) >> shift.
func ExtractField(word, maskComplement *uint256.Int, shift uint) *uint256.Int {
	mask := new(uint256.Int).Xor(maskComplement, allOnes)
	out := new(uint256.Int).And(word, mask)
	return out.Rsh(out, shift)
}

// ExtractFlag reports whether any bit outside maskComplement is set in word.
func ExtractFlag(word, maskComplement *uint256.Int) bool {
	return !ExtractField(word, maskComplement, 0).IsZero()
}

// Decode unpacks word using the layout for version.
func Decode(version Version, word *uint256.Int) (model.ReserveConfigFields, error) {
	specs, err := version.Fields()
	if err != nil {
		return model.ReserveConfigFields{}, err
	}
	return decodeFields(specs, word), nil
}

// DecodeV2 unpacks the fields shared by every pool version.
func DecodeV2(word *uint256.Int) model.ReserveConfigFields {
	return decodeFields(BasicFields, word)
}

// DecodeV3 unpacks the full v3 layout. Extended is always set.
func DecodeV3(word *uint256.Int) model.ReserveConfigFields {
	fields := decodeFields(BasicFields, word)
	fields.Extended = &model.ExtendedReserveFields{}
	for _, spec := range ExtendedFields {
		decodeField(&fields, spec, word)
	}
	return fields
}

func decodeFields(specs []FieldSpec, word *uint256.Int) model.ReserveConfigFields {
	var fields model.ReserveConfigFields
	for _, spec := range specs {
		decodeField(&fields, spec, word)
	}
	return fields
}

func decodeField(fields *model.ReserveConfigFields, spec FieldSpec, word *uint256.Int) {
	if spec.IsFlag() {
		flag := uint256.NewInt(0)
		if ExtractFlag(word, spec.Mask) {
			flag.SetOne()
		}
		spec.assign(fields, flag)
		return
	}
	spec.assign(fields, ExtractField(word, spec.Mask, spec.Offset))
}

// ParseConfigWord reads a configuration word written as 0x-prefixed hex or decimal.
func ParseConfigWord(input string) (*uint256.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty configuration word")
	}
	base := 10
	if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
		input, base = input[2:], 16
	}
	value, ok := new(big.Int).SetString(input, base)
	if !ok {
		return nil, fmt.Errorf("invalid configuration word: %s", input)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("negative configuration word: %s", input)
	}
	word, overflow := uint256.FromBig(value)
	if overflow {
		return nil, fmt.Errorf("configuration word exceeds 256 bits: %s", input)
	}
	return word, nil
}
