package aave

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// converter keeps the first conversion error so long output lists read linearly.
type converter struct {
	err error
}

func (c *converter) bigInt(value interface{}) *big.Int {
	out, err := asBigInt(value)
	if err != nil {
		c.fail(err)
		return nil
	}
	return out
}

func (c *converter) uint64(value interface{}) uint64 {
	out, err := asBigInt(value)
	if err != nil {
		c.fail(err)
		return 0
	}
	if !out.IsUint64() {
		c.fail(fmt.Errorf("value exceeds uint64: %s", out.String()))
		return 0
	}
	return out.Uint64()
}

func (c *converter) word(value interface{}) *uint256.Int {
	out, err := asBigInt(value)
	if err != nil {
		c.fail(err)
		return new(uint256.Int)
	}
	word, overflow := uint256.FromBig(out)
	if overflow {
		c.fail(fmt.Errorf("configuration word exceeds 256 bits"))
		return new(uint256.Int)
	}
	return word
}

func (c *converter) address(value interface{}) common.Address {
	out, err := asAddress(value)
	if err != nil {
		c.fail(err)
	}
	return out
}

func (c *converter) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}
