package aave

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"reserveScope/internal/chain"
)

// Addresses are the contracts an assembler reads from.
type Addresses struct {
	Pool         common.Address `json:"pool"`
	DataProvider common.Address `json:"dataProvider"`
	Oracle       common.Address `json:"oracle"`
}

// AddressesProvider resolves pool contracts from a PoolAddressesProvider (v3)
// or LendingPoolAddressesProvider (v2).
type AddressesProvider struct {
	caller  chain.Caller
	address common.Address
}

func NewAddressesProvider(caller chain.Caller, address common.Address) *AddressesProvider {
	return &AddressesProvider{caller: caller, address: address}
}

// Resolve returns pool and oracle addresses. The v2 provider has no data provider
// getter, so DataProvider is only filled for v3.
func (p *AddressesProvider) Resolve(ctx context.Context, version Version) (Addresses, error) {
	parsed, err := AddressesProviderABI()
	if err != nil {
		return Addresses{}, fmt.Errorf("parse addresses provider abi: %w", err)
	}

	get := func(method string) (common.Address, error) {
		values, err := callMethod(ctx, p.caller, p.address, parsed, method)
		if err != nil {
			return common.Address{}, err
		}
		return asAddress(values[0])
	}

	var out Addresses
	switch version {
	case V3:
		if out.Pool, err = get("getPool"); err != nil {
			return Addresses{}, err
		}
		if out.DataProvider, err = get("getPoolDataProvider"); err != nil {
			return Addresses{}, err
		}
	case V2:
		if out.Pool, err = get("getLendingPool"); err != nil {
			return Addresses{}, err
		}
	default:
		return Addresses{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, string(version))
	}
	if out.Oracle, err = get("getPriceOracle"); err != nil {
		return Addresses{}, err
	}
	return out, nil
}

// Merge fills zero addresses in a from b.
func (a Addresses) Merge(b Addresses) Addresses {
	if a.Pool == (common.Address{}) {
		a.Pool = b.Pool
	}
	if a.DataProvider == (common.Address{}) {
		a.DataProvider = b.DataProvider
	}
	if a.Oracle == (common.Address{}) {
		a.Oracle = b.Oracle
	}
	return a
}

// Validate reports the first missing address.
func (a Addresses) Validate() error {
	switch {
	case a.Pool == (common.Address{}):
		return fmt.Errorf("pool address is required")
	case a.DataProvider == (common.Address{}):
		return fmt.Errorf("data provider address is required")
	case a.Oracle == (common.Address{}):
		return fmt.Errorf("oracle address is required")
	}
	return nil
}
