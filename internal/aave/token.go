package aave

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"reserveScope/internal/chain"
	"reserveScope/internal/model"
)

// ERC20Metadata reads symbol, name and decimals of any token.
type ERC20Metadata struct {
	caller chain.Caller
	logger *zap.Logger
}

func NewERC20Metadata(caller chain.Caller, logger *zap.Logger) *ERC20Metadata {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ERC20Metadata{caller: caller, logger: logger}
}

// TokenMeta loads token metadata. Legacy tokens returning bytes32 strings are
// retried with the bytes32 encoding; failing both is an error.
func (m *ERC20Metadata) TokenMeta(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token.Hex()}

	stringABI, err := erc20ABIString.get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32.get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := callMethod(ctx, m.caller, token, stringABI, "decimals")
	if err != nil {
		return meta, fmt.Errorf("token %s: %w", token.Hex(), err)
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return meta, fmt.Errorf("token %s decimals: %w", token.Hex(), err)
	}
	meta.Decimals = decimals

	if meta.Symbol, err = m.text(ctx, token, "symbol", stringABI, bytes32ABI); err != nil {
		return meta, err
	}
	if meta.Name, err = m.text(ctx, token, "name", stringABI, bytes32ABI); err != nil {
		return meta, err
	}
	return meta, nil
}

func (m *ERC20Metadata) text(ctx context.Context, token common.Address, method string, stringABI, bytes32ABI abi.ABI) (string, error) {
	values, err := callMethod(ctx, m.caller, token, stringABI, method)
	if err == nil {
		if out, ok := values[0].(string); ok {
			return out, nil
		}
		err = fmt.Errorf("unexpected %s type %T", method, values[0])
	}
	m.logger.Debug("string call failed, trying bytes32",
		zap.String("token", token.Hex()),
		zap.String("method", method),
		zap.Error(err),
	)

	values, fallbackErr := callMethod(ctx, m.caller, token, bytes32ABI, method)
	if fallbackErr != nil {
		return "", fmt.Errorf("token %s %s: %w", token.Hex(), method, err)
	}
	out, ok := bytes32ToString(values[0])
	if !ok {
		return "", fmt.Errorf("token %s %s: unexpected type %T", token.Hex(), method, values[0])
	}
	return out, nil
}
