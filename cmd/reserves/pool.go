package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"reserveScope/internal/aave"
	"reserveScope/internal/chain"
	"reserveScope/internal/config"
	"reserveScope/internal/export"
	"reserveScope/internal/storage"
	"reserveScope/internal/storage/postgres"
)

type poolTarget struct {
	Version   aave.Version
	Addresses aave.Addresses
	Assets    []common.Address
}

// resolvePool combines explicit addresses with the ones the provider reports.
func resolvePool(ctx context.Context, cfg config.PoolConfig, caller chain.Caller, logger *zap.Logger) (poolTarget, error) {
	version, err := aave.ParseVersion(cfg.Version)
	if err != nil {
		return poolTarget{}, err
	}

	var explicit aave.Addresses
	if explicit.Pool, err = aave.ParseAddress(cfg.Pool); err != nil {
		return poolTarget{}, fmt.Errorf("pool: %w", err)
	}
	if explicit.DataProvider, err = aave.ParseAddress(cfg.DataProvider); err != nil {
		return poolTarget{}, fmt.Errorf("data provider: %w", err)
	}
	if explicit.Oracle, err = aave.ParseAddress(cfg.Oracle); err != nil {
		return poolTarget{}, fmt.Errorf("oracle: %w", err)
	}
	provider, err := aave.ParseAddress(cfg.Provider)
	if err != nil {
		return poolTarget{}, fmt.Errorf("provider: %w", err)
	}

	addrs := explicit
	if provider != (common.Address{}) {
		resolved, err := aave.NewAddressesProvider(caller, provider).Resolve(ctx, version)
		if err != nil {
			return poolTarget{}, fmt.Errorf("resolve provider %s: %w", provider.Hex(), err)
		}
		addrs = explicit.Merge(resolved)
	}
	if err := addrs.Validate(); err != nil {
		return poolTarget{}, err
	}

	assets, err := aave.ParseAddresses(cfg.Assets)
	if err != nil {
		return poolTarget{}, err
	}

	logger.Info("pool resolved",
		zap.String("version", string(version)),
		zap.String("pool", addrs.Pool.Hex()),
		zap.String("data_provider", addrs.DataProvider.Hex()),
		zap.String("oracle", addrs.Oracle.Hex()),
		zap.Int("assets", len(assets)),
	)
	return poolTarget{Version: version, Addresses: addrs, Assets: assets}, nil
}

func priceDecimals(configured int32, version aave.Version) int32 {
	if configured > 0 {
		return configured
	}
	if version == aave.V2 {
		return 18
	}
	return 8
}

// openSink builds the output for format. The returned store is non-nil for postgres,
// which also keeps a JSONL copy at path when one is given. Resumable runs append to
// existing files; one-shot runs start them over.
func openSink(ctx context.Context, format, path, dsn string, version aave.Version, decimals int32, resume bool) (storage.Storage, *postgres.Store, error) {
	switch format {
	case "csv":
		columns, err := export.ColumnsFor(version)
		if err != nil {
			return nil, nil, err
		}
		openCSV := export.CreateCSVFile
		if resume {
			openCSV = export.AppendCSVFile
		}
		writer, err := openCSV(path, columns, export.Format{PriceDecimals: priceDecimals(decimals, version)})
		if err != nil {
			return nil, nil, err
		}
		return writer, nil, nil
	case "jsonl":
		jsonl, err := openJsonl(path, resume)
		if err != nil {
			return nil, nil, err
		}
		return jsonl, nil, nil
	case "postgres":
		store, err := postgres.NewStore(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		if path == "" {
			return store, store, nil
		}
		jsonl, err := openJsonl(path, resume)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return storage.Multi{store, jsonl}, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func openJsonl(path string, resume bool) (*storage.JsonlStorage, error) {
	jsonl := storage.NewJsonlStorage(path)
	if !resume {
		if err := jsonl.Reset(); err != nil {
			return nil, err
		}
	}
	return jsonl, nil
}

func requireDeployed(ctx context.Context, client *chain.Client, addrs aave.Addresses, block uint64) error {
	for _, addr := range []common.Address{addrs.Pool, addrs.DataProvider, addrs.Oracle} {
		if err := client.RequireCode(ctx, addr, block); err != nil {
			return err
		}
	}
	return nil
}
