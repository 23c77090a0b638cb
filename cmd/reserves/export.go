package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reserveScope/internal/chain"
	"reserveScope/internal/config"
	"reserveScope/internal/history"
)

func runExport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadExport(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	block := cfg.Block
	if block == 0 {
		if block, err = chainClient.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
	}

	target, err := resolvePool(ctx, cfg.PoolConfig, chain.AtBlock(chainClient, block), logger)
	if err != nil {
		return err
	}

	if err := requireDeployed(ctx, chainClient, target.Addresses, block); err != nil {
		return err
	}

	out := cfg.Out
	if out == "" && cfg.Format != "postgres" {
		out = filepath.Join(cfg.OutDir, fmt.Sprintf("reserves_%s_%s_%d.%s",
			target.Version, target.Addresses.Pool.Hex(), block, cfg.Format))
	}
	sink, _, err := openSink(ctx, cfg.Format, out, cfg.PGDSN, target.Version, cfg.PriceDecimals, false)
	if err != nil {
		return err
	}

	runner := history.NewRunner(history.RunConfig{
		Version:          target.Version,
		Addresses:        target.Addresses,
		Assets:           target.Assets,
		FromBlock:        block,
		ToBlock:          block,
		Step:             1,
		MaxParallelCalls: cfg.MaxParallelCalls,
		CallTimeout:      cfg.CallTimeout,
	}, chainClient, sink, nil, logger)

	logger.Info("export start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("block", block),
		zap.String("format", cfg.Format),
		zap.String("out", out),
		zap.Int("max_parallel_calls", cfg.MaxParallelCalls),
	)

	if err := runner.Run(ctx); err != nil {
		sink.Close()
		return err
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	logger.Info("export complete", zap.String("out", out))
	return nil
}
