package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reserveScope/internal/chain"
	"reserveScope/internal/config"
	"reserveScope/internal/history"
)

func runHistory(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadHistory(cfgFile, cmd.Flags())
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

	// Pool contracts are resolved once at the end of the range.
	resolveAt := cfg.ToBlock
	if resolveAt == 0 {
		if resolveAt, err = chainClient.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
	}
	target, err := resolvePool(ctx, cfg.PoolConfig, chain.AtBlock(chainClient, resolveAt), logger)
	if err != nil {
		return err
	}

	if err := requireDeployed(ctx, chainClient, target.Addresses, resolveAt); err != nil {
		return err
	}

	sink, store, err := openSink(ctx, cfg.Format, cfg.Out, cfg.PGDSN, target.Version, cfg.PriceDecimals, true)
	if err != nil {
		return err
	}

	var state history.StateStore = &history.FileStateStore{Path: cfg.StateFile}
	if store != nil {
		state = &history.DBStateStore{Store: store, Name: cfg.StateName}
	}

	runner := history.NewRunner(history.RunConfig{
		Version:          target.Version,
		Addresses:        target.Addresses,
		Assets:           target.Assets,
		FromBlock:        cfg.FromBlock,
		ToBlock:          resolveAt,
		Step:             cfg.Step,
		MaxParallelCalls: cfg.MaxParallelCalls,
		CallTimeout:      cfg.CallTimeout,
	}, chainClient, sink, state, logger)

	logger.Info("history start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", resolveAt),
		zap.Uint64("step", cfg.Step),
		zap.String("format", cfg.Format),
		zap.String("out", cfg.Out),
	)

	if err := runner.Run(ctx); err != nil {
		sink.Close()
		return err
	}
	return sink.Close()
}
