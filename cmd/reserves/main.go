package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "reserves",
		Short:        "Aave reserve configuration exporter",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export every reserve of a pool at one block",
		RunE:  runExport,
	}

	addPoolFlags(exportCmd.Flags())
	exportCmd.Flags().Uint64("block", 0, "block to read at, 0 means latest")
	exportCmd.Flags().String("format", "csv", "output format (csv, jsonl, postgres)")
	exportCmd.Flags().String("out-dir", "./tmp", "output directory when --out is not set")
	exportCmd.Flags().String("out", "", "output file path")
	exportCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	exportCmd.Flags().Int32("price-decimals", 0, "oracle price decimals for price_decimal, 0 picks by version")

	root.AddCommand(exportCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Snapshot reserves every --step blocks over a block range",
		RunE:  runHistory,
	}

	addPoolFlags(historyCmd.Flags())
	historyCmd.Flags().Uint64("from", 0, "start block (inclusive), 0 means --to")
	historyCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	historyCmd.Flags().Uint64("step", 7200, "blocks between snapshots")
	historyCmd.Flags().String("format", "jsonl", "output format (csv, jsonl, postgres)")
	historyCmd.Flags().String("out", "", "output file path, default ./tmp/history.<format>; a JSONL copy for postgres")
	historyCmd.Flags().String("pg-dsn", "", "Postgres DSN, also used for progress state")
	historyCmd.Flags().String("state-file", "./tmp/history_state.json", "local state file when not using postgres")
	historyCmd.Flags().String("state-name", "reserves_history", "state row name in postgres")
	historyCmd.Flags().Int32("price-decimals", 0, "oracle price decimals for price_decimal, 0 picks by version")

	root.AddCommand(historyCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode [word]",
		Short: "Decode a reserve configuration word offline",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("version", "v3", "pool version (v2, v3)")
	decodeCmd.Flags().String("word", "", "configuration word, 0x-prefixed hex or decimal")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPoolFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "Ethereum RPC URL")
	flags.String("version", "v3", "pool version (v2, v3)")
	flags.String("provider", "", "PoolAddressesProvider (v3) or LendingPoolAddressesProvider (v2)")
	flags.String("pool", "", "pool address, overrides the provider")
	flags.String("data-provider", "", "protocol data provider address (required for v2)")
	flags.String("oracle", "", "price oracle address, overrides the provider")
	flags.StringSlice("asset", nil, "restrict to these reserves (comma-separated)")
	flags.Int("max-parallel-calls", 4, "concurrent reads per reserve, 1 reads sequentially")
	flags.Duration("call-timeout", 2*time.Minute, "timeout for the reads of one block")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
