package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func exportFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("export", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.String("version", "v3", "")
	flags.String("pool", "", "")
	flags.StringSlice("asset", nil, "")
	flags.Int("max-parallel-calls", 4, "")
	flags.String("format", "csv", "")
	flags.Uint64("block", 0, "")
	return flags
}

func TestLoadExportPrecedence(t *testing.T) {
	t.Setenv("RESERVES_RPC", "http://env:8545")
	t.Setenv("RESERVES_VERSION", "v2")
	t.Setenv("RESERVES_ASSET", "0xaa, 0xbb")
	t.Setenv("RESERVES_CALL_TIMEOUT", "30s")

	flags := exportFlags()
	require.NoError(t, flags.Parse([]string{"--version=v3", "--block=19000000"}))

	cfg, err := LoadExport("", flags)
	require.NoError(t, err)
	require.Equal(t, "http://env:8545", cfg.RPCURL)
	require.Equal(t, "v3", cfg.Version)
	require.Equal(t, []string{"0xaa", "0xbb"}, cfg.Assets)
	require.Equal(t, uint64(19000000), cfg.Block)
	require.Equal(t, 4, cfg.MaxParallelCalls)
	require.Equal(t, 30*time.Second, cfg.CallTimeout)
	require.Equal(t, "csv", cfg.Format)
	require.Equal(t, "./tmp", cfg.OutDir)
}

func TestLoadExportRejectsFormat(t *testing.T) {
	flags := exportFlags()
	require.NoError(t, flags.Parse([]string{"--format=postgres"}))
	_, err := LoadExport("", flags)
	require.ErrorContains(t, err, "pg-dsn")

	flags = exportFlags()
	require.NoError(t, flags.Parse([]string{"--format=xml"}))
	_, err = LoadExport("", flags)
	require.Error(t, err)
}

func TestLoadHistoryConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reserves.yaml")
	content := "rpc: http://file:8545\nprovider: \"0x2f39d218133AFaB8F2B819B1066c7E434Ad94E9e\"\nfrom: 100\nto: 200\nasset:\n  - \"0xaa\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadHistory(path, nil)
	require.NoError(t, err)
	require.Equal(t, "http://file:8545", cfg.RPCURL)
	require.Equal(t, uint64(100), cfg.FromBlock)
	require.Equal(t, uint64(200), cfg.ToBlock)
	require.Equal(t, uint64(7200), cfg.Step)
	require.Equal(t, []string{"0xaa"}, cfg.Assets)
	require.Equal(t, "jsonl", cfg.Format)
	require.Equal(t, "reserves_history", cfg.StateName)
	require.NoError(t, cfg.Validate())
}

func TestLoadDecodeDefaults(t *testing.T) {
	cfg, err := LoadDecode("", nil)
	require.NoError(t, err)
	require.Equal(t, "v3", cfg.Version)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestPoolConfigValidate(t *testing.T) {
	require.Error(t, PoolConfig{}.Validate())
	require.Error(t, PoolConfig{RPCURL: "http://x"}.Validate())
	require.NoError(t, PoolConfig{RPCURL: "http://x", Pool: "0x01"}.Validate())
}

func TestLoadHistoryOutFollowsFormat(t *testing.T) {
	cfg, err := LoadHistory("", nil)
	require.NoError(t, err)
	require.Equal(t, "./tmp/history.jsonl", cfg.Out)

	t.Setenv("RESERVES_FORMAT", "csv")
	cfg, err = LoadHistory("", nil)
	require.NoError(t, err)
	require.Equal(t, "./tmp/history.csv", cfg.Out)

	t.Setenv("RESERVES_OUT", "./data/reserves.csv")
	cfg, err = LoadHistory("", nil)
	require.NoError(t, err)
	require.Equal(t, "./data/reserves.csv", cfg.Out)

	t.Setenv("RESERVES_FORMAT", "postgres")
	t.Setenv("RESERVES_OUT", "")
	t.Setenv("RESERVES_PG_DSN", "postgres://localhost/reserves")
	cfg, err = LoadHistory("", nil)
	require.NoError(t, err)
	require.Empty(t, cfg.Out)
}
