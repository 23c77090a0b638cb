package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// HistoryConfig holds configuration for the history command.
type HistoryConfig struct {
	PoolConfig
	FromBlock     uint64
	ToBlock       uint64
	Step          uint64
	Format        string
	Out           string
	PGDSN         string
	StateFile     string
	StateName     string
	PriceDecimals int32
}

// LoadHistory merges config file, environment variables, and flags into HistoryConfig.
func LoadHistory(cfgFile string, flags *pflag.FlagSet) (HistoryConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		setPoolDefaults(v)
		v.SetDefault("step", uint64(7200))
		v.SetDefault("format", "jsonl")
		v.SetDefault("state-file", "./tmp/history_state.json")
		v.SetDefault("state-name", "reserves_history")
	})
	if err != nil {
		return HistoryConfig{}, err
	}

	cfg := HistoryConfig{
		PoolConfig:    poolConfig(v),
		FromBlock:     v.GetUint64("from"),
		ToBlock:       v.GetUint64("to"),
		Step:          v.GetUint64("step"),
		Format:        v.GetString("format"),
		Out:           v.GetString("out"),
		PGDSN:         v.GetString("pg-dsn"),
		StateFile:     v.GetString("state-file"),
		StateName:     v.GetString("state-name"),
		PriceDecimals: v.GetInt32("price-decimals"),
	}
	if err := checkFormat(cfg.Format, cfg.PGDSN); err != nil {
		return HistoryConfig{}, err
	}
	if cfg.Out == "" && cfg.Format != "postgres" {
		cfg.Out = "./tmp/history." + cfg.Format
	}
	return cfg, nil
}
