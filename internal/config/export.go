package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ExportConfig holds configuration for the export command.
type ExportConfig struct {
	PoolConfig
	Block         uint64
	Format        string
	OutDir        string
	Out           string
	PGDSN         string
	PriceDecimals int32
}

// LoadExport merges config file, environment variables, and flags into ExportConfig.
func LoadExport(cfgFile string, flags *pflag.FlagSet) (ExportConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		setPoolDefaults(v)
		v.SetDefault("format", "csv")
		v.SetDefault("out-dir", "./tmp")
	})
	if err != nil {
		return ExportConfig{}, err
	}

	cfg := ExportConfig{
		PoolConfig:    poolConfig(v),
		Block:         v.GetUint64("block"),
		Format:        v.GetString("format"),
		OutDir:        v.GetString("out-dir"),
		Out:           v.GetString("out"),
		PGDSN:         v.GetString("pg-dsn"),
		PriceDecimals: v.GetInt32("price-decimals"),
	}
	if err := checkFormat(cfg.Format, cfg.PGDSN); err != nil {
		return ExportConfig{}, err
	}
	return cfg, nil
}

func checkFormat(format, dsn string) error {
	switch format {
	case "csv", "jsonl":
		return nil
	case "postgres":
		if dsn == "" {
			return fmt.Errorf("pg-dsn is required for postgres output")
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
