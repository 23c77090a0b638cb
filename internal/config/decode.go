package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DecodeConfig holds configuration for the offline decode command.
type DecodeConfig struct {
	Version  string
	Word     string
	LogLevel string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("version", "v3")
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	return DecodeConfig{
		Version:  v.GetString("version"),
		Word:     v.GetString("word"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
