package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "RESERVES"

// PoolConfig holds the settings shared by every command that reads a pool.
type PoolConfig struct {
	RPCURL           string
	Version          string
	Provider         string
	Pool             string
	DataProvider     string
	Oracle           string
	Assets           []string
	MaxParallelCalls int
	CallTimeout      time.Duration
	LogLevel         string
}

func setPoolDefaults(v *viper.Viper) {
	v.SetDefault("version", "v3")
	v.SetDefault("max-parallel-calls", 4)
	v.SetDefault("call-timeout", 2*time.Minute)
	v.SetDefault("log-level", "info")
}

func poolConfig(v *viper.Viper) PoolConfig {
	return PoolConfig{
		RPCURL:           v.GetString("rpc"),
		Version:          v.GetString("version"),
		Provider:         v.GetString("provider"),
		Pool:             v.GetString("pool"),
		DataProvider:     v.GetString("data-provider"),
		Oracle:           v.GetString("oracle"),
		Assets:           getStringSlice(v, "asset"),
		MaxParallelCalls: v.GetInt("max-parallel-calls"),
		CallTimeout:      v.GetDuration("call-timeout"),
		LogLevel:         v.GetString("log-level"),
	}
}

// Validate checks that the pool can be located.
func (c PoolConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.Provider == "" && c.Pool == "" {
		return fmt.Errorf("either provider or pool address is required")
	}
	return nil
}

// newViper merges config file, environment variables, and flags.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(v *viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
