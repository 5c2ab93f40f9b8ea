package main

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/halcyon-labs/suipool/params"
)

// suipoolConfig is the TOML-serializable configuration of the client. Flags
// override file values.
type suipoolConfig struct {
	Endpoint  string
	RateLimit float64
	RateBurst int
	Seed      string `toml:",omitempty"`
	Pool      poolConfig
	Cache     cacheConfig
}

type poolConfig struct {
	AcquireTimeout time.Duration
	Retries        int
}

type cacheConfig struct {
	RedisAddr string
	Prefix    string
}

// RedisOptions returns the client options for the configured Redis address.
func (c cacheConfig) RedisOptions() *redis.Options {
	return &redis.Options{Addr: c.RedisAddr}
}

func defaultConfig() suipoolConfig {
	return suipoolConfig{
		Endpoint: endpointFlag.Value,
		Pool: poolConfig{
			AcquireTimeout: params.DefaultWorkerAcquireTimeout,
			Retries:        params.DefaultExecuteRetries,
		},
		Cache: cacheConfig{Prefix: cachePrefixFlag.Value},
	}
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then command line flags.
func loadConfig(ctx *cli.Context) (*suipoolConfig, error) {
	cfg := defaultConfig()
	if path := ctx.String(configFileFlag.Name); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()
		if err := tomlSettings.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if ctx.IsSet(endpointFlag.Name) {
		cfg.Endpoint = ctx.String(endpointFlag.Name)
	}
	if ctx.IsSet(rateLimitFlag.Name) {
		cfg.RateLimit = ctx.Float64(rateLimitFlag.Name)
	}
	if ctx.IsSet(acquireTimeoutFlag.Name) {
		cfg.Pool.AcquireTimeout = ctx.Duration(acquireTimeoutFlag.Name)
	}
	if ctx.IsSet(retriesFlag.Name) {
		cfg.Pool.Retries = ctx.Int(retriesFlag.Name)
	}
	if ctx.IsSet(redisFlag.Name) {
		cfg.Cache.RedisAddr = ctx.String(redisFlag.Name)
	}
	if ctx.IsSet(cachePrefixFlag.Name) {
		cfg.Cache.Prefix = ctx.String(cachePrefixFlag.Name)
	}
	return &cfg, nil
}
