// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package config loads minipgd's runtime configuration, layering
// defaults, an optional config file and environment variables under
// command-line flags, grounded on denisvmedia-inventario's
// viper.AutomaticEnv/SetEnvPrefix/SetEnvKeyReplacer convention.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "MINIPG"

// Config is minipgd's complete runtime configuration.
type Config struct {
	// Addr is the TCP address the wire-protocol listener binds to.
	Addr string

	// Backend selects the kv.Store implementation: "memory" or "bolt".
	Backend string

	// DataDir is the bbolt database file path when Backend is "bolt".
	DataDir string

	// LogLevel is a logrus level name (e.g. "debug", "info", "warn").
	LogLevel string
}

// Defaults returns the configuration used when no flag, environment
// variable or file overrides a field.
func Defaults() Config {
	return Config{
		Addr:     "127.0.0.1:5432",
		Backend:  "memory",
		DataDir:  "minipg.db",
		LogLevel: "info",
	}
}

// BindFlags registers the flags Load reads, in declaration order
// matching Defaults' fields.
func BindFlags(flags *pflag.FlagSet) {
	d := Defaults()
	flags.String("addr", d.Addr, "address to listen on for Postgres wire protocol connections")
	flags.String("backend", d.Backend, `storage backend: "memory" or "bolt"`)
	flags.String("data-dir", d.DataDir, "bbolt database file path (backend=bolt only)")
	flags.String("log-level", d.LogLevel, "logrus level: trace, debug, info, warn, error")
}

// Load resolves the layered configuration: flags > environment
// (MINIPG_ADDR, MINIPG_BACKEND, ...) > config file > defaults.
func Load(flags *pflag.FlagSet, cfgFile string) (Config, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("data-dir", d.DataDir)
	v.SetDefault("log-level", d.LogLevel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", cfgFile, err)
		}
	}

	if err := v.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("config: binding flags: %w", err)
	}

	return Config{
		Addr:     v.GetString("addr"),
		Backend:  v.GetString("backend"),
		DataDir:  v.GetString("data-dir"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
