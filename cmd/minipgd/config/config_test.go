// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package config_test

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/minipgdb/minipg/cmd/minipgd/config"
)

func TestLoadDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.BindFlags(flags)
	require.NoError(t, flags.Parse(nil))

	cfg, err := config.Load(flags, "")
	require.NoError(t, err)
	require.Equal(t, config.Defaults(), cfg)
}

func TestLoadFlagOverridesDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.BindFlags(flags)
	require.NoError(t, flags.Parse([]string{"--addr", "0.0.0.0:6000", "--backend", "bolt"}))

	cfg, err := config.Load(flags, "")
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:6000", cfg.Addr)
	require.Equal(t, "bolt", cfg.Backend)
}

func TestLoadEnvOverridesDefaultButNotFlag(t *testing.T) {
	t.Setenv("MINIPG_ADDR", "10.0.0.1:5555")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.BindFlags(flags)
	require.NoError(t, flags.Parse(nil))

	cfg, err := config.Load(flags, "")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:5555", cfg.Addr)

	flagsOverride := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.BindFlags(flagsOverride)
	require.NoError(t, flagsOverride.Parse([]string{"--addr", "192.168.0.1:7777"}))
	cfg, err = config.Load(flagsOverride, "")
	require.NoError(t, err)
	require.Equal(t, "192.168.0.1:7777", cfg.Addr)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/minipgd.yaml"
	require.NoError(t, os.WriteFile(path, []byte("backend: bolt\ndata-dir: /tmp/custom.db\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.BindFlags(flags)
	require.NoError(t, flags.Parse(nil))

	cfg, err := config.Load(flags, path)
	require.NoError(t, err)
	require.Equal(t, "bolt", cfg.Backend)
	require.Equal(t, "/tmp/custom.db", cfg.DataDir)
}
