// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package cmdapi holds the minipgd commands used to build the demo
// server distribution.
package cmdapi

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/cmd/minipgd/config"
	"github.com/minipgdb/minipg/cmd/minipgd/server"
	"github.com/minipgdb/minipg/kv"
)

var (
	// Root represents the root command when called without any subcommands.
	Root = &cobra.Command{
		Use:          "minipgd",
		Short:        "An embeddable, Postgres wire-compatible database server.",
		SilenceUsage: true,
	}

	cfgFile string

	// serveCmd represents the subcommand 'minipgd serve'.
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the wire-protocol listener.",
		RunE:  runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Prints this minipgd version information.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("minipgd version dev")
		},
	}
)

func init() {
	Root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (yaml/json/toml)")
	config.BindFlags(serveCmd.Flags())

	Root.AddCommand(serveCmd)
	Root.AddCommand(versionCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags(), cfgFile)
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cat, err := catalog.Open(ctx, store)
	if err != nil {
		return fmt.Errorf("minipgd: opening catalog: %w", err)
	}

	srv := &server.Server{Addr: cfg.Addr, Cat: cat, Log: log}
	return srv.ListenAndServe(ctx)
}

func openStore(cfg config.Config) (kv.Store, error) {
	switch cfg.Backend {
	case "memory":
		return kv.NewMemStore(), nil
	case "bolt":
		return kv.OpenBoltStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("minipgd: unknown backend %q (want \"memory\" or \"bolt\")", cfg.Backend)
	}
}

func newLogger(level string) *logrus.Entry {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return logrus.NewEntry(log)
}

// Execute runs the root command against ctx; cancelling ctx (main wires
// Ctrl-C / SIGTERM to that) shuts the listener down gracefully.
func Execute(ctx context.Context) error {
	return Root.ExecuteContext(ctx)
}
