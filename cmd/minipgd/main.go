// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Command minipgd is a demo Postgres wire-protocol front-end for the
// minipg embeddable database core. It is not part of the core itself:
// SQL text parsing and wire-protocol encoding are the external
// collaborators spec.md §1 leaves out of scope, and this binary is one
// concrete, minimal realization of both, enough to drive the core with
// a real `psql` client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minipgdb/minipg/cmd/minipgd/cmdapi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmdapi.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
