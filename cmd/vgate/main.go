// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the vgate gateway.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stacklok/vgate/cmd/vgate/app"
	"github.com/stacklok/vgate/pkg/gwlogging"
)

func main() {
	gwlogging.Initialize(false)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := app.NewRootCmd().ExecuteContext(ctx); err != nil {
		gwlogging.Errorf("error executing command: %v", err)
		os.Exit(1)
	}
}
