/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Command ghinvestigator serves the investigator HTTP API.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"chainguard.dev/ghinvestigator/api"
	"chainguard.dev/ghinvestigator/config"
	"chainguard.dev/ghinvestigator/diagnostics"
	"chainguard.dev/ghinvestigator/investigator"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
	"github.com/chainguard-dev/terraform-infra-common/pkg/profiler"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go httpmetrics.ScrapeDiskUsage(ctx)
	profiler.SetupProfiler()
	defer httpmetrics.SetupTracer(ctx)()
	go httpmetrics.ServeMetrics()

	cfg, err := config.Load(ctx)
	if err != nil {
		clog.FatalContextf(ctx, "loading config: %v", err)
	}
	if err := cfg.ValidateProvider(); err != nil {
		clog.FatalContextf(ctx, "validating model provider: %v", err)
	}

	// The token is read per request, so a missing one is not fatal here.
	if _, err := config.GitHubToken(); errors.Is(err, config.ErrMissingCredential) {
		clog.WarnContextf(ctx, "%v; requests will fail until it is set", err)
	}

	clog.InfoContextf(ctx, "Using model %s with tool server %s (read-only: %t)", cfg.Model, cfg.MCP.URL, cfg.MCP.ReadOnly)

	srv := api.New(investigator.New(cfg),
		api.WithDiagnoser(diagnostics.New(cfg.MCP)),
		api.WithRequestTimeout(cfg.RequestTimeout),
	)
	if err := srv.ListenAndServe(ctx, cfg.Port); err != nil {
		clog.FatalContextf(ctx, "serving: %v", err)
	}
}
