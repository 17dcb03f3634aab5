/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"github.com/chainguard-dev/clog"
)

// NewDefaultTracer creates a tracer that logs a summary of each completed
// trace to the clog logger in ctx.
func NewDefaultTracer[T any](ctx context.Context) Tracer[T] {
	logger := clog.FromContext(ctx)

	return ByCode[T](func(trace *Trace[T]) {
		execCtx := trace.ExecContext
		logger.With(
			"trace_id", trace.ID,
			"task", execCtx.Task,
			"repository", execCtx.Repository,
			"duration_ms", trace.Duration().Milliseconds(),
			"turns", trace.TurnCount(),
			"tool_calls", len(trace.ToolCalls),
		).Info("Agent trace completed")
		logger.Debug("Agent trace detail", "trace", trace.String())
	})
}
