/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// ExecutionContext describes what an agent execution is working on.
// It is attached to spans and, for its bounded fields, to metrics.
type ExecutionContext struct {
	Task       string `json:"task,omitempty"`       // "investigate", "activity" or "pr_risk"
	Repository string `json:"repository,omitempty"` // "owner/repo"
	Branch     string `json:"branch,omitempty"`
	PRNumber   int    `json:"pr_number,omitempty"`
}

// SpanAttributes returns every populated field as span attributes.
func (e ExecutionContext) SpanAttributes() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if e.Task != "" {
		attrs = append(attrs, attribute.String("task", e.Task))
	}
	if e.Repository != "" {
		attrs = append(attrs, attribute.String("repository", e.Repository))
	}
	if e.Branch != "" {
		attrs = append(attrs, attribute.String("branch", e.Branch))
	}
	if e.PRNumber != 0 {
		attrs = append(attrs, attribute.Int("pr_number", e.PRNumber))
	}
	return attrs
}

// EnrichAttributes adds the bounded execution context fields to baseAttrs.
//
// Branch and PR number are left out: every branch and pull request would
// create a new time series. They stay on spans, where cardinality is free.
func (e ExecutionContext) EnrichAttributes(baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(baseAttrs), len(baseAttrs)+2)
	copy(attrs, baseAttrs)

	if e.Task != "" {
		attrs = append(attrs, attribute.String("task", e.Task))
	}
	if e.Repository != "" {
		attrs = append(attrs, attribute.String("repository", e.Repository))
	}
	return attrs
}

// contextKey is used for storing execution context in context.Context
type contextKey string

const executionContextKey contextKey = "execution_context"

// WithExecutionContext adds execution context to the Go context
func WithExecutionContext(ctx context.Context, execCtx ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey, execCtx)
}

// GetExecutionContext retrieves execution context from the Go context
func GetExecutionContext(ctx context.Context) ExecutionContext {
	if execCtx, ok := ctx.Value(executionContextKey).(ExecutionContext); ok {
		return execCtx
	}
	return ExecutionContext{}
}
