/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

func randomString() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// mockTracer collects completed traces in order.
type mockTracer[T any] struct {
	traces *[]*Trace[T]
}

func (m *mockTracer[T]) NewTrace(ctx context.Context, prompt string) *Trace[T] {
	return newTraceWithTracer[T](ctx, m, prompt)
}

func (m *mockTracer[T]) RecordTrace(trace *Trace[T]) {
	*m.traces = append(*m.traces, trace)
}
