/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TraceCallback receives completed traces
type TraceCallback[T any] func(*Trace[T])

// byCodeTracer implements Tracer by handing completed traces to callbacks
type byCodeTracer[T any] struct {
	callbacks []TraceCallback[T]
}

// ByCode returns a Tracer that invokes the callbacks when a trace completes.
func ByCode[T any](callbacks ...TraceCallback[T]) Tracer[T] {
	return &byCodeTracer[T]{
		callbacks: callbacks,
	}
}

// NewTrace creates a new trace with the given prompt
func (t *byCodeTracer[T]) NewTrace(ctx context.Context, prompt string) *Trace[T] {
	return newTraceWithTracer[T](ctx, t, prompt)
}

// RecordTrace runs all callbacks in parallel and waits for them.
func (t *byCodeTracer[T]) RecordTrace(trace *Trace[T]) {
	var g errgroup.Group
	for _, callback := range t.callbacks {
		if callback == nil {
			continue
		}
		g.Go(func() error {
			callback(trace)
			return nil
		})
	}
	_ = g.Wait()
}
