/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestByCode(t *testing.T) {
	ctx := WithExecutionContext(context.Background(), ExecutionContext{
		Task:       "investigate",
		Repository: "octo/hello",
	})
	var captured *Trace[string]

	tracer := ByCode[string](func(trace *Trace[string]) {
		captured = trace
	})

	prompt := randomString()
	trace := tracer.NewTrace(ctx, prompt)
	trace.RecordTurn()
	tc := trace.StartToolCall("tc1", "list_workflow_runs", map[string]any{"owner": "octo"})
	tc.Complete(randomString(), nil)
	trace.RecordTurn()

	final := randomString()
	trace.Complete(final, nil)

	if captured == nil {
		t.Fatal("callback invocation: got = nil, wanted = trace")
	}
	if captured != trace {
		t.Errorf("captured trace: got = %v, wanted = %v", captured, trace)
	}
	if captured.InputPrompt != prompt {
		t.Errorf("prompt: got = %q, wanted = %q", captured.InputPrompt, prompt)
	}
	if got := len(captured.ToolCalls); got != 1 {
		t.Errorf("tool calls: got = %d, wanted = 1", got)
	}
	if captured.Result != final {
		t.Errorf("result: got = %q, wanted = %q", captured.Result, final)
	}
	if got := captured.TurnCount(); got != 2 {
		t.Errorf("turns: got = %d, wanted = 2", got)
	}
	if got := captured.ExecContext.Repository; got != "octo/hello" {
		t.Errorf("repository: got = %q, wanted = %q", got, "octo/hello")
	}
}

func TestByCodeSkipsNilAndEmpty(t *testing.T) {
	for name, tracer := range map[string]Tracer[string]{
		"nil callback": ByCode[string](nil),
		"no callbacks": ByCode[string](),
	} {
		t.Run(name, func(t *testing.T) {
			trace := tracer.NewTrace(context.Background(), randomString())
			trace.Complete(randomString(), nil)
		})
	}
}

func TestByCodeWithMultipleCallbacks(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]*Trace[string]{}

	var callbacks []TraceCallback[string]
	for i := range 3 {
		callbacks = append(callbacks, func(trace *Trace[string]) {
			mu.Lock()
			defer mu.Unlock()
			seen[i] = trace
		})
	}

	trace := ByCode(callbacks...).NewTrace(context.Background(), randomString())
	trace.Complete(randomString(), nil)

	if len(seen) != 3 {
		t.Fatalf("callbacks run: got = %d, wanted = 3", len(seen))
	}
	for i, got := range seen {
		if got != trace {
			t.Errorf("callback %d trace: got = %v, wanted = %v", i, got, trace)
		}
	}
}

func TestByCodeParallelExecution(t *testing.T) {
	started := make(chan struct{}, 3)
	proceed := make(chan struct{})

	block := func(*Trace[string]) {
		started <- struct{}{}
		<-proceed
	}
	trace := ByCode(block, block, block).NewTrace(context.Background(), randomString())

	done := make(chan struct{})
	go func() {
		trace.Complete(randomString(), nil)
		close(done)
	}()

	timeout := time.After(time.Second)
	for range 3 {
		select {
		case <-started:
		case <-timeout:
			t.Fatal("callbacks did not start in parallel")
		}
	}
	close(proceed)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("trace completion did not finish")
	}
}
