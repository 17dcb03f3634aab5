/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "ghinvestigator.agents.agenttrace"

// ReasoningContent is a thinking block returned by the model.
type ReasoningContent struct {
	Thinking string `json:"thinking"`
}

// ToolCall is one tool invocation made by the model.
type ToolCall[T any] struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Params    map[string]any `json:"params"`
	Result    any            `json:"result"`
	Error     error          `json:"error,omitempty"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`

	mu    sync.Mutex
	trace *Trace[T]
	span  oteltrace.Span
}

// Trace is one agent execution: the prompt, every model turn and tool
// call, and the final result.
type Trace[T any] struct {
	ID          string             `json:"id"`
	InputPrompt string             `json:"input_prompt"`
	ExecContext ExecutionContext   `json:"exec_context,omitempty"`
	ToolCalls   []*ToolCall[T]     `json:"tool_calls"`
	Reasoning   []ReasoningContent `json:"reasoning,omitempty"`
	Turns       int                `json:"turns"`
	Result      T                  `json:"result"`
	Error       error              `json:"error,omitempty"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`

	mu     sync.Mutex
	tracer Tracer[T]
	ctx    context.Context
	span   oteltrace.Span
}

// newTraceWithTracer opens the agent.execution span. The prompt itself is
// not put on the span: investigation prompts embed whole CI logs.
func newTraceWithTracer[T any](ctx context.Context, tracer Tracer[T], prompt string) *Trace[T] {
	execCtx := GetExecutionContext(ctx)

	attrs := append(execCtx.SpanAttributes(), attribute.Int("agent.prompt.length", len(prompt)))
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "agent.execution", oteltrace.WithAttributes(attrs...))

	return &Trace[T]{
		ID:          traceID(span),
		InputPrompt: prompt,
		ExecContext: execCtx,
		ToolCalls:   []*ToolCall[T]{},
		StartTime:   time.Now(),
		tracer:      tracer,
		ctx:         ctx,
		span:        span,
	}
}

// traceID reuses the otel trace ID so logs and spans line up. Without a
// configured provider the span context is invalid and a random ID is used.
func traceID(span oteltrace.Span) string {
	if sc := span.SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (t *Trace[T]) startSpan(name string, attrs ...attribute.KeyValue) oteltrace.Span {
	_, span := otel.Tracer(instrumentationName).Start(t.ctx, name, oteltrace.WithAttributes(attrs...))
	return span
}

func endSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// StartToolCall opens a tool call. It is added to the trace when Complete
// is called.
func (t *Trace[T]) StartToolCall(id, name string, params map[string]any) *ToolCall[T] {
	return &ToolCall[T]{
		ID:        id,
		Name:      name,
		Params:    params,
		StartTime: time.Now(),
		trace:     t,
		span:      t.startSpan("agent.tool_call", attribute.String("tool.name", name), attribute.String("tool.id", id)),
	}
}

// BadToolCall records a call the model made to an unknown tool or with
// arguments that could not be decoded.
func (t *Trace[T]) BadToolCall(id, name string, params map[string]any, err error) {
	span := t.startSpan("agent.tool_call", attribute.String("tool.name", name), attribute.String("tool.id", id))
	endSpan(span, err)

	now := time.Now()
	t.append(&ToolCall[T]{
		ID:        id,
		Name:      name,
		Params:    params,
		Error:     err,
		StartTime: now,
		EndTime:   now,
		trace:     t,
	})
}

func (t *Trace[T]) append(tc *ToolCall[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ToolCalls = append(t.ToolCalls, tc)
}

// Complete closes the tool call and adds it to its trace.
func (tc *ToolCall[T]) Complete(result any, err error) {
	tc.mu.Lock()
	tc.Result = result
	tc.Error = err
	tc.EndTime = time.Now()
	tc.mu.Unlock()

	if tc.span != nil {
		endSpan(tc.span, err)
	}
	tc.trace.append(tc)
}

// Duration is how long the tool call took, or has taken so far.
func (tc *ToolCall[T]) Duration() time.Duration {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return elapsed(tc.StartTime, tc.EndTime)
}

// RecordTokenUsage puts the model and its token counts on the execution span.
func (t *Trace[T]) RecordTokenUsage(model string, inputTokens, outputTokens int64) {
	t.span.SetAttributes(
		attribute.String("model", model),
		attribute.Int64("tokens.input", inputTokens),
		attribute.Int64("tokens.output", outputTokens),
	)
}

// RecordTurn counts one model response and returns the new total.
func (t *Trace[T]) RecordTurn() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Turns++
	return t.Turns
}

// TurnCount returns the number of model responses recorded so far.
func (t *Trace[T]) TurnCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Turns
}

// Complete closes the trace and hands it to its tracer.
func (t *Trace[T]) Complete(result T, err error) {
	t.mu.Lock()
	t.Result = result
	t.Error = err
	t.EndTime = time.Now()
	turns, calls := t.Turns, len(t.ToolCalls)
	t.mu.Unlock()

	t.span.SetAttributes(attribute.Int("agent.turns", turns), attribute.Int("agent.tool_calls", calls))
	endSpan(t.span, err)

	t.tracer.RecordTrace(t)
}

// Duration is how long the execution took, or has taken so far.
func (t *Trace[T]) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return elapsed(t.StartTime, t.EndTime)
}

// String renders the trace for debug logs. Long values are truncated.
func (t *Trace[T]) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "trace %s: %d turns, %d tool calls in %v\n",
		t.ID, t.Turns, len(t.ToolCalls), elapsed(t.StartTime, t.EndTime))
	fmt.Fprintf(&sb, "prompt: %s\n", truncate(t.InputPrompt, 200))

	for _, r := range t.Reasoning {
		fmt.Fprintf(&sb, "thinking: %s\n", truncate(r.Thinking, 200))
	}
	for _, tc := range t.ToolCalls {
		outcome := truncate(fmt.Sprint(tc.Result), 200)
		if tc.Error != nil {
			outcome = "error: " + tc.Error.Error()
		}
		fmt.Fprintf(&sb, "tool %s(%v) [%v]: %s\n", tc.Name, tc.Params, elapsed(tc.StartTime, tc.EndTime), outcome)
	}

	if t.Error != nil {
		fmt.Fprintf(&sb, "error: %v\n", t.Error)
	} else {
		fmt.Fprintf(&sb, "result: %s\n", truncate(fmt.Sprint(t.Result), 500))
	}
	return sb.String()
}

func elapsed(start, end time.Time) time.Duration {
	if end.IsZero() {
		return time.Since(start)
	}
	return end.Sub(start)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
