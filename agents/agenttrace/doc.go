/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records what an agent did while answering a prompt.

  - ExecutionContext: the task and repository an execution works on
  - Trace[T]: one agent run from prompt to result, with its turn count
  - ToolCall[T]: one tool invocation within a trace
  - Tracer[T]: creates traces and receives them when they complete

Each trace is also an OpenTelemetry span ("agent.execution") with a child
span per tool call.

# Usage

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Task:       "investigate",
		Repository: "octo/hello",
		Branch:     "main",
	})

	ctx = agenttrace.WithTracer[string](ctx, agenttrace.ByCode[string](func(trace *agenttrace.Trace[string]) {
		log.Printf("trace %s finished after %d turns", trace.ID, trace.Turns)
	}))

	trace := agenttrace.StartTrace[string](ctx, prompt)
	trace.RecordTurn()
	tc := trace.StartToolCall("call_1", "list_workflow_runs", args)
	tc.Complete(output, nil)
	trace.Complete(report, nil)

Without a tracer in the context, completed traces are logged through clog.
*/
package agenttrace
