/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"testing"

	"chainguard.dev/ghinvestigator/agents/agenttrace"
	"go.opentelemetry.io/otel/attribute"
)

func TestExecutionContextEnricher(t *testing.T) {
	ctx := agenttrace.WithExecutionContext(context.Background(), agenttrace.ExecutionContext{
		Task:       "activity",
		Repository: "octo/hello",
		Branch:     "feature/x",
	})

	got := ExecutionContextEnricher(ctx, []attribute.KeyValue{attribute.String("model", "gpt-4.1-mini")})

	wanted := map[attribute.Key]string{
		"model":      "gpt-4.1-mini",
		"task":       "activity",
		"repository": "octo/hello",
	}
	if len(got) != len(wanted) {
		t.Fatalf("attributes: got = %v, wanted = %v", got, wanted)
	}
	for _, kv := range got {
		if kv.Value.AsString() != wanted[kv.Key] {
			t.Errorf("attribute %s: got = %q, wanted = %q", kv.Key, kv.Value.AsString(), wanted[kv.Key])
		}
	}
}

func TestRecordWithoutProvider(t *testing.T) {
	// The global no-op meter provider accepts every measurement.
	m := NewGenAI("ghinvestigator.test")
	ctx := context.Background()

	var enriched int
	m.SetAttributeEnricher(func(_ context.Context, base []attribute.KeyValue) []attribute.KeyValue {
		enriched++
		return base
	})

	m.RecordTokens(ctx, "claude-sonnet-4", 10, 20)
	m.RecordToolCall(ctx, "claude-sonnet-4", "get_job_logs")
	m.RecordTurns(ctx, "claude-sonnet-4", 3, false)

	if enriched != 3 {
		t.Errorf("enricher calls: got = %d, wanted = 3", enriched)
	}
}
