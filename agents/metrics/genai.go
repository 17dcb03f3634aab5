/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the meter shared by every executor.
const MeterName = "ghinvestigator.agents"

// GenAI records token usage, tool calls and turn counts for agent runs.
// Counters that fail to initialize degrade to no-ops.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	toolCalls        metric.Int64Counter
	turns            metric.Int64Histogram
	attrEnricher     AttributeEnricher
}

// NewGenAI creates a GenAI instance on the named meter. All executors
// share one meter name and are told apart by the "model" attribute.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			slog.Warn("Failed to create counter, metrics will be disabled", "error", err, "meter", meterName, "name", name)
			return noop.Int64Counter{}
		}
		return c
	}

	turns, err := meter.Int64Histogram("genai.agent.turns",
		metric.WithDescription("The number of model turns an agent run took"),
		metric.WithUnit("{turns}"),
		metric.WithExplicitBucketBoundaries(1, 2, 4, 8, 12, 16, 20, 30))
	if err != nil {
		slog.Warn("Failed to create turns histogram, metrics will be disabled", "error", err, "meter", meterName)
		turns = noop.Int64Histogram{}
	}

	return &GenAI{
		promptTokens:     counter("genai.token.prompt", "The number of prompt tokens used", "{tokens}"),
		completionTokens: counter("genai.token.completion", "The number of completion tokens used", "{tokens}"),
		toolCalls:        counter("genai.tool.calls", "The number of tool calls made during execution", "{calls}"),
		turns:            turns,
		attrEnricher:     ExecutionContextEnricher,
	}
}

// SetAttributeEnricher replaces the attribute enricher.
func (m *GenAI) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

func (m *GenAI) attributes(ctx context.Context, base []attribute.KeyValue, extra []attribute.KeyValue) metric.MeasurementOption {
	if m.attrEnricher != nil {
		base = m.attrEnricher(ctx, base)
	}
	return metric.WithAttributes(append(base, extra...)...)
}

// RecordTokens records prompt and completion token usage for model.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64, attrs ...attribute.KeyValue) {
	opt := m.attributes(ctx, []attribute.KeyValue{attribute.String("model", model)}, attrs)
	m.promptTokens.Add(ctx, promptTokens, opt)
	m.completionTokens.Add(ctx, completionTokens, opt)
}

// RecordToolCall records one invocation of toolName.
func (m *GenAI) RecordToolCall(ctx context.Context, model, toolName string, attrs ...attribute.KeyValue) {
	m.toolCalls.Add(ctx, 1, m.attributes(ctx, []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("tool", toolName),
	}, attrs))
}

// RecordTurns records how many model turns a finished run used.
func (m *GenAI) RecordTurns(ctx context.Context, model string, turns int, exhausted bool) {
	m.turns.Record(ctx, int64(turns), m.attributes(ctx, []attribute.KeyValue{
		attribute.String("model", model),
	}, []attribute.KeyValue{attribute.Bool("exhausted", exhausted)}))
}
