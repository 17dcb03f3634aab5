/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"

	"chainguard.dev/ghinvestigator/agents/agenttrace"
	"go.opentelemetry.io/otel/attribute"
)

// AttributeEnricher adds contextual attributes to the base attributes
// (model, tool) of each measurement.
type AttributeEnricher func(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue

// ExecutionContextEnricher adds the task and repository from the
// agenttrace.ExecutionContext carried by ctx.
func ExecutionContextEnricher(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	return agenttrace.GetExecutionContext(ctx).EnrichAttributes(baseAttrs)
}
