/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"errors"
	"fmt"
	"strings"

	ex "chainguard.dev/ghinvestigator/agents/executor"
	"chainguard.dev/ghinvestigator/agents/executor/retry"
	"chainguard.dev/ghinvestigator/agents/metrics"
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
)

// Option is a functional option for configuring the executor
type Option[Request promptbuilder.Bindable] func(*executor[Request]) error

// WithMaxTokens sets the maximum tokens for responses
func WithMaxTokens[Request promptbuilder.Bindable](tokens int64) Option[Request] {
	return func(e *executor[Request]) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		// Larger budgets require streaming, which this executor does not use.
		if tokens > 16384 {
			return fmt.Errorf("max tokens %d exceeds maximum of 16384", tokens)
		}
		e.maxTokens = tokens
		return nil
	}
}

// WithTemperature sets the temperature for responses.
// Claude models support temperature values from 0.0 to 1.0.
func WithTemperature[Request promptbuilder.Bindable](temp float64) Option[Request] {
	return func(e *executor[Request]) error {
		if temp < 0.0 || temp > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temp)
		}
		e.temperature = temp
		return nil
	}
}

// WithSystemInstructions sets custom system instructions
func WithSystemInstructions[Request promptbuilder.Bindable](prompt *promptbuilder.Prompt) Option[Request] {
	return func(e *executor[Request]) error {
		if prompt == nil {
			return errors.New("system instructions prompt cannot be nil")
		}
		e.systemInstructions = prompt
		return nil
	}
}

// WithModel allows overriding the model name
func WithModel[Request promptbuilder.Bindable](model string) Option[Request] {
	return func(e *executor[Request]) error {
		if !strings.HasPrefix(model, "claude-") {
			return fmt.Errorf("model %q does not appear to be a Claude model (expected claude-* format)", model)
		}
		e.modelName = model
		return nil
	}
}

// WithThinking enables extended thinking with the given token budget,
// which must be at least 1024 and below max tokens.
func WithThinking[Request promptbuilder.Bindable](budgetTokens int64) Option[Request] {
	return func(e *executor[Request]) error {
		if budgetTokens < 1024 {
			return fmt.Errorf("thinking budget_tokens must be at least 1024, got %d", budgetTokens)
		}
		if budgetTokens >= e.maxTokens {
			return fmt.Errorf("thinking budget_tokens (%d) must be less than max_tokens (%d)", budgetTokens, e.maxTokens)
		}
		e.thinkingBudgetTokens = &budgetTokens
		return nil
	}
}

// WithMaxTurns bounds the number of model responses per run.
func WithMaxTurns[Request promptbuilder.Bindable](turns int) Option[Request] {
	return func(e *executor[Request]) error {
		if err := ex.ValidateMaxTurns(turns); err != nil {
			return err
		}
		e.maxTurns = turns
		return nil
	}
}

// WithToolChoice sets whether Claude may, must or must not call tools.
func WithToolChoice[Request promptbuilder.Bindable](choice ex.ToolChoice) Option[Request] {
	return func(e *executor[Request]) error {
		if err := choice.Validate(); err != nil {
			return err
		}
		e.toolChoice = choice
		return nil
	}
}

// WithAttributeEnricher replaces the metrics attribute enricher.
func WithAttributeEnricher[Request promptbuilder.Bindable](enricher metrics.AttributeEnricher) Option[Request] {
	return func(e *executor[Request]) error {
		e.genaiMetrics.SetAttributeEnricher(enricher)
		return nil
	}
}

// WithRetryConfig sets the retry configuration for 429, 5xx and 529 errors.
func WithRetryConfig[Request promptbuilder.Bindable](cfg retry.RetryConfig) Option[Request] {
	return func(e *executor[Request]) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.retryConfig = cfg
		return nil
	}
}
