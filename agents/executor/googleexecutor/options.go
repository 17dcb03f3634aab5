/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	ex "chainguard.dev/ghinvestigator/agents/executor"
	"chainguard.dev/ghinvestigator/agents/executor/retry"
	"chainguard.dev/ghinvestigator/agents/metrics"
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
)

// Option configures the executor
type Option[Request promptbuilder.Bindable] func(*executor[Request]) error

// WithModel sets the Gemini model to use
func WithModel[Request promptbuilder.Bindable](model string) Option[Request] {
	return func(e *executor[Request]) error {
		if !strings.HasPrefix(model, "gemini-") {
			return fmt.Errorf("model %q does not appear to be a Gemini model (expected gemini-* format)", model)
		}
		e.model = model
		return nil
	}
}

// WithTemperature sets the temperature for generation (0.0 to 2.0).
func WithTemperature[Request promptbuilder.Bindable](temperature float32) Option[Request] {
	return func(e *executor[Request]) error {
		if temperature < 0 || temperature > 2 {
			return fmt.Errorf("temperature must be between 0 and 2, got %f", temperature)
		}
		e.temperature = temperature
		return nil
	}
}

// WithMaxOutputTokens sets the maximum output tokens
func WithMaxOutputTokens[Request promptbuilder.Bindable](tokens int32) Option[Request] {
	return func(e *executor[Request]) error {
		if tokens <= 0 {
			return fmt.Errorf("max output tokens must be positive, got %d", tokens)
		}
		e.maxOutputTokens = tokens
		return nil
	}
}

// WithSystemInstructions sets the system instructions
func WithSystemInstructions[Request promptbuilder.Bindable](prompt *promptbuilder.Prompt) Option[Request] {
	return func(e *executor[Request]) error {
		if prompt == nil {
			return errors.New("system instructions prompt cannot be nil")
		}
		e.systemInstructions = prompt
		return nil
	}
}

// WithThinking enables thinking with the given budget. -1 enables dynamic
// thinking. See https://ai.google.dev/gemini-api/docs/thinking
func WithThinking[Request promptbuilder.Bindable](budgetTokens int32) Option[Request] {
	return func(e *executor[Request]) error {
		if budgetTokens == -1 {
			e.thinkingBudget = &budgetTokens
			return nil
		}
		if budgetTokens <= 0 {
			return fmt.Errorf("thinking budget must be positive (or -1 for dynamic), got %d", budgetTokens)
		}
		// Thought and output tokens share the output limit.
		if budgetTokens >= e.maxOutputTokens {
			return fmt.Errorf("thinking budget (%d) must be less than max_output_tokens (%d)", budgetTokens, e.maxOutputTokens)
		}
		e.thinkingBudget = &budgetTokens
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

// WithToolChoice sets whether the model may, must or must not call tools.
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

// WithRetryConfig sets the retry configuration for quota and transient errors.
func WithRetryConfig[Request promptbuilder.Bindable](cfg retry.RetryConfig) Option[Request] {
	return func(e *executor[Request]) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.retryConfig = cfg
		return nil
	}
}

// WithResourceLabels sets labels sent with each Vertex AI request for
// billing attribution. service_name defaults to K_SERVICE.
func WithResourceLabels[Request promptbuilder.Bindable](labels map[string]string) Option[Request] {
	return func(e *executor[Request]) error {
		serviceName := os.Getenv("K_SERVICE")
		if serviceName == "" {
			serviceName = "unknown"
		}
		e.resourceLabels = map[string]string{"service_name": serviceName}
		maps.Copy(e.resourceLabels, labels)
		return nil
	}
}
