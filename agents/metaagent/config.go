/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"chainguard.dev/ghinvestigator/agents/executor"
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
)

// Config defines the configuration for an agent instance.
type Config struct {
	// Name identifies the agent in logs.
	Name string

	// SystemInstructions is the system prompt that defines the agent's role and behavior.
	SystemInstructions *promptbuilder.Prompt

	// UserPrompt is the template for formatting the user's request.
	// The Req type is bound to this template via its Bind method.
	UserPrompt *promptbuilder.Prompt

	// Temperature is the sampling temperature. Nil uses the executor default.
	Temperature *float64

	// MaxTurns bounds the number of model responses. Zero uses executor.DefaultMaxTurns.
	MaxTurns int

	// ToolChoice defaults to executor.ToolChoiceAuto.
	ToolChoice executor.ToolChoice
}

func (c Config) maxTurns() int {
	if c.MaxTurns > 0 {
		return c.MaxTurns
	}
	return executor.DefaultMaxTurns
}

func (c Config) toolChoice() executor.ToolChoice {
	if c.ToolChoice != "" {
		return c.ToolChoice
	}
	return executor.ToolChoiceAuto
}

// Credentials holds what the providers need to authenticate.
// Claude and Gemini fall back to Vertex AI with application default
// credentials when their API key is empty.
type Credentials struct {
	OpenAIAPIKey string
	// OpenAIBaseURL overrides the OpenAI endpoint, e.g. for a proxy.
	OpenAIBaseURL   string
	AnthropicAPIKey string
	GeminiAPIKey    string

	ProjectID string
	Region    string
}
