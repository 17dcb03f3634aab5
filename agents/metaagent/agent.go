/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/ghinvestigator/agents/promptbuilder"
	"chainguard.dev/ghinvestigator/agents/toolcall"
	"github.com/chainguard-dev/clog"
)

// Agent is a configured agent that answers in text.
type Agent[Req promptbuilder.Bindable] interface {
	// Execute runs the agent with the given request and tools.
	Execute(ctx context.Context, request Req, tools toolcall.ToolProvider[string]) (string, error)
}

// Provider names the SDK that serves a model.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderGoogle Provider = "google"
)

// ProviderFor picks the provider for a model name:
//   - "gpt-", "o1", "o3" and "o4" models use OpenAI
//   - "claude-" models use Anthropic, directly or via Vertex AI
//   - "gemini-" models use the Gemini API or Vertex AI
func ProviderFor(model string) (Provider, error) {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "gpt-"),
		strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return ProviderOpenAI, nil
	case strings.HasPrefix(m, "claude-"):
		return ProviderClaude, nil
	case strings.HasPrefix(m, "gemini-"):
		return ProviderGoogle, nil
	}
	return "", fmt.Errorf("unsupported model: %q (expected gpt-*, o1/o3/o4*, claude-* or gemini-*)", model)
}

// New creates an agent for model with the given configuration.
func New[Req promptbuilder.Bindable](
	ctx context.Context,
	creds Credentials,
	model string,
	config Config,
) (Agent[Req], error) {
	if config.UserPrompt == nil {
		return nil, fmt.Errorf("agent %q: user prompt is required", config.Name)
	}
	provider, err := ProviderFor(model)
	if err != nil {
		return nil, err
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIAgent[Req](creds, model, config)
	case ProviderClaude:
		return newClaudeAgent[Req](ctx, creds, model, config)
	default:
		return newGoogleAgent[Req](ctx, creds, model, config)
	}
}

// named attaches the agent name to the logger for the duration of a run.
func named(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return clog.WithLogger(ctx, clog.FromContext(ctx).With("agent", name))
}
