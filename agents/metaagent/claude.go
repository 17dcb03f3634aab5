/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/ghinvestigator/agents/executor"
	"chainguard.dev/ghinvestigator/agents/executor/claudeexecutor"
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
	"chainguard.dev/ghinvestigator/agents/toolcall"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
)

// claudeAgent implements Agent using Claude, directly or via Vertex AI.
type claudeAgent[Req promptbuilder.Bindable] struct {
	name     string
	executor executor.Interface[Req]
}

func newClaudeAgent[Req promptbuilder.Bindable](ctx context.Context, creds Credentials, model string, config Config) (Agent[Req], error) {
	var client anthropic.Client
	switch {
	case creds.AnthropicAPIKey != "":
		client = anthropic.NewClient(option.WithAPIKey(creds.AnthropicAPIKey))
	case creds.ProjectID != "" && creds.Region != "":
		client = anthropic.NewClient(vertex.WithGoogleAuth(ctx, creds.Region, creds.ProjectID))
	default:
		return nil, errors.New("ANTHROPIC_API_KEY or GCP_PROJECT_ID and GCP_REGION are required for Claude models")
	}

	opts := []claudeexecutor.Option[Req]{
		claudeexecutor.WithModel[Req](model),
		claudeexecutor.WithMaxTurns[Req](config.maxTurns()),
		claudeexecutor.WithToolChoice[Req](config.toolChoice()),
	}
	if config.Temperature != nil {
		opts = append(opts, claudeexecutor.WithTemperature[Req](*config.Temperature))
	}
	if config.SystemInstructions != nil {
		opts = append(opts, claudeexecutor.WithSystemInstructions[Req](config.SystemInstructions))
	}

	exec, err := claudeexecutor.New[Req](client, config.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Claude executor: %w", err)
	}
	return &claudeAgent[Req]{name: config.Name, executor: exec}, nil
}

func (a *claudeAgent[Req]) Execute(ctx context.Context, request Req, tools toolcall.ToolProvider[string]) (string, error) {
	return a.executor.Execute(named(ctx, a.name), request, tools)
}
