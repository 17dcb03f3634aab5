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
	"chainguard.dev/ghinvestigator/agents/executor/googleexecutor"
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
	"chainguard.dev/ghinvestigator/agents/toolcall"
	"google.golang.org/genai"
)

// googleAgent implements Agent using Gemini.
type googleAgent[Req promptbuilder.Bindable] struct {
	name     string
	executor executor.Interface[Req]
}

func newGoogleAgent[Req promptbuilder.Bindable](ctx context.Context, creds Credentials, model string, config Config) (Agent[Req], error) {
	var cc *genai.ClientConfig
	switch {
	case creds.GeminiAPIKey != "":
		cc = &genai.ClientConfig{APIKey: creds.GeminiAPIKey, Backend: genai.BackendGeminiAPI}
	case creds.ProjectID != "" && creds.Region != "":
		cc = &genai.ClientConfig{Project: creds.ProjectID, Location: creds.Region, Backend: genai.BackendVertexAI}
	default:
		return nil, errors.New("GEMINI_API_KEY or GCP_PROJECT_ID and GCP_REGION are required for Gemini models")
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	opts := []googleexecutor.Option[Req]{
		googleexecutor.WithModel[Req](model),
		googleexecutor.WithMaxTurns[Req](config.maxTurns()),
		googleexecutor.WithToolChoice[Req](config.toolChoice()),
	}
	if config.Temperature != nil {
		opts = append(opts, googleexecutor.WithTemperature[Req](float32(*config.Temperature)))
	}
	if config.SystemInstructions != nil {
		opts = append(opts, googleexecutor.WithSystemInstructions[Req](config.SystemInstructions))
	}
	if cc.Backend == genai.BackendVertexAI {
		opts = append(opts, googleexecutor.WithResourceLabels[Req](nil))
	}

	exec, err := googleexecutor.New[Req](client, config.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Google executor: %w", err)
	}
	return &googleAgent[Req]{name: config.Name, executor: exec}, nil
}

func (a *googleAgent[Req]) Execute(ctx context.Context, request Req, tools toolcall.ToolProvider[string]) (string, error) {
	return a.executor.Execute(named(ctx, a.name), request, tools)
}
