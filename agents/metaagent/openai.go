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
	"chainguard.dev/ghinvestigator/agents/executor/openaiexecutor"
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
	"chainguard.dev/ghinvestigator/agents/toolcall"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openaiAgent implements Agent using OpenAI chat completions.
type openaiAgent[Req promptbuilder.Bindable] struct {
	name     string
	executor executor.Interface[Req]
}

func newOpenAIAgent[Req promptbuilder.Bindable](creds Credentials, model string, config Config) (Agent[Req], error) {
	if creds.OpenAIAPIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required for OpenAI models")
	}
	clientOpts := []option.RequestOption{option.WithAPIKey(creds.OpenAIAPIKey)}
	if creds.OpenAIBaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(creds.OpenAIBaseURL))
	}
	client := openai.NewClient(clientOpts...)

	opts := []openaiexecutor.Option[Req]{
		openaiexecutor.WithModel[Req](model),
		openaiexecutor.WithMaxTurns[Req](config.maxTurns()),
		openaiexecutor.WithToolChoice[Req](config.toolChoice()),
	}
	if config.Temperature != nil {
		opts = append(opts, openaiexecutor.WithTemperature[Req](*config.Temperature))
	}
	if config.SystemInstructions != nil {
		opts = append(opts, openaiexecutor.WithSystemInstructions[Req](config.SystemInstructions))
	}

	exec, err := openaiexecutor.New[Req](client, config.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI executor: %w", err)
	}
	return &openaiAgent[Req]{name: config.Name, executor: exec}, nil
}

func (a *openaiAgent[Req]) Execute(ctx context.Context, request Req, tools toolcall.ToolProvider[string]) (string, error) {
	return a.executor.Execute(named(ctx, a.name), request, tools)
}
