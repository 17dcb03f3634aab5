/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaiexecutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/ghinvestigator/agents/agenttrace"
	ex "chainguard.dev/ghinvestigator/agents/executor"
	"chainguard.dev/ghinvestigator/agents/executor/retry"
	"chainguard.dev/ghinvestigator/agents/metrics"
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
	"chainguard.dev/ghinvestigator/agents/toolcall"
	"chainguard.dev/ghinvestigator/agents/toolcall/openaitool"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
)

// executor provides the private implementation
type executor[Request promptbuilder.Bindable] struct {
	client             openai.Client
	modelName          string
	systemInstructions *promptbuilder.Prompt
	prompt             *promptbuilder.Prompt
	temperature        float64
	maxTurns           int
	toolChoice         ex.ToolChoice
	genaiMetrics       *metrics.GenAI
	retryConfig        retry.RetryConfig
}

// New creates a new executor for OpenAI chat completion models.
func New[Request promptbuilder.Bindable](
	client openai.Client,
	prompt *promptbuilder.Prompt,
	opts ...Option[Request],
) (ex.Interface[Request], error) {
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}

	e := &executor[Request]{
		client:       client,
		modelName:    "gpt-4.1-mini",
		prompt:       prompt,
		temperature:  0.2,
		maxTurns:     ex.DefaultMaxTurns,
		toolChoice:   ex.ToolChoiceAuto,
		genaiMetrics: metrics.NewGenAI(metrics.MeterName),
		retryConfig:  retry.DefaultRetryConfig(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return e, nil
}

// ReasoningModel reports whether model is an o-series reasoning model.
// These reject any temperature, so none is sent for them.
func ReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// Execute runs the conversation until the model answers without calling tools.
func (e *executor[Request]) Execute(ctx context.Context, request Request, provider toolcall.ToolProvider[string]) (response string, err error) {
	log := clog.FromContext(ctx).With("model", e.modelName)

	boundPrompt, err := request.Bind(e.prompt)
	if err != nil {
		return "", fmt.Errorf("failed to bind request to prompt: %w", err)
	}
	prompt, err := boundPrompt.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	trace := agenttrace.StartTrace[string](ctx, prompt)
	defer func() {
		e.genaiMetrics.RecordTurns(ctx, e.modelName, trace.TurnCount(), errors.Is(err, ex.ErrMaxTurnsExceeded))
		trace.Complete(response, err)
	}()

	tools := toolcall.Empty[string]().Tools()
	if provider != nil {
		tools = provider.Tools()
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if e.systemInstructions != nil {
		system, err := e.systemInstructions.Build()
		if err != nil {
			return "", fmt.Errorf("building system prompt: %w", err)
		}
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    e.modelName,
		Messages: messages,
	}
	if !ReasoningModel(e.modelName) {
		params.Temperature = openai.Float(e.temperature)
	}
	if len(tools) > 0 {
		params.Tools = openaitool.Map(tools)
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(e.toolChoice)),
		}
	}

	log.With("prompt_length", len(prompt)).With("tools", len(tools)).
		Info("Starting OpenAI agent execution")

	for turn := 1; ; turn++ {
		if err := ex.CheckTurn(turn, e.maxTurns); err != nil {
			log.With("max_turns", e.maxTurns).Warn("Agent exhausted its turn budget")
			return "", err
		}

		completion, err := retry.RetryWithBackoff(ctx, e.retryConfig, "chat_completion", isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
			return e.client.Chat.Completions.New(ctx, params)
		})
		if err != nil {
			return "", fmt.Errorf("failed to get OpenAI completion: %w", err)
		}
		trace.RecordTurn()

		if u := completion.Usage; u.PromptTokens > 0 || u.CompletionTokens > 0 {
			e.genaiMetrics.RecordTokens(ctx, e.modelName, u.PromptTokens, u.CompletionTokens)
			trace.RecordTokenUsage(e.modelName, u.PromptTokens, u.CompletionTokens)
		}

		if len(completion.Choices) == 0 {
			return "", errors.New("no choices in OpenAI response")
		}
		msg := completion.Choices[0].Message

		if len(msg.ToolCalls) == 0 {
			if msg.Content == "" {
				return "", errors.New("no content in OpenAI response")
			}
			log.With("turns", turn).Info("Successfully completed OpenAI agent execution")
			return msg.Content, nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		for _, tc := range msg.ToolCalls {
			params.Messages = append(params.Messages, e.runTool(ctx, tools, tc, trace))
		}
	}
}

// runTool executes one tool call and returns the tool message answering it.
func (e *executor[Request]) runTool(ctx context.Context, tools map[string]toolcall.Tool[string], tc openai.ChatCompletionMessageToolCall, trace *agenttrace.Trace[string]) openai.ChatCompletionMessageParamUnion {
	log := clog.FromContext(ctx).With("tool", tc.Function.Name).With("id", tc.ID)
	log.Info("Executing tool call")
	e.genaiMetrics.RecordToolCall(ctx, e.modelName, tc.Function.Name)

	var out map[string]any
	if call, err := openaitool.Call(tc); err != nil {
		trace.BadToolCall(tc.ID, tc.Function.Name, map[string]any{"arguments": tc.Function.Arguments}, err)
		out = toolcall.Error("%s", err)
	} else {
		out = toolcall.Invoke(ctx, tools, call, trace)
	}

	msg, err := openaitool.Result(tc.ID, out)
	if err != nil {
		log.With("error", err).Error("Failed to encode tool result")
		return openai.ToolMessage(fmt.Sprintf(`{"error":%q}`, err.Error()), tc.ID)
	}
	return msg
}
