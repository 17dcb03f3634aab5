/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"chainguard.dev/ghinvestigator/agents/agenttrace"
	ex "chainguard.dev/ghinvestigator/agents/executor"
	"chainguard.dev/ghinvestigator/agents/executor/retry"
	"chainguard.dev/ghinvestigator/agents/metrics"
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
	"chainguard.dev/ghinvestigator/agents/toolcall"
	"chainguard.dev/ghinvestigator/agents/toolcall/googletool"
	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"
)

// executor is the private implementation of ex.Interface
type executor[Request promptbuilder.Bindable] struct {
	client             *genai.Client
	prompt             *promptbuilder.Prompt
	model              string
	temperature        float32
	maxOutputTokens    int32
	systemInstructions *promptbuilder.Prompt
	thinkingBudget     *int32 // nil = disabled, non-nil = enabled with budget
	maxTurns           int
	toolChoice         ex.ToolChoice
	genaiMetrics       *metrics.GenAI
	retryConfig        retry.RetryConfig
	resourceLabels     map[string]string
}

// New creates a new Google AI executor with the given configuration
func New[Request promptbuilder.Bindable](
	client *genai.Client,
	prompt *promptbuilder.Prompt,
	options ...Option[Request],
) (ex.Interface[Request], error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	if prompt == nil {
		return nil, errors.New("prompt is required")
	}

	exec := &executor[Request]{
		client:          client,
		prompt:          prompt,
		model:           "gemini-2.5-flash",
		temperature:     0.2,
		maxOutputTokens: 8192,
		maxTurns:        ex.DefaultMaxTurns,
		toolChoice:      ex.ToolChoiceAuto,
		genaiMetrics:    metrics.NewGenAI(metrics.MeterName),
		retryConfig:     retry.DefaultRetryConfig(),
	}

	for _, opt := range options {
		if err := opt(exec); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return exec, nil
}

// Execute implements ex.Interface
func (e *executor[Request]) Execute(ctx context.Context, request Request, provider toolcall.ToolProvider[string]) (resp string, err error) {
	log := clog.FromContext(ctx).With("model", e.model)

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
		e.genaiMetrics.RecordTurns(ctx, e.model, trace.TurnCount(), errors.Is(err, ex.ErrMaxTurnsExceeded))
		trace.Complete(resp, err)
	}()

	tools := toolcall.Empty[string]().Tools()
	if provider != nil {
		tools = provider.Tools()
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(e.temperature),
		MaxOutputTokens: e.maxOutputTokens,
		Labels:          e.resourceLabels,
	}
	if e.systemInstructions != nil {
		systemPrompt, err := e.systemInstructions.Build()
		if err != nil {
			return "", fmt.Errorf("building system prompt: %w", err)
		}
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if len(tools) > 0 {
		config.Tools = googletool.Map(tools)
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: callingMode(e.toolChoice)},
		}
	}
	if e.thinkingBudget != nil {
		config.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  e.thinkingBudget,
		}
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	log.With("prompt_length", len(prompt)).With("tools", len(tools)).
		Info("Starting Google AI agent execution")

	for turn := 1; ; turn++ {
		if err := ex.CheckTurn(turn, e.maxTurns); err != nil {
			log.With("max_turns", e.maxTurns).Warn("Agent exhausted its turn budget")
			return "", err
		}

		response, err := retry.RetryWithBackoff(ctx, e.retryConfig, "generate_content", isRetryableGeminiError, func() (*genai.GenerateContentResponse, error) {
			return e.client.Models.GenerateContent(ctx, e.model, contents, config)
		})
		if err != nil {
			return "", fmt.Errorf("failed to generate content: %w", err)
		}
		trace.RecordTurn()

		if usage := response.UsageMetadata; usage != nil {
			e.genaiMetrics.RecordTokens(ctx, e.model, int64(usage.PromptTokenCount), int64(usage.CandidatesTokenCount))
			trace.RecordTokenUsage(e.model, int64(usage.PromptTokenCount), int64(usage.CandidatesTokenCount))
		}

		if len(response.Candidates) == 0 {
			return "", errors.New("no content generated - no candidates")
		}
		candidate := response.Candidates[0]

		if candidate.FinishReason == genai.FinishReasonMalformedFunctionCall {
			log.With("finish_message", candidate.FinishMessage).
				Warn("Model attempted a malformed function call, asking it to retry")
			names := make([]string, 0, len(tools))
			for name := range tools {
				names = append(names, name)
			}
			slices.Sort(names)
			contents = append(contents, genai.NewContentFromText(
				fmt.Sprintf("The function call was malformed. Please try again using the available functions: %v", names),
				genai.RoleUser))
			continue
		}

		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			return "", errors.New("no content generated - candidate has no parts")
		}

		var calls []*genai.FunctionCall
		var text []string
		for _, part := range candidate.Content.Parts {
			switch {
			case part.Thought:
				trace.Reasoning = append(trace.Reasoning, agenttrace.ReasoningContent{Thinking: part.Text})
			case part.FunctionCall != nil:
				calls = append(calls, part.FunctionCall)
			case part.Text != "":
				text = append(text, part.Text)
			}
		}

		if len(calls) == 0 {
			answer := strings.TrimSpace(strings.Join(text, ""))
			if answer == "" {
				return "", errors.New("no text content found in response")
			}
			log.With("turns", turn).Info("Successfully completed Google AI agent execution")
			return answer, nil
		}

		contents = append(contents, candidate.Content)
		parts := make([]*genai.Part, 0, len(calls))
		for _, fc := range calls {
			log.With("tool", fc.Name).With("id", fc.ID).Info("Executing tool call")
			e.genaiMetrics.RecordToolCall(ctx, e.model, fc.Name)
			parts = append(parts, googletool.Response(fc, toolcall.Invoke(ctx, tools, googletool.Call(fc), trace)))
		}
		contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: parts})
	}
}

func callingMode(choice ex.ToolChoice) genai.FunctionCallingConfigMode {
	switch choice {
	case ex.ToolChoiceRequired:
		return genai.FunctionCallingConfigModeAny
	case ex.ToolChoiceNone:
		return genai.FunctionCallingConfigModeNone
	default:
		return genai.FunctionCallingConfigModeAuto
	}
}
