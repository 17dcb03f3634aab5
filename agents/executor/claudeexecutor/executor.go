/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

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
	"chainguard.dev/ghinvestigator/agents/toolcall/claudetool"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
)

// executor provides the private implementation
type executor[Request promptbuilder.Bindable] struct {
	client               anthropic.Client
	modelName            string
	systemInstructions   *promptbuilder.Prompt
	prompt               *promptbuilder.Prompt
	maxTokens            int64
	temperature          float64
	thinkingBudgetTokens *int64 // nil = disabled, non-nil = enabled with budget
	maxTurns             int
	toolChoice           ex.ToolChoice
	genaiMetrics         *metrics.GenAI
	retryConfig          retry.RetryConfig
}

// New creates a new Executor with minimal required configuration
func New[Request promptbuilder.Bindable](
	client anthropic.Client,
	prompt *promptbuilder.Prompt,
	opts ...Option[Request],
) (ex.Interface[Request], error) {
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}

	e := &executor[Request]{
		client:       client,
		modelName:    "claude-sonnet-4-5",
		prompt:       prompt,
		maxTokens:    8192,
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

// Execute runs the conversation until Claude answers without calling tools.
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

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.modelName),
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)},
		}},
		Temperature: anthropic.Float(e.temperature),
	}
	if len(tools) > 0 {
		params.Tools = claudetool.Map(tools)
		params.ToolChoice = toolChoiceParam(e.toolChoice)
	}

	if e.systemInstructions != nil {
		systemPrompt, err := e.systemInstructions.Build()
		if err != nil {
			return "", fmt.Errorf("building system prompt: %w", err)
		}
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	// Temperature must be 1.0 when thinking is enabled.
	// See: https://docs.claude.com/en/docs/build-with-claude/extended-thinking#important-considerations-when-using-extended-thinking
	if e.thinkingBudgetTokens != nil {
		params.Temperature = anthropic.Float(1.0)
		params.Thinking = anthropic.ThinkingConfigParamUnion{
			OfEnabled: &anthropic.ThinkingConfigEnabledParam{
				BudgetTokens: *e.thinkingBudgetTokens,
			},
		}
	}

	log.With("prompt_length", len(prompt)).With("tools", len(tools)).
		Info("Starting Claude agent execution")

	for turn := 1; ; turn++ {
		if err := ex.CheckTurn(turn, e.maxTurns); err != nil {
			log.With("max_turns", e.maxTurns).Warn("Agent exhausted its turn budget")
			return "", err
		}

		message, err := retry.RetryWithBackoff(ctx, e.retryConfig, "create_message", isRetryableClaudeError, func() (*anthropic.Message, error) {
			return e.client.Messages.New(ctx, params)
		})
		if err != nil {
			return "", fmt.Errorf("failed to get Claude response: %w", err)
		}
		trace.RecordTurn()

		if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
			e.genaiMetrics.RecordTokens(ctx, e.modelName, message.Usage.InputTokens, message.Usage.OutputTokens)
			trace.RecordTokenUsage(e.modelName, message.Usage.InputTokens, message.Usage.OutputTokens)
		}

		var toolUses []anthropic.ToolUseBlock
		var text []string
		for _, content := range message.Content {
			switch content.Type {
			case "text":
				text = append(text, content.Text)
			case "tool_use":
				toolUses = append(toolUses, anthropic.ToolUseBlock{
					ID:    content.ID,
					Name:  content.Name,
					Input: content.Input,
				})
			case "thinking", "redacted_thinking":
				trace.Reasoning = append(trace.Reasoning, agenttrace.ReasoningContent{
					Thinking: content.Thinking,
				})
			}
		}

		if len(toolUses) == 0 {
			answer := strings.TrimSpace(strings.Join(text, "\n"))
			if answer == "" {
				return "", errors.New("no content in Claude's response")
			}
			log.With("turns", turn).Info("Successfully completed Claude agent execution")
			return answer, nil
		}

		params.Messages = append(params.Messages, message.ToParam())

		results := make([]anthropic.ContentBlockParamUnion, 0, len(toolUses))
		for _, toolUse := range toolUses {
			block, err := e.runTool(ctx, tools, toolUse, trace)
			if err != nil {
				return "", err
			}
			results = append(results, block)
		}
		params.Messages = append(params.Messages, anthropic.MessageParam{
			Role:    anthropic.MessageParamRoleUser,
			Content: results,
		})
	}
}

// runTool executes one tool_use block and returns its tool_result.
func (e *executor[Request]) runTool(ctx context.Context, tools map[string]toolcall.Tool[string], toolUse anthropic.ToolUseBlock, trace *agenttrace.Trace[string]) (anthropic.ContentBlockParamUnion, error) {
	clog.FromContext(ctx).With("tool", toolUse.Name).With("id", toolUse.ID).Info("Executing tool call")
	e.genaiMetrics.RecordToolCall(ctx, e.modelName, toolUse.Name)

	var out map[string]any
	if call, err := claudetool.Call(toolUse); err != nil {
		trace.BadToolCall(toolUse.ID, toolUse.Name, map[string]any{"input": string(toolUse.Input)}, err)
		out = toolcall.Error("%s", err)
	} else {
		out = toolcall.Invoke(ctx, tools, call, trace)
	}
	return claudetool.Result(toolUse.ID, out)
}

func toolChoiceParam(choice ex.ToolChoice) anthropic.ToolChoiceUnionParam {
	switch choice {
	case ex.ToolChoiceRequired:
		return anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	case ex.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	default:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
}
