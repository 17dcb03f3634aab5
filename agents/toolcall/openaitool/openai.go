/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaitool converts toolcall definitions and results to and from
// the OpenAI Chat Completions API.
package openaitool

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"chainguard.dev/ghinvestigator/agents/toolcall"
	"github.com/openai/openai-go"
)

// ToolParam converts a definition to an OpenAI function tool.
func ToolParam(def toolcall.Definition) openai.ChatCompletionToolParam {
	fn := openai.FunctionDefinitionParam{
		Name:       def.Name,
		Parameters: openai.FunctionParameters(def.Schema()),
	}
	if def.Description != "" {
		fn.Description = openai.String(def.Description)
	}
	return openai.ChatCompletionToolParam{Function: fn}
}

// Map converts tools to OpenAI tool params, ordered by name.
func Map[Resp any](tools map[string]toolcall.Tool[Resp]) []openai.ChatCompletionToolParam {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]openai.ChatCompletionToolParam, 0, len(names))
	for _, name := range names {
		out = append(out, ToolParam(tools[name].Def))
	}
	return out
}

// Call converts an OpenAI tool call to a ToolCall.
func Call(tc openai.ChatCompletionMessageToolCall) (toolcall.ToolCall, error) {
	call := toolcall.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: map[string]any{}}
	if strings.TrimSpace(tc.Function.Arguments) == "" {
		return call, nil
	}
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &call.Args); err != nil {
		return call, fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	return call, nil
}

// Result wraps a handler result as a tool message.
func Result(toolCallID string, result map[string]any) (openai.ChatCompletionMessageParamUnion, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return openai.ToolMessage(string(b), toolCallID), nil
}
