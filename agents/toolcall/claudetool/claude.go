/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudetool converts toolcall definitions and results to and from
// the Anthropic Messages API.
package claudetool

import (
	"encoding/json"
	"fmt"
	"slices"

	"chainguard.dev/ghinvestigator/agents/toolcall"
	"github.com/anthropics/anthropic-sdk-go"
)

// ToolParam converts a definition to an Anthropic tool.
func ToolParam(def toolcall.Definition) anthropic.ToolParam {
	tp := anthropic.ToolParam{
		Name: def.Name,
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: def.Properties(),
			Required:   def.Required(),
		},
	}
	if def.Description != "" {
		tp.Description = anthropic.String(def.Description)
	}
	return tp
}

// Map converts tools to Anthropic tool params, ordered by name.
func Map[Resp any](tools map[string]toolcall.Tool[Resp]) []anthropic.ToolUnionParam {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]anthropic.ToolUnionParam, 0, len(names))
	for _, name := range names {
		tp := ToolParam(tools[name].Def)
		out = append(out, anthropic.ToolUnionParam{OfTool: &tp})
	}
	return out
}

// Call converts a tool_use block to a ToolCall.
func Call(block anthropic.ToolUseBlock) (toolcall.ToolCall, error) {
	call := toolcall.ToolCall{ID: block.ID, Name: block.Name, Args: map[string]any{}}
	if len(block.Input) == 0 {
		return call, nil
	}
	if err := json.Unmarshal(block.Input, &call.Args); err != nil {
		return call, fmt.Errorf("failed to parse tool input: %w", err)
	}
	return call, nil
}

// Result wraps a handler result as a tool_result block.
func Result(toolUseID string, result map[string]any) (anthropic.ContentBlockParamUnion, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	_, isError := result["error"]
	return anthropic.ContentBlockParamUnion{
		OfToolResult: &anthropic.ToolResultBlockParam{
			ToolUseID: toolUseID,
			IsError:   anthropic.Bool(isError),
			Content: []anthropic.ToolResultBlockParamContentUnion{{
				OfText: &anthropic.TextBlockParam{Text: string(b)},
			}},
		},
	}, nil
}
