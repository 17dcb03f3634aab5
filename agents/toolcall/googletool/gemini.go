/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package googletool converts toolcall definitions and results to and from
// the Gemini function calling API.
package googletool

import (
	"slices"

	"chainguard.dev/ghinvestigator/agents/toolcall"
	"google.golang.org/genai"
)

// Declaration converts a definition to a Gemini function declaration.
// The schema is passed as JSON schema so remote schemas survive unchanged.
func Declaration(def toolcall.Definition) *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:                 def.Name,
		Description:          def.Description,
		ParametersJsonSchema: def.Schema(),
	}
}

// Map converts tools to a single Gemini tool, declarations ordered by name.
func Map[Resp any](tools map[string]toolcall.Tool[Resp]) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	slices.Sort(names)

	decls := make([]*genai.FunctionDeclaration, 0, len(names))
	for _, name := range names {
		decls = append(decls, Declaration(tools[name].Def))
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// Call converts a Gemini function call to a ToolCall.
func Call(fc *genai.FunctionCall) toolcall.ToolCall {
	args := fc.Args
	if args == nil {
		args = map[string]any{}
	}
	return toolcall.ToolCall{ID: fc.ID, Name: fc.Name, Args: args}
}

// Response wraps a handler result as a function response part.
func Response(fc *genai.FunctionCall, result map[string]any) *genai.Part {
	return &genai.Part{
		FunctionResponse: &genai.FunctionResponse{
			ID:       fc.ID,
			Name:     fc.Name,
			Response: result,
		},
	}
}
