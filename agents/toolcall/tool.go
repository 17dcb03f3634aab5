/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"
	"fmt"
	"maps"

	"chainguard.dev/ghinvestigator/agents/agenttrace"
)

// ToolCall is a provider-independent representation of a tool call.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Definition describes a tool's schema (name, description, parameters).
//
// Locally defined tools list their Parameters. Tools discovered from a
// remote server carry the server's JSON schema verbatim in InputSchema,
// which takes precedence.
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
	InputSchema map[string]any
	ReadOnly    bool
}

// Parameter describes a single tool parameter.
type Parameter struct {
	Name        string
	Type        string // "string", "integer", "boolean", "number"
	Description string
	Required    bool
}

// Schema returns the tool's parameters as a JSON schema object.
func (d Definition) Schema() map[string]any {
	if d.InputSchema != nil {
		schema := maps.Clone(d.InputSchema)
		if _, ok := schema["type"]; !ok {
			schema["type"] = "object"
		}
		if _, ok := schema["properties"]; !ok {
			schema["properties"] = map[string]any{}
		}
		return schema
	}

	properties := make(map[string]any, len(d.Parameters))
	required := []string{}
	for _, p := range d.Parameters {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Properties returns the "properties" member of Schema.
func (d Definition) Properties() map[string]any {
	props, _ := d.Schema()["properties"].(map[string]any)
	return props
}

// Required returns the "required" member of Schema.
func (d Definition) Required() []string {
	switch req := d.Schema()["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Tool defines a tool once with a single handler that works with any provider.
// The handler's return value is marshalled to JSON and handed back to the model.
type Tool[Resp any] struct {
	Def     Definition
	Handler func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp]) map[string]any
}

// Invoke runs the named tool, recording unknown tools as bad tool calls.
func Invoke[Resp any](ctx context.Context, tools map[string]Tool[Resp], call ToolCall, trace *agenttrace.Trace[Resp]) map[string]any {
	tool, ok := tools[call.Name]
	if !ok {
		err := fmt.Errorf("unknown tool: %q", call.Name)
		trace.BadToolCall(call.ID, call.Name, call.Args, err)
		return Error("%s", err)
	}
	if call.Args == nil {
		call.Args = map[string]any{}
	}
	if result := tool.Handler(ctx, call, trace); result != nil {
		return result
	}
	return map[string]any{}
}

// Param extracts a required parameter from the tool call args.
// On error, records a bad tool call on the trace and returns an error response.
func Param[T any](call ToolCall, trace interface {
	BadToolCall(string, string, map[string]any, error)
}, name string) (T, map[string]any) {
	v, err := Extract[T](call.Args, name)
	if err != nil {
		trace.BadToolCall(call.ID, call.Name, call.Args, fmt.Errorf("missing %s parameter", name))
		return v, Error("%s", err)
	}
	return v, nil
}

// OptionalParam extracts an optional parameter from the tool call args.
func OptionalParam[T any](call ToolCall, name string, defaultValue T) (T, map[string]any) {
	v, err := ExtractOptional[T](call.Args, name, defaultValue)
	if err != nil {
		return v, Error("%s", err)
	}
	return v, nil
}
