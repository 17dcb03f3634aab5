/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googletool_test

import (
	"testing"

	"chainguard.dev/ghinvestigator/agents/toolcall"
	"chainguard.dev/ghinvestigator/agents/toolcall/googletool"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
)

func TestMap(t *testing.T) {
	if got := googletool.Map(map[string]toolcall.Tool[string]{}); got != nil {
		t.Errorf("Map(empty): got = %v, wanted = nil", got)
	}

	tools := map[string]toolcall.Tool[string]{
		"list_commits": {Def: toolcall.Definition{Name: "list_commits", Description: "List commits"}},
		"get_me":       {Def: toolcall.Definition{Name: "get_me"}},
	}
	got := googletool.Map(tools)
	if len(got) != 1 {
		t.Fatalf("tools: got = %d, wanted = 1", len(got))
	}
	decls := got[0].FunctionDeclarations
	if len(decls) != 2 || decls[0].Name != "get_me" || decls[1].Name != "list_commits" {
		t.Fatalf("declarations: got = %v, wanted [get_me list_commits]", decls)
	}
	schema, ok := decls[1].ParametersJsonSchema.(map[string]any)
	if !ok || schema["type"] != "object" {
		t.Errorf("schema: got = %v, wanted an object schema", decls[1].ParametersJsonSchema)
	}
}

func TestCallAndResponse(t *testing.T) {
	fc := &genai.FunctionCall{ID: "call-1", Name: "get_me"}

	want := toolcall.ToolCall{ID: "call-1", Name: "get_me", Args: map[string]any{}}
	if diff := cmp.Diff(want, googletool.Call(fc)); diff != "" {
		t.Errorf("Call() (-want +got):\n%s", diff)
	}

	part := googletool.Response(fc, map[string]any{"login": "octocat"})
	if part.FunctionResponse == nil || part.FunctionResponse.ID != "call-1" {
		t.Fatalf("Response(): got = %v, wanted function response for call-1", part)
	}
	if got := part.FunctionResponse.Response["login"]; got != "octocat" {
		t.Errorf("response login: got = %v, wanted = %q", got, "octocat")
	}
}
