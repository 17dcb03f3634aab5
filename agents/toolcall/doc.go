/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolcall holds the provider-independent tool model shared by the
// agent executors.
//
// A Tool pairs a Definition with a handler. Tools are supplied through a
// ToolProvider; the toolserver package provides one backed by a remote MCP
// server. Each executor converts definitions with its SDK adapter
// (claudetool, googletool, openaitool) and dispatches calls with Invoke.
//
//	tools := toolcall.Static[string]{
//		"echo": {
//			Def: toolcall.Definition{
//				Name:       "echo",
//				Parameters: []toolcall.Parameter{{Name: "msg", Type: "string", Required: true}},
//			},
//			Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace[string]) map[string]any {
//				msg, errResp := toolcall.Param[string](call, trace, "msg")
//				if errResp != nil {
//					return errResp
//				}
//				return map[string]any{"echo": msg}
//			},
//		},
//	}
package toolcall
