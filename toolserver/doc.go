/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolserver connects to the GitHub MCP server over streamable
// HTTP and exposes its tools to agents.
//
//	s, err := toolserver.Open(ctx, toolserver.FromConfig(cfg.MCP)...)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	answer, err := agent.Execute(ctx, req, s)
//
// The tool catalog is listed once at Open and cached on the session.
package toolserver
