/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import "maps"

// ToolProvider supplies the tools an agent may call.
// Conversion to SDK-specific types happens in the executors.
type ToolProvider[Resp any] interface {
	// Tools returns provider-independent tool definitions keyed by name.
	Tools() map[string]Tool[Resp]
}

// Static is a ToolProvider over a fixed set of tools.
type Static[Resp any] map[string]Tool[Resp]

// Tools implements ToolProvider.
func (s Static[Resp]) Tools() map[string]Tool[Resp] {
	return maps.Clone(s)
}

// Compose merges providers. Later providers win on name collisions.
func Compose[Resp any](providers ...ToolProvider[Resp]) ToolProvider[Resp] {
	out := Static[Resp]{}
	for _, p := range providers {
		if p == nil {
			continue
		}
		maps.Copy(out, p.Tools())
	}
	return out
}
