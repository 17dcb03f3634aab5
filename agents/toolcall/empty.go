/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

// Empty returns a ToolProvider that provides no tools.
func Empty[Resp any]() ToolProvider[Resp] {
	return Static[Resp]{}
}
