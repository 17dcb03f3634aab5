/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"strings"
)

// fenceLanguages are the info strings treated as a markdown wrapper.
var fenceLanguages = map[string]bool{
	"":         true,
	"markdown": true,
	"md":       true,
}

// Markdown returns the report in a model response.
//
// Models sometimes wrap an entire markdown report in a ```markdown fence.
// When the whole response is one such fence, its body is returned.
// Anything else, including reports that merely contain code blocks, is
// returned trimmed but otherwise untouched.
func Markdown(responseText string) string {
	text := strings.TrimSpace(responseText)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}

	first, rest, ok := strings.Cut(text, "\n")
	if !ok {
		return text
	}
	if !fenceLanguages[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(first, "```")))] {
		return text
	}

	body := strings.TrimSuffix(rest, "```")
	// A fence inside the body means the response was not a single wrapper.
	if strings.Contains(body, "\n```") || strings.HasPrefix(body, "```") {
		return text
	}
	return strings.TrimSpace(body)
}

// IsEmpty reports whether a response carries no report at all.
func IsEmpty(responseText string) bool {
	return Markdown(responseText) == ""
}
