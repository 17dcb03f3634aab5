/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaiexecutor

import (
	"errors"

	"chainguard.dev/ghinvestigator/agents/executor/retry"
	"github.com/openai/openai-go"
)

// isRetryableOpenAIError reports rate limit and transient server errors.
func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return retry.TransientStatus(apiErr.StatusCode)
	}
	return false
}
