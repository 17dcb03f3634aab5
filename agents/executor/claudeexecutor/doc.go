/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudeexecutor runs agent conversations against Claude models,
// either directly or through Vertex AI.
//
//	client := anthropic.NewClient(
//	    vertex.WithGoogleAuth(ctx, region, projectID),
//	)
//
//	exec, err := claudeexecutor.New[*Request](client, prompt,
//	    claudeexecutor.WithModel[*Request]("claude-sonnet-4-5"),
//	    claudeexecutor.WithSystemInstructions[*Request](instructions),
//	    claudeexecutor.WithMaxTurns[*Request](20),
//	)
//	if err != nil {
//	    return err
//	}
//	report, err := exec.Execute(ctx, req, session)
//
// # Options
//
//   - WithModel: Override the default model (claude-sonnet-4-5)
//   - WithMaxTokens: Set maximum response tokens (defaults to 8192, max 16384)
//   - WithTemperature: Set response temperature (defaults to 0.2)
//   - WithSystemInstructions: Provide system-level instructions
//   - WithThinking: Enable extended thinking mode with a token budget
//   - WithMaxTurns: Bound the number of model responses (defaults to 20)
//   - WithToolChoice: auto, required or none
//
// Reasoning blocks produced with thinking enabled are stored in
// trace.Reasoning. When thinking is enabled, temperature is forced to 1.0
// as required by the Claude API.
package claudeexecutor
