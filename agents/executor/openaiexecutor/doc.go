/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaiexecutor runs agent conversations against OpenAI chat
// completion models.
//
// The executor binds the request into its prompt, offers the tools from a
// toolcall.ToolProvider, executes the tool calls the model makes and returns
// the model's first answer that calls no tools. Each model response counts
// as one turn; a run that needs more than the budget (WithMaxTurns, default
// 20) fails with an executor.MaxTurnsError.
//
//	client := openai.NewClient(option.WithAPIKey(apiKey))
//	exec, err := openaiexecutor.New[*Request](client, prompt,
//		openaiexecutor.WithModel[*Request]("gpt-4.1-mini"),
//		openaiexecutor.WithSystemInstructions[*Request](instructions),
//		openaiexecutor.WithTemperature[*Request](0.2),
//	)
//	if err != nil {
//		return err
//	}
//	report, err := exec.Execute(ctx, req, session)
package openaiexecutor
