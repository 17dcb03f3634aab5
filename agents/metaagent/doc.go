/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metaagent builds an Agent for whichever provider serves a model.
//
// The model name selects the provider (see ProviderFor). Claude and Gemini
// use their API key when one is configured and Vertex AI otherwise.
//
//	temperature := 0.2
//	agent, err := metaagent.New[*Request](ctx, creds, "gpt-4.1-mini", metaagent.Config{
//	    Name:               "github-error-investigator",
//	    SystemInstructions: instructions,
//	    UserPrompt:         userPrompt,
//	    Temperature:        &temperature,
//	})
//	if err != nil {
//	    return err
//	}
//	report, err := agent.Execute(ctx, request, session)
package metaagent
