/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package googleexecutor runs agent conversations against Gemini models,
through either the Gemini API or Vertex AI.

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return err
	}

	exec, err := googleexecutor.New[*Request](client, prompt,
		googleexecutor.WithModel[*Request]("gemini-2.5-flash"),
		googleexecutor.WithSystemInstructions[*Request](instructions),
	)
	if err != nil {
		return err
	}
	report, err := exec.Execute(ctx, req, session)

Tool schemas are passed to Gemini as JSON schema, so schemas discovered
from a remote tool server are forwarded unchanged. A malformed function
call costs a turn: the model is told which functions exist and asked again.
*/
package googleexecutor
