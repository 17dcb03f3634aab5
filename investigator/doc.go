/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package investigator prompts agents to investigate CI failures, summarize
// repository activity and rate pull request risk using the GitHub tool server.
//
// Each Service call opens a tool server session, builds the task's agent
// and runs it with a bounded number of turns:
//
//	svc := investigator.New(cfg)
//	res, err := svc.Investigate(ctx, &investigator.ErrorInvestigationRequest{
//		ErrorMessage: "ModuleNotFoundError: No module named 'my_pipeline.config'",
//		RepoSlug:     "acme/widgets",
//		Branch:       "main",
//	})
//
// A run that exhausts its turn budget is not an error. The response
// carries fallback text naming the repository and the likely causes
// instead. Every other failure is returned to the caller.
package investigator
