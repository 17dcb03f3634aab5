/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package diagnostics checks the GitHub token, the repository and the tool
// server an investigation depends on.
package diagnostics
