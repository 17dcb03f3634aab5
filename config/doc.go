/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config reads the service configuration from the environment.
//
// Model provider keys and service settings are read once by Load. The
// tool server token (GITHUB_MCP_PAT) is different: GitHubToken reads it
// each time a session opens, and a missing token surfaces as a
// *MissingError matching ErrMissingCredential.
package config
