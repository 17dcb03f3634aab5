/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package client is a typed HTTP client for the investigator API.
package client
