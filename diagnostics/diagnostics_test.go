/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package diagnostics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/ghinvestigator/config"
	"chainguard.dev/ghinvestigator/investigator"
	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "ghp_test"

type fakeGitHub struct {
	*httptest.Server
	requests   atomic.Int32
	userStatus int
	// branches lists the branches that exist.
	branches map[string]bool
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{userStatus: http.StatusOK, branches: map[string]bool{"main": true}}

	s := server.NewMCPServer("github", "1.0.0", server.WithToolCapabilities(true))
	noop := func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}
	s.AddTool(mcp.NewTool("get_me", mcp.WithReadOnlyHintAnnotation(true)), noop)
	s.AddTool(mcp.NewTool("list_commits", mcp.WithReadOnlyHintAnnotation(true)), noop)
	s.AddTool(mcp.NewTool("create_issue", mcp.WithReadOnlyHintAnnotation(false)), noop)

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s))
	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, _ *http.Request) {
		if f.userStatus != http.StatusOK {
			w.WriteHeader(f.userStatus)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		w.Header().Set("X-OAuth-Scopes", "repo, read:org")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.Header().Set("X-RateLimit-Reset", "1767225600")
		_, _ = w.Write([]byte(`{"login":"octocat"}`))
	})
	mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Variables map[string]string `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var ref any
		if branch := strings.TrimPrefix(body.Variables["branch"], "refs/heads/"); f.branches[branch] {
			ref = map[string]string{"name": branch}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"repository": map[string]any{
					"nameWithOwner":    body.Variables["owner"] + "/" + body.Variables["name"],
					"isPrivate":        false,
					"viewerPermission": "WRITE",
					"defaultBranchRef": map[string]string{"name": "main"},
					"ref":              ref,
				},
			},
		})
	})

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGitHub) checker(t *testing.T, token string) *Checker {
	t.Helper()
	rest, err := url.Parse(f.URL + "/api/")
	if err != nil {
		t.Fatalf("url.Parse() = %v", err)
	}
	return New(config.MCP{URL: f.URL + "/mcp", ConnectTimeout: 5 * time.Second},
		WithGitHubURLs(rest, f.URL+"/graphql"),
		WithTokenFunc(func() (string, error) {
			if token == "" {
				return "", &config.MissingError{Var: config.GitHubTokenEnv}
			}
			return token, nil
		}),
		WithTransport(http.DefaultTransport),
		WithTimeout(5*time.Second),
	)
}

func TestDiagnose(t *testing.T) {
	f := newFakeGitHub(t)

	got := f.checker(t, testToken).Diagnose(context.Background(), &Request{RepoSlug: "acme/widgets", Branch: "main"})

	want := &Report{
		GitHub: &GitHubStatus{
			Login:              "octocat",
			Scopes:             []string{"repo", "read:org"},
			RateLimitRemaining: 4999,
			RateLimitReset:     time.Unix(1767225600, 0),
		},
		Repository: &RepositoryStatus{
			NameWithOwner:    "acme/widgets",
			DefaultBranch:    "main",
			Branch:           "main",
			BranchExists:     true,
			ViewerPermission: "WRITE",
		},
		ToolServer: &ToolServerStatus{
			Reachable:     true,
			Tools:         3,
			ReadOnlyTools: 2,
		},
		Errors: []string{},
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("Diagnose() mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnoseMissingBranch(t *testing.T) {
	f := newFakeGitHub(t)

	got := f.checker(t, testToken).Diagnose(context.Background(), &Request{RepoSlug: "acme/widgets", Branch: "release-9"})

	require.NotNil(t, got.Repository)
	assert.False(t, got.Repository.BranchExists)
	assert.Equal(t, "main", got.Repository.DefaultBranch)
	require.Len(t, got.Errors, 1)
	assert.True(t, strings.HasPrefix(got.Errors[0], "repository: "), got.Errors[0])
	assert.Contains(t, got.Errors[0], "release-9")
}

func TestDiagnoseWithoutRepository(t *testing.T) {
	f := newFakeGitHub(t)

	got := f.checker(t, testToken).Diagnose(context.Background(), &Request{})

	assert.Nil(t, got.Repository)
	assert.NotNil(t, got.GitHub)
	assert.NotNil(t, got.ToolServer)
	assert.Empty(t, got.Errors)
}

func TestDiagnoseRejectedToken(t *testing.T) {
	f := newFakeGitHub(t)

	got := f.checker(t, "ghp_revoked").Diagnose(context.Background(), &Request{RepoSlug: "acme/widgets", Branch: "main"})

	require.NotNil(t, got.ToolServer)
	assert.False(t, got.ToolServer.Reachable)
	var checks []string
	for _, e := range got.Errors {
		check, _, _ := strings.Cut(e, ":")
		checks = append(checks, check)
	}
	assert.Equal(t, []string{"github", "repository", "tool_server"}, checks)
}

func TestDiagnoseMissingToken(t *testing.T) {
	f := newFakeGitHub(t)

	got := f.checker(t, "").Diagnose(context.Background(), &Request{RepoSlug: "acme/widgets"})

	assert.Nil(t, got.GitHub)
	assert.Nil(t, got.Repository)
	assert.Nil(t, got.ToolServer)
	require.Len(t, got.Errors, 1)
	assert.Contains(t, got.Errors[0], config.GitHubTokenEnv)
	assert.Zero(t, f.requests.Load(), "no request should reach GitHub without a token")
}

func TestRequestValidate(t *testing.T) {
	req := &Request{}
	require.NoError(t, req.Validate())
	assert.Equal(t, investigator.DefaultBranch, req.Branch)

	var verr *investigator.ValidationError
	assert.ErrorAs(t, (&Request{RepoSlug: "not-a-slug"}).Validate(), &verr)
}
