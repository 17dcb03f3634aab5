/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/ghinvestigator/agents/agenttrace"
	"chainguard.dev/ghinvestigator/agents/executor/retry"
	"chainguard.dev/ghinvestigator/agents/toolcall"
	"chainguard.dev/ghinvestigator/config"
	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const testToken = "ghp_test"

// fakeGitHub is an MCP server with a handful of GitHub-like tools behind
// bearer authentication.
type fakeGitHub struct {
	*httptest.Server
	requests atomic.Int32
	// failures is the number of leading requests answered with 503.
	failures atomic.Int32
	// stalls is the number of leading requests held until the client gives up.
	stalls atomic.Int32
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()

	s := server.NewMCPServer("github", "1.0.0", server.WithToolCapabilities(true))
	s.AddTool(mcp.NewTool("get_file_contents",
		mcp.WithDescription("Get the contents of a file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path")),
		mcp.WithReadOnlyHintAnnotation(true),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, _ := req.GetArguments()["path"].(string)
		return mcp.NewToolResultText("contents of " + path), nil
	})
	s.AddTool(mcp.NewTool("list_workflow_runs",
		mcp.WithDescription("List workflow runs"),
		mcp.WithReadOnlyHintAnnotation(true),
	), func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("workflow runs unavailable"), nil
	})
	s.AddTool(mcp.NewTool("create_issue",
		mcp.WithDescription("Create an issue"),
		mcp.WithString("title", mcp.Required()),
		mcp.WithReadOnlyHintAnnotation(false),
	), func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("created"), nil
	})

	f := &fakeGitHub{}
	h := server.NewStreamableHTTPServer(s)
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		if f.stalls.Load() > 0 {
			f.stalls.Add(-1)
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		if f.failures.Load() > 0 {
			f.failures.Add(-1)
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGitHub) url() string {
	return f.URL + "/mcp"
}

func fastRetry(n int) Option {
	return WithRetryConfig(retry.RetryConfig{
		MaxRetries:  n,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	})
}

func staticToken(token string) Option {
	return WithTokenFunc(func() (string, error) { return token, nil })
}

func TestOpenListsCatalog(t *testing.T) {
	f := newFakeGitHub(t)
	ctx := context.Background()

	s, err := Open(ctx, WithURL(f.url()), staticToken(testToken), fastRetry(0))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	var names []string
	for _, def := range s.Catalog() {
		names = append(names, def.Name)
	}
	if diff := cmp.Diff([]string{"create_issue", "get_file_contents", "list_workflow_runs"}, names); diff != "" {
		t.Errorf("Catalog() names mismatch (-want +got):\n%s", diff)
	}

	requests := f.requests.Load()
	_ = s.Catalog()
	_ = s.Tools()
	if got := f.requests.Load(); got != requests {
		t.Errorf("catalog reads made requests: got = %d, wanted = %d", got, requests)
	}

	tools := s.Tools()
	def := tools["get_file_contents"].Def
	if diff := cmp.Diff([]string{"path"}, def.Required()); diff != "" {
		t.Errorf("Required() mismatch (-want +got):\n%s", diff)
	}
	if !def.ReadOnly {
		t.Error("get_file_contents ReadOnly: got = false, wanted = true")
	}
	if tools["create_issue"].Def.ReadOnly {
		t.Error("create_issue ReadOnly: got = true, wanted = false")
	}
}

func TestOpenReadOnly(t *testing.T) {
	f := newFakeGitHub(t)

	s, err := Open(context.Background(), WithURL(f.url()), staticToken(testToken), WithReadOnly(true), fastRetry(0))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if !s.ReadOnly() {
		t.Error("ReadOnly() = false, wanted true")
	}
	if _, ok := s.Tools()["create_issue"]; ok {
		t.Error("read-only session exposes create_issue")
	}
	if got := len(s.Tools()); got != 2 {
		t.Errorf("len(Tools()): got = %d, wanted = %d", got, 2)
	}
}

func TestOpenMissingTokenMakesNoRequests(t *testing.T) {
	f := newFakeGitHub(t)
	t.Setenv(config.GitHubTokenEnv, "")

	_, err := Open(context.Background(), WithURL(f.url()))
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("Open() error = %v, wanted ErrMissingCredential", err)
	}
	if got := f.requests.Load(); got != 0 {
		t.Errorf("requests: got = %d, wanted = %d", got, 0)
	}
}

func TestOpenReadsTokenFromEnvironment(t *testing.T) {
	f := newFakeGitHub(t)
	t.Setenv(config.GitHubTokenEnv, testToken)

	s, err := Open(context.Background(), WithURL(f.url()), fastRetry(0))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestOpenUnauthorizedIsNotRetried(t *testing.T) {
	f := newFakeGitHub(t)

	_, err := Open(context.Background(), WithURL(f.url()), staticToken("wrong"), fastRetry(3))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Open() error = %v, wanted ErrUnauthorized", err)
	}
	if got := f.requests.Load(); got != 1 {
		t.Errorf("requests: got = %d, wanted = %d", got, 1)
	}
}

func TestOpenRetriesTransientFailures(t *testing.T) {
	f := newFakeGitHub(t)
	f.failures.Store(2)

	s, err := Open(context.Background(), WithURL(f.url()), staticToken(testToken), fastRetry(3))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if got := len(s.Catalog()); got != 3 {
		t.Errorf("len(Catalog()): got = %d, wanted = %d", got, 3)
	}
}

func TestOpenRetriesTimeouts(t *testing.T) {
	f := newFakeGitHub(t)
	f.stalls.Store(1)

	s, err := Open(context.Background(), WithURL(f.url()), staticToken(testToken),
		WithTimeout(100*time.Millisecond), fastRetry(3))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if got := len(s.Catalog()); got != 3 {
		t.Errorf("len(Catalog()): got = %d, wanted = %d", got, 3)
	}
	if got := f.stalls.Load(); got != 0 {
		t.Errorf("stalls left: got = %d, wanted = %d", got, 0)
	}
}

func TestOpenStopsWhenContextEnds(t *testing.T) {
	f := newFakeGitHub(t)
	f.stalls.Store(100)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Open(ctx, WithURL(f.url()), staticToken(testToken),
		WithTimeout(5*time.Second), fastRetry(3))
	if err == nil {
		t.Fatal("Open() error = nil, wanted error")
	}
	if d := time.Since(start); d > 2*time.Second {
		t.Errorf("Open() took %v, wanted it to stop with the context", d)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{{
		name: "unauthorized",
		err:  errors.New("initializing: request failed with status 401: bad credentials"),
		want: true,
	}, {
		name: "forbidden",
		err:  errors.New("listing tools: request failed with status 403: resource not accessible"),
		want: true,
	}, {
		name: "notification rejected",
		err:  errors.New("notification failed with status 401: bad credentials"),
		want: true,
	}, {
		name: "unavailable mentioning forbidden",
		err:  errors.New("initializing: request failed with status 503: Forbidden by upstream proxy"),
	}, {
		name: "unavailable mentioning unauthorized",
		err:  errors.New("request failed with status 502: Unauthorized gateway"),
	}, {
		name: "timeout",
		err:  context.DeadlineExceeded,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(classify(tt.err), ErrUnauthorized); got != tt.want {
				t.Errorf("classify(%v) is ErrUnauthorized: got = %v, wanted = %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	check := retryable(ctx)

	if !check(context.DeadlineExceeded) {
		t.Error("retryable(DeadlineExceeded) = false with a live context, wanted true")
	}
	if check(ErrUnauthorized) {
		t.Error("retryable(ErrUnauthorized) = true, wanted false")
	}
	cancel()
	if check(errors.New("request failed with status 503")) {
		t.Error("retryable() = true after cancel, wanted false")
	}
}

func TestOpenGivesUpAfterRetries(t *testing.T) {
	f := newFakeGitHub(t)
	f.failures.Store(100)

	_, err := Open(context.Background(), WithURL(f.url()), staticToken(testToken), fastRetry(3))
	if err == nil {
		t.Fatal("Open() error = nil, wanted error")
	}
	if !strings.Contains(err.Error(), "connecting to tool server") {
		t.Errorf("Open() error = %v, wanted it to mention connecting", err)
	}
	if got := f.requests.Load(); got != 4 {
		t.Errorf("requests: got = %d, wanted = %d (1 attempt + 3 retries)", got, 4)
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "empty url", opt: WithURL("")},
		{name: "zero timeout", opt: WithTimeout(0)},
		{name: "negative retries", opt: WithMaxRetries(-1)},
		{name: "nil token func", opt: WithTokenFunc(nil)},
		{name: "negative backoff", opt: WithRetryConfig(retry.RetryConfig{BaseBackoff: -1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(context.Background(), tt.opt); err == nil {
				t.Error("Open() error = nil, wanted error")
			}
		})
	}
}

func TestCallTool(t *testing.T) {
	f := newFakeGitHub(t)
	ctx := context.Background()

	s, err := Open(ctx, WithURL(f.url()), staticToken(testToken), fastRetry(0))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	got, err := s.CallTool(ctx, "get_file_contents", map[string]any{"path": "go.mod"})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if want := "contents of go.mod"; got != want {
		t.Errorf("CallTool(): got = %q, wanted = %q", got, want)
	}

	if _, err := s.CallTool(ctx, "list_workflow_runs", nil); err == nil || !strings.Contains(err.Error(), "workflow runs unavailable") {
		t.Errorf("CallTool() error = %v, wanted tool error text", err)
	}
}

func TestToolsHandler(t *testing.T) {
	f := newFakeGitHub(t)
	ctx := context.Background()

	s, err := Open(ctx, WithURL(f.url()), staticToken(testToken), fastRetry(0))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	trace := agenttrace.StartTrace[string](ctx, "investigate")
	tools := s.Tools()

	got := toolcall.Invoke(ctx, tools, toolcall.ToolCall{
		ID:   "call_1",
		Name: "get_file_contents",
		Args: map[string]any{"path": "ci.yaml"},
	}, trace)
	if diff := cmp.Diff(map[string]any{"content": "contents of ci.yaml"}, got); diff != "" {
		t.Errorf("handler result mismatch (-want +got):\n%s", diff)
	}

	got = toolcall.Invoke(ctx, tools, toolcall.ToolCall{ID: "call_2", Name: "list_workflow_runs"}, trace)
	if _, ok := got["error"]; !ok {
		t.Errorf("handler result = %v, wanted an error entry", got)
	}

	if n := len(trace.ToolCalls); n != 2 {
		t.Errorf("recorded tool calls: got = %d, wanted = %d", n, 2)
	}
	if trace.ToolCalls[1].Error == nil {
		t.Error("failed tool call recorded without error")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	f := newFakeGitHub(t)
	ctx := context.Background()

	s, err := Open(ctx, WithURL(f.url()), staticToken(testToken), fastRetry(0))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	first := s.Close()
	if second := s.Close(); second != first {
		t.Errorf("second Close(): got = %v, wanted = %v", second, first)
	}

	if _, err := s.CallTool(ctx, "get_file_contents", map[string]any{"path": "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("CallTool() after Close error = %v, wanted ErrClosed", err)
	}
}

func TestIsReadOnly(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		tool mcp.Tool
		want bool
	}{
		{tool: mcp.Tool{Name: "get_me"}, want: true},
		{tool: mcp.Tool{Name: "list_commits"}, want: true},
		{tool: mcp.Tool{Name: "search_code"}, want: true},
		{tool: mcp.Tool{Name: "download_workflow_run_artifact"}, want: true},
		{tool: mcp.Tool{Name: "create_pull_request"}, want: false},
		{tool: mcp.Tool{Name: "run_workflow", Annotations: mcp.ToolAnnotation{ReadOnlyHint: &no}}, want: false},
		{tool: mcp.Tool{Name: "get_but_writes", Annotations: mcp.ToolAnnotation{ReadOnlyHint: &no}}, want: false},
		{tool: mcp.Tool{Name: "diff", Annotations: mcp.ToolAnnotation{ReadOnlyHint: &yes}}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.tool.Name, func(t *testing.T) {
			if got := IsReadOnly(tt.tool); got != tt.want {
				t.Errorf("IsReadOnly(%s): got = %v, wanted = %v", tt.tool.Name, got, tt.want)
			}
		})
	}
}
