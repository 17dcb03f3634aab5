/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolserver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"chainguard.dev/ghinvestigator/agents/agenttrace"
	"chainguard.dev/ghinvestigator/agents/executor/retry"
	"chainguard.dev/ghinvestigator/agents/toolcall"
	"github.com/chainguard-dev/clog"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrUnauthorized is matched by connect errors the server rejected
// with 401 or 403. These are never retried.
var ErrUnauthorized = errors.New("tool server rejected credentials")

// ErrClosed is returned by calls on a closed session.
var ErrClosed = errors.New("tool server session is closed")

// readVerbs prefix the names of tools that only read.
var readVerbs = []string{"get_", "list_", "search_", "download_"}

// Session is an open connection to the tool server with its tool catalog.
// It implements toolcall.ToolProvider[string].
type Session struct {
	client   *client.Client
	catalog  []toolcall.Definition
	readOnly bool

	mu     sync.RWMutex
	closed bool
	once   sync.Once
	err    error
}

// Open resolves the token, connects, initializes and lists the tools.
// A missing token is reported before any network call. Callers must
// Close the session.
func Open(ctx context.Context, opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	token, err := o.token()
	if err != nil {
		return nil, err
	}

	log := clog.FromContext(ctx).With("url", o.url)

	type connected struct {
		client *client.Client
		tools  []mcp.Tool
	}
	conn, err := retry.RetryWithBackoff(ctx, o.retry, "connect_tool_server", retryable(ctx), func() (connected, error) {
		c, err := connect(ctx, o, token)
		if err != nil {
			return connected{}, err
		}
		res, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			_ = c.Close()
			return connected{}, classify(fmt.Errorf("listing tools: %w", err))
		}
		return connected{client: c, tools: res.Tools}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to tool server: %w", err)
	}

	s := &Session{
		client:   conn.client,
		readOnly: o.readOnly,
	}
	for _, t := range conn.tools {
		def := definition(t)
		if o.readOnly && !def.ReadOnly {
			continue
		}
		s.catalog = append(s.catalog, def)
	}
	slices.SortFunc(s.catalog, func(a, b toolcall.Definition) int {
		return strings.Compare(a.Name, b.Name)
	})

	log.With("tools", len(s.catalog)).With("read_only", o.readOnly).Info("Connected to tool server")
	return s, nil
}

func connect(ctx context.Context, o *options, token string) (*client.Client, error) {
	c, err := client.NewStreamableHttpClient(o.url,
		transport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + token,
		}),
		transport.WithHTTPTimeout(o.timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, classify(fmt.Errorf("starting transport: %w", err))
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    o.clientName,
		Version: o.version,
	}
	if _, err := c.Initialize(ctx, req); err != nil {
		_ = c.Close()
		return nil, classify(fmt.Errorf("initializing: %w", err))
	}
	return c, nil
}

// authStatus matches the transport's "request failed with status 401: ..."
// errors. The transport does not expose the status code as a value.
var authStatus = regexp.MustCompile(`failed with status 40[13]\b`)

// classify marks authentication failures with ErrUnauthorized.
func classify(err error) error {
	if authStatus.MatchString(err.Error()) {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return err
}

// retryable stops on rejected credentials and on the caller's context
// ending. Per-request HTTP timeouts are retried.
func retryable(ctx context.Context) func(error) bool {
	return func(err error) bool {
		return ctx.Err() == nil && !errors.Is(err, ErrUnauthorized)
	}
}

func definition(t mcp.Tool) toolcall.Definition {
	schema := map[string]any{
		"type":       t.InputSchema.Type,
		"properties": t.InputSchema.Properties,
	}
	if schema["type"] == "" {
		schema["type"] = "object"
	}
	if t.InputSchema.Properties == nil {
		schema["properties"] = map[string]any{}
	}
	if len(t.InputSchema.Required) > 0 {
		schema["required"] = t.InputSchema.Required
	}
	return toolcall.Definition{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schema,
		ReadOnly:    IsReadOnly(t),
	}
}

// IsReadOnly reports whether a tool declares itself read-only or is
// named with a read verb.
func IsReadOnly(t mcp.Tool) bool {
	if hint := t.Annotations.ReadOnlyHint; hint != nil {
		return *hint
	}
	for _, verb := range readVerbs {
		if strings.HasPrefix(t.Name, verb) {
			return true
		}
	}
	return false
}

// Catalog returns the cached tool definitions, sorted by name.
func (s *Session) Catalog() []toolcall.Definition {
	return slices.Clone(s.catalog)
}

// ReadOnly reports whether the catalog was filtered to read-only tools.
func (s *Session) ReadOnly() bool {
	return s.readOnly
}

// Tools implements toolcall.ToolProvider. Each tool forwards its call to
// the server and hands the text content back to the model.
func (s *Session) Tools() map[string]toolcall.Tool[string] {
	tools := make(map[string]toolcall.Tool[string], len(s.catalog))
	for _, def := range s.catalog {
		tools[def.Name] = toolcall.Tool[string]{
			Def: def,
			Handler: func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace[string]) map[string]any {
				var tc *agenttrace.ToolCall[string]
				if trace != nil {
					tc = trace.StartToolCall(call.ID, call.Name, call.Args)
				}
				text, err := s.CallTool(ctx, call.Name, call.Args)
				if tc != nil {
					tc.Complete(text, err)
				}
				if err != nil {
					return toolcall.Error("%s", err)
				}
				return map[string]any{"content": text}
			},
		}
	}
	return tools
}

// CallTool invokes a tool and returns its text content. A result the
// server flags as an error is returned as an error carrying that text.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrClosed
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := s.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("calling tool %q: %w", name, err)
	}

	text := renderContent(res.Content)
	if res.IsError {
		return "", fmt.Errorf("tool %q failed: %s", name, text)
	}
	return text, nil
}

func renderContent(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		switch c := c.(type) {
		case mcp.TextContent:
			parts = append(parts, c.Text)
		case *mcp.TextContent:
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Close releases the connection. It is safe to call more than once.
func (s *Session) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		s.err = s.client.Close()
	})
	return s.err
}
