/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package diagnostics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"chainguard.dev/ghinvestigator/config"
	"chainguard.dev/ghinvestigator/investigator"
	"chainguard.dev/ghinvestigator/toolserver"
	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

var repoSlugPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// Request names an optional repository and branch to check access to.
type Request struct {
	RepoSlug string `json:"repo_slug,omitempty" jsonschema:"description=Repository as owner/repo,example=acme/widgets"`
	Branch   string `json:"branch,omitempty" jsonschema:"default=main"`
}

// Validate implements investigator.Validator.
func (r *Request) Validate() error {
	if r.RepoSlug != "" && !repoSlugPattern.MatchString(r.RepoSlug) {
		return &investigator.ValidationError{Fields: []investigator.FieldError{{
			Loc:  []string{"body", "repo_slug"},
			Msg:  fmt.Sprintf("Repository must be in owner/repo form, got %q", r.RepoSlug),
			Type: "string_pattern_mismatch",
		}}}
	}
	if r.Branch == "" {
		r.Branch = investigator.DefaultBranch
	}
	return nil
}

// Report is what the checks found. Each check that failed leaves its
// section empty and adds a message to Errors.
type Report struct {
	GitHub     *GitHubStatus     `json:"github,omitempty"`
	Repository *RepositoryStatus `json:"repository,omitempty"`
	ToolServer *ToolServerStatus `json:"tool_server,omitempty"`
	Errors     []string          `json:"errors"`
}

// GitHubStatus describes the token.
type GitHubStatus struct {
	Login              string    `json:"login"`
	Scopes             []string  `json:"scopes"`
	RateLimitRemaining int       `json:"rate_limit_remaining"`
	RateLimitReset     time.Time `json:"rate_limit_reset"`
}

// RepositoryStatus describes what the token can see of the repository.
type RepositoryStatus struct {
	NameWithOwner    string `json:"name_with_owner"`
	DefaultBranch    string `json:"default_branch"`
	Branch           string `json:"branch"`
	BranchExists     bool   `json:"branch_exists"`
	ViewerPermission string `json:"viewer_permission"`
	IsPrivate        bool   `json:"is_private"`
}

// ToolServerStatus describes the tool server session.
type ToolServerStatus struct {
	Reachable     bool `json:"reachable"`
	Tools         int  `json:"tools"`
	ReadOnlyTools int  `json:"read_only_tools"`
	ReadOnly      bool `json:"read_only"`
}

// Checker answers the questions the turn budget fallback asks the user:
// is the tool server reachable, does the token have the right scopes and
// do the repository and branch exist.
type Checker struct {
	mcp        config.MCP
	token      func() (string, error)
	restURL    *url.URL
	graphqlURL string
	timeout    time.Duration
	base       http.RoundTripper
}

// Option configures a Checker.
type Option func(*Checker)

// WithGitHubURLs points the REST and GraphQL clients at another host.
// The REST URL must end with a slash.
func WithGitHubURLs(rest *url.URL, graphql string) Option {
	return func(c *Checker) {
		c.restURL = rest
		c.graphqlURL = graphql
	}
}

// WithTokenFunc sets where the GitHub token comes from.
func WithTokenFunc(token func() (string, error)) Option {
	return func(c *Checker) { c.token = token }
}

// WithTimeout bounds each check.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.timeout = d }
}

// WithTransport sets the base transport under the rate limit waiter.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Checker) { c.base = rt }
}

// New creates a Checker for the configured tool server.
func New(mcp config.MCP, opts ...Option) *Checker {
	c := &Checker{
		mcp:     mcp,
		token:   config.GitHubToken,
		timeout: 20 * time.Second,
		base:    httpmetrics.WrapTransport(http.DefaultTransport),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Diagnose runs every check concurrently. It never fails: problems are
// reported in the returned Report.
func (c *Checker) Diagnose(ctx context.Context, req *Request) *Report {
	report := &Report{Errors: []string{}}

	token, err := c.token()
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	httpClient, err := c.httpClient(token)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}
	rest := github.NewClient(httpClient)
	graphql := githubv4.NewClient(httpClient)
	if c.restURL != nil {
		rest.BaseURL = c.restURL
	}
	if c.graphqlURL != "" {
		graphql = githubv4.NewEnterpriseClient(c.graphqlURL, httpClient)
	}

	var (
		mu   sync.Mutex
		errs = map[string]error{}
	)
	record := func(check string, err error) {
		if err == nil {
			return
		}
		clog.FromContext(ctx).With("check", check).With("error", err).Warn("Diagnostic check failed")
		mu.Lock()
		defer mu.Unlock()
		errs[check] = err
	}

	var g errgroup.Group
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		status, err := checkToken(ctx, rest)
		report.GitHub = status
		record("github", err)
		return nil
	})
	if req.RepoSlug != "" {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			status, err := checkRepository(ctx, graphql, req.RepoSlug, req.Branch)
			report.Repository = status
			record("repository", err)
			return nil
		})
	}
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		status, err := c.checkToolServer(ctx, token)
		report.ToolServer = status
		record("tool_server", err)
		return nil
	})
	_ = g.Wait()

	for _, check := range []string{"github", "repository", "tool_server"} {
		if err := errs[check]; err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", check, err))
		}
	}
	return report
}

func (c *Checker) httpClient(token string) (*http.Client, error) {
	waiter, err := github_ratelimit.NewRateLimitWaiter(c.base, github_ratelimit.WithSingleSleepLimit(time.Minute, nil))
	if err != nil {
		return nil, fmt.Errorf("creating rate limit waiter: %w", err)
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   waiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		},
	}, nil
}

func checkToken(ctx context.Context, rest *github.Client) (*GitHubStatus, error) {
	user, resp, err := rest.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetching authenticated user: %w", err)
	}
	status := &GitHubStatus{
		Login:              user.GetLogin(),
		Scopes:             []string{},
		RateLimitRemaining: resp.Rate.Remaining,
		RateLimitReset:     resp.Rate.Reset.Time,
	}
	// Fine-grained tokens carry no scopes header.
	for _, scope := range strings.Split(resp.Header.Get("X-OAuth-Scopes"), ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			status.Scopes = append(status.Scopes, scope)
		}
	}
	return status, nil
}

type repositoryQuery struct {
	Repository struct {
		NameWithOwner    string
		IsPrivate        bool
		ViewerPermission githubv4.RepositoryPermission
		DefaultBranchRef struct {
			Name string
		}
		Ref *struct {
			Name string
		} `graphql:"ref(qualifiedName: $branch)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func checkRepository(ctx context.Context, client *githubv4.Client, slug, branch string) (*RepositoryStatus, error) {
	owner, name, _ := strings.Cut(slug, "/")

	var q repositoryQuery
	if err := client.Query(ctx, &q, map[string]any{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"branch": githubv4.String("refs/heads/" + branch),
	}); err != nil {
		return nil, fmt.Errorf("querying %s: %w", slug, err)
	}

	status := &RepositoryStatus{
		NameWithOwner:    q.Repository.NameWithOwner,
		DefaultBranch:    q.Repository.DefaultBranchRef.Name,
		Branch:           branch,
		BranchExists:     q.Repository.Ref != nil,
		ViewerPermission: string(q.Repository.ViewerPermission),
		IsPrivate:        q.Repository.IsPrivate,
	}
	if !status.BranchExists {
		return status, fmt.Errorf("branch %q not found in %s", branch, slug)
	}
	return status, nil
}

func (c *Checker) checkToolServer(ctx context.Context, token string) (*ToolServerStatus, error) {
	opts := append(toolserver.FromConfig(c.mcp),
		toolserver.WithTokenFunc(func() (string, error) { return token, nil }),
		toolserver.WithMaxRetries(0),
		toolserver.WithClientInfo("ghinvestigator-diagnostics", "0.1.0"),
	)
	s, err := toolserver.Open(ctx, opts...)
	if err != nil {
		return &ToolServerStatus{}, err
	}
	defer s.Close()

	status := &ToolServerStatus{Reachable: true, ReadOnly: s.ReadOnly()}
	for _, def := range s.Catalog() {
		status.Tools++
		if def.ReadOnly {
			status.ReadOnlyTools++
		}
	}
	return status, nil
}
