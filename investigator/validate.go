/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package investigator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var repoSlugPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// FieldError describes one invalid field, located the way the HTTP
// layer reports it: {"loc": ["body", "repo_slug"], "msg": "..."}.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", strings.Join(f.Loc, "."), f.Msg))
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

// Validator is implemented by every request type.
type Validator interface {
	Validate() error
}

type fieldErrors []FieldError

func (fe *fieldErrors) add(field, typ, format string, args ...any) {
	*fe = append(*fe, FieldError{
		Loc:  []string{"body", field},
		Msg:  fmt.Sprintf(format, args...),
		Type: typ,
	})
}

func (fe *fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		fe.add(field, "missing", "Field required")
	}
}

func (fe *fieldErrors) repoSlug(value string) {
	switch {
	case strings.TrimSpace(value) == "":
		fe.add("repo_slug", "missing", "Field required")
	case !repoSlugPattern.MatchString(value):
		fe.add("repo_slug", "string_pattern_mismatch", "Repository must be in owner/repo form, got %q", value)
	}
}

func (fe *fieldErrors) nonNegative(field string, value int64) {
	if value < 0 {
		fe.add(field, "greater_than_equal", "Input should be greater than or equal to 0")
	}
}

func (fe *fieldErrors) url(field, value string) {
	if value == "" {
		return
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fe.add(field, "url_parsing", "Input should be a valid URL, got %q", value)
	}
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe}
}

// Validate implements Validator. An empty branch is replaced by the default.
func (r *ErrorInvestigationRequest) Validate() error {
	var fe fieldErrors
	fe.required("error_message", r.ErrorMessage)
	fe.repoSlug(r.RepoSlug)
	fe.nonNegative("github_run_id", r.GitHubRunID)
	fe.nonNegative("max_runs_to_check", int64(r.MaxRunsToCheck))
	fe.url("ci_url", r.CIURL)
	if r.Branch == "" {
		r.Branch = DefaultBranch
	}
	return fe.err()
}

// Validate implements Validator. An empty branch is replaced by the default.
func (r *RepoActivityRequest) Validate() error {
	var fe fieldErrors
	fe.repoSlug(r.RepoSlug)
	fe.nonNegative("max_commits", int64(r.MaxCommits))
	fe.nonNegative("max_prs", int64(r.MaxPRs))
	fe.nonNegative("max_issues", int64(r.MaxIssues))
	if r.Branch == "" {
		r.Branch = DefaultBranch
	}
	return fe.err()
}

// Validate implements Validator.
func (r *PRRiskRequest) Validate() error {
	var fe fieldErrors
	fe.repoSlug(r.RepoSlug)
	switch {
	case r.PRNumber == 0:
		fe.add("pr_number", "missing", "Field required")
	case r.PRNumber < 0:
		fe.add("pr_number", "greater_than", "Input should be greater than 0")
	}
	return fe.err()
}

// Validate implements Validator. An empty branch is replaced by the default.
func (r *DailyReportRequest) Validate() error {
	var fe fieldErrors
	fe.repoSlug(r.RepoSlug)
	fe.nonNegative("github_run_id", r.GitHubRunID)
	fe.nonNegative("max_runs_to_check", int64(r.MaxRunsToCheck))
	fe.nonNegative("max_commits", int64(r.MaxCommits))
	fe.nonNegative("max_prs", int64(r.MaxPRs))
	fe.nonNegative("max_issues", int64(r.MaxIssues))
	fe.url("ci_url", r.CIURL)
	if r.Branch == "" {
		r.Branch = DefaultBranch
	}
	return fe.err()
}
