/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package investigator

import (
	"strconv"

	"chainguard.dev/ghinvestigator/agents/promptbuilder"
)

// DefaultBranch is used when a request names no branch.
const DefaultBranch = "main"

// none is how unset optional fields appear in prompts.
const none = "None"

// ErrorInvestigationRequest asks for the root cause of a CI failure.
type ErrorInvestigationRequest struct {
	ErrorMessage   string `json:"error_message" jsonschema:"required,description=The error output from the failing job"`
	RepoSlug       string `json:"repo_slug" jsonschema:"required,description=Repository as owner/repo,example=acme/widgets"`
	Branch         string `json:"branch" jsonschema:"default=main"`
	WorkflowName   string `json:"workflow_name,omitempty"`
	GitHubRunID    int64  `json:"github_run_id,omitempty"`
	FilePath       string `json:"file_path,omitempty" jsonschema:"description=Suspected file path"`
	CIURL          string `json:"ci_url,omitempty" jsonschema:"format=uri"`
	MaxRunsToCheck int    `json:"max_runs_to_check" jsonschema:"default=5,minimum=0"`
}

// NewErrorInvestigationRequest returns a request holding the defaults.
func NewErrorInvestigationRequest() *ErrorInvestigationRequest {
	return &ErrorInvestigationRequest{
		Branch:         DefaultBranch,
		MaxRunsToCheck: 5,
	}
}

// Bind implements promptbuilder.Bindable.
func (r *ErrorInvestigationRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return bindAll(p, map[string]string{
		"error_message":     r.ErrorMessage,
		"repo":              r.RepoSlug,
		"branch":            r.Branch,
		"github_run_id":     optionalInt(r.GitHubRunID),
		"workflow_name":     optional(r.WorkflowName),
		"file_path":         optional(r.FilePath),
		"ci_url":            optional(r.CIURL),
		"max_runs_to_check": strconv.Itoa(r.MaxRunsToCheck),
	})
}

// RepoActivityRequest asks for a summary of recent repository activity.
type RepoActivityRequest struct {
	RepoSlug   string `json:"repo_slug" jsonschema:"required,description=Repository as owner/repo,example=acme/widgets"`
	Branch     string `json:"branch" jsonschema:"default=main"`
	MaxCommits int    `json:"max_commits" jsonschema:"default=10,minimum=0"`
	MaxPRs     int    `json:"max_prs" jsonschema:"default=5,minimum=0"`
	MaxIssues  int    `json:"max_issues" jsonschema:"default=5,minimum=0"`
}

// NewRepoActivityRequest returns a request holding the defaults.
func NewRepoActivityRequest() *RepoActivityRequest {
	return &RepoActivityRequest{
		Branch:     DefaultBranch,
		MaxCommits: 10,
		MaxPRs:     5,
		MaxIssues:  5,
	}
}

// Bind implements promptbuilder.Bindable.
func (r *RepoActivityRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return bindAll(p, map[string]string{
		"repo":        r.RepoSlug,
		"branch":      r.Branch,
		"max_commits": strconv.Itoa(r.MaxCommits),
		"max_prs":     strconv.Itoa(r.MaxPRs),
		"max_issues":  strconv.Itoa(r.MaxIssues),
	})
}

// PRRiskRequest asks how risky a pull request is to merge.
type PRRiskRequest struct {
	RepoSlug string `json:"repo_slug" jsonschema:"required,description=Repository as owner/repo,example=acme/widgets"`
	PRNumber int    `json:"pr_number" jsonschema:"required,minimum=1"`
}

// Bind implements promptbuilder.Bindable.
func (r *PRRiskRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return bindAll(p, map[string]string{
		"repo":      r.RepoSlug,
		"pr_number": strconv.Itoa(r.PRNumber),
	})
}

// DailyReportRequest combines an activity summary with an optional
// error investigation.
type DailyReportRequest struct {
	RepoSlug string `json:"repo_slug" jsonschema:"required,description=Repository as owner/repo,example=acme/widgets"`
	Branch   string `json:"branch" jsonschema:"default=main"`

	// The investigation runs only when ErrorMessage is set.
	ErrorMessage   string `json:"error_message,omitempty"`
	WorkflowName   string `json:"workflow_name,omitempty"`
	GitHubRunID    int64  `json:"github_run_id,omitempty"`
	FilePath       string `json:"file_path,omitempty"`
	CIURL          string `json:"ci_url,omitempty" jsonschema:"format=uri"`
	MaxRunsToCheck int    `json:"max_runs_to_check" jsonschema:"default=3,minimum=0"`

	MaxCommits int `json:"max_commits" jsonschema:"default=10,minimum=0"`
	MaxPRs     int `json:"max_prs" jsonschema:"default=5,minimum=0"`
	MaxIssues  int `json:"max_issues" jsonschema:"default=5,minimum=0"`
}

// NewDailyReportRequest returns a request holding the defaults.
func NewDailyReportRequest() *DailyReportRequest {
	return &DailyReportRequest{
		Branch:         DefaultBranch,
		MaxRunsToCheck: 3,
		MaxCommits:     10,
		MaxPRs:         5,
		MaxIssues:      5,
	}
}

// Activity returns the activity part of the report request.
func (r *DailyReportRequest) Activity() *RepoActivityRequest {
	return &RepoActivityRequest{
		RepoSlug:   r.RepoSlug,
		Branch:     r.Branch,
		MaxCommits: r.MaxCommits,
		MaxPRs:     r.MaxPRs,
		MaxIssues:  r.MaxIssues,
	}
}

// Investigation returns the investigation part of the report request,
// or nil when no error message was supplied.
func (r *DailyReportRequest) Investigation() *ErrorInvestigationRequest {
	if r.ErrorMessage == "" {
		return nil
	}
	return &ErrorInvestigationRequest{
		ErrorMessage:   r.ErrorMessage,
		RepoSlug:       r.RepoSlug,
		Branch:         r.Branch,
		WorkflowName:   r.WorkflowName,
		GitHubRunID:    r.GitHubRunID,
		FilePath:       r.FilePath,
		CIURL:          r.CIURL,
		MaxRunsToCheck: r.MaxRunsToCheck,
	}
}

// InvestigationResponse is returned by Investigate.
type InvestigationResponse struct {
	AnalysisMarkdown string `json:"analysis_markdown"`
}

// ActivityResponse is returned by SummarizeActivity.
type ActivityResponse struct {
	ActivityMarkdown string `json:"activity_markdown"`
}

// PRRiskResponse is returned by AnalyzePRRisk.
type PRRiskResponse struct {
	PRRiskMarkdown string `json:"pr_risk_markdown"`
}

// DailyReportResponse is returned by DailyReport.
type DailyReportResponse struct {
	ReportMarkdown string `json:"report_markdown"`
}

func optional(s string) string {
	if s == "" {
		return none
	}
	return s
}

func optionalInt(n int64) string {
	if n == 0 {
		return none
	}
	return strconv.FormatInt(n, 10)
}

// bindAll binds the values whose names appear in the prompt.
func bindAll(p *promptbuilder.Prompt, values map[string]string) (*promptbuilder.Prompt, error) {
	bindings := p.GetBindings()
	for name, value := range values {
		if _, ok := bindings[name]; !ok {
			continue
		}
		var err error
		if p, err = p.BindText(name, value); err != nil {
			return nil, err
		}
	}
	return p, nil
}
