/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package investigator

import (
	"context"
	"fmt"
	"strings"
)

const (
	noErrorProvided        = "No specific error was provided for this report."
	noInvestigationDetails = "No investigation details available."
	noActivityDetails      = "No activity details available."
)

// DailyReport summarizes activity and, when the request carries an error
// message, investigates it. The calls run one after the other and any
// failure fails the report.
func (s *Service) DailyReport(ctx context.Context, req *DailyReportRequest) (*DailyReportResponse, error) {
	activity, err := s.SummarizeActivity(ctx, req.Activity())
	if err != nil {
		return nil, fmt.Errorf("summarizing activity: %w", err)
	}

	var investigation string
	if inv := req.Investigation(); inv != nil {
		res, err := s.Investigate(ctx, inv)
		if err != nil {
			return nil, fmt.Errorf("investigating error: %w", err)
		}
		investigation = res.AnalysisMarkdown
	}

	return &DailyReportResponse{
		ReportMarkdown: RenderDailyReport(req.RepoSlug, req.Branch, req.ErrorMessage, investigation, activity.ActivityMarkdown),
	}, nil
}

// RenderDailyReport assembles the report from its parts. An empty
// errorMessage yields the no-error placeholder; empty investigation or
// activity text yields its own placeholder.
func RenderDailyReport(repo, branch, errorMessage, investigation, activity string) string {
	header := fmt.Sprintf("# Daily Report for `%s` (%s)\n\nGenerated by the GitHub Error Investigator + Activity Summary agent.", repo, branch)

	var errorSection string
	if errorMessage != "" {
		fence := fenceFor(errorMessage)
		errorSection = fmt.Sprintf("## Error investigation\n\n_Error message:_\n\n%stext\n%s\n%s\n\n%s",
			fence, errorMessage, fence, orDefault(investigation, noInvestigationDetails))
	} else {
		errorSection = "## Error investigation\n\n" + noErrorProvided
	}

	activitySection := "## Recent repo activity\n\n" + orDefault(activity, noActivityDetails)

	return strings.Join([]string{header, errorSection, activitySection}, "\n\n")
}

// fenceFor returns a backtick fence longer than any run of backticks in s.
func fenceFor(s string) string {
	fence := "```"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	return fence
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
