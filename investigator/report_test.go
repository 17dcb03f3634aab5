/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package investigator

import (
	"context"
	"strings"
	"testing"
)

func TestDailyReportWithError(t *testing.T) {
	h := newHarness()
	req := NewDailyReportRequest()
	req.RepoSlug = "acme/widgets"
	req.ErrorMessage = "ModuleNotFoundError: No module named 'my_pipeline.config'"
	req.WorkflowName = "CI"

	res, err := h.service().DailyReport(context.Background(), req)
	if err != nil {
		t.Fatalf("DailyReport() error = %v", err)
	}
	got := res.ReportMarkdown

	for _, want := range []string{
		"# Daily Report for `acme/widgets` (main)",
		"## Error investigation",
		"```text\nModuleNotFoundError: No module named 'my_pipeline.config'\n```",
		h.answers[TaskInvestigate],
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, noErrorProvided) {
		t.Errorf("report contains the no-error placeholder:\n%s", got)
	}

	// Activity runs first, then the investigation with the error fields.
	if len(h.runs) != 2 {
		t.Fatalf("runs: got = %d, wanted = 2", len(h.runs))
	}
	if h.runs[0].task.Task != TaskActivity || h.runs[1].task.Task != TaskInvestigate {
		t.Errorf("run order: got = [%s %s], wanted = [activity investigate]", h.runs[0].task.Task, h.runs[1].task.Task)
	}
	for _, want := range []string{"- Workflow name (if provided): CI", "- Max runs to check: 3"} {
		if !strings.Contains(h.runs[1].prompt, want) {
			t.Errorf("investigation prompt does not contain %q", want)
		}
	}
	h.checkClosed(t)
}

func TestDailyReportWithoutError(t *testing.T) {
	h := newHarness()
	req := NewDailyReportRequest()
	req.RepoSlug = "acme/widgets"

	res, err := h.service().DailyReport(context.Background(), req)
	if err != nil {
		t.Fatalf("DailyReport() error = %v", err)
	}
	got := res.ReportMarkdown

	if !strings.Contains(got, "## Error investigation\n\n"+noErrorProvided) {
		t.Errorf("report does not contain the no-error placeholder:\n%s", got)
	}
	if strings.Contains(got, h.answers[TaskInvestigate]) {
		t.Errorf("report contains investigation text:\n%s", got)
	}
	if len(h.runs) != 1 || h.runs[0].task.Task != TaskActivity {
		t.Errorf("runs: got = %d, wanted a single activity run", len(h.runs))
	}
}

func TestDailyReportActivityMatchesStandalone(t *testing.T) {
	h := newHarness()
	s := h.service()
	ctx := context.Background()

	activity, err := s.SummarizeActivity(ctx, &RepoActivityRequest{RepoSlug: "acme/widgets", Branch: "main", MaxCommits: 10, MaxPRs: 5, MaxIssues: 5})
	if err != nil {
		t.Fatalf("SummarizeActivity() error = %v", err)
	}
	report, err := s.DailyReport(ctx, &DailyReportRequest{RepoSlug: "acme/widgets", Branch: "main", MaxCommits: 10, MaxPRs: 5, MaxIssues: 5})
	if err != nil {
		t.Fatalf("DailyReport() error = %v", err)
	}

	_, section, found := strings.Cut(report.ReportMarkdown, "## Recent repo activity\n\n")
	if !found {
		t.Fatalf("report has no activity section:\n%s", report.ReportMarkdown)
	}
	if section != activity.ActivityMarkdown {
		t.Errorf("activity section: got = %q, wanted = %q", section, activity.ActivityMarkdown)
	}
	if h.runs[0].prompt != h.runs[1].prompt {
		t.Errorf("activity prompts differ:\n%s\n---\n%s", h.runs[0].prompt, h.runs[1].prompt)
	}
}

func TestRenderDailyReport(t *testing.T) {
	tests := []struct {
		name          string
		errorMessage  string
		investigation string
		activity      string
		want          string
	}{{
		name:          "everything present",
		errorMessage:  "exit status 1",
		investigation: "## Summary\nBroken import.",
		activity:      "## Recent commit activity\n- abc123",
		want: "# Daily Report for `acme/widgets` (main)\n\n" +
			"Generated by the GitHub Error Investigator + Activity Summary agent.\n\n" +
			"## Error investigation\n\n_Error message:_\n\n```text\nexit status 1\n```\n\n## Summary\nBroken import.\n\n" +
			"## Recent repo activity\n\n## Recent commit activity\n- abc123",
	}, {
		name: "no error and empty activity",
		want: "# Daily Report for `acme/widgets` (main)\n\n" +
			"Generated by the GitHub Error Investigator + Activity Summary agent.\n\n" +
			"## Error investigation\n\nNo specific error was provided for this report.\n\n" +
			"## Recent repo activity\n\nNo activity details available.",
	}, {
		name:         "error without investigation text",
		errorMessage: "exit status 1",
		activity:     "- abc123",
		want: "# Daily Report for `acme/widgets` (main)\n\n" +
			"Generated by the GitHub Error Investigator + Activity Summary agent.\n\n" +
			"## Error investigation\n\n_Error message:_\n\n```text\nexit status 1\n```\n\nNo investigation details available.\n\n" +
			"## Recent repo activity\n\n- abc123",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderDailyReport("acme/widgets", "main", tt.errorMessage, tt.investigation, tt.activity)
			if got != tt.want {
				t.Errorf("RenderDailyReport():\ngot = %q\nwanted = %q", got, tt.want)
			}
			if n := strings.Count(got, "## Recent repo activity"); n != 1 {
				t.Errorf("activity sections: got = %d, wanted = 1", n)
			}
		})
	}
}

func TestRenderDailyReportFencesBackticks(t *testing.T) {
	msg := "unexpected ``` in heredoc"
	got := RenderDailyReport("acme/widgets", "main", msg, "details", "activity")
	if !strings.Contains(got, "````text\n"+msg+"\n````") {
		t.Errorf("error message not fenced with a longer fence:\n%s", got)
	}
}
