/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chainguard.dev/ghinvestigator/api"
	"chainguard.dev/ghinvestigator/diagnostics"
	"chainguard.dev/ghinvestigator/investigator"
	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"
)

type fakeInvestigator struct {
	activity *investigator.RepoActivityRequest
	err      error
}

func (f *fakeInvestigator) Investigate(_ context.Context, req *investigator.ErrorInvestigationRequest) (*investigator.InvestigationResponse, error) {
	return &investigator.InvestigationResponse{AnalysisMarkdown: "investigated " + req.RepoSlug}, f.err
}

func (f *fakeInvestigator) SummarizeActivity(_ context.Context, req *investigator.RepoActivityRequest) (*investigator.ActivityResponse, error) {
	f.activity = req
	return &investigator.ActivityResponse{ActivityMarkdown: "activity for " + req.RepoSlug}, f.err
}

func (f *fakeInvestigator) AnalyzePRRisk(_ context.Context, req *investigator.PRRiskRequest) (*investigator.PRRiskResponse, error) {
	return &investigator.PRRiskResponse{PRRiskMarkdown: "risk for " + req.RepoSlug}, f.err
}

func (f *fakeInvestigator) DailyReport(_ context.Context, req *investigator.DailyReportRequest) (*investigator.DailyReportResponse, error) {
	return &investigator.DailyReportResponse{ReportMarkdown: "report for " + req.RepoSlug}, f.err
}

type fakeDiagnoser struct{}

func (fakeDiagnoser) Diagnose(_ context.Context, req *diagnostics.Request) *diagnostics.Report {
	return &diagnostics.Report{
		Repository: &diagnostics.RepositoryStatus{NameWithOwner: req.RepoSlug, Branch: req.Branch, BranchExists: true},
		Errors:     []string{},
	}
}

func newClient(t *testing.T, inv *fakeInvestigator) *Client {
	t.Helper()
	srv := httptest.NewServer(api.New(inv, api.WithDiagnoser(fakeDiagnoser{})))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	inv := &fakeInvestigator{}
	c := newClient(t, inv)

	inv1, err := c.Investigate(ctx, &investigator.ErrorInvestigationRequest{ErrorMessage: "boom", RepoSlug: "acme/widgets"})
	if err != nil {
		t.Fatalf("Investigate() = %v", err)
	}
	if got, want := inv1.AnalysisMarkdown, "investigated acme/widgets"; got != want {
		t.Errorf("Investigate(): got = %q, wanted = %q", got, want)
	}

	act, err := c.Activity(ctx, investigator.NewRepoActivityRequest())
	if err == nil {
		t.Errorf("Activity() with no repo = %+v, wanted an error", act)
	}

	req := investigator.NewRepoActivityRequest()
	req.RepoSlug = "acme/widgets"
	req.MaxCommits = 3
	act, err = c.Activity(ctx, req)
	if err != nil {
		t.Fatalf("Activity() = %v", err)
	}
	if got, want := act.ActivityMarkdown, "activity for acme/widgets"; got != want {
		t.Errorf("Activity(): got = %q, wanted = %q", got, want)
	}
	if diff := cmp.Diff(req, inv.activity); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}

	risk, err := c.PRRisk(ctx, &investigator.PRRiskRequest{RepoSlug: "acme/widgets", PRNumber: 7})
	if err != nil {
		t.Fatalf("PRRisk() = %v", err)
	}
	if got, want := risk.PRRiskMarkdown, "risk for acme/widgets"; got != want {
		t.Errorf("PRRisk(): got = %q, wanted = %q", got, want)
	}

	daily := investigator.NewDailyReportRequest()
	daily.RepoSlug = "acme/widgets"
	report, err := c.DailyReport(ctx, daily)
	if err != nil {
		t.Fatalf("DailyReport() = %v", err)
	}
	if got, want := report.ReportMarkdown, "report for acme/widgets"; got != want {
		t.Errorf("DailyReport(): got = %q, wanted = %q", got, want)
	}

	diag, err := c.Diagnose(ctx, &diagnostics.Request{RepoSlug: "acme/widgets"})
	if err != nil {
		t.Fatalf("Diagnose() = %v", err)
	}
	want := &diagnostics.RepositoryStatus{NameWithOwner: "acme/widgets", Branch: "main", BranchExists: true}
	if diff := cmp.Diff(want, diag.Repository); diff != "" {
		t.Errorf("Diagnose() mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusErrors(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, &fakeInvestigator{err: errors.New("upstream exploded")})

	_, err := c.PRRisk(ctx, &investigator.PRRiskRequest{RepoSlug: "acme/widgets", PRNumber: 7})
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("PRRisk() = %v, wanted *StatusError", err)
	}
	if serr.StatusCode != http.StatusInternalServerError || serr.Detail != "Internal Server Error" {
		t.Errorf("StatusError: got = %+v, wanted 500 Internal Server Error", serr)
	}
	if strings.Contains(err.Error(), "exploded") {
		t.Errorf("error leaked server detail: %v", err)
	}

	_, err = c.PRRisk(ctx, &investigator.PRRiskRequest{RepoSlug: "acme/widgets"})
	if !errors.As(err, &serr) {
		t.Fatalf("PRRisk() = %v, wanted *StatusError", err)
	}
	if serr.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(serr.Detail, "body.pr_number: Field required") {
		t.Errorf("StatusError: got = %+v, wanted 422 naming pr_number", serr)
	}
}

func TestDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"Internal Server Error"}`, "Internal Server Error"},
		{`{"detail":[{"loc":["body","repo_slug"],"msg":"Field required","type":"missing"}]}`, "invalid request: body.repo_slug: Field required"},
		{`{"detail":{"code":7}}`, `{"code":7}`},
		{"upstream connect error\n", "upstream connect error"},
		{`{"other":1}`, `{"other":1}`},
	}
	for _, tt := range tests {
		if got := detail([]byte(tt.body)); got != tt.want {
			t.Errorf("detail(%s): got = %q, wanted = %q", tt.body, got, tt.want)
		}
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MapLookuper(map[string]string{}),
	}); err != nil {
		t.Fatalf("ProcessWith() = %v", err)
	}
	if got, want := cfg.BaseURL, "http://localhost:8000"; got != want {
		t.Errorf("BaseURL: got = %q, wanted = %q", got, want)
	}

	t.Setenv("INVESTIGATOR_API_BASE_URL", "http://investigator.internal:9000")
	loaded, err := LoadConfig(context.Background())
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if got, want := loaded.BaseURL, "http://investigator.internal:9000"; got != want {
		t.Errorf("BaseURL: got = %q, wanted = %q", got, want)
	}
}
