/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package api serves the investigator over HTTP.
//
// Each POST endpoint accepts a JSON request, fills in defaults for absent
// fields and rejects unknown ones. Invalid requests get a 422 with a
// "detail" list of field problems. Any orchestration failure is logged
// and reported as a bare 500:
//
//	POST /investigate   ErrorInvestigationRequest -> {"analysis_markdown": ...}
//	POST /activity      RepoActivityRequest       -> {"activity_markdown": ...}
//	POST /daily_report  DailyReportRequest        -> {"report_markdown": ...}
//	POST /pr_risk       PRRiskRequest             -> {"pr_risk_markdown": ...}
//	POST /diagnostics   diagnostics.Request       -> diagnostics.Report
//	GET  /schemas/{name}
//	GET  /healthz
package api
