/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chainguard.dev/ghinvestigator/diagnostics"
	"chainguard.dev/ghinvestigator/investigator"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
	"github.com/sethvargo/go-envconfig"
)

// DefaultTimeout bounds each call.
const DefaultTimeout = 120 * time.Second

// Config is read from the environment.
type Config struct {
	BaseURL string `env:"INVESTIGATOR_API_BASE_URL,default=http://localhost:8000"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("loading client config: %w", err)
	}
	return &cfg, nil
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	// Detail is the "detail" member of the body when present, else the raw body.
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
}

// Client calls the investigator HTTP API.
type Client struct {
	baseURL string
	hc      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New returns a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: httpmetrics.WrapTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Investigate calls POST /investigate.
func (c *Client) Investigate(ctx context.Context, req *investigator.ErrorInvestigationRequest) (*investigator.InvestigationResponse, error) {
	return post[investigator.InvestigationResponse](ctx, c, "/investigate", req)
}

// Activity calls POST /activity.
func (c *Client) Activity(ctx context.Context, req *investigator.RepoActivityRequest) (*investigator.ActivityResponse, error) {
	return post[investigator.ActivityResponse](ctx, c, "/activity", req)
}

// DailyReport calls POST /daily_report.
func (c *Client) DailyReport(ctx context.Context, req *investigator.DailyReportRequest) (*investigator.DailyReportResponse, error) {
	return post[investigator.DailyReportResponse](ctx, c, "/daily_report", req)
}

// PRRisk calls POST /pr_risk.
func (c *Client) PRRisk(ctx context.Context, req *investigator.PRRiskRequest) (*investigator.PRRiskResponse, error) {
	return post[investigator.PRRiskResponse](ctx, c, "/pr_risk", req)
}

// Diagnose calls POST /diagnostics.
func (c *Client) Diagnose(ctx context.Context, req *diagnostics.Request) (*diagnostics.Report, error) {
	return post[diagnostics.Report](ctx, c, "/diagnostics", req)
}

func post[Resp any](ctx context.Context, c *Client, path string, body any) (*Resp, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Detail: detail(data)}
	}

	var out Resp
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return &out, nil
}

// detail extracts a readable message from an error body. The API uses
// {"detail": "..."} for server errors and {"detail": [{"loc", "msg"}]}
// for validation errors.
func detail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return strings.TrimSpace(string(data))
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var fields []investigator.FieldError
	if err := json.Unmarshal(body.Detail, &fields); err == nil {
		return (&investigator.ValidationError{Fields: fields}).Error()
	}
	return string(body.Detail)
}
