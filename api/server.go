/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chainguard.dev/ghinvestigator/agents/schema"
	"chainguard.dev/ghinvestigator/diagnostics"
	"chainguard.dev/ghinvestigator/investigator"
	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Investigator runs the orchestrations behind the POST endpoints.
// *investigator.Service implements it.
type Investigator interface {
	Investigate(ctx context.Context, req *investigator.ErrorInvestigationRequest) (*investigator.InvestigationResponse, error)
	SummarizeActivity(ctx context.Context, req *investigator.RepoActivityRequest) (*investigator.ActivityResponse, error)
	AnalyzePRRisk(ctx context.Context, req *investigator.PRRiskRequest) (*investigator.PRRiskResponse, error)
	DailyReport(ctx context.Context, req *investigator.DailyReportRequest) (*investigator.DailyReportResponse, error)
}

// Diagnoser runs the access checks behind POST /diagnostics.
// *diagnostics.Checker implements it.
type Diagnoser interface {
	Diagnose(ctx context.Context, req *diagnostics.Request) *diagnostics.Report
}

// Server serves the investigator over HTTP.
type Server struct {
	inv     Investigator
	diag    Diagnoser
	timeout time.Duration
	schemas *schema.Registry
	mux     *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithDiagnoser enables POST /diagnostics.
func WithDiagnoser(d Diagnoser) Option {
	return func(s *Server) { s.diag = d }
}

// WithRequestTimeout bounds each orchestration. Zero means no bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New creates a Server and registers its routes.
func New(inv Investigator, opts ...Option) *Server {
	s := &Server{
		inv:     inv,
		schemas: schema.NewRegistry(),
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	schema.Register[investigator.ErrorInvestigationRequest](s.schemas, "ErrorInvestigationRequest")
	schema.Register[investigator.RepoActivityRequest](s.schemas, "RepoActivityRequest")
	schema.Register[investigator.PRRiskRequest](s.schemas, "PRRiskRequest")
	schema.Register[investigator.DailyReportRequest](s.schemas, "DailyReportRequest")

	s.route("POST /investigate", "investigate",
		handle(s, investigator.NewErrorInvestigationRequest, s.inv.Investigate))
	s.route("POST /activity", "activity",
		handle(s, investigator.NewRepoActivityRequest, s.inv.SummarizeActivity))
	s.route("POST /daily_report", "daily_report",
		handle(s, investigator.NewDailyReportRequest, s.inv.DailyReport))
	s.route("POST /pr_risk", "pr_risk",
		handle(s, func() *investigator.PRRiskRequest { return &investigator.PRRiskRequest{} }, s.inv.AnalyzePRRisk))

	if s.diag != nil {
		schema.Register[diagnostics.Request](s.schemas, "DiagnosticsRequest")
		s.route("POST /diagnostics", "diagnostics",
			handle(s, func() *diagnostics.Request { return &diagnostics.Request{} },
				func(ctx context.Context, req *diagnostics.Request) (*diagnostics.Report, error) {
					return s.diag.Diagnose(ctx, req), nil
				}))
	}

	s.route("GET /schemas", "schemas", http.HandlerFunc(s.listSchemas))
	s.route("GET /schemas/{name}", "schema", http.HandlerFunc(s.getSchema))
	s.route("GET /healthz", "healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	return s
}

func (s *Server) route(pattern, name string, h http.Handler) {
	s.mux.Handle(pattern, httpmetrics.Handler(name, h))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		clog.InfoContextf(ctx, "Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handle decodes a request into a value prefilled by newReq, validates
// it and passes it to call.
func handle[Req investigator.Validator, Resp any](s *Server, newReq func() Req, call func(context.Context, Req) (Resp, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := clog.FromContext(ctx).With("path", r.URL.Path)

		req := newReq()
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			writeJSON(ctx, w, http.StatusUnprocessableEntity, validationDetail{Detail: []investigator.FieldError{{
				Loc:  []string{"body"},
				Msg:  err.Error(),
				Type: "json_invalid",
			}}})
			return
		}
		if err := req.Validate(); err != nil {
			var verr *investigator.ValidationError
			if !errors.As(err, &verr) {
				verr = &investigator.ValidationError{Fields: []investigator.FieldError{{
					Loc: []string{"body"}, Msg: err.Error(), Type: "value_error",
				}}}
			}
			writeJSON(ctx, w, http.StatusUnprocessableEntity, validationDetail{Detail: verr.Fields})
			return
		}

		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		resp, err := call(ctx, req)
		if err != nil {
			log.With("error", err).Error("Request failed")
			writeJSON(ctx, w, http.StatusInternalServerError, errorDetail{Detail: http.StatusText(http.StatusInternalServerError)})
			return
		}
		writeJSON(ctx, w, http.StatusOK, resp)
	})
}

func (s *Server) listSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string][]string{"schemas": s.schemas.Names()})
}

func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	sch, ok := s.schemas.Get(r.PathValue("name"))
	if !ok {
		writeJSON(r.Context(), w, http.StatusNotFound, errorDetail{Detail: http.StatusText(http.StatusNotFound)})
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, sch)
}

type validationDetail struct {
	Detail []investigator.FieldError `json:"detail"`
}

type errorDetail struct {
	Detail string `json:"detail"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Failed to write response")
	}
}
