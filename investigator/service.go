/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package investigator

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/ghinvestigator/agents/agenttrace"
	"chainguard.dev/ghinvestigator/agents/executor"
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
	"chainguard.dev/ghinvestigator/agents/result"
	"chainguard.dev/ghinvestigator/agents/toolcall"
	"chainguard.dev/ghinvestigator/config"
	"chainguard.dev/ghinvestigator/toolserver"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var fallbackCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "investigator_turn_budget_fallbacks_total",
		Help: "Agent runs that exhausted their turn budget and answered with fallback text",
	},
	[]string{"task"},
)

// Session is an open tool server connection.
type Session interface {
	toolcall.ToolProvider[string]
	Close() error
}

// SessionOpener opens a tool server session for one request.
type SessionOpener func(ctx context.Context) (Session, error)

// NewSessionOpener opens sessions to the configured tool server. The
// token is read from the environment on each open.
func NewSessionOpener(cfg config.MCP) SessionOpener {
	return func(ctx context.Context) (Session, error) {
		s, err := toolserver.Open(ctx, toolserver.FromConfig(cfg)...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Service runs the investigation tasks. Every call opens its own session
// and agent; nothing is shared between calls.
type Service struct {
	openSession SessionOpener
	newAgent    AgentFactory
}

// Option configures a Service.
type Option func(*Service)

// WithSessionOpener replaces how sessions are opened.
func WithSessionOpener(open SessionOpener) Option {
	return func(s *Service) { s.openSession = open }
}

// WithAgentFactory replaces how agents are built.
func WithAgentFactory(f AgentFactory) Option {
	return func(s *Service) { s.newAgent = f }
}

// New creates a Service from the process configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		openSession: NewSessionOpener(cfg.MCP),
		newAgent:    NewAgentFactory(cfg),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Investigate looks for the root cause of a CI failure.
func (s *Service) Investigate(ctx context.Context, req *ErrorInvestigationRequest) (*InvestigationResponse, error) {
	ctx = withExecution(ctx, agenttrace.ExecutionContext{
		Task:       string(TaskInvestigate),
		Repository: req.RepoSlug,
		Branch:     req.Branch,
	})
	answer, err := s.run(ctx, InvestigationTask, req)
	if errors.Is(err, executor.ErrMaxTurnsExceeded) {
		answer, err = fallback(ctx, TaskInvestigate, investigationFallback, map[string]string{
			"repo":          code(req.RepoSlug),
			"branch":        code(req.Branch),
			"error_message": code(req.ErrorMessage),
		})
	}
	if err != nil {
		return nil, err
	}
	return &InvestigationResponse{AnalysisMarkdown: answer}, nil
}

// SummarizeActivity summarizes recent commits, pull requests and issues.
func (s *Service) SummarizeActivity(ctx context.Context, req *RepoActivityRequest) (*ActivityResponse, error) {
	ctx = withExecution(ctx, agenttrace.ExecutionContext{
		Task:       string(TaskActivity),
		Repository: req.RepoSlug,
		Branch:     req.Branch,
	})
	answer, err := s.run(ctx, ActivityTask, req)
	if errors.Is(err, executor.ErrMaxTurnsExceeded) {
		answer, err = fallback(ctx, TaskActivity, activityFallback, map[string]string{
			"repo":   code(req.RepoSlug),
			"branch": code(req.Branch),
		})
	}
	if err != nil {
		return nil, err
	}
	return &ActivityResponse{ActivityMarkdown: answer}, nil
}

// AnalyzePRRisk rates how risky a pull request is to merge.
func (s *Service) AnalyzePRRisk(ctx context.Context, req *PRRiskRequest) (*PRRiskResponse, error) {
	ctx = withExecution(ctx, agenttrace.ExecutionContext{
		Task:       string(TaskPRRisk),
		Repository: req.RepoSlug,
		PRNumber:   req.PRNumber,
	})
	answer, err := s.run(ctx, PRRiskTask, req)
	if errors.Is(err, executor.ErrMaxTurnsExceeded) {
		answer, err = fallback(ctx, TaskPRRisk, prRiskFallback, map[string]string{
			"repo":      code(req.RepoSlug),
			"pr_number": code(fmt.Sprintf("#%d", req.PRNumber)),
		})
	}
	if err != nil {
		return nil, err
	}
	return &PRRiskResponse{PRRiskMarkdown: answer}, nil
}

// run opens a session, builds the task's agent and executes it.
func (s *Service) run(ctx context.Context, task TaskConfig, req promptbuilder.Bindable) (string, error) {
	log := clog.FromContext(ctx)

	session, err := s.openSession(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.With("error", err).Warn("Failed to close tool server session")
		}
	}()

	agent, err := s.newAgent(ctx, task)
	if err != nil {
		return "", fmt.Errorf("creating %s agent: %w", task.Name, err)
	}

	answer, err := agent.Execute(ctx, req, session)
	if err != nil {
		return "", err
	}
	if result.IsEmpty(answer) {
		log.Warn("Agent finished without a report")
	}
	return result.Markdown(answer), nil
}

func fallback(ctx context.Context, task Task, p *promptbuilder.Prompt, values map[string]string) (string, error) {
	clog.FromContext(ctx).Warn("Turn budget exhausted, answering with fallback text")
	fallbackCounter.WithLabelValues(string(task)).Inc()

	bound, err := bindAll(p, values)
	if err != nil {
		return "", fmt.Errorf("binding fallback: %w", err)
	}
	return bound.Build()
}

func withExecution(ctx context.Context, ec agenttrace.ExecutionContext) context.Context {
	log := clog.FromContext(ctx).With("task", ec.Task).With("repo", ec.Repository)
	if ec.Branch != "" {
		log = log.With("branch", ec.Branch)
	}
	if ec.PRNumber != 0 {
		log = log.With("pr_number", ec.PRNumber)
	}
	ctx = clog.WithLogger(ctx, log)
	return agenttrace.WithExecutionContext(ctx, ec)
}

// code formats s as inline Markdown code.
func code(s string) string {
	return "`" + s + "`"
}
