/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package investigator

import (
	"context"

	"chainguard.dev/ghinvestigator/agents/executor"
	"chainguard.dev/ghinvestigator/agents/metaagent"
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
	"chainguard.dev/ghinvestigator/config"
)

// Task identifies what an agent run is for. It labels logs, spans and metrics.
type Task string

const (
	TaskInvestigate Task = "investigate"
	TaskActivity    Task = "activity"
	TaskPRRisk      Task = "pr_risk"
)

// TaskConfig is everything that distinguishes one task's agent from another.
type TaskConfig struct {
	Task         Task
	Name         string
	Instructions *promptbuilder.Prompt
	UserPrompt   *promptbuilder.Prompt
	Temperature  float64
	ToolChoice   executor.ToolChoice
}

var (
	// InvestigationTask finds the root cause of a CI failure.
	InvestigationTask = TaskConfig{
		Task:         TaskInvestigate,
		Name:         "github-error-investigator",
		Instructions: investigationInstructions,
		UserPrompt:   investigationPrompt,
		Temperature:  0.2,
		ToolChoice:   executor.ToolChoiceAuto,
	}

	// ActivityTask summarizes recent commits, pull requests and issues.
	ActivityTask = TaskConfig{
		Task:         TaskActivity,
		Name:         "github-repo-activity-summary",
		Instructions: activityInstructions,
		UserPrompt:   activityPrompt,
		Temperature:  0.3,
		ToolChoice:   executor.ToolChoiceAuto,
	}

	// PRRiskTask rates how risky a pull request is to merge.
	PRRiskTask = TaskConfig{
		Task:         TaskPRRisk,
		Name:         "github-pr-risk-analyzer",
		Instructions: prRiskInstructions,
		UserPrompt:   prRiskPrompt,
		Temperature:  0.25,
		ToolChoice:   executor.ToolChoiceAuto,
	}
)

// AgentConfig returns the agent configuration for the task.
func (t TaskConfig) AgentConfig(maxTurns int) metaagent.Config {
	temperature := t.Temperature
	return metaagent.Config{
		Name:               t.Name,
		SystemInstructions: t.Instructions,
		UserPrompt:         t.UserPrompt,
		Temperature:        &temperature,
		MaxTurns:           maxTurns,
		ToolChoice:         t.ToolChoice,
	}
}

// Agent runs one task to a final Markdown answer.
type Agent = metaagent.Agent[promptbuilder.Bindable]

// AgentFactory constructs the agent for a task. It must not contact the
// model provider or the tool server.
type AgentFactory func(ctx context.Context, task TaskConfig) (Agent, error)

// NewAgentFactory builds agents for the configured model.
func NewAgentFactory(cfg *config.Config) AgentFactory {
	creds := cfg.Credentials()
	return func(ctx context.Context, task TaskConfig) (Agent, error) {
		return metaagent.New[promptbuilder.Bindable](ctx, creds, cfg.Model, task.AgentConfig(cfg.MaxTurns))
	}
}
