/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"chainguard.dev/ghinvestigator/client"
	"chainguard.dev/ghinvestigator/diagnostics"
	"chainguard.dev/ghinvestigator/investigator"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiURL string
}

// client returns an API client for --api-url, falling back to
// INVESTIGATOR_API_BASE_URL.
func (o *rootOptions) client(cmd *cobra.Command) (*client.Client, error) {
	if o.apiURL != "" {
		return client.New(o.apiURL), nil
	}
	cfg, err := client.LoadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	return client.New(cfg.BaseURL), nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "ghinvestigate",
		Short:         "Investigate CI failures and summarize GitHub repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "investigator API base URL (default $INVESTIGATOR_API_BASE_URL or http://localhost:8000)")

	cmd.AddCommand(
		newInvestigateCommand(opts),
		newActivityCommand(opts),
		newDailyReportCommand(opts),
		newPRRiskCommand(opts),
		newDiagnoseCommand(opts),
	)
	return cmd
}

// errorFlags holds the failure details shared by investigate and daily-report.
type errorFlags struct {
	message  string
	file     string
	workflow string
	runID    int64
	filePath string
	ciURL    string
	maxRuns  int
	repo     string
	branch   string
}

func (f *errorFlags) register(cmd *cobra.Command, maxRuns int) {
	cmd.Flags().StringVar(&f.repo, "repo", "", "repository as owner/repo")
	cmd.Flags().StringVar(&f.branch, "branch", investigator.DefaultBranch, "branch to inspect")
	cmd.Flags().StringVar(&f.message, "error", "", "error output from the failing job")
	cmd.Flags().StringVar(&f.file, "error-file", "", "read the error output from a file, - for stdin")
	cmd.Flags().StringVar(&f.workflow, "workflow", "", "workflow name")
	cmd.Flags().Int64Var(&f.runID, "run-id", 0, "GitHub Actions run ID")
	cmd.Flags().StringVar(&f.filePath, "file", "", "suspected file path")
	cmd.Flags().StringVar(&f.ciURL, "ci-url", "", "link to the failing run")
	cmd.Flags().IntVar(&f.maxRuns, "max-runs", maxRuns, "how many recent runs to check")
	cmd.MarkFlagsMutuallyExclusive("error", "error-file")
	_ = cmd.MarkFlagRequired("repo")
}

// errorMessage returns --error, or the contents of --error-file.
func (f *errorFlags) errorMessage(stdin io.Reader) (string, error) {
	switch f.file {
	case "":
		return f.message, nil
	case "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading error from stdin: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	default:
		b, err := os.ReadFile(f.file)
		if err != nil {
			return "", fmt.Errorf("reading error file: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
}

type limitFlags struct {
	commits int
	prs     int
	issues  int
}

func (f *limitFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.commits, "max-commits", 10, "how many recent commits to summarize")
	cmd.Flags().IntVar(&f.prs, "max-prs", 5, "how many open pull requests to summarize")
	cmd.Flags().IntVar(&f.issues, "max-issues", 5, "how many open issues to summarize")
}

func newInvestigateCommand(root *rootOptions) *cobra.Command {
	var ef errorFlags
	cmd := &cobra.Command{
		Use:   "investigate",
		Short: "Find the root cause of a CI failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := ef.errorMessage(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if msg == "" {
				return errors.New("one of --error or --error-file is required")
			}
			c, err := root.client(cmd)
			if err != nil {
				return err
			}
			resp, err := c.Investigate(cmd.Context(), &investigator.ErrorInvestigationRequest{
				ErrorMessage:   msg,
				RepoSlug:       ef.repo,
				Branch:         ef.branch,
				WorkflowName:   ef.workflow,
				GitHubRunID:    ef.runID,
				FilePath:       ef.filePath,
				CIURL:          ef.ciURL,
				MaxRunsToCheck: ef.maxRuns,
			})
			if err != nil {
				return err
			}
			return printMarkdown(cmd.OutOrStdout(), resp.AnalysisMarkdown)
		},
	}
	ef.register(cmd, 5)
	return cmd
}

func newActivityCommand(root *rootOptions) *cobra.Command {
	var (
		repo, branch string
		lf           limitFlags
	)
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Summarize recent commits, pull requests and issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.client(cmd)
			if err != nil {
				return err
			}
			resp, err := c.Activity(cmd.Context(), &investigator.RepoActivityRequest{
				RepoSlug:   repo,
				Branch:     branch,
				MaxCommits: lf.commits,
				MaxPRs:     lf.prs,
				MaxIssues:  lf.issues,
			})
			if err != nil {
				return err
			}
			return printMarkdown(cmd.OutOrStdout(), resp.ActivityMarkdown)
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "repository as owner/repo")
	cmd.Flags().StringVar(&branch, "branch", investigator.DefaultBranch, "branch to inspect")
	_ = cmd.MarkFlagRequired("repo")
	lf.register(cmd)
	return cmd
}

func newDailyReportCommand(root *rootOptions) *cobra.Command {
	var (
		ef errorFlags
		lf limitFlags
	)
	cmd := &cobra.Command{
		Use:   "daily-report",
		Short: "Combine recent activity with an optional failure investigation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := ef.errorMessage(cmd.InOrStdin())
			if err != nil {
				return err
			}
			c, err := root.client(cmd)
			if err != nil {
				return err
			}
			resp, err := c.DailyReport(cmd.Context(), &investigator.DailyReportRequest{
				RepoSlug:       ef.repo,
				Branch:         ef.branch,
				ErrorMessage:   msg,
				WorkflowName:   ef.workflow,
				GitHubRunID:    ef.runID,
				FilePath:       ef.filePath,
				CIURL:          ef.ciURL,
				MaxRunsToCheck: ef.maxRuns,
				MaxCommits:     lf.commits,
				MaxPRs:         lf.prs,
				MaxIssues:      lf.issues,
			})
			if err != nil {
				return err
			}
			return printMarkdown(cmd.OutOrStdout(), resp.ReportMarkdown)
		},
	}
	ef.register(cmd, 3)
	lf.register(cmd)
	return cmd
}

func newPRRiskCommand(root *rootOptions) *cobra.Command {
	var (
		repo   string
		number int
	)
	cmd := &cobra.Command{
		Use:   "pr-risk",
		Short: "Assess the risk of merging a pull request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.client(cmd)
			if err != nil {
				return err
			}
			resp, err := c.PRRisk(cmd.Context(), &investigator.PRRiskRequest{RepoSlug: repo, PRNumber: number})
			if err != nil {
				return err
			}
			return printMarkdown(cmd.OutOrStdout(), resp.PRRiskMarkdown)
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "repository as owner/repo")
	cmd.Flags().IntVar(&number, "pr", 0, "pull request number")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("pr")
	return cmd
}

func newDiagnoseCommand(root *rootOptions) *cobra.Command {
	var req diagnostics.Request
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Check the token, repository and tool server the service uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.client(cmd)
			if err != nil {
				return err
			}
			report, err := c.Diagnose(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if err := renderReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if len(report.Errors) > 0 {
				return fmt.Errorf("%d check(s) failed", len(report.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.RepoSlug, "repo", "", "repository as owner/repo to check access to")
	cmd.Flags().StringVar(&req.Branch, "branch", investigator.DefaultBranch, "branch that should exist")
	return cmd
}

func printMarkdown(w io.Writer, md string) error {
	_, err := fmt.Fprintln(w, strings.TrimRight(md, "\n"))
	return err
}
