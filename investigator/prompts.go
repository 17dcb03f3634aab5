/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package investigator

import (
	"chainguard.dev/ghinvestigator/agents/promptbuilder"
	"chainguard.dev/ghinvestigator/config"
)

var investigationInstructions = promptbuilder.MustNewPrompt(`You are a senior DevOps + data engineering assistant.

Your job:
- Use the GitHub MCP tools to investigate build / pipeline errors.
- You receive: an error message, GitHub repo slug, branch, optional run id, and optional file path.
- You must:
  1. Inspect recent workflow runs and logs related to this error.
  2. Look at recent commits touching relevant files/components.
  3. Correlate the error message with code or config changes.
  4. Produce a concise root cause hypothesis + recommended fix.
  5. Additionally, provide a brief review of recent repo activity
     (recent commits, open pull requests, and recent issues) and
     highlight anything that might be related to the error.

When using tools:
- Prefer read-only operations (list workflow runs, view logs, list commits, diff commits, read files, list PRs/issues).
- Avoid write actions (creating issues, comments, etc.) unless explicitly requested,
  which we are NOT doing in this project.

Output:
- Short summary (2–3 sentences).
- Bullet list:
  - Likely cause(s)
  - Evidence (link / file / commit references)
  - Recommended fix steps
- A separate section that summarizes recent repo activity.

Keep explanations concrete and tied to specific commits, files, workflows,
and pull requests whenever possible.`)

var activityInstructions = promptbuilder.MustNewPrompt(`You are a senior DevOps + repository insights assistant.

Your job:
- Use the GitHub MCP tools to summarize recent activity for a given repo and branch.
- You should:
  1. Look at the most recent commits on the branch.
  2. Look at recent open pull requests targeting this branch.
  3. Look at recent issues that may be associated with this repo.
  4. Highlight themes and anything that looks risky or noteworthy
     (e.g., big refactors, dependency changes, failing builds).
  5. Identify the **top 3 risky pull requests** and explain why they are risky.

When using tools:
- Prefer read-only operations (list commits, list PRs, list issues, read files).
- Avoid write actions (creating issues, comments, etc.).

How to judge PR risk:
- Large number of changed files or lines.
- Touches critical or core directories (e.g., services, pipelines, infra).
- Modifies dependencies (requirements, package files, Dockerfiles).
- Modifies CI/CD or workflow definitions.
- Mentions breaking changes, migrations, or refactors in the title/description.
- Associated with recent failing builds or issues.

Output:
- A concise but informative summary in Markdown:
  - Recent commit activity (what's being worked on, by whom).
  - Recent PR activity (major changes, refactors, dependency bumps).
  - Recent issues (bugs, performance problems, tech debt).
  - **A dedicated section listing the top 3 risky PRs and why they are risky.**

Keep it high signal and concrete, with references to commit SHAs and PR numbers.`)

var prRiskInstructions = promptbuilder.MustNewPrompt(`You are a senior reviewer and production-readiness advisor.

Your job:
- Use the GitHub MCP tools to deeply analyze the risk profile of a given pull request.
- You should:
  1. Fetch the pull request details (title, description, author, labels, status).
  2. Inspect the diff: files changed, lines added/removed, key directories touched.
  3. Look at related workflow runs for this PR (if available).
  4. Look for linked issues, references, or related PRs.
  5. Evaluate how risky this PR is to merge and why.

How to judge risk:
- Size and complexity of the diff.
- Criticality of the areas touched (core services, infra, pipelines, security).
- Changes to dependencies, environment, workflows, or configuration.
- Presence of migrations, refactors, or breaking changes.
- Test coverage (new tests added? existing tests modified?).
- History of failures in related areas.

Output:
- A Markdown report with:
  - Overall risk rating (e.g., Low / Medium / High).
  - Clear reasons for the rating.
  - Specific files / components of concern.
  - Suggested checks before merge (tests, reviewers, rollout plan).

Keep it concise but concrete and actionable.`)

var investigationPrompt = promptbuilder.MustNewPrompt(`We have a CI / pipeline error to investigate.

Error message:
"""{{error_message}}"""

Repository: {{repo}}
Branch: {{branch}}

Additional context:
- GitHub Run ID (if provided): {{github_run_id}}
- Workflow name (if provided): {{workflow_name}}
- Suspected file path (if provided): {{file_path}}
- CI URL (if provided): {{ci_url}}
- Max runs to check: {{max_runs_to_check}}

Using the GitHub MCP tools, you should:

1. Investigate the error
   - Look up recent workflow runs / jobs that failed with a similar error.
   - Pull log excerpts around the failure.
   - Look at recent commits on this branch.
   - Focus on commits that touch the suspected file or related directories.
   - Infer the most likely root cause and propose concrete fixes.

2. Review recent repo activity
   - List recent commits on this branch (e.g., last 5–10).
   - List recent open pull requests relevant to this branch.
   - List recent issues that may be related to this component or error.
   - Call out anything that looks related to the error (e.g., touching the
     same files, mentioning similar stack traces, changing dependencies).

Return your answer in Markdown as:

## Summary
- 2–3 sentences summarizing probable cause and impact.

## Likely causes
- Bullet list of likely root causes with short explanations.

## Evidence
- Bullet list of specific commits, PRs, workflow runs, log lines, or files
  you used to reach the conclusion.

## Recommended fixes
- Bullet list of concrete actions: code changes, config updates, test additions,
  rollbacks, etc.

## Recent repo activity (last few commits / PRs / issues)
- Short bullets summarizing recent activity on this repo/branch.
- Highlight which items seem most related to the error and why.

Include specific commit SHAs, filenames, workflow names, and PR numbers where relevant.`)

var activityPrompt = promptbuilder.MustNewPrompt(`Summarize recent activity for this repository and branch.

Repository: {{repo}}
Branch: {{branch}}

Activity limits:
- Max commits: {{max_commits}}
- Max pull requests: {{max_prs}}
- Max issues: {{max_issues}}

Using the GitHub MCP tools, you should:
- List the most recent commits on this branch (up to max_commits).
- List recent open pull requests targeting this branch (up to max_prs).
- List recent issues for this repo (up to max_issues).
- Identify any themes (e.g., refactors, dependency updates, feature work).
- Call out anything that looks risky or important (e.g., big changes,
  changes to critical paths, build pipeline modifications).
- Identify the **top 3 risky pull requests**, based on factors like:
  - Size of the diff (files/lines changed).
  - Touching critical code paths or infrastructure.
  - Dependency / workflow / config changes.
  - Mentions of breaking changes, migrations, or refactors.
  - Association with failing builds or issues.

Return your answer in Markdown as:

## Recent commit activity
- ...

## Recent pull request activity
- ...

## Recent issues
- ...

## Top 3 risky PRs
- For each PR, include:
  - PR number and title
  - Why it is considered risky
  - Key files/areas touched

## Notable risks / hotspots
- Summarize any cross-cutting risks you see (e.g., multiple PRs touching
  the same fragile area, a lot of concurrent refactors, etc.).

Include specific commit SHAs, PR numbers, and issue numbers where relevant.`)

var prRiskPrompt = promptbuilder.MustNewPrompt(`Analyze the risk of the following pull request.

Repository: {{repo}}
Pull request number: {{pr_number}}

Using the GitHub MCP tools, you should:
- Fetch PR metadata (title, description, author, labels, status).
- Inspect the diff: which files changed, how many lines added/removed,
  which directories or subsystems are affected.
- Identify changes to dependencies, configuration, workflows, or infra.
- Check test-related files (unit/integration tests, CI config) to see
  if coverage was added or modified.
- Look for workflow runs associated with this PR and whether they passed.
- Consider any linked issues or referenced PRs.

Return your answer in Markdown as:

## Summary
- Overall risk rating: Low / Medium / High
- One or two lines explaining the rating.

## Reasons for risk rating
- Bullet list of concrete reasons (e.g., core service touched,
  large refactor, migration, dependency bump).

## Key files / areas touched
- Bullet list of important files/directories and what changed.

## Tests & workflows
- What tests or workflows cover this PR?
- Are there gaps or missing coverage?

## Recommendations before merge
- Concrete steps: additional tests, reviewers, rollout strategy,
  feature flags, canary deployment, etc.

Include the PR number and key file paths in your explanations.`)

// Turn budget fallbacks. Values are bound as inline code.

const tokenEnv = "`" + config.GitHubTokenEnv + "`"

var investigationFallback = promptbuilder.MustNewPrompt(`I attempted to investigate the error for:

- Repository: {{repo}}
- Branch: {{branch}}
- Error: {{error_message}}

but I hit my internal step limit (too many back-and-forth steps between
the model and the GitHub MCP tools).

This usually means the GitHub MCP server isn't responding as expected
(e.g., auth, connectivity, or protocol issues), so I kept retrying
and eventually stopped.

Please double-check:

- That the GitHub MCP server is reachable and correctly configured.
- That {{token_env}} has the right scopes for this repo.
- That the repo slug and branch are correct.

Once those are confirmed, try the request again.`).MustBindStringLiteral("token_env", tokenEnv)

var activityFallback = promptbuilder.MustNewPrompt(`I attempted to summarize recent activity for:

- Repository: {{repo}}
- Branch: {{branch}}

but I hit my internal step limit (too many back-and-forth steps
between the model and the GitHub MCP tools).

This usually means the GitHub MCP server isn't responding as expected
(e.g., auth, connectivity, or protocol issues).

Please verify:

- The GitHub MCP server / remote endpoint is reachable.
- {{token_env}} has the right scopes for this repo.
- The repo slug and branch are correct.

Once those are confirmed, try again.`).MustBindStringLiteral("token_env", tokenEnv)

var prRiskFallback = promptbuilder.MustNewPrompt(`I attempted to analyze the risk of:

- Repository: {{repo}}
- Pull request: {{pr_number}}

but I hit my internal step limit (too many back-and-forth steps
between the model and the GitHub MCP tools).

This usually means the GitHub MCP server isn't responding as expected
(e.g., auth, connectivity, or protocol issues).

Please verify:

- The GitHub MCP server / remote endpoint is reachable.
- {{token_env}} has the right scopes for this repo.
- The repo slug and PR number are correct.

Once those are confirmed, try again.`).MustBindStringLiteral("token_env", tokenEnv)

// InvestigationInstructions returns the system prompt of the error investigator.
func InvestigationInstructions() string { return mustBuild(investigationInstructions) }

// ActivityInstructions returns the system prompt of the activity summarizer.
func ActivityInstructions() string { return mustBuild(activityInstructions) }

// PRRiskInstructions returns the system prompt of the PR risk analyzer.
func PRRiskInstructions() string { return mustBuild(prRiskInstructions) }

// RenderInvestigationPrompt renders the user prompt for an investigation.
func RenderInvestigationPrompt(req *ErrorInvestigationRequest) (string, error) {
	return render(investigationPrompt, req)
}

// RenderActivityPrompt renders the user prompt for an activity summary.
func RenderActivityPrompt(req *RepoActivityRequest) (string, error) {
	return render(activityPrompt, req)
}

// RenderPRRiskPrompt renders the user prompt for a PR risk analysis.
func RenderPRRiskPrompt(req *PRRiskRequest) (string, error) {
	return render(prRiskPrompt, req)
}

func render(p *promptbuilder.Prompt, b promptbuilder.Bindable) (string, error) {
	bound, err := b.Bind(p)
	if err != nil {
		return "", err
	}
	return bound.Build()
}

func mustBuild(p *promptbuilder.Prompt) string {
	s, err := p.Build()
	if err != nil {
		panic(err)
	}
	return s
}
