/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder_test

import (
	"strings"
	"testing"

	"chainguard.dev/ghinvestigator/agents/promptbuilder"
)

func TestNewPrompt(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*promptbuilder.Prompt, error)
		want  []string
	}{{
		name:  "no bindings",
		build: func() (*promptbuilder.Prompt, error) { return promptbuilder.NewPrompt("A prompt with no bindings") },
	}, {
		name:  "single binding",
		build: func() (*promptbuilder.Prompt, error) { return promptbuilder.NewPrompt("Repository: {{repo}}") },
		want:  []string{"repo"},
	}, {
		name:  "repeated binding",
		build: func() (*promptbuilder.Prompt, error) { return promptbuilder.NewPrompt("{{repo}} and again {{repo}}") },
		want:  []string{"repo"},
	}, {
		name: "spaces inside braces",
		build: func() (*promptbuilder.Prompt, error) {
			return promptbuilder.NewPrompt("Branch: {{ branch }} / {{max_runs_2}}")
		},
		want: []string{"branch", "max_runs_2"},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build()
			if err != nil {
				t.Fatalf("NewPrompt() error = %v", err)
			}
			bindings := p.GetBindings()
			if len(bindings) != len(tt.want) {
				t.Errorf("binding count: got = %d, wanted = %d", len(bindings), len(tt.want))
			}
			for _, name := range tt.want {
				if _, ok := bindings[name]; !ok {
					t.Errorf("binding %q: got = absent, wanted = present", name)
				}
			}
		})
	}
}

func TestNewPromptInvalid(t *testing.T) {
	for name, build := range map[string]func() (*promptbuilder.Prompt, error){
		"empty binding":  func() (*promptbuilder.Prompt, error) { return promptbuilder.NewPrompt("a {{}} b") },
		"hyphen":         func() (*promptbuilder.Prompt, error) { return promptbuilder.NewPrompt("a {{test-case}} b") },
		"dot":            func() (*promptbuilder.Prompt, error) { return promptbuilder.NewPrompt("a {{test.value}} b") },
		"leading digit":  func() (*promptbuilder.Prompt, error) { return promptbuilder.NewPrompt("a {{1abc}} b") },
		"unclosed brace": func() (*promptbuilder.Prompt, error) { return promptbuilder.NewPrompt("a {{abc b") },
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := build(); err == nil {
				t.Error("NewPrompt() error: got = nil, wanted = error")
			}
		})
	}
}

func TestBindAndBuild(t *testing.T) {
	p := promptbuilder.MustNewPrompt("Repository: {{repo}}\nBranch: {{branch}}\nMax commits: {{max_commits}}")

	p, err := p.BindText("repo", "acme/widgets")
	if err != nil {
		t.Fatalf("BindText() error = %v", err)
	}
	p, err = p.BindStringLiteral("branch", "main")
	if err != nil {
		t.Fatalf("BindStringLiteral() error = %v", err)
	}
	p, err = p.BindInt("max_commits", 10)
	if err != nil {
		t.Fatalf("BindInt() error = %v", err)
	}

	got, err := p.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := "Repository: acme/widgets\nBranch: main\nMax commits: 10"
	if got != want {
		t.Errorf("Build(): got = %q, wanted = %q", got, want)
	}
}

func TestBindTextIsNotExpanded(t *testing.T) {
	p := promptbuilder.MustNewPrompt("Error: {{error}} / Repo: {{repo}}")
	p, err := p.BindText("error", "template {{repo}} leaked")
	if err != nil {
		t.Fatalf("BindText() error = %v", err)
	}
	p, err = p.BindText("repo", "acme/widgets")
	if err != nil {
		t.Fatalf("BindText() error = %v", err)
	}
	got, err := p.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if want := "Error: template {{repo}} leaked / Repo: acme/widgets"; got != want {
		t.Errorf("Build(): got = %q, wanted = %q", got, want)
	}
}

func TestBindErrors(t *testing.T) {
	p := promptbuilder.MustNewPrompt("Hello {{name}}")

	if _, err := p.BindText("missing", "x"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("bind unknown placeholder: got = %v, wanted = not found error", err)
	}

	bound, err := p.BindText("name", "World")
	if err != nil {
		t.Fatalf("BindText() error = %v", err)
	}
	if _, err := bound.BindText("name", "again"); err == nil || !strings.Contains(err.Error(), "already bound") {
		t.Errorf("rebind: got = %v, wanted = already bound error", err)
	}

	// The original prompt is untouched by binding.
	if _, err := p.Build(); err == nil || !strings.Contains(err.Error(), "unbound placeholder: name") {
		t.Errorf("build unbound: got = %v, wanted = unbound placeholder error", err)
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustNewPrompt() panic: got = nil, wanted = panic")
		}
	}()
	promptbuilder.MustNewPrompt("bad {{a-b}}")
}
