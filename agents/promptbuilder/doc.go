/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder renders prompt templates with {{name}} placeholders.

Templates must be string literals, so the shape of every prompt is owned by
the developer. Values are attached with one of the Bind methods and the
final text is produced by Build:

	p := promptbuilder.MustNewPrompt(`Repository: {{repo}}
	Max commits: {{max_commits}}`)

	p, err := p.BindText("repo", req.RepoSlug)
	if err != nil {
		return err
	}
	p, err = p.BindInt("max_commits", int64(req.MaxCommits))
	if err != nil {
		return err
	}
	text, err := p.Build()

# Binding Methods

  - BindStringLiteral: developer-controlled literal strings
  - BindText: request-supplied text, inserted verbatim
  - BindInt: integers, rendered in decimal

# Template Syntax

Valid binding names start with a letter and contain only letters, digits
and underscores. {{}} or {{a-b}} make NewPrompt fail.

# Guarantees

  - Tokenization is single pass, so a bound value containing {{x}} is never
    expanded.
  - Binding a placeholder twice, or one absent from the template, fails.
  - Build fails while any placeholder is unbound.
  - Prompts are immutable; every Bind returns a new instance, so a template
    held in a package variable is safe to share between goroutines.
*/
package promptbuilder
