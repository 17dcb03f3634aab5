/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"io"
	"strings"

	"chainguard.dev/ghinvestigator/diagnostics"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// renderReport writes one row per check, then any errors.
func renderReport(w io.Writer, r *diagnostics.Report) error {
	table := newTable(w, "Check", "Status", "Details")
	for _, row := range reportRows(r) {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
	return nil
}

func reportRows(r *diagnostics.Report) [][]string {
	var rows [][]string

	if g := r.GitHub; g != nil {
		scopes := "none (fine-grained token)"
		if len(g.Scopes) > 0 {
			scopes = strings.Join(g.Scopes, ", ")
		}
		rows = append(rows, []string{"GitHub token", "ok",
			fmt.Sprintf("login %s; scopes %s; %d requests left", g.Login, scopes, g.RateLimitRemaining)})
	} else {
		rows = append(rows, []string{"GitHub token", "failed", ""})
	}

	if repo := r.Repository; repo != nil {
		status := "ok"
		if !repo.BranchExists {
			status = "branch missing"
		}
		rows = append(rows, []string{"Repository", status,
			fmt.Sprintf("%s@%s; default %s; permission %s", repo.NameWithOwner, repo.Branch, repo.DefaultBranch, repo.ViewerPermission)})
	}

	if ts := r.ToolServer; ts != nil && ts.Reachable {
		details := fmt.Sprintf("%d tools, %d read-only", ts.Tools, ts.ReadOnlyTools)
		if ts.ReadOnly {
			details += "; read-only mode"
		}
		rows = append(rows, []string{"Tool server", "ok", details})
	} else {
		rows = append(rows, []string{"Tool server", "failed", ""})
	}
	return rows
}
