/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package executor holds what every model provider's executor shares:
// the Interface agents program against, the turn budget and tool choice.
package executor

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/ghinvestigator/agents/promptbuilder"
	"chainguard.dev/ghinvestigator/agents/toolcall"
)

// DefaultMaxTurns is the number of model responses an agent run may use.
const DefaultMaxTurns = 20

// ErrMaxTurnsExceeded is matched by every MaxTurnsError.
var ErrMaxTurnsExceeded = errors.New("max turns exceeded")

// MaxTurnsError reports that an agent run used its whole turn budget
// without producing a final answer.
type MaxTurnsError struct {
	Turns int
}

func (e *MaxTurnsError) Error() string {
	return fmt.Sprintf("agent did not produce a final answer within %d turns", e.Turns)
}

func (e *MaxTurnsError) Unwrap() error {
	return ErrMaxTurnsExceeded
}

// CheckTurn returns a MaxTurnsError when turn (1-based) is past the budget.
func CheckTurn(turn, maxTurns int) error {
	if turn > maxTurns {
		return &MaxTurnsError{Turns: maxTurns}
	}
	return nil
}

// ValidateMaxTurns checks a configured turn budget.
func ValidateMaxTurns(turns int) error {
	if turns < 1 {
		return fmt.Errorf("max turns must be positive, got %d", turns)
	}
	return nil
}

// ToolChoice controls whether the model may, must or must not call tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// Validate checks that c is a known tool choice.
func (c ToolChoice) Validate() error {
	switch c {
	case ToolChoiceAuto, ToolChoiceRequired, ToolChoiceNone:
		return nil
	}
	return fmt.Errorf("unknown tool choice %q", c)
}

// Interface runs one agent conversation to a final text answer.
type Interface[Request promptbuilder.Bindable] interface {
	// Execute binds request into the agent's prompt and converses with the
	// model, dispatching tool calls to tools, until the model answers in
	// text. A run that exhausts its turn budget returns a MaxTurnsError.
	Execute(ctx context.Context, request Request, tools toolcall.ToolProvider[string]) (string, error)
}
