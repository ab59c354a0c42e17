package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Memory actions carried in the router's classification.
const (
	MemoryActionAdd    = "add"
	MemoryActionRemove = "remove"
	MemoryActionList   = "list"
)

// MemoryAgent manages standing directives: persistent instructions every
// agent sees on every request.
type MemoryAgent struct {
	logger *slog.Logger
}

// NewMemoryAgent builds the directive management agent. It needs no model;
// the router already extracted the action and payload.
func NewMemoryAgent(logger *slog.Logger) *MemoryAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryAgent{logger: logger}
}

func (a *MemoryAgent) Name() string { return "memory" }

func (a *MemoryAgent) Description() string {
	return "Manages standing directives — persistent instructions like " +
		"\"always tag work notes with #acme\" that shape future behaviour."
}

func (a *MemoryAgent) Handle(_ context.Context, req *Request) (Result, error) {
	switch req.Routing.MemoryAction {
	case MemoryActionAdd:
		text := strings.TrimSpace(req.Routing.Directive)
		if text == "" {
			return Result{ResponseText: "What directive should I remember? " +
				"Try something like \"remember: always tag recipes with #cooking\"."}, nil
		}
		directives, err := req.Vault.AddDirective(text)
		if err != nil {
			return Result{}, err
		}
		return Result{ResponseText: fmt.Sprintf("🧠 Remembered. You now have %d directive(s):\n%s",
			len(directives), renderDirectives(directives))}, nil

	case MemoryActionRemove:
		idx := req.Routing.DirectiveIndex
		removed, directives, err := req.Vault.RemoveDirective(idx)
		if err != nil {
			return Result{}, err
		}
		if removed == "" {
			return Result{ResponseText: fmt.Sprintf("There's no directive #%d. Current directives:\n%s",
				idx, renderDirectives(directives))}, nil
		}
		return Result{ResponseText: fmt.Sprintf("🧠 Forgot directive #%d: %q\n\nRemaining:\n%s",
			idx, removed, renderDirectives(directives))}, nil

	default:
		return Result{ResponseText: "🧠 Current directives:\n" +
			renderDirectives(req.Vault.Directives())}, nil
	}
}

func renderDirectives(directives []string) string {
	if len(directives) == 0 {
		return "_No directives set._"
	}
	var b strings.Builder
	for i, d := range directives {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}
	return strings.TrimRight(b.String(), "\n")
}
