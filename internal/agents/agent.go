// Package agents implements the intent router and the capability agents it
// dispatches to. Every agent speaks the same contract: take a request
// context, optionally consult the vault and the language model, and return a
// conversational result.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/vault"
)

// ThreadMessage is one prior message in a chat thread, oldest first.
type ThreadMessage struct {
	Role string // "user" or "assistant"
	Text string
}

// Classification is the structured routing payload produced by the router's
// model call and passed through to the handling agent so it does not need to
// re-derive search terms, target filenames, or query mode.
type Classification struct {
	Intent          string   `json:"intent"`
	Answer          string   `json:"answer,omitempty"`
	SearchTerms     []string `json:"search_terms,omitempty"`
	Folders         []string `json:"folders,omitempty"`
	TargetFiles     []string `json:"target_files,omitempty"`
	EditDescription string   `json:"edit_description,omitempty"`
	Question        string   `json:"question,omitempty"`
	QueryMode       string   `json:"query_mode,omitempty"`
	MemoryAction    string   `json:"memory_action,omitempty"`
	Directive       string   `json:"directive,omitempty"`
	DirectiveIndex  int      `json:"directive_index,omitempty"`

	Tokens int `json:"-"`
}

// Request carries everything an agent needs for one message. It is built
// once per inbound message and passed down the call chain; agents hold no
// state of their own between invocations.
type Request struct {
	Text        string
	Attachments []llm.Part
	Vault       *vault.Vault
	Thread      []ThreadMessage
	Routing     Classification
}

// Result is the uniform agent response.
type Result struct {
	ResponseText string
	FiledPath    string
	TokensUsed   int
}

// Agent is the contract every capability implements. Name doubles as the
// routing intent; Description feeds the router's classification prompt, so
// registering a new agent changes routing without touching the router.
type Agent interface {
	Name() string
	Description() string
	Handle(ctx context.Context, req *Request) (Result, error)
}

// formatDirectives renders standing directives for prompt injection.
func formatDirectives(v *vault.Vault) string {
	directives := v.Directives()
	if len(directives) == 0 {
		return "_No directives set._"
	}
	var b strings.Builder
	for _, d := range directives {
		b.WriteString("- " + d + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatThread renders prior thread messages, or "" when there are none.
func formatThread(thread []ThreadMessage) string {
	if len(thread) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## Conversation So Far\n")
	for _, m := range thread {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Text)
	}
	return b.String()
}
