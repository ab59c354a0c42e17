package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/testutil"
)

func TestQueryHandleAnswersFromMatches(t *testing.T) {
	req := testRequest(t, "what's on my plate?")
	testutil.WriteNote(t, req.Vault, "Actions/fix-fence.md",
		"---\ntitle: Fix Fence\nstatus: todo\ndue_date: 2026-09-05\n---\n\nbody\n")
	req.Routing = Classification{
		Intent:      "vault_query",
		SearchTerms: []string{"fence"},
		Question:    "what's on my plate?",
	}

	model := &testutil.FakeModel{Replies: []llm.Reply{{Text: "You need to fix the fence by Sept 5.", Tokens: 20}}}
	a := NewQueryAgent(model, testutil.Logger())

	res, err := a.Handle(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.ResponseText != "You need to fix the fence by Sept 5." || res.TokensUsed != 20 {
		t.Errorf("res = %+v", res)
	}

	// The prompt carries note metadata, not raw note bodies.
	var prompt strings.Builder
	for _, p := range model.Calls[0] {
		prompt.WriteString(p.Text)
	}
	if !strings.Contains(prompt.String(), "fix-fence.md") {
		t.Error("matching note missing from prompt")
	}
	if !strings.Contains(prompt.String(), "due_date: 2026-09-05") {
		t.Error("header fields missing from prompt")
	}
}

func TestQueryHandleRetriesWithoutKeywords(t *testing.T) {
	req := testRequest(t, "how many notes do I have?")
	testutil.WriteNote(t, req.Vault, "Inbox/something.md", "---\ntitle: Something\n---\n\nbody\n")
	req.Routing = Classification{
		Intent:      "vault_query",
		SearchTerms: []string{"nonexistent-keyword"},
		Question:    "how many notes do I have?",
	}

	model := &testutil.FakeModel{Replies: []llm.Reply{{Text: "One note.", Tokens: 5}}}
	a := NewQueryAgent(model, testutil.Logger())

	res, err := a.Handle(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	// The keyword search found nothing, so the unfiltered retry fed the
	// prompt instead of the no-matches message.
	if res.ResponseText != "One note." {
		t.Errorf("res = %+v", res)
	}
}

func TestQueryHandleNoMatches(t *testing.T) {
	req := testRequest(t, "anything about dragons?")
	req.Routing = Classification{Intent: "vault_query", Question: "anything about dragons?"}

	model := &testutil.FakeModel{}
	a := NewQueryAgent(model, testutil.Logger())

	res, err := a.Handle(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(model.Calls) != 0 {
		t.Error("model called despite empty vault")
	}
	if !strings.Contains(res.ResponseText, "didn't find") {
		t.Errorf("res = %q", res.ResponseText)
	}
}

func TestQueryHandleGrepMode(t *testing.T) {
	req := testRequest(t, "which note mentions the blue paint?")
	testutil.WriteNote(t, req.Vault, "Reference/paint.md",
		"---\ntitle: Paint Codes\n---\n\nThe hallway uses blue paint RAL 5010.\n")
	req.Routing = Classification{
		Intent:      "vault_query",
		QueryMode:   QueryModeGrep,
		SearchTerms: []string{"blue paint"},
		Question:    "which note mentions the blue paint?",
	}

	model := &testutil.FakeModel{Replies: []llm.Reply{{Text: "paint.md mentions it."}}}
	a := NewQueryAgent(model, testutil.Logger())

	if _, err := a.Handle(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	var prompt strings.Builder
	for _, p := range model.Calls[0] {
		prompt.WriteString(p.Text)
	}
	if !strings.Contains(prompt.String(), "RAL 5010") {
		t.Error("grep snippet missing from prompt")
	}
}
