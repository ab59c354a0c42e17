package agents

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rowanhart/curator/internal/llm"
)

// IntentQuestion is the reserved intent for simple questions the router
// answers directly without dispatching to any agent.
const IntentQuestion = "question"

const routerPrompt = `You are the intent router for a personal knowledge-capture assistant.
Classify the user's message into exactly one intent and return a single JSON object.

Available intents:
%s
- **"question"**: A simple factual or conversational question that needs no vault access. Include the answer directly.

Return JSON with these keys:
- "intent": one of the intent names above (required)
- "answer": the direct answer, only when intent is "question"
- "search_terms": keywords to find relevant notes, for vault_query and vault_edit
- "folders": category folders to search (Projects, Actions, Media, Reference, Memories, Inbox, Attachments), or omit for all
- "target_files": exact note filenames when the user or the conversation names them
- "edit_description": a one-line restatement of the requested change, for vault_edit
- "question": the user's underlying question, for vault_query
- "query_mode": "default", "metadata" (aggregate/statistics over the whole vault), or "grep" (exact-phrase full-text search)
- "memory_action": "add", "remove", or "list", for memory
- "directive": the directive text to remember, for memory add
- "directive_index": 1-based index, for memory remove

Current time: %s

## Standing Directives
%s

Return ONLY the JSON object.`

// Router classifies inbound messages with one model call and dispatches to
// the selected agent. It keeps no state between requests.
type Router struct {
	model        llm.Model
	agents       map[string]Agent
	defaultAgent string
	logger       *slog.Logger
}

// NewRouter builds a router over the given agents. defaultAgent names the
// fallback used whenever classification fails or returns an unknown intent;
// it must be registered.
func NewRouter(model llm.Model, registered []Agent, defaultAgent string, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]Agent, len(registered))
	for _, a := range registered {
		byName[a.Name()] = a
	}
	if _, ok := byName[defaultAgent]; !ok {
		return nil, fmt.Errorf("agents: default agent %q is not registered", defaultAgent)
	}
	return &Router{model: model, agents: byName, defaultAgent: defaultAgent, logger: logger}, nil
}

// Route classifies the request and dispatches it. Simple questions are
// answered from the classification itself without a second model call.
// Routing always produces some agent to try; an unknown intent falls back
// to the default agent with a warning, never an error.
func (r *Router) Route(ctx context.Context, req *Request) (Result, error) {
	cls := r.Classify(ctx, req)
	req.Routing = cls

	if cls.Intent == IntentQuestion && cls.Answer != "" {
		return Result{ResponseText: cls.Answer, TokensUsed: cls.Tokens}, nil
	}

	agent, ok := r.agents[cls.Intent]
	if !ok {
		r.logger.Warn("unknown intent, falling back",
			slog.String("intent", cls.Intent),
			slog.String("fallback", r.defaultAgent))
		agent = r.agents[r.defaultAgent]
	}
	return agent.Handle(ctx, req)
}

// Classify runs the single classification model call. On any model or parse
// failure it returns the default intent so the request still reaches an
// agent.
func (r *Router) Classify(ctx context.Context, req *Request) Classification {
	parts := []llm.Part{llm.TextPart(r.buildPrompt(req))}
	if thread := formatThread(req.Thread); thread != "" {
		parts = append(parts, llm.TextPart(thread))
	}
	parts = append(parts, llm.TextPart("\n## User Message\n"+req.Text))

	// Only textual attachment descriptions are included; binary payloads
	// are reserved for the handling agent to keep routing cheap.
	for _, p := range req.Attachments {
		if !p.IsBlob() {
			parts = append(parts, p)
		}
	}

	reply, err := r.model.Generate(ctx, parts)
	if err != nil {
		r.logger.Error("router model call failed", slog.String("error", err.Error()))
		return Classification{Intent: r.defaultAgent}
	}

	var cls Classification
	if !llm.DecodeJSON(reply.Text, &cls) {
		r.logger.Warn("router returned unparseable response, using default",
			slog.String("default", r.defaultAgent))
		return Classification{Intent: r.defaultAgent, Tokens: reply.Tokens}
	}
	cls.Tokens = reply.Tokens
	r.logger.Info("classified intent",
		slog.String("intent", cls.Intent),
		slog.Int("tokens", reply.Tokens))
	return cls
}

// buildPrompt assembles the classification prompt from the live agent
// registry, so routing follows whatever is registered at startup.
func (r *Router) buildPrompt(req *Request) string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("- **%q**: %s", name, r.agents[name].Description()))
	}

	return fmt.Sprintf(routerPrompt,
		strings.Join(lines, "\n"),
		time.Now().Format("2006-01-02 15:04"),
		formatDirectives(req.Vault))
}
