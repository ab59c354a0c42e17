package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/vault"
)

// Query modes selected by the router's classification.
const (
	QueryModeDefault  = "default"
	QueryModeMetadata = "metadata"
	QueryModeGrep     = "grep"
)

const queryMaxResults = 30

// QueryAgent searches the vault and answers questions about filed content.
type QueryAgent struct {
	model  llm.Model
	logger *slog.Logger
}

// NewQueryAgent builds the vault query agent.
func NewQueryAgent(model llm.Model, logger *slog.Logger) *QueryAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryAgent{model: model, logger: logger}
}

func (a *QueryAgent) Name() string { return "vault_query" }

func (a *QueryAgent) Description() string {
	return "Answers questions about previously saved vault content — " +
		"open actions, filed media, project notes, recent captures, etc."
}

// Handle retrieves compact note summaries using the strategy the router
// selected, then asks the model to answer conversationally from them. Raw
// note bodies never reach the model except as grep snippets.
func (a *QueryAgent) Handle(ctx context.Context, req *Request) (Result, error) {
	question := req.Routing.Question
	if question == "" {
		question = req.Text
	}

	var summaries string
	switch req.Routing.QueryMode {
	case QueryModeMetadata:
		summaries = formatEntries(req.Vault.IndexAllNotes(req.Routing.Folders, 0))
	case QueryModeGrep:
		pattern := strings.Join(req.Routing.SearchTerms, " ")
		if pattern == "" {
			pattern = question
		}
		summaries = formatGrepMatches(req.Vault.GrepNotes(pattern, req.Routing.Folders, queryMaxResults, 0))
	default:
		matches := req.Vault.SearchNotes(req.Routing.SearchTerms, req.Routing.Folders, queryMaxResults)
		if len(matches) == 0 && len(req.Routing.SearchTerms) > 0 {
			// Over-narrow keywords from the classifier; retry
			// unfiltered so aggregate questions still work.
			a.logger.Info("no keyword matches, retrying unfiltered",
				slog.Any("keywords", req.Routing.SearchTerms))
			matches = req.Vault.SearchNotes(nil, req.Routing.Folders, queryMaxResults)
		}
		summaries = formatEntries(matches)
	}

	if summaries == "" {
		return Result{ResponseText: "I searched the vault but didn't find any matching notes. " +
			"Try rephrasing your question or being more specific about what you're looking for."}, nil
	}

	reply, err := a.model.Generate(ctx, a.buildPrompt(question, summaries, req))
	if err != nil {
		return Result{}, err
	}
	return Result{ResponseText: reply.Text, TokensUsed: reply.Tokens}, nil
}

func (a *QueryAgent) buildPrompt(question, summaries string, req *Request) []llm.Part {
	system := "You are a helpful assistant answering questions about the user's " +
		"knowledge vault, a personal knowledge base organised into folders: " +
		"Projects, Actions, Media, Reference, Memories, Inbox.\n\n" +
		"Current time: " + time.Now().Format("2006-01-02 15:04") + "\n\n" +
		"Below is a list of matching vault notes with filenames, file-system " +
		"metadata (size in bytes, word count, last modified date), and header " +
		"properties. Use this information to answer the user's question. If " +
		"the metadata is insufficient, say so.\n\n" +
		"Respond in concise, conversational plain text suitable for chat. " +
		"Use bullet points or numbered lists where appropriate. Do NOT return JSON."

	parts := []llm.Part{
		llm.TextPart(system),
		llm.TextPart("\n## Matching Notes\n" + summaries),
		llm.TextPart("\n## Directives\n" + formatDirectives(req.Vault)),
	}
	if thread := formatThread(req.Thread); thread != "" {
		parts = append(parts, llm.TextPart(thread))
	}
	parts = append(parts, llm.TextPart("\n## Question\n"+question))
	return parts
}

// formatEntries renders search results into the compact block the answer
// prompt receives.
func formatEntries(entries []vault.Entry) string {
	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("- **%s** (in %s/)", e.Filename, e.Folder))
		lines = append(lines, fmt.Sprintf("  %d bytes | %d words | modified %s",
			e.SizeBytes, e.WordCount, e.Modified))
		var meta []string
		for _, f := range e.Fields {
			meta = append(meta, f.Key+": "+f.String())
		}
		if len(meta) > 0 {
			lines = append(lines, "  "+strings.Join(meta, " | "))
		}
	}
	return strings.Join(lines, "\n")
}

func formatGrepMatches(matches []vault.GrepMatch) string {
	var lines []string
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("- **%s** (in %s/)", m.Filename, m.Folder))
		for _, s := range m.Snippets {
			lines = append(lines, "  > "+s)
		}
	}
	return strings.Join(lines, "\n")
}
