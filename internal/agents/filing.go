package agents

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/vault"
)

const filingPrompt = `You are a filing assistant for a personal knowledge vault.
Clean up the user's input and file it into the right category folder.

Categories:
- Projects: project documentation, snippets, whiteboard photos, ideas
- Actions: tasks and to-dos. Header fields: action_item, status (todo), priority (1 - Urgent / 2 - High / 3 - Medium / 4 - Low), due_date (YYYY-MM-DD), project
- Media: things to watch/read/listen to. Header fields: media_title, media_type (book/film/tv/podcast/article/video), creator, url, status (to_consume)
- Reference: how-tos and useful information. Header fields: topic, related_projects
- Memories: personal memories. Header fields: people, location, memory_date
- Inbox: anything ambiguous

Return a JSON object:
- "folder": the category folder name
- "slug": a short-hyphenated-filename-slug
- "content": the full note including a metadata header delimited by --- lines
  (always include title, category, source: slack, date, tags) followed by a
  cleaned-up Markdown body. Link saved attachments with the wiki syntax you
  were given.

If the input is just a question that needs no filing, reply in plain text instead of JSON.`

// filedResponse is the structured filing outcome expected from the model.
type filedResponse struct {
	Folder  string `json:"folder"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

// FilingAgent archives incoming content into the appropriate vault category.
type FilingAgent struct {
	model    llm.Model
	vault    *vault.Vault
	logger   *slog.Logger
	projects []string
}

// NewFilingAgent builds the filing agent. existingProjects seeds the prompt
// with known project names; call RefreshProjects after filing to pick up new
// ones.
func NewFilingAgent(model llm.Model, v *vault.Vault, logger *slog.Logger) *FilingAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilingAgent{model: model, vault: v, logger: logger, projects: v.ListProjects()}
}

func (a *FilingAgent) Name() string { return "file" }

func (a *FilingAgent) Description() string {
	return "Archives content into the knowledge vault — notes, links, images, " +
		"tasks, bookmarks, reference material, or any content to save."
}

// Handle classifies and cleans up the content, then writes it to the vault.
// When the model returns no parseable structured payload the raw text is
// treated as a direct answer instead of a filing outcome.
func (a *FilingAgent) Handle(ctx context.Context, req *Request) (Result, error) {
	reply, err := a.model.Generate(ctx, a.buildPrompt(req))
	if err != nil {
		return Result{}, err
	}

	var filed filedResponse
	if !llm.DecodeJSON(reply.Text, &filed) {
		return Result{ResponseText: reply.Text, TokensUsed: reply.Tokens}, nil
	}
	if filed.Folder == "" || filed.Content == "" {
		a.logger.Warn("filing returned incomplete payload")
		return Result{ResponseText: reply.Text, TokensUsed: reply.Tokens}, nil
	}

	if filed.Slug == "" {
		filed.Slug = time.Now().Format("capture-20060102-1504")
	}

	// The note carries the cost of its own generation.
	filed.Content = injectTokens(filed.Content, reply.Tokens)

	rel, err := req.Vault.SaveNote(filed.Folder, filed.Slug, filed.Content)
	if err != nil {
		return Result{}, err
	}

	a.RefreshProjects()
	filename := filepath.Base(rel)
	folder := filepath.Dir(rel)
	return Result{
		ResponseText: fmt.Sprintf("📂 Filed to `%s/` as `%s` (%d tokens)", folder, filename, reply.Tokens),
		FiledPath:    rel,
		TokensUsed:   reply.Tokens,
	}, nil
}

// RefreshProjects re-scans the vault for project names.
func (a *FilingAgent) RefreshProjects() {
	a.projects = a.vault.ListProjects()
}

func (a *FilingAgent) buildPrompt(req *Request) []llm.Part {
	contextLines := []string{"Current time: " + time.Now().Format("2006-01-02T15:04:05")}
	if len(a.projects) > 0 {
		contextLines = append(contextLines, fmt.Sprintf(
			"Existing projects in the vault: [%s]. If the input relates to one, set project to its name.",
			strings.Join(a.projects, ", ")))
	}

	parts := []llm.Part{
		llm.TextPart(filingPrompt),
		llm.TextPart("\n## Context\n" + strings.Join(contextLines, "\n")),
	}
	if thread := formatThread(req.Thread); thread != "" {
		parts = append(parts, llm.TextPart(thread))
	}
	parts = append(parts, llm.TextPart("\n## Directives\n"+formatDirectives(req.Vault)))
	parts = append(parts, llm.TextPart("\n## Input\n"+req.Text))
	parts = append(parts, req.Attachments...)
	return parts
}

// injectTokens appends a tokens_used field to the note's header, creating a
// minimal header when the model produced none.
func injectTokens(content string, tokens int) string {
	hdr, body, ok := vault.ParseHeader(content)
	if !ok {
		return fmt.Sprintf("---\ntokens_used: %d\n---\n\n%s", tokens, content)
	}
	hdr.Set("tokens_used", fmt.Sprintf("%d", tokens))
	return vault.Serialize(hdr, body)
}
