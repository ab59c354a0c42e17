package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/vault"
)

const (
	// MaxBulkEdits bounds a single edit instruction. Plans above the cap
	// are rejected wholesale rather than partially applied.
	MaxBulkEdits = 10

	editCandidateCap = 50
)

const editPlannerPrompt = `You are planning metadata edits for a personal knowledge vault of Markdown notes. Each note starts with a header block between "---" lines holding key: value properties.

Current time: %s

The user asked for this change:
%s

## Candidate Notes
Each candidate lists its filename, folder, and current header properties.
%s

## Your Task
Decide which candidates the request applies to and what header changes each needs. Respond with ONLY a JSON object:

{
  "edits": [
    {
      "filename": "<exact candidate filename>",
      "folder": "<exact candidate folder>",
      "frontmatter_updates": {"key": "new value", "other_key": null}
    }
  ],
  "summary": "<one sentence describing what you changed and why>"
}

Rules:
- Only include notes that genuinely match the request. An empty edits list is a valid answer.
- A null value deletes that key. A list value replaces the key with a list.
- Never invent filenames. Use candidates exactly as given.
- Dates use YYYY-MM-DD. Priority values are one of: "1 - Urgent", "2 - High", "3 - Medium", "4 - Low".`

type editPlan struct {
	Edits []struct {
		Filename string         `json:"filename"`
		Folder   string         `json:"folder"`
		Updates  orderedUpdates `json:"frontmatter_updates"`
	} `json:"edits"`
	Summary string `json:"summary"`
}

// orderedUpdates decodes a JSON object while remembering the order its
// keys appeared in, so brand-new header fields land in the note in the
// same order the planner wrote them.
type orderedUpdates struct {
	keys   []string
	values map[string]any
}

func (u *orderedUpdates) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("frontmatter_updates: expected object, got %v", tok)
	}
	u.keys = nil
	u.values = make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("frontmatter_updates: bad key %v", keyTok)
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return err
		}
		if _, seen := u.values[key]; !seen {
			u.keys = append(u.keys, key)
		}
		u.values[key] = val
	}
	_, err = dec.Token()
	return err
}

type editOutcome struct {
	rel     string
	changed map[string]string
	err     error
}

// EditAgent applies guarded bulk metadata edits planned by the model.
type EditAgent struct {
	model  llm.Model
	logger *slog.Logger
}

// NewEditAgent builds the vault edit agent.
func NewEditAgent(model llm.Model, logger *slog.Logger) *EditAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &EditAgent{model: model, logger: logger}
}

func (a *EditAgent) Name() string { return "vault_edit" }

func (a *EditAgent) Description() string {
	return "Updates header properties on existing notes — marking actions done, " +
		"changing priorities, setting due dates, retagging."
}

func (a *EditAgent) Handle(ctx context.Context, req *Request) (Result, error) {
	candidates := a.findCandidates(req)
	if len(candidates) == 0 {
		return Result{ResponseText: "I couldn't find any notes matching that edit request. " +
			"Could you name the note more specifically?"}, nil
	}

	plan, tokens, err := a.planEdits(ctx, req, candidates)
	if err != nil {
		return Result{}, err
	}
	if plan == nil {
		return Result{ResponseText: "I couldn't work out a concrete edit from that. " +
			"Could you rephrase what you want changed?", TokensUsed: tokens}, nil
	}
	if len(plan.Edits) == 0 {
		return Result{
			ResponseText: "I looked at the matching notes but none of them needed the change you described.",
			TokensUsed:   tokens,
		}, nil
	}
	if len(plan.Edits) > MaxBulkEdits {
		// Reject the whole plan. Applying a prefix would leave the
		// vault in a state the user never asked for.
		return Result{
			ResponseText: fmt.Sprintf("That would change %d notes, which is over my safety limit of %d "+
				"per request. No notes were modified. Please narrow the request or split it up.",
				len(plan.Edits), MaxBulkEdits),
			TokensUsed: tokens,
		}, nil
	}

	var applied, missing, failed []editOutcome
	for _, e := range plan.Edits {
		rel := req.Vault.FindNote(e.Filename, e.Folder)
		if rel == "" {
			missing = append(missing, editOutcome{rel: filepath.Join(e.Folder, e.Filename)})
			continue
		}
		changed, err := req.Vault.UpdateFieldsOrdered(rel, e.Updates.keys, e.Updates.values)
		if err != nil {
			a.logger.Error("edit failed", slog.String("note", rel), slog.Any("error", err))
			failed = append(failed, editOutcome{rel: rel, err: err})
			continue
		}
		applied = append(applied, editOutcome{rel: rel, changed: changed})
	}

	return Result{
		ResponseText: formatEditResults(plan.Summary, applied, missing, failed),
		TokensUsed:   tokens,
	}, nil
}

// findCandidates resolves the router's explicit targets first, falling back
// to keyword search across the requested folders.
func (a *EditAgent) findCandidates(req *Request) []vault.Entry {
	if len(req.Routing.TargetFiles) > 0 {
		var out []vault.Entry
		seen := map[string]bool{}
		for _, name := range req.Routing.TargetFiles {
			rel := req.Vault.FindNote(name, "")
			if rel == "" || seen[rel] {
				continue
			}
			seen[rel] = true
			if e, ok := req.Vault.EntryFor(rel); ok {
				out = append(out, e)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	matches := req.Vault.SearchNotes(req.Routing.SearchTerms, req.Routing.Folders, editCandidateCap)
	if len(matches) == 0 && len(req.Routing.SearchTerms) > 0 {
		matches = req.Vault.SearchNotes(nil, req.Routing.Folders, editCandidateCap)
	}
	return matches
}

func (a *EditAgent) planEdits(ctx context.Context, req *Request, candidates []vault.Entry) (*editPlan, int, error) {
	instruction := req.Routing.EditDescription
	if instruction == "" {
		instruction = req.Text
	}
	prompt := fmt.Sprintf(editPlannerPrompt,
		time.Now().Format("2006-01-02 15:04"),
		instruction,
		formatEntries(candidates))

	parts := []llm.Part{llm.TextPart(prompt)}
	// Follow-ups like "set all those to done" only make sense with the
	// thread in view, and directives shape how edits are phrased.
	if thread := formatThread(req.Thread); thread != "" {
		parts = append(parts, llm.TextPart(thread))
	}
	parts = append(parts, llm.TextPart("\n## Directives\n"+formatDirectives(req.Vault)))

	reply, err := a.model.Generate(ctx, parts)
	if err != nil {
		return nil, 0, err
	}

	var plan editPlan
	if !llm.DecodeJSON(reply.Text, &plan) {
		a.logger.Warn("edit plan was not valid JSON", slog.String("reply", clipText(reply.Text, 200)))
		return nil, reply.Tokens, nil
	}
	return &plan, reply.Tokens, nil
}

func formatEditResults(summary string, applied, missing, failed []editOutcome) string {
	var b strings.Builder
	b.WriteString("✏️ ")
	if summary != "" {
		b.WriteString(summary)
	} else {
		b.WriteString("Edit complete.")
	}

	if len(applied) > 0 {
		fmt.Fprintf(&b, "\n\nUpdated %d note(s):", len(applied))
		for _, o := range applied {
			fmt.Fprintf(&b, "\n• `%s`", o.rel)
			if len(o.changed) == 0 {
				b.WriteString(" (already up to date)")
				continue
			}
			keys := make([]string, 0, len(o.changed))
			for k := range o.changed {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			var pairs []string
			for _, k := range keys {
				pairs = append(pairs, k+" → "+o.changed[k])
			}
			b.WriteString(": " + strings.Join(pairs, ", "))
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "\n\nCouldn't find %d note(s):", len(missing))
		for _, o := range missing {
			fmt.Fprintf(&b, "\n• `%s`", o.rel)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n\nFailed to update %d note(s):", len(failed))
		for _, o := range failed {
			fmt.Fprintf(&b, "\n• `%s`: %v", o.rel, o.err)
		}
	}
	return b.String()
}

func clipText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
