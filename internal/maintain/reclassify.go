package maintain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/vault"
)

const reclassifyBodyLimit = 500

const reclassifyPrompt = `You are reviewing an existing note from a personal knowledge vault. Given its current header properties and body, return a JSON object with corrected or improved values.

ONLY return fields that should CHANGE. Do not include fields that are already correct. If nothing needs changing, return an empty JSON object {}.

Possible changes:
- category: move to a better folder (Projects/Actions/Media/Reference/Memories/Inbox)
- tags: improved or expanded tag list (list of strings)
- any category-specific field (see the schemas below)

Category field schemas:
- Projects: project_name, priority (1 - Urgent / 2 - High / 3 - Medium / 4 - Low)
- Actions: action_item, due_date, project (wiki-link), status, priority
- Media: media_title, media_type (book/film/tv/podcast/article/video), creator, url, status
- Reference: topic, related_projects (list of wiki-links)
- Memories: people (list of names), location, memory_date

Return ONLY raw JSON.

## Current header
%s

## Note body (first %d chars)
%s`

// ReclassifyNotes asks the model to re-evaluate every note's metadata and
// applies any returned changes, moving notes whose category changed into the
// new folder. Per-file model failures are logged and skipped; the pass never
// fails as a whole. Returns the number of files modified.
func (r *Runner) ReclassifyNotes(ctx context.Context, dryRun bool) (int, error) {
	store := r.vault.Store()
	modified := 0
	totalTokens := 0

	for _, folder := range contentFolders() {
		metas, err := store.List(folder)
		if err != nil {
			continue
		}
		var paths []string
		for _, m := range metas {
			paths = append(paths, m.Path)
		}

		for _, rel := range sortedPaths(paths) {
			data, err := r.vault.Read(rel)
			if err != nil {
				continue
			}
			hdr, body, ok := vault.ParseHeader(string(data))
			if !ok {
				continue
			}

			prompt := fmt.Sprintf(reclassifyPrompt,
				renderHeader(hdr), reclassifyBodyLimit, clipBody(body))
			reply, err := r.model.Generate(ctx, []llm.Part{llm.TextPart(prompt)})
			if err != nil {
				r.logger.Error("reclassify model call failed",
					slog.String("path", rel), slog.Any("error", err))
				continue
			}
			totalTokens += reply.Tokens

			var changes map[string]any
			if !llm.DecodeJSON(reply.Text, &changes) || len(changes) == 0 {
				continue
			}

			newFolder, _ := changes["category"].(string)
			delete(changes, "category")
			moving := newFolder != "" && newFolder != folder && vault.ValidCategory(newFolder)

			if moving {
				// Rename replaces an existing destination silently, and a
				// same-named note in the target folder must never be lost.
				dest := filepath.Join(newFolder, filepath.Base(rel))
				if _, err := store.Stat(dest); err == nil {
					r.logger.Warn("reclassify destination occupied, skipping move",
						slog.String("path", rel), slog.String("dest", dest))
					moving = false
				}
			}

			if len(changes) == 0 && !moving {
				continue
			}
			modified++

			if dryRun {
				r.logger.Info("would reclassify",
					slog.String("path", rel),
					slog.String("new_folder", newFolder),
					slog.Any("changes", changes))
				continue
			}

			if moving {
				changes["category"] = newFolder
			}
			if _, err := r.vault.UpdateFields(rel, changes); err != nil {
				r.logger.Error("reclassify update failed",
					slog.String("path", rel), slog.Any("error", err))
				modified--
				continue
			}
			if moving {
				dest := filepath.Join(newFolder, filepath.Base(rel))
				if err := store.Move(rel, dest); err != nil {
					r.logger.Error("reclassify move failed",
						slog.String("path", rel), slog.Any("error", err))
					continue
				}
				r.logger.Info("reclassified",
					slog.String("path", rel),
					slog.String("from", folder), slog.String("to", newFolder))
			} else {
				r.logger.Info("updated metadata",
					slog.String("path", rel), slog.Any("changes", changes))
			}
		}
	}

	r.logger.Info("reclassify complete", slog.Int("tokens", totalTokens))
	return modified, nil
}

func renderHeader(hdr *vault.Header) string {
	var b strings.Builder
	for _, f := range hdr.Fields() {
		b.WriteString(f.Key + ": " + f.String() + "\n")
	}
	return b.String()
}

func clipBody(body string) string {
	if len(body) <= reclassifyBodyLimit {
		return body
	}
	return body[:reclassifyBodyLimit]
}
