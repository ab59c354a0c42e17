package maintain

import (
	"log/slog"
	"strings"

	"github.com/rowanhart/curator/internal/vault"
)

// priorityMigrate maps legacy bare-word priorities to the prefixed enum
// whose numeric prefix keeps vault views sorted correctly.
var priorityMigrate = map[string]string{
	"urgent": "1 - Urgent",
	"high":   "2 - High",
	"medium": "3 - Medium",
	"low":    "4 - Low",
}

// FixHeaders brings every note header up to current standards: the category
// field matches the folder the note lives in, source is slack, missing
// category-specific fields get defaults, legacy priorities become the
// prefixed enum, and tags are kebab-cased. Returns the number of files
// modified. Notes without a parseable header are left alone.
func (r *Runner) FixHeaders(dryRun bool) (int, error) {
	store := r.vault.Store()
	modified := 0

	for _, folder := range contentFolders() {
		metas, err := store.List(folder)
		if err != nil {
			continue
		}
		var paths []string
		for _, m := range metas {
			paths = append(paths, m.Path)
		}
		defaults := vault.CategoryDefaults[folder]
		defaultOrder := vault.CategoryDefaultOrder[folder]

		for _, rel := range sortedPaths(paths) {
			data, err := r.vault.Read(rel)
			if err != nil {
				continue
			}
			hdr, body, ok := vault.ParseHeader(string(data))
			if !ok {
				continue
			}

			changed := false

			if cat, _ := hdr.Get("category"); cat != folder {
				r.logger.Info("fixing category",
					slog.String("path", rel),
					slog.String("from", cat), slog.String("to", folder))
				hdr.Set("category", folder)
				changed = true
			}

			if src, _ := hdr.Get("source"); src != "slack" {
				hdr.Set("source", "slack")
				changed = true
			}

			for _, key := range defaultOrder {
				if _, ok := hdr.Get(key); ok {
					continue
				}
				if _, ok := hdr.GetList(key); ok {
					continue
				}
				hdr.Set(key, defaults[key])
				changed = true
				r.logger.Info("backfilled field",
					slog.String("path", rel), slog.String("key", key))
			}

			if raw, ok := hdr.Get("priority"); ok {
				if canonical, found := priorityMigrate[strings.ToLower(strings.TrimSpace(raw))]; found {
					hdr.Set("priority", canonical)
					changed = true
					r.logger.Info("migrated priority",
						slog.String("path", rel),
						slog.String("from", raw), slog.String("to", canonical))
				}
			}

			if tags, ok := hdr.GetList("tags"); ok {
				kebabed := make([]string, len(tags))
				dirty := false
				for i, t := range tags {
					k := strings.ReplaceAll(strings.TrimSpace(t), " ", "-")
					kebabed[i] = k
					if k != t {
						dirty = true
					}
				}
				if dirty {
					hdr.SetList("tags", kebabed)
					changed = true
				}
			}

			if !changed {
				continue
			}
			modified++
			if dryRun {
				r.logger.Info("would fix header", slog.String("path", rel))
				continue
			}
			if err := store.Write(rel, []byte(vault.Serialize(hdr, body))); err != nil {
				r.logger.Error("header fix failed", slog.String("path", rel), slog.Any("error", err))
				modified--
			}
		}
	}
	return modified, nil
}
