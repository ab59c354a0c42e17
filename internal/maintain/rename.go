package maintain

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rowanhart/curator/internal/vault"
)

// unsafeChars are stripped when deriving a filename from a title.
var unsafeChars = regexp.MustCompile(`[:/\\?*"<>|]`)

// RenameToTitleCase renames old-style hyphenated-lowercase note files to
// Title Case, preferring the header title over a mechanical slug conversion.
// Returns the old-stem to new-stem map consumed by UpdateWikiLinks.
func (r *Runner) RenameToTitleCase(dryRun bool) (map[string]string, error) {
	store := r.vault.Store()
	renames := make(map[string]string)

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
			oldStem := strings.TrimSuffix(filepath.Base(rel), ".md")
			if !isHyphenatedSlug(oldStem) {
				continue
			}

			newStem := slugToTitle(oldStem)
			if data, err := r.vault.Read(rel); err == nil {
				if hdr, _, ok := vault.ParseHeader(string(data)); ok {
					if title, ok := hdr.Get("title"); ok && title != "" {
						newStem = titleToFilename(title)
					}
				}
			}
			if newStem == oldStem || newStem == "" {
				continue
			}

			// Deduplicate against existing files in the folder.
			dest := filepath.Join(folder, newStem+".md")
			for counter := 1; ; counter++ {
				if _, err := store.Stat(dest); err != nil {
					break
				}
				dest = filepath.Join(folder, fmt.Sprintf("%s %d.md", newStem, counter))
			}

			renames[oldStem] = strings.TrimSuffix(filepath.Base(dest), ".md")
			if dryRun {
				r.logger.Info("would rename",
					slog.String("from", rel), slog.String("to", dest))
				continue
			}
			if err := store.Move(rel, dest); err != nil {
				r.logger.Error("rename failed",
					slog.String("from", rel), slog.Any("error", err))
				delete(renames, oldStem)
				continue
			}
			r.logger.Info("renamed", slog.String("from", rel), slog.String("to", dest))
		}
	}
	return renames, nil
}

// UpdateWikiLinks rewrites [[old-stem]] and ![[old-stem]] references across
// every note, preserving display text after a pipe. Returns the number of
// files modified.
func (r *Runner) UpdateWikiLinks(renames map[string]string, dryRun bool) (int, error) {
	if len(renames) == 0 {
		return 0, nil
	}

	stems := make([]string, 0, len(renames))
	for old := range renames {
		stems = append(stems, regexp.QuoteMeta(old))
	}
	pattern := regexp.MustCompile(`(!?\[\[)(` + strings.Join(stems, "|") + `)((?:\|[^\]]*)?)\]\]`)

	store := r.vault.Store()
	metas, err := store.List("")
	if err != nil {
		return 0, err
	}

	modified := 0
	for _, m := range metas {
		if strings.HasPrefix(m.Path, vault.SystemDir+string(filepath.Separator)) {
			continue
		}
		data, err := r.vault.Read(m.Path)
		if err != nil {
			continue
		}
		text := string(data)
		updated := pattern.ReplaceAllStringFunc(text, func(match string) string {
			groups := pattern.FindStringSubmatch(match)
			return groups[1] + renames[groups[2]] + groups[3] + "]]"
		})
		if updated == text {
			continue
		}
		modified++
		if dryRun {
			r.logger.Info("would update links", slog.String("path", m.Path))
			continue
		}
		if err := store.Write(m.Path, []byte(updated)); err != nil {
			r.logger.Error("link update failed", slog.String("path", m.Path), slog.Any("error", err))
			modified--
			continue
		}
		r.logger.Info("updated links", slog.String("path", m.Path))
	}
	return modified, nil
}

// slugToTitle converts "fix-garden-fence" to "Fix Garden Fence".
func slugToTitle(stem string) string {
	words := strings.Split(stem, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// titleToFilename strips characters unsafe for filenames and collapses
// whitespace.
func titleToFilename(title string) string {
	clean := unsafeChars.ReplaceAllString(title, "")
	return strings.Join(strings.Fields(clean), " ")
}

// isHyphenatedSlug reports whether a stem is old-style hyphenated lowercase.
func isHyphenatedSlug(stem string) bool {
	return stem == strings.ToLower(stem) &&
		strings.Contains(stem, "-") &&
		!strings.HasPrefix(stem, "_")
}
