package vault

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxResults caps search results when the caller passes zero.
const DefaultMaxResults = 30

// estBytesPerWord is the fixed heuristic used by IndexAllNotes instead of
// reading every file. Known accuracy tradeoff for whole-vault statistics.
const estBytesPerWord = 6

// Entry is an ephemeral search/index result: a note plus filesystem
// metadata. Never persisted, recomputed per query.
type Entry struct {
	Filename  string
	Folder    string
	Fields    []Field
	SizeBytes int64
	Modified  string // "2006-01-02 15:04"
	WordCount int
}

// Rel returns the entry's path relative to the vault root.
func (e Entry) Rel() string { return filepath.Join(e.Folder, e.Filename) }

// SearchNotes searches notes and attachments by keyword and folder. A file
// matches when keywords is empty or any keyword is a case-insensitive
// substring of the filename stem or of any header field value. Matches are
// enriched with size, modified time, and an exact word count (attachments
// count zero). Collection stops at maxResults; ordering is directory
// iteration order, not relevance.
func (v *Vault) SearchNotes(keywords, folders []string, maxResults int) []Entry {
	return v.scanEntries(keywords, folders, maxResults, true)
}

// IndexAllNotes is SearchNotes without a keyword filter and with word counts
// estimated from file size instead of read from content. Meant for
// aggregate/statistical questions over the whole vault where exactness does
// not matter.
func (v *Vault) IndexAllNotes(folders []string, maxResults int) []Entry {
	return v.scanEntries(nil, folders, maxResults, false)
}

func (v *Vault) scanEntries(keywords, folders []string, maxResults int, exactWords bool) []Entry {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	searchFolders := validFolders(folders)

	lower := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			lower = append(lower, strings.ToLower(k))
		}
	}

	var results []Entry
	skipped := 0

	for _, folder := range searchFolders {
		dir := filepath.Join(v.store.Root(), folder)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, de := range entries {
			if de.IsDir() {
				continue
			}
			name := de.Name()
			isMD := strings.HasSuffix(name, ".md")
			// Attachments hold arbitrary binaries; every other folder
			// only contributes Markdown notes.
			if folder != CategoryAttachments && !isMD {
				continue
			}

			rel := filepath.Join(folder, name)
			var hdr *Header
			if isMD {
				hdr = v.readHeader(rel)
			}

			if len(lower) > 0 && !matches(lower, name, hdr) {
				continue
			}

			info, err := de.Info()
			if err != nil {
				skipped++
				continue
			}

			words := 0
			if isMD {
				if exactWords {
					if data, err := v.store.Read(rel); err == nil {
						words = len(strings.Fields(string(data)))
					} else {
						skipped++
					}
				} else {
					words = int(info.Size() / estBytesPerWord)
				}
			}

			var fields []Field
			if hdr != nil {
				fields = hdr.Fields()
			}
			results = append(results, Entry{
				Filename:  name,
				Folder:    folder,
				Fields:    fields,
				SizeBytes: info.Size(),
				Modified:  info.ModTime().Format("2006-01-02 15:04"),
				WordCount: words,
			})
			if len(results) >= maxResults {
				if skipped > 0 {
					v.logger.Warn("scan skipped unreadable files", slog.Int("skipped", skipped))
				}
				return results
			}
		}
	}
	if skipped > 0 {
		v.logger.Warn("scan skipped unreadable files", slog.Int("skipped", skipped))
	}
	return results
}

// EntryFor builds a single Entry for a known relative path, with an exact
// word count. Returns false when the file cannot be statted.
func (v *Vault) EntryFor(rel string) (Entry, bool) {
	abs, err := v.store.Resolve(rel)
	if err != nil {
		return Entry{}, false
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Entry{}, false
	}

	words := 0
	var fields []Field
	if strings.HasSuffix(rel, ".md") {
		if hdr := v.readHeader(rel); hdr != nil {
			fields = hdr.Fields()
		}
		if data, err := v.store.Read(rel); err == nil {
			words = len(strings.Fields(string(data)))
		}
	}
	return Entry{
		Filename:  filepath.Base(rel),
		Folder:    filepath.Dir(rel),
		Fields:    fields,
		SizeBytes: info.Size(),
		Modified:  info.ModTime().Format("2006-01-02 15:04"),
		WordCount: words,
	}, true
}

func matches(lowerKeywords []string, filename string, hdr *Header) bool {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	searchable := strings.ToLower(stem)
	if hdr != nil {
		for _, f := range hdr.Fields() {
			searchable += " " + strings.ToLower(f.String())
		}
	}
	for _, kw := range lowerKeywords {
		if strings.Contains(searchable, kw) {
			return true
		}
	}
	return false
}

// validFolders filters the requested folders against the closed category
// set, defaulting to every category (Attachments included).
func validFolders(folders []string) []string {
	if len(folders) == 0 {
		return CategoryOrder
	}
	var out []string
	for _, f := range folders {
		if ValidCategory(f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return CategoryOrder
	}
	return out
}
