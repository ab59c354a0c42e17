package vault

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultContextChars is the snippet window when the caller passes zero.
const DefaultContextChars = 80

const maxSnippetsPerFile = 3

// GrepMatch is one matching note with contextual snippets around the first
// occurrences of the pattern.
type GrepMatch struct {
	Filename string
	Folder   string
	Snippets []string
}

// GrepNotes performs a case-insensitive substring search across note bodies.
// For each matching note up to three snippets of contextChars characters
// around the first match positions are returned, with ellipsis markers where
// the snippet is truncated. Purely local; nothing leaves the process.
func (v *Vault) GrepNotes(pattern string, folders []string, maxResults, contextChars int) []GrepMatch {
	if pattern == "" {
		return nil
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if contextChars <= 0 {
		contextChars = DefaultContextChars
	}
	needle := strings.ToLower(pattern)

	var results []GrepMatch
	for _, folder := range validFolders(folders) {
		if folder == CategoryAttachments {
			continue
		}
		dir := filepath.Join(v.store.Root(), folder)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, de := range entries {
			if de.IsDir() || !strings.HasSuffix(de.Name(), ".md") {
				continue
			}
			rel := filepath.Join(folder, de.Name())
			data, err := v.store.Read(rel)
			if err != nil {
				continue
			}

			text := string(data)
			if _, body, ok := ParseHeader(text); ok {
				text = body
			}
			snippets := extractSnippets(text, needle, contextChars)
			if len(snippets) == 0 {
				continue
			}
			results = append(results, GrepMatch{
				Filename: de.Name(),
				Folder:   folder,
				Snippets: snippets,
			})
			if len(results) >= maxResults {
				return results
			}
		}
	}
	return results
}

func extractSnippets(text, lowerNeedle string, contextChars int) []string {
	var snippets []string
	offset := 0
	for len(snippets) < maxSnippetsPerFile {
		idx, matchLen := indexFold(text[offset:], lowerNeedle)
		if idx < 0 {
			break
		}
		pos := offset + idx

		start := pos - contextChars/2
		if start < 0 {
			start = 0
		}
		for start > 0 && !utf8.RuneStart(text[start]) {
			start--
		}
		end := pos + matchLen + contextChars/2
		if end > len(text) {
			end = len(text)
		}
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}

		snippet := strings.ReplaceAll(text[start:end], "\n", " ")
		if start > 0 {
			snippet = "..." + snippet
		}
		if end < len(text) {
			snippet += "..."
		}
		snippets = append(snippets, snippet)

		offset = pos + matchLen
	}
	return snippets
}

// indexFold finds the first case-insensitive occurrence of lowerNeedle in s,
// returning its byte offset and byte length in s. Lowercasing can change a
// rune's byte length (ſ shrinks to s, K from U+212A to k), so offsets found
// in a lowered copy do not transfer back; matching runs on s itself.
func indexFold(s, lowerNeedle string) (pos, length int) {
	for i := range s {
		if n := foldPrefixLen(s[i:], lowerNeedle); n > 0 {
			return i, n
		}
	}
	return -1, 0
}

// foldPrefixLen reports how many leading bytes of s lowercase to exactly
// lowerNeedle, or 0 when s does not start with it.
func foldPrefixLen(s, lowerNeedle string) int {
	var lowered strings.Builder
	consumed := 0
	for consumed < len(s) && lowered.Len() < len(lowerNeedle) {
		r, size := utf8.DecodeRuneInString(s[consumed:])
		lowered.WriteRune(unicode.ToLower(r))
		consumed += size
	}
	if lowered.String() == lowerNeedle {
		return consumed
	}
	return 0
}
