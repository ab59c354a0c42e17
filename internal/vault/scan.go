package vault

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Action is a parsed entry from the Actions folder used by the briefing.
type Action struct {
	Path     string
	Title    string
	Status   string
	DueDate  string
	Priority string
	Project  string
}

// Capture is a recently modified note.
type Capture struct {
	Path   string
	Folder string
	Title  string
}

// MediaItem is an unconsumed media note.
type MediaItem struct {
	Path  string
	Title string
	Type  string
}

// ScanActions reads every action note's header. Notes without a parseable
// header are skipped; the scan never fails as a whole.
func (v *Vault) ScanActions() []Action {
	var out []Action
	for _, rel := range v.listMarkdown(CategoryActions) {
		hdr := v.readHeader(rel)
		if hdr == nil {
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(rel), ".md")
		out = append(out, Action{
			Path:     rel,
			Title:    getOr(hdr, "title", stem),
			Status:   getOr(hdr, "status", "todo"),
			DueDate:  getOr(hdr, "due_date", ""),
			Priority: getOr(hdr, "priority", "medium"),
			Project:  getOr(hdr, "project", ""),
		})
	}
	return out
}

// ScanRecent returns notes modified within the last given duration, across
// every category.
func (v *Vault) ScanRecent(within time.Duration) []Capture {
	cutoff := time.Now().Add(-within)
	var out []Capture
	for _, folder := range CategoryOrder {
		for _, rel := range v.listMarkdown(folder) {
			info, err := os.Stat(filepath.Join(v.store.Root(), rel))
			if err != nil || !info.ModTime().After(cutoff) {
				continue
			}
			stem := strings.TrimSuffix(filepath.Base(rel), ".md")
			title := stem
			if hdr := v.readHeader(rel); hdr != nil {
				title = getOr(hdr, "title", stem)
			}
			out = append(out, Capture{Path: rel, Folder: folder, Title: title})
		}
	}
	return out
}

// ScanMediaBacklog returns media notes still marked to consume.
func (v *Vault) ScanMediaBacklog() []MediaItem {
	var out []MediaItem
	for _, rel := range v.listMarkdown(CategoryMedia) {
		hdr := v.readHeader(rel)
		if hdr == nil {
			continue
		}
		if status, _ := hdr.Get("status"); status != "to_consume" {
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(rel), ".md")
		out = append(out, MediaItem{
			Path:  rel,
			Title: getOr(hdr, "media_title", stem),
			Type:  getOr(hdr, "media_type", "unknown"),
		})
	}
	return out
}

// listMarkdown returns the vault-relative paths of .md files directly inside
// a category folder. Category folders are flat; there is no recursion.
func (v *Vault) listMarkdown(folder string) []string {
	dir := filepath.Join(v.store.Root(), folder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".md") {
			continue
		}
		out = append(out, filepath.Join(folder, de.Name()))
	}
	return out
}

func getOr(hdr *Header, key, fallback string) string {
	if val, ok := hdr.Get(key); ok && val != "" {
		return val
	}
	return fallback
}
