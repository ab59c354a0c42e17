// Package vault owns the on-disk knowledge base: a flat, folder-categorised
// tree of Markdown notes with ordered key/value metadata headers. All
// filesystem access goes through the storage provider; nothing else writes
// the tree.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rowanhart/curator/internal/apperr"
	"github.com/rowanhart/curator/internal/storage"
)

// SystemDir holds internal state (directives file, generated dashboards).
// It is skipped by searches and maintenance passes.
const SystemDir = "_system"

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Vault manages the knowledge base rooted at a single directory.
type Vault struct {
	store  storage.Provider
	logger *slog.Logger
}

// Open initialises the vault at root. The parent directory must already
// exist: the vault is expected to live on a mounted remote filesystem, and
// a missing parent means the mount is not available, which is fatal. The
// root itself and all category folders are created if absent; the call is
// idempotent and safe on every process start.
func Open(root string, logger *slog.Logger) (*Vault, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	if _, err := os.Stat(filepath.Dir(abs)); err != nil {
		return nil, fmt.Errorf("vault: mount not available at %s: %w", filepath.Dir(abs), err)
	}
	if _, err := os.Stat(abs); err != nil {
		logger.Warn("vault root not found, creating", slog.String("path", abs))
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("vault: create root: %w", err)
		}
	}

	store, err := storage.NewFS(abs)
	if err != nil {
		return nil, err
	}
	v := &Vault{store: store, logger: logger}

	for _, folder := range CategoryOrder {
		full := filepath.Join(abs, folder)
		if _, err := os.Stat(full); err != nil {
			if err := os.MkdirAll(full, 0o755); err != nil {
				return nil, fmt.Errorf("vault: create category %s: %w", folder, err)
			}
			logger.Info("created category folder", slog.String("folder", folder))
		}
	}
	if err := os.MkdirAll(filepath.Join(abs, SystemDir), 0o755); err != nil {
		return nil, fmt.Errorf("vault: create system dir: %w", err)
	}
	if err := v.ensureDashboards(); err != nil {
		return nil, err
	}

	logger.Info("vault initialised", slog.String("path", abs))
	return v, nil
}

// Root returns the absolute vault root path.
func (v *Vault) Root() string { return v.store.Root() }

// Store exposes the underlying provider for read-only collaborators
// (index sync, maintenance).
func (v *Vault) Store() storage.Provider { return v.store }

// SaveNote writes a Markdown note into a category folder. An unknown folder
// falls back to the Inbox with a logged warning. On filename collision the
// name is retried with an incrementing suffix; existence is re-checked at
// each attempt by creating the file exclusively, so concurrent requests
// never overwrite each other. Returns the path relative to the vault root.
func (v *Vault) SaveNote(folder, slug, content string) (string, error) {
	if !ValidCategory(folder) {
		v.logger.Warn("invalid folder, falling back",
			slog.String("folder", folder),
			slog.String("fallback", FallbackCategory))
		folder = FallbackCategory
	}

	for counter := 0; ; counter++ {
		name := slug + ".md"
		if counter > 0 {
			name = fmt.Sprintf("%s-%d.md", slug, counter)
		}
		rel := filepath.Join(folder, name)
		err := v.store.WriteNew(rel, []byte(content))
		if err == nil {
			v.logger.Info("saved note", slog.String("path", rel))
			return rel, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
}

// SaveAttachment stores raw bytes in the Attachments folder under a
// timestamped, sanitised name and returns the generated filename for
// embedding as a link. A name that sanitises to nothing gets a random one.
func (v *Vault) SaveAttachment(originalName string, data []byte) (string, error) {
	clean := safeNameRe.ReplaceAllString(originalName, "")
	if strings.Trim(clean, "._-") == "" {
		clean = uuid.NewString()
	}
	name := time.Now().Format("20060102_150405") + "_" + clean
	rel := filepath.Join(CategoryAttachments, name)
	if err := v.store.Write(rel, data); err != nil {
		return "", err
	}
	v.logger.Info("saved attachment", slog.String("name", name))
	return name, nil
}

// FindNote resolves a note by filename, optionally within a single folder.
// The resolved path must remain inside the vault root; anything that escapes
// (parent-directory segments and the like) returns "" rather than an error,
// because the inputs come from LLM-interpreted user text. With no folder the
// categories are tried in fixed order and the first existing match wins.
// A filename without an extension gets ".md" appended.
func (v *Vault) FindNote(filename, folder string) string {
	if filepath.Ext(filename) == "" {
		filename += ".md"
	}

	try := func(fold string) string {
		rel := filepath.Join(fold, filename)
		abs, err := v.store.Resolve(rel)
		if err != nil {
			return ""
		}
		// The resolved path must still sit inside a category folder;
		// Resolve guarantees the root but a cleaned path could land
		// directly in it.
		relClean, err := filepath.Rel(v.store.Root(), abs)
		if err != nil || !strings.HasPrefix(relClean, fold+string(os.PathSeparator)) {
			return ""
		}
		if _, err := os.Stat(abs); err != nil {
			return ""
		}
		return relClean
	}

	if folder != "" {
		if !ValidCategory(folder) {
			return ""
		}
		return try(folder)
	}
	for _, fold := range CategoryOrder {
		if p := try(fold); p != "" {
			return p
		}
	}
	return ""
}

// Read returns the raw content of a note by vault-relative path.
func (v *Vault) Read(rel string) ([]byte, error) {
	data, err := v.store.Read(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("vault: %s: %w", rel, apperr.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// ListProjects scans the Projects folder for existing project names,
// derived from subfolder names and note filename stems.
func (v *Vault) ListProjects() []string {
	dir := filepath.Join(v.store.Root(), CategoryProjects)
	entries, err := os.ReadDir(dir)
	if err != nil {
		v.logger.Warn("project scan failed", slog.String("error", err.Error()))
		return nil
	}

	seen := make(map[string]struct{})
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case e.IsDir():
			seen[name] = struct{}{}
		case strings.HasSuffix(name, ".md"):
			seen[strings.TrimSuffix(name, ".md")] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// readHeader parses the header of a note file, returning nil when the file
// is unreadable or has no valid header. Best-effort for scans.
func (v *Vault) readHeader(rel string) *Header {
	data, err := v.store.Read(rel)
	if err != nil {
		return nil
	}
	hdr, _, ok := ParseHeader(string(data))
	if !ok {
		return nil
	}
	return hdr
}
