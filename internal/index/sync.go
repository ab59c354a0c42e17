package index

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/rowanhart/curator/internal/storage"
	"github.com/rowanhart/curator/internal/vault"
)

// Sync walks the vault and brings the index up to date: new and changed
// notes are parsed and upserted, notes removed from disk are dropped. Only
// category folders are indexed; attachments and system files are not.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if !indexable(m.Path) {
			continue
		}
		disk[m.Path] = struct{}{}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.Any("error", err))
			continue
		}
		if checksums[m.Path] == checksum(data) {
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.Any("error", err))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.Any("error", err))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}
	return nil
}

// indexable reports whether a vault-relative path belongs in the index:
// a .md file directly inside a category folder other than Attachments.
func indexable(rel string) bool {
	if !strings.HasSuffix(rel, ".md") {
		return false
	}
	folder := filepath.Dir(rel)
	return folder != vault.CategoryAttachments && vault.ValidCategory(folder)
}

// indexFile parses one note and upserts it.
func indexFile(db *DB, rel string, data []byte) error {
	stem := strings.TrimSuffix(filepath.Base(rel), ".md")
	title := stem
	var tags []string
	body := string(data)

	if hdr, rest, ok := vault.ParseHeader(string(data)); ok {
		body = rest
		if t, ok := hdr.Get("title"); ok && t != "" {
			title = t
		}
		tags, _ = hdr.GetList("tags")
	}

	return db.UpsertNote(NoteRow{
		Path:      rel,
		Title:     title,
		Category:  filepath.Dir(rel),
		Checksum:  checksum(data),
		Tags:      tags,
		UpdatedAt: time.Now().UTC(),
	}, body)
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func joinTags(tags []string) string { return strings.Join(tags, " ") }

func splitTags(s string) []string { return strings.Fields(s) }
