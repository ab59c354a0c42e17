package index

import (
	"fmt"
	"time"
)

// NoteRow is one indexed note.
type NoteRow struct {
	Path      string
	Title     string
	Category  string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult is one search hit.
type SearchResult struct {
	Path     string
	Title    string
	Category string
	Snippet  string
}

// Stats summarises the index contents.
type Stats struct {
	Total      int
	ByCategory map[string]int
}

// UpsertNote inserts or replaces a note row and its FTS entry.
func (db *DB) UpsertNote(n NoteRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (path, title, category, checksum, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			category   = excluded.category,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, n.Path, n.Title, n.Category, n.Checksum, joinTags(n.Tags), body, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	if err := ftsUpsert(tx, n.Path, n.Title, body, n.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteNote removes a note row and its FTS entry.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM notes WHERE path = ?`, path)
	return tx.Commit()
}

// AllChecksums returns path -> checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// GetNote returns one indexed note with its body, or nil when absent.
func (db *DB) GetNote(path string) (*NoteRow, string, error) {
	var n NoteRow
	var tags, body string
	err := db.conn.QueryRow(`
		SELECT path, title, category, checksum, tags, body, updated_at
		FROM notes WHERE path = ?
	`, path).Scan(&n.Path, &n.Title, &n.Category, &n.Checksum, &tags, &body, &n.UpdatedAt)
	if err != nil {
		return nil, "", nil
	}
	n.Tags = splitTags(tags)
	return &n, body, nil
}

// ListNotes returns indexed notes, optionally limited to one category,
// newest first.
func (db *DB) ListNotes(category string, limit int) ([]NoteRow, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT path, title, category, checksum, tags, updated_at FROM notes`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		var n NoteRow
		var tags string
		if err := rows.Scan(&n.Path, &n.Title, &n.Category, &n.Checksum, &tags, &n.UpdatedAt); err != nil {
			return nil, err
		}
		n.Tags = splitTags(tags)
		out = append(out, n)
	}
	return out, rows.Err()
}

// CategoryStats counts indexed notes per category.
func (db *DB) CategoryStats() (Stats, error) {
	rows, err := db.conn.Query(`SELECT category, COUNT(*) FROM notes GROUP BY category`)
	if err != nil {
		return Stats{}, fmt.Errorf("index: stats: %w", err)
	}
	defer rows.Close()

	s := Stats{ByCategory: make(map[string]int)}
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return Stats{}, err
		}
		s.ByCategory[cat] = n
		s.Total += n
	}
	return s, rows.Err()
}
