package index

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rowanhart/curator/internal/storage"
	"github.com/rowanhart/curator/internal/vault"
)

// Helpers live here instead of testutil because testutil depends on this
// package.

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testStore(t *testing.T) storage.Provider {
	t.Helper()
	dir := t.TempDir()
	for _, c := range vault.CategoryOrder {
		if err := os.MkdirAll(filepath.Join(dir, c), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestIndexable(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"Actions/Call Dentist.md", true},
		{"Inbox/capture.md", true},
		{"Attachments/photo.md", false},
		{"Attachments/photo.png", false},
		{"Bogus/note.md", false},
		{"Actions/notes.txt", false},
		{"stray.md", false},
	}
	for _, c := range cases {
		if got := indexable(c.path); got != c.want {
			t.Errorf("indexable(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestSyncIndexesNewNotes(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	note := "---\ntitle: Call Dentist\ntags:\n  - health\n---\n\nBook a checkup."
	if err := store.Write("Actions/Call Dentist.md", []byte(note)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("Attachments/skip.md", []byte("not a note")); err != nil {
		t.Fatal(err)
	}

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(checksums) != 1 {
		t.Fatalf("indexed = %d, want 1", len(checksums))
	}

	row, body, err := db.GetNote("Actions/Call Dentist.md")
	if err != nil {
		t.Fatal(err)
	}
	if row == nil {
		t.Fatal("note not indexed")
	}
	if row.Title != "Call Dentist" || row.Category != "Actions" {
		t.Errorf("row = %+v", row)
	}
	if len(row.Tags) != 1 || row.Tags[0] != "health" {
		t.Errorf("tags = %v", row.Tags)
	}
	if body != "Book a checkup." {
		t.Errorf("body = %q", body)
	}
}

func TestSyncSkipsUnchangedNotes(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	if err := store.Write("Inbox/note.md", []byte("---\ntitle: Note\n---\n\nbody")); err != nil {
		t.Fatal(err)
	}

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	first, _, err := db.GetNote("Inbox/note.md")
	if err != nil || first == nil {
		t.Fatalf("first sync: row=%v err=%v", first, err)
	}

	time.Sleep(10 * time.Millisecond)
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	second, _, _ := db.GetNote("Inbox/note.md")
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Error("unchanged note was re-indexed")
	}
}

func TestSyncReindexesChangedNotes(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	if err := store.Write("Inbox/note.md", []byte("---\ntitle: Note\n---\n\nold body")); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}

	if err := store.Write("Inbox/note.md", []byte("---\ntitle: Note\n---\n\nnew body")); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}

	_, body, err := db.GetNote("Inbox/note.md")
	if err != nil {
		t.Fatal(err)
	}
	if body != "new body" {
		t.Errorf("body = %q", body)
	}
}

func TestSyncRemovesStaleEntries(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	if err := store.Write("Inbox/gone.md", []byte("---\ntitle: Gone\n---\n\nbody")); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete("Inbox/gone.md"); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}

	row, _, err := db.GetNote("Inbox/gone.md")
	if err != nil {
		t.Fatal(err)
	}
	if row != nil {
		t.Error("stale entry survived sync")
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	seed := []struct {
		row  NoteRow
		body string
	}{
		{NoteRow{Path: "Actions/Paint Door.md", Title: "Paint Door", Category: "Actions",
			Tags: []string{"diy"}, UpdatedAt: time.Now()}, "Use RAL 5010 gentian blue."},
		{NoteRow{Path: "Media/Dune.md", Title: "Dune", Category: "Media",
			UpdatedAt: time.Now()}, "Sci-fi novel by Frank Herbert."},
	}
	for _, s := range seed {
		if err := db.UpsertNote(s.row, s.body); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := db.Search("RAL", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Path != "Actions/Paint Door.md" {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].Snippet == "" {
		t.Error("empty snippet")
	}

	hits, err = db.Search("Dune", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Category != "Media" {
		t.Fatalf("hits = %+v", hits)
	}

	hits, err = db.Search("zeppelin", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestListNotesNewestFirst(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := []NoteRow{
		{Path: "Actions/Old.md", Title: "Old", Category: "Actions", UpdatedAt: base},
		{Path: "Actions/New.md", Title: "New", Category: "Actions", UpdatedAt: base.Add(time.Hour)},
		{Path: "Media/Dune.md", Title: "Dune", Category: "Media", UpdatedAt: base.Add(2 * time.Hour)},
	}
	for _, r := range rows {
		if err := db.UpsertNote(r, "body"); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListNotes("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Path != "Media/Dune.md" || got[2].Path != "Actions/Old.md" {
		t.Errorf("order = %+v", got)
	}

	got, err = db.ListNotes("Actions", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Path != "Actions/New.md" {
		t.Errorf("filtered = %+v", got)
	}

	got, err = db.ListNotes("", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("limit ignored: %+v", got)
	}
}

func TestCategoryStats(t *testing.T) {
	db := testDB(t)
	rows := []NoteRow{
		{Path: "Actions/A.md", Category: "Actions", UpdatedAt: time.Now()},
		{Path: "Actions/B.md", Category: "Actions", UpdatedAt: time.Now()},
		{Path: "Inbox/C.md", Category: "Inbox", UpdatedAt: time.Now()},
	}
	for _, r := range rows {
		if err := db.UpsertNote(r, "body"); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := db.CategoryStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 || stats.ByCategory["Actions"] != 2 || stats.ByCategory["Inbox"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	db := testDB(t)
	row := NoteRow{Path: "Inbox/n.md", Title: "First", Category: "Inbox", UpdatedAt: time.Now()}
	if err := db.UpsertNote(row, "v1"); err != nil {
		t.Fatal(err)
	}
	row.Title = "Second"
	if err := db.UpsertNote(row, "v2"); err != nil {
		t.Fatal(err)
	}

	got, body, err := db.GetNote("Inbox/n.md")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Second" || body != "v2" {
		t.Errorf("row = %+v body = %q", got, body)
	}

	checksums, _ := db.AllChecksums()
	if len(checksums) != 1 {
		t.Errorf("rows = %d, want 1", len(checksums))
	}
}
