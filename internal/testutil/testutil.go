// Package testutil provides shared test helpers for setting up vaults and
// databases.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/rowanhart/curator/internal/index"
	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/storage"
	"github.com/rowanhart/curator/internal/vault"
)

// Logger returns a quiet logger for tests.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestVault creates a temporary vault with its category layout in place.
func TestVault(t *testing.T) *vault.Vault {
	t.Helper()
	v, err := vault.Open(filepath.Join(t.TempDir(), "vault"), Logger())
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// TestStore creates a temporary directory backed by a storage.Provider.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "curator-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WriteNote writes a raw note file into a vault folder, creating it through
// the vault's storage so paths stay inside the root.
func WriteNote(t *testing.T, v *vault.Vault, rel, content string) {
	t.Helper()
	if err := v.Store().Write(rel, []byte(content)); err != nil {
		t.Fatal(err)
	}
}

// FakeModel is a scripted llm.Model: each Generate call pops the next reply.
// When the script runs out the last reply repeats.
type FakeModel struct {
	Replies []llm.Reply
	Err     error
	Calls   [][]llm.Part
	next    int
}

// Generate implements llm.Model.
func (m *FakeModel) Generate(_ context.Context, parts []llm.Part) (*llm.Reply, error) {
	m.Calls = append(m.Calls, parts)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Replies) == 0 {
		return &llm.Reply{}, nil
	}
	i := m.next
	if i >= len(m.Replies) {
		i = len(m.Replies) - 1
	}
	m.next++
	r := m.Replies[i]
	return &r, nil
}
