// Package storage defines the vault file-system abstraction.
package storage

import "time"

// FileInfo is lightweight metadata for a vault file.
type FileInfo struct {
	Path    string // relative to the vault root
	Size    int64
	ModTime time.Time
}

// Provider is the interface for vault file operations. All paths are
// relative to the vault root; implementations must reject traversal.
type Provider interface {
	// List walks dir and returns metadata for every .md file under it.
	List(dir string) ([]FileInfo, error)
	// ListAll walks dir and returns metadata for every regular file.
	ListAll(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Stat returns metadata for a single file.
	Stat(path string) (FileInfo, error)
	// Write atomically replaces the content at path.
	Write(path string, content []byte) error
	// WriteNew creates the file at path, failing with fs.ErrExist if it
	// already exists. Used by collision-avoidance loops.
	WriteNew(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Resolve maps a relative path to an absolute one inside the root.
	Resolve(rel string) (string, error)
	// Root returns the absolute vault root.
	Root() string
}
