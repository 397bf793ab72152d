// Package lister reads a single directory level for the stats engine.
package lister

import (
	"os"
	"path/filepath"
	"time"
)

// Entry is one immediate child of a listed directory.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
}

// Lister lists the immediate children of a directory.
//
// A directory that vanished between discovery and listing yields an empty
// listing and no error. Permission problems are returned as an *Error with
// KindPermission.
type Lister interface {
	List(path string) ([]Entry, error)
}

// OS lists directories from the local filesystem.
//
// Symlinks are reported as non-directories and are never followed, so a
// traversal cannot loop through a link cycle.
type OS struct{}

// List implements Lister.
func (OS) List(path string) ([]Entry, error) {
	children, err := os.ReadDir(path)
	if err != nil {
		kind := classify(err)
		if kind == KindNotExist {
			return nil, nil
		}
		// ReadDir may fail partway and still return what it read; the
		// engine treats any failure as terminal, so drop the partial list.
		return nil, &Error{Path: path, Kind: kind, Err: err}
	}

	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		entry := Entry{
			Name:  child.Name(),
			IsDir: child.IsDir(),
			Mode:  child.Type(),
		}
		if !entry.IsDir {
			info, err := child.Info()
			if err != nil {
				// Removed after readdir; still counts as an entry.
				entries = append(entries, entry)
				continue
			}
			entry.Size = info.Size()
			entry.Mode = info.Mode()
			entry.ModTime = info.ModTime()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ChildPath joins a listed directory and one of its entries.
func ChildPath(dir string, e Entry) string {
	return filepath.Join(dir, e.Name)
}
