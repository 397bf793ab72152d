package dirstats

import "sync"

// Stats is a copy of a node's fields taken under the cache lock.
type Stats struct {
	// TotalCount is the number of entries in the subtree, the directory itself included.
	TotalCount int64
	// TotalSize is the sum of file sizes in the subtree.
	TotalSize int64
	// Complete is set once the directory and every child directory are fully scanned.
	Complete bool
	// FilePassDone is set once the immediate entries were folded into the totals.
	FilePassDone bool
	// InProgress is set while a worker holds the claim on this directory.
	InProgress bool
}

// Node is the cached aggregate record for one path.
//
// Handles stay valid after Cache.Invalidate but stop tracking the
// filesystem: they keep the values they had when the generation ended.
type Node struct {
	mu     *sync.Mutex // owning cache lock
	path   string
	parent string // "" for the filesystem root

	totalCount   int64
	totalSize    int64
	complete     bool
	filePassDone bool
	inProgress   bool

	// Names of child directories that were not complete when the file pass
	// ran. Only meaningful once filePassDone is set.
	pending map[string]struct{}
}

// Path returns the cleaned path the node is keyed by.
func (n *Node) Path() string {
	return n.path
}

// Stats returns a snapshot of the node.
func (n *Node) Stats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.statsLocked()
}

func (n *Node) statsLocked() Stats {
	return Stats{
		TotalCount:   n.totalCount,
		TotalSize:    n.totalSize,
		Complete:     n.complete,
		FilePassDone: n.filePassDone,
		InProgress:   n.inProgress,
	}
}
