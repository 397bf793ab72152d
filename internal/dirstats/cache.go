package dirstats

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/tw93/mole/internal/metrics"
)

// Cache maps cleaned paths to nodes.
//
// One mutex guards the whole map and every node in it. Methods ending in
// Locked expect the caller to hold it; compound aggregation steps take the
// lock once and call them, so each step is atomic as a whole.
type Cache struct {
	mu    sync.Mutex
	nodes map[string]*Node
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{nodes: make(map[string]*Node)}
}

// GetOrCreate returns the node for path, creating it and any missing
// ancestors up to the filesystem root.
func (c *Cache) GetOrCreate(path string) *Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getOrCreateLocked(cleanPath(path))
}

// Lookup returns the node for path without creating it.
func (c *Cache) Lookup(path string) (*Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.nodes[cleanPath(path)]
	return n, ok
}

// Len returns the number of cached nodes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// Invalidate drops every node and starts a new generation.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = make(map[string]*Node)
	metrics.SetCacheNodes(0)
}

func (c *Cache) getOrCreateLocked(path string) *Node {
	if n, ok := c.nodes[path]; ok {
		return n
	}
	n := c.newNodeLocked(path)
	for p := n.parent; p != ""; {
		if _, ok := c.nodes[p]; ok {
			break
		}
		p = c.newNodeLocked(p).parent
	}
	metrics.SetCacheNodes(len(c.nodes))
	return n
}

func (c *Cache) newNodeLocked(path string) *Node {
	n := &Node{
		mu:         &c.mu,
		path:       path,
		parent:     parentOf(path),
		totalCount: 1,
	}
	c.nodes[path] = n
	return n
}

func (c *Cache) parentLocked(n *Node) *Node {
	if n.parent == "" {
		return nil
	}
	return c.getOrCreateLocked(n.parent)
}

// foldLocked adds one file pass to n and every ancestor.
func (c *Cache) foldLocked(n *Node, count, size int64) {
	if n.filePassDone {
		invariant("file pass ran twice for %s", n.path)
	}
	for a := n; a != nil; a = c.parentLocked(a) {
		a.totalCount += count
		a.totalSize += size
	}
	n.filePassDone = true
}

// completeLocked marks n complete and walks up while each parent has no
// incomplete child directories left.
func (c *Cache) completeLocked(n *Node) {
	for n != nil && !n.complete {
		if n.filePassDone && len(n.pending) != 0 {
			invariant("%s completed with %d pending child directories", n.path, len(n.pending))
		}
		n.complete = true
		n.pending = nil

		p := c.parentLocked(n)
		if p == nil || p.complete || !p.filePassDone {
			return
		}
		// Paths that were never part of the parent's listing (a file
		// traversed directly, or an entry created after the listing)
		// are not tracked and cannot complete the parent.
		name := filepath.Base(n.path)
		if _, ok := p.pending[name]; !ok {
			return
		}
		delete(p.pending, name)
		if len(p.pending) != 0 {
			return
		}
		n = p
	}
}

func (c *Cache) releaseClaimsLocked() {
	for _, n := range c.nodes {
		n.inProgress = false
	}
}

func cleanPath(path string) string {
	return filepath.Clean(path)
}

// parentOf returns the parent directory of path, or "" at the root.
func parentOf(path string) string {
	dir := filepath.Dir(path)
	if dir == path {
		return ""
	}
	return dir
}

func invariant(format string, args ...any) {
	panic(fmt.Sprintf("dirstats: invariant violated: "+format, args...))
}
