package dirstats

import (
	"io/fs"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tw93/mole/internal/lister"
)

// fakeFS is an in-memory Lister. Paths listed in denied fail with a
// permission error; a hook, when set, runs before every listing.
type fakeFS struct {
	mu      sync.Mutex
	dirs    map[string][]lister.Entry
	denied  map[string]bool
	hook    func(path string)
	shuffle *rand.Rand
	calls   map[string]int
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		dirs:   make(map[string][]lister.Entry),
		denied: make(map[string]bool),
		calls:  make(map[string]int),
	}
}

func (f *fakeFS) mkdir(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mkdirLocked(path)
}

func (f *fakeFS) mkdirLocked(path string) {
	if _, ok := f.dirs[path]; ok {
		return
	}
	f.dirs[path] = nil
	parent := filepath.Dir(path)
	if parent == path {
		return
	}
	f.mkdirLocked(parent)
	f.dirs[parent] = append(f.dirs[parent], lister.Entry{Name: filepath.Base(path), IsDir: true})
}

func (f *fakeFS) file(path string, size int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parent := filepath.Dir(path)
	f.mkdirLocked(parent)
	f.dirs[parent] = append(f.dirs[parent], lister.Entry{Name: filepath.Base(path), Size: size})
}

func (f *fakeFS) deny(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denied[path] = true
}

func (f *fakeFS) setHook(hook func(path string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hook = hook
}

func (f *fakeFS) listCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeFS) List(path string) ([]lister.Entry, error) {
	f.mu.Lock()
	hook := f.hook
	f.calls[path]++
	f.mu.Unlock()

	if hook != nil {
		hook(path)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied[path] {
		return nil, &lister.Error{Path: path, Kind: lister.KindPermission, Err: fs.ErrPermission}
	}
	entries, ok := f.dirs[path]
	if !ok {
		return nil, nil
	}
	out := append([]lister.Entry(nil), entries...)
	if f.shuffle != nil {
		f.shuffle.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out, nil
}

// expected returns the count and size a full traversal of path must reach.
func (f *fakeFS) expected(path string) (count, size int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expectedLocked(path)
}

func (f *fakeFS) expectedLocked(path string) (count, size int64) {
	count = 1
	if f.denied[path] {
		return count, 0
	}
	for _, e := range f.dirs[path] {
		if e.IsDir {
			c, s := f.expectedLocked(filepath.Join(path, e.Name))
			count += c
			size += s
			continue
		}
		count++
		size += e.Size
	}
	return count, size
}

// subdirs returns every directory at or below path, sorted.
func (f *fakeFS) subdirs(path string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for p := range f.dirs {
		if p == path || strings.HasPrefix(p, strings.TrimSuffix(path, "/")+"/") {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
