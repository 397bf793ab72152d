package lister

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSListClassifiesEntries(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "f1"), make([]byte, 100), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "f2"), []byte("abc"), 0o644))

	entries, err := OS{}.List(root)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	assert.Equal(t, "f1", entries[0].Name)
	assert.False(t, entries[0].IsDir)
	assert.EqualValues(t, 100, entries[0].Size)
	assert.EqualValues(t, 3, entries[1].Size)
	assert.Equal(t, "sub", entries[2].Name)
	assert.True(t, entries[2].IsDir)
	assert.Zero(t, entries[2].Size)
}

func TestOSListMissingDirectoryIsEmpty(t *testing.T) {
	entries, err := OS{}.List(filepath.Join(t.TempDir(), "gone"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOSListSymlinkIsNotDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "real"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))

	entries, err := OS{}.List(root)
	require.NoError(t, err)
	for _, e := range entries {
		if e.Name == "link" {
			assert.False(t, e.IsDir)
			return
		}
	}
	t.Fatal("link not listed")
}

func TestOSListPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(dir, 0o000))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err := OS{}.List(dir)
	require.Error(t, err)
	assert.True(t, IsPermission(err))

	var lerr *Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, KindPermission, lerr.Kind)
}

func TestOSListNotDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := OS{}.List(file)
	require.Error(t, err)
	assert.False(t, IsPermission(err))
}

func TestIsPermission(t *testing.T) {
	assert.True(t, IsPermission(&Error{Kind: KindPermission, Err: fs.ErrPermission}))
	assert.True(t, IsPermission(fmt.Errorf("wrapped: %w", fs.ErrPermission)))
	assert.False(t, IsPermission(&Error{Kind: KindOther, Err: errors.New("io")}))
	assert.False(t, IsPermission(nil))
}
