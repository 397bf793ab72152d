package main

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tw93/mole/internal/dirstats"
	"github.com/tw93/mole/internal/lister"
)

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "big"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big", "blob"), make([]byte, 4096), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "small"), make([]byte, 10), 0o644))
	return root
}

func newTestModel(t *testing.T, root string) (model, *dirstats.Engine) {
	t.Helper()
	engine := dirstats.New(lister.OS{}, dirstats.Options{Workers: 2})
	t.Cleanup(engine.Close)
	m := newModel(engine, lister.OS{}, nil, nil, root)
	engine.WaitIdle()
	return m, engine
}

func press(t *testing.T, m model, key tea.KeyMsg) model {
	t.Helper()
	next, _ := m.Update(key)
	return next.(model)
}

func tick(m model) model {
	next, _ := m.Update(tickMsg{})
	return next.(model)
}

func TestModelShowsTotals(t *testing.T) {
	root := fixture(t)
	m, _ := newTestModel(t, root)
	m = tick(m)

	assert.True(t, m.current.Complete)
	assert.EqualValues(t, 4106, m.current.TotalSize)
	assert.EqualValues(t, 5, m.current.TotalCount)
	assert.False(t, m.scanning)

	require.Len(t, m.entries, 3)
	assert.Equal(t, "big", m.entries[0].name)
	assert.EqualValues(t, 4096, m.entries[0].size)
	assert.EqualValues(t, 2, m.entries[0].count)
	assert.True(t, m.entries[0].complete)
	assert.Contains(t, m.View(), "Analyze Disk")
}

func TestModelNavigation(t *testing.T) {
	root := fixture(t)
	m, engine := newTestModel(t, root)
	m = tick(m)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, filepath.Join(root, "big"), m.path)
	require.Len(t, m.history, 1)
	engine.WaitIdle()
	m = tick(m)
	require.Len(t, m.entries, 1)
	assert.Equal(t, "blob", m.entries[0].name)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, root, m.path)
	assert.Empty(t, m.history)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, m.selected)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, m.selected)
}

func TestModelDeleteInvalidates(t *testing.T) {
	root := fixture(t)
	m, engine := newTestModel(t, root)
	m = tick(m)
	require.Equal(t, "big", m.entries[0].name)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	require.True(t, m.deleteConfirm)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.False(t, m.deleteConfirm)

	_, err := os.Stat(filepath.Join(root, "big"))
	assert.True(t, os.IsNotExist(err))

	engine.WaitIdle()
	m = tick(m)
	assert.EqualValues(t, 10, m.current.TotalSize)
	assert.EqualValues(t, 3, m.current.TotalCount)
	assert.Len(t, m.entries, 2)
}

func TestModelDeleteCancelled(t *testing.T) {
	root := fixture(t)
	m, _ := newTestModel(t, root)
	m = tick(m)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.False(t, m.deleteConfirm)
	assert.Equal(t, "Cancelled", m.status)
	_, err := os.Stat(filepath.Join(root, "big"))
	assert.NoError(t, err)
}

func TestModelChangeInvalidates(t *testing.T) {
	root := fixture(t)
	m, engine := newTestModel(t, root)
	m = tick(m)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new"), make([]byte, 90), 0o644))
	next, _ := m.Update(changedMsg{dir: root})
	m = next.(model)
	engine.WaitIdle()
	m = tick(m)

	assert.EqualValues(t, 4196, m.current.TotalSize)
	assert.Len(t, m.entries, 4)
}
