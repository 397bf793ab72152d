package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tw93/mole/internal/dirstats"
	"github.com/tw93/mole/internal/lister"
	"github.com/tw93/mole/internal/logging"
	"github.com/tw93/mole/internal/watch"
)

type dirEntry struct {
	name     string
	path     string
	isDir    bool
	size     int64
	count    int64
	complete bool
	modTime  time.Time
}

type historyEntry struct {
	path        string
	selected    int
	entryOffset int
}

type tickMsg time.Time

type changedMsg struct {
	dir string
}

type model struct {
	engine  *dirstats.Engine
	lister  lister.Lister
	watcher *watch.Watcher
	changes <-chan string

	path    string
	history []historyEntry
	entries []dirEntry
	current dirstats.Stats

	selected      int
	offset        int
	status        string
	scanning      bool
	spinner       int
	deleteConfirm bool
	deleteTarget  *dirEntry
}

func newModel(engine *dirstats.Engine, l lister.Lister, w *watch.Watcher, changes <-chan string, path string) model {
	m := model{
		engine:  engine,
		lister:  l,
		watcher: w,
		changes: changes,
		path:    path,
	}
	m.load()
	return m
}

// load lists the current directory and asks the engine for its totals.
func (m *model) load() {
	entries, err := m.lister.List(m.path)
	if err != nil {
		// The engine shows unreadable directories as complete; only the
		// listing of children is lost.
		logging.L().Debug("list for view failed", zap.String("path", m.path), zap.Error(err))
		entries = nil
	}

	m.entries = make([]dirEntry, 0, len(entries))
	for _, e := range entries {
		m.entries = append(m.entries, dirEntry{
			name:     e.Name,
			path:     lister.ChildPath(m.path, e),
			isDir:    e.IsDir,
			size:     e.Size,
			count:    1,
			complete: !e.IsDir,
			modTime:  e.ModTime,
		})
	}

	if m.watcher != nil {
		if err := m.watcher.Watch(m.path); err != nil {
			logging.L().Debug("watch failed", zap.String("path", m.path), zap.Error(err))
		}
	}

	m.scanning = true
	m.status = "Scanning..."
	m.engine.RequestTraversal(m.path)
	m.refresh()
}

// refresh copies the latest node state into the visible entries.
func (m *model) refresh() {
	var selectedPath string
	if m.selected < len(m.entries) {
		selectedPath = m.entries[m.selected].path
	}

	for i := range m.entries {
		if !m.entries[i].isDir {
			continue
		}
		st := m.engine.Snapshot(m.entries[i].path)
		m.entries[i].size = st.TotalSize
		m.entries[i].count = st.TotalCount
		m.entries[i].complete = st.Complete
	}
	m.current = m.engine.Snapshot(m.path)

	sort.SliceStable(m.entries, func(i, j int) bool {
		if m.entries[i].size != m.entries[j].size {
			return m.entries[i].size > m.entries[j].size
		}
		return m.entries[i].name < m.entries[j].name
	})
	for i := range m.entries {
		if m.entries[i].path == selectedPath {
			m.selected = i
			break
		}
	}
	m.clampEntrySelection()

	if m.scanning && m.current.Complete {
		m.scanning = false
		m.status = fmt.Sprintf("Scanned %s in %s items", formatBytes(m.current.TotalSize), formatCount(m.current.TotalCount))
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForChange(m.changes))
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(changes <-chan string) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		dir, ok := <-changes
		if !ok {
			return nil
		}
		return changedMsg{dir: dir}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tickMsg:
		m.refresh()
		if !m.current.Complete {
			m.spinner = (m.spinner + 1) % len(spinnerFrames)
		}
		return m, tickCmd()
	case changedMsg:
		m.engine.Invalidate()
		m.load()
		m.status = fmt.Sprintf("Changed: %s", displayPath(msg.dir))
		return m, waitForChange(m.changes)
	default:
		return m, nil
	}
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.deleteConfirm {
		if msg.String() == "delete" || msg.String() == "backspace" {
			return m.deleteSelected()
		}
		m.status = "Cancelled"
		m.deleteConfirm = false
		m.deleteTarget = nil
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
			if m.selected < m.offset {
				m.offset = m.selected
			}
		}
	case "down", "j":
		if m.selected < len(m.entries)-1 {
			m.selected++
			if m.selected >= m.offset+entryViewport {
				m.offset = m.selected - entryViewport + 1
			}
		}
	case "enter", "right", "l":
		return m.enterSelectedDir()
	case "b", "left", "h":
		return m.goBack()
	case "r":
		m.engine.Invalidate()
		m.load()
		m.status = "Refreshing..."
	case "delete", "backspace":
		if len(m.entries) > 0 {
			selected := m.entries[m.selected]
			m.deleteConfirm = true
			m.deleteTarget = &selected
		}
	}
	return m, nil
}

func (m model) enterSelectedDir() (tea.Model, tea.Cmd) {
	if len(m.entries) == 0 {
		return m, nil
	}
	selected := m.entries[m.selected]
	if !selected.isDir {
		m.status = fmt.Sprintf("File: %s (%s)", selected.name, formatBytes(selected.size))
		return m, nil
	}

	m.engine.CancelTraversal()
	m.unwatch()
	m.history = append(m.history, historyEntry{path: m.path, selected: m.selected, entryOffset: m.offset})
	m.path = selected.path
	m.selected = 0
	m.offset = 0
	m.load()
	return m, nil
}

func (m model) goBack() (tea.Model, tea.Cmd) {
	if len(m.history) == 0 {
		return m, nil
	}
	last := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]

	m.engine.CancelTraversal()
	m.unwatch()
	m.path = last.path
	m.selected = last.selected
	m.offset = last.entryOffset
	m.load()
	return m, nil
}

func (m model) deleteSelected() (tea.Model, tea.Cmd) {
	target := m.deleteTarget
	m.deleteConfirm = false
	m.deleteTarget = nil
	if target == nil {
		return m, nil
	}

	if err := os.RemoveAll(target.path); err != nil {
		m.status = fmt.Sprintf("Failed to delete: %v", err)
		return m, nil
	}
	logging.L().Info("deleted", logging.Path(target.path))

	m.engine.Invalidate()
	m.load()
	m.status = fmt.Sprintf("Deleted %s", target.name)
	return m, nil
}

func (m *model) unwatch() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Unwatch(m.path); err != nil {
		logging.L().Debug("unwatch failed", zap.String("path", m.path), zap.Error(err))
	}
}

func (m *model) clampEntrySelection() {
	if len(m.entries) == 0 {
		m.selected = 0
		m.offset = 0
		return
	}
	if m.selected >= len(m.entries) {
		m.selected = len(m.entries) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	maxOffset := len(m.entries) - entryViewport
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+entryViewport {
		m.offset = m.selected - entryViewport + 1
	}
}
