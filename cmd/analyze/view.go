package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintln(&b)

	if m.deleteConfirm && m.deleteTarget != nil {
		fmt.Fprintln(&b, warnStyle.Render(fmt.Sprintf("Delete: %s (%s)? Press Delete again to confirm, any other key to cancel",
			m.deleteTarget.name, formatBytes(m.deleteTarget.size))))
		fmt.Fprintln(&b)
	}

	fmt.Fprintf(&b, "%s  %s  |  Total: %s  |  %s items",
		titleStyle.Render("Analyze Disk"),
		dimStyle.Render(displayPath(m.path)),
		formatBytes(m.current.TotalSize),
		formatCount(m.current.TotalCount))
	if !m.current.Complete {
		fmt.Fprintf(&b, "  %s%s%s%s", colorCyan, colorBold, spinnerFrames[m.spinner], colorReset)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, statusStyle.Render(m.status))
	fmt.Fprintln(&b)

	if len(m.entries) == 0 {
		fmt.Fprintln(&b, "  Empty directory")
	} else {
		m.renderEntries(&b)
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, dimStyle.Render("  ↑↓←→ Navigate  |  Enter Explore  |  R Refresh  |  ⌫ Delete  |  Q Quit"))
	return b.String()
}

func (m model) renderEntries(b *strings.Builder) {
	maxSize := int64(1)
	for _, entry := range m.entries {
		if entry.size > maxSize {
			maxSize = entry.size
		}
	}

	start := m.offset
	if start < 0 {
		start = 0
	}
	end := start + entryViewport
	if end > len(m.entries) {
		end = len(m.entries)
	}

	now := time.Now()
	for idx := start; idx < end; idx++ {
		entry := m.entries[idx]
		icon := "📄"
		if entry.isDir {
			icon = "📁"
		}

		var percent float64
		if m.current.TotalSize > 0 {
			percent = float64(entry.size) / float64(m.current.TotalSize) * 100
		}
		bar := coloredProgressBar(entry.size, maxSize, percent)

		sizeText := formatBytes(entry.size)
		if !entry.complete {
			sizeText += "…"
		}

		// Keep chart columns aligned even when arrow is shown
		entryPrefix := "    "
		paddedName := padName(trimName(entry.name), nameWidth)
		nameSegment := fmt.Sprintf("%s %s", icon, paddedName)
		if idx == m.selected {
			entryPrefix = fmt.Sprintf(" %s%s▶%s  ", colorCyan, colorBold, colorReset)
			nameSegment = fmt.Sprintf("%s%s %s%s", colorBold, icon, paddedName, colorReset)
		}

		fmt.Fprintf(b, "%s%2d. %s %5.1f%%  |  %s %s%11s%s",
			entryPrefix, idx+1, bar, percent,
			nameSegment, sizeColor(percent), sizeText, colorReset)
		if entry.isDir {
			fmt.Fprintf(b, "  %s%s items%s", colorGray, formatCount(entry.count), colorReset)
		} else if label := formatUnusedTime(entry.modTime, now); label != "" {
			fmt.Fprintf(b, "  %s%s%s", colorGray, label, colorReset)
		}
		fmt.Fprintln(b)
	}
}
