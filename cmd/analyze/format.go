package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

func displayPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home || strings.HasPrefix(path, home+string(os.PathSeparator)) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}

func formatBytes(size int64) string {
	if size < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(size))
}

func formatCount(n int64) string {
	return humanize.Comma(n)
}

func sizeColor(percent float64) string {
	switch {
	case percent >= 50:
		return colorRed
	case percent >= 20:
		return colorYellow
	case percent >= 5:
		return colorCyan
	default:
		return colorGray
	}
}

func coloredProgressBar(value, max int64, percent float64) string {
	if max <= 0 {
		return colorGray + strings.Repeat("░", barWidth) + colorReset
	}

	filled := int((value * int64(barWidth)) / max)
	if filled > barWidth {
		filled = barWidth
	}

	barColor := colorGreen
	if c := sizeColor(percent); c != colorGray {
		barColor = c
	}

	var b strings.Builder
	b.WriteString(barColor)
	for i := 0; i < barWidth; i++ {
		if i < filled {
			if i < filled-1 {
				b.WriteString("█")
				continue
			}
			// Last filled cell shows the remainder.
			remainder := (value * int64(barWidth)) % max
			switch {
			case remainder > max/2:
				b.WriteString("█")
			case remainder > max/4:
				b.WriteString("▓")
			default:
				b.WriteString("▒")
			}
			continue
		}
		b.WriteString(colorGray + "░" + barColor)
	}
	b.WriteString(colorReset)
	return b.String()
}

// Calculate display width considering CJK characters
func runeWidth(r rune) int {
	if r >= 0x4E00 && r <= 0x9FFF || // CJK Unified Ideographs
		r >= 0x3400 && r <= 0x4DBF || // CJK Extension A
		r >= 0xAC00 && r <= 0xD7AF || // Hangul
		r >= 0xFF00 && r <= 0xFFEF { // Fullwidth forms
		return 2
	}
	return 1
}

func displayWidth(s string) int {
	width := 0
	for _, r := range s {
		width += runeWidth(r)
	}
	return width
}

func trimName(name string) string {
	const (
		ellipsis      = "..."
		ellipsisWidth = 3
	)

	runes := []rune(name)
	currentWidth := 0
	for i, r := range runes {
		w := runeWidth(r)
		if currentWidth+w > nameWidth {
			subWidth := currentWidth
			j := i
			for j > 0 && subWidth+ellipsisWidth > nameWidth {
				j--
				subWidth -= runeWidth(runes[j])
			}
			if j == 0 {
				return ellipsis
			}
			return string(runes[:j]) + ellipsis
		}
		currentWidth += w
	}
	return name
}

func padName(name string, targetWidth int) string {
	currentWidth := displayWidth(name)
	if currentWidth >= targetWidth {
		return name
	}
	return name + strings.Repeat(" ", targetWidth-currentWidth)
}

// formatUnusedTime labels entries that have not been modified for a while.
func formatUnusedTime(modTime time.Time, now time.Time) string {
	if modTime.IsZero() {
		return ""
	}
	age := now.Sub(modTime)
	if age < unusedAfter {
		return ""
	}

	days := int(age.Hours() / 24)
	months := days / 30
	years := days / 365

	switch {
	case years >= 2:
		return fmt.Sprintf(">%dyr unused", years)
	case years >= 1:
		return ">1yr unused"
	default:
		return fmt.Sprintf(">%dmo unused", months)
	}
}
