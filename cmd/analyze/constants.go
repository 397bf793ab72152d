package main

import "time"

const (
	barWidth      = 24
	entryViewport = 12
	nameWidth     = 28
	tickInterval  = 120 * time.Millisecond
	unusedAfter   = 90 * 24 * time.Hour // Label files untouched for ~3 months
)

var spinnerFrames = []string{"|", "/", "-", "\\", "|", "/", "-", "\\"}

const (
	colorGray   = "\033[0;90m"
	colorRed    = "\033[0;31m"
	colorYellow = "\033[1;33m"
	colorGreen  = "\033[0;32m"
	colorCyan   = "\033[0;36m"
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
)
