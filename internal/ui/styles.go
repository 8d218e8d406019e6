package ui

import (
	"fmt"
	"strings"
)

// ANSI256 codes for the chart palette.
const (
	colorAccent = 74  // blue
	colorMuted  = 245 // gray
	colorLabel  = 250 // light gray
)

// ansiByHex maps the chart palette to terminal colors.
var ansiByHex = map[string]int{
	"#3B82F6": colorAccent,
	"#9CA3AF": colorMuted,
}

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderLabel returns s styled as a field label.
func RenderLabel(s string) string { return paint(colorLabel, s) }

// RenderHex returns s in the terminal color closest to a palette hex color.
// Unknown colors are left unstyled.
func RenderHex(hex, s string) string {
	code, ok := ansiByHex[strings.ToUpper(hex)]
	if !ok {
		return s
	}
	return paint(code, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}

// ColorEnabled reports whether styling is applied.
func ColorEnabled() bool {
	return !noColor
}
