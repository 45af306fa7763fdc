package ui

import "fmt"

// ANSI256 color codes for CLI output.
const (
	colorType    = 74  // blue, record types
	colorName    = 250 // light gray, record names
	colorMuted   = 245 // medium gray, timestamps and ids
	colorVersion = 114 // green, version counter
)

var noColor bool

// RenderType returns a record type styled in blue.
func RenderType(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorType, s)
}

// RenderName returns a record name styled in light gray.
func RenderName(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorName, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderVersion returns the version counter styled in green.
func RenderVersion(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorVersion, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
