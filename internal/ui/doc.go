// Package ui provides terminal styling for command output.
//
// A [Palette] wraps named [lipgloss.Style] values for titles, success and
// failure markers, warnings, and help text. The CLI layer renders progress
// lines and summaries through it.
package ui
