package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette (ANSI 256).
var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorFail   = lipgloss.Color("167") // soft red
	colorValue  = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

// Text styles shared by the commands and the browser.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorValue)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleKey         = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleCursor      = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleHelp        = lipgloss.NewStyle().Foreground(colorMuted)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCursor  = "▸"
)

// statusIcons colors the leading icon of a status line.
var statusIcons = map[string]lipgloss.Style{
	iconSuccess: lipgloss.NewStyle().Foreground(colorOK),
	iconError:   lipgloss.NewStyle().Foreground(colorFail),
	iconInfo:    lipgloss.NewStyle().Foreground(colorLabel),
}

func printStatus(w io.Writer, icon, format string, args ...any) {
	fmt.Fprintln(w, statusIcons[icon].Render(icon)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(w io.Writer, format string, args ...any) {
	printStatus(w, iconSuccess, format, args...)
}

func printError(w io.Writer, format string, args ...any) {
	printStatus(w, iconError, format, args...)
}

func printInfo(w io.Writer, format string, args ...any) {
	printStatus(w, iconInfo, format, args...)
}

// printDetail prints an indented, muted line under a status line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints "→ path" for a file a command wrote.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a value under a fixed-width label.
func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}
