package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// Styles for terminal output. The color profile comes from termenv,
// so redirected output degrades to plain text.
var (
	hostStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	syncedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	behindStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	aheadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	plainStyle  = lipgloss.NewStyle()
)

func init() {
	lipgloss.SetColorProfile(termenv.ColorProfile())
}

// renderOutput writes v to stdout as JSON or YAML. Table output is
// assembled by the individual commands.
func renderOutput(v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(v)
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}

// formatTime renders an optional timestamp in local time, or fallback
// when the time is unset.
func formatTime(t *time.Time, layout, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Local().Format(layout)
}
