// Package output provides styled terminal output helpers (success,
// error, warning, note formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/qn/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	colorStyles  = map[models.Color]lipgloss.Style{
		models.ColorYellow:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		models.ColorMint:     lipgloss.NewStyle().Foreground(lipgloss.Color("85")),
		models.ColorRose:     lipgloss.NewStyle().Foreground(lipgloss.Color("211")),
		models.ColorSky:      lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		models.ColorLavender: lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		models.ColorSand:     lipgloss.NewStyle().Foreground(lipgloss.Color("180")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// FormatColor renders a color tag in its own color.
func FormatColor(c models.Color) string {
	style, ok := colorStyles[c]
	if !ok {
		return fmt.Sprintf("[%s]", c)
	}
	return style.Render(fmt.Sprintf("[%s]", c))
}

// FormatTimestamp renders a Unix-millisecond timestamp for humans.
func FormatTimestamp(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

// FormatNoteLine renders one note as a single list row.
func FormatNoteLine(n *models.NoteRecord) string {
	title := n.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s  %s %s  %s",
		subtleStyle.Render(n.ID),
		FormatColor(n.Color),
		titleStyle.Render(title),
		subtleStyle.Render(FormatTimestamp(n.UpdatedAt)))
}

// FormatNoteLong renders a full note view with content.
func FormatNoteLong(n *models.NoteRecord) string {
	var b strings.Builder
	title := n.Title
	if title == "" {
		title = "(untitled)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("  ")
	b.WriteString(FormatColor(n.Color))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%s  created %s  updated %s",
		n.ID, FormatTimestamp(n.CreatedAt), FormatTimestamp(n.UpdatedAt))))
	if n.Content != "" {
		b.WriteString("\n\n")
		b.WriteString(n.Content)
	}
	return b.String()
}

// FormatPendingCount renders an op-queue summary for status output.
func FormatPendingCount(n int64) string {
	if n == 0 {
		return successStyle.Render("all changes synced")
	}
	return warningStyle.Render(fmt.Sprintf("%d operation(s) waiting for sync", n))
}
