package console

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/crossforge/crossforge/pkg/styles"
	"github.com/crossforge/crossforge/pkg/tty"
)

func isTTY() bool {
	return tty.IsStdoutTerminal()
}

// applyStyle conditionally applies styling based on TTY status.
func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

func FormatSuccessMessage(message string) string { return applyStyle(styles.Success, "✓ ") + message }
func FormatInfoMessage(message string) string     { return applyStyle(styles.Info, "ℹ ") + message }
func FormatWarningMessage(message string) string  { return applyStyle(styles.Warning, "⚠ ") + message }
func FormatErrorMessage(message string) string    { return applyStyle(styles.Error, "✗ ") + message }
func FormatCommandMessage(command string) string  { return applyStyle(styles.Command, "⚡ ") + command }
func FormatProgressMessage(message string) string { return applyStyle(styles.Progress, "▸ ") + message }
func FormatCountMessage(message string) string    { return applyStyle(styles.Count, "# ") + message }
func FormatVerboseMessage(message string) string  { return applyStyle(styles.Verbose, "· ") + message }

// FormatSectionHeader formats a section header with proper styling.
func FormatSectionHeader(header string) string {
	if isTTY() {
		return applyStyle(styles.Header, header)
	}
	return header
}
