// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/service"
)

const (
	// ListSeparator is the separator line above and below list headers.
	ListSeparator = "------------"
)

// StatusMarker returns the checkbox marker for a task status.
func StatusMarker(status service.Status) string {
	switch status {
	case service.StatusDone:
		return "[x]"
	case service.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

// StatusLabel returns the human label for a task status.
func StatusLabel(status service.Status) string {
	switch status {
	case service.StatusDone:
		return "done"
	case service.StatusInProgress:
		return "in progress"
	default:
		return "to do"
	}
}

// FormatTask formats a task line for the list command.
// Format: "{N:>4}  {MARKER} {TITLE}\n" (4-wide right-aligned number,
// two spaces, status marker, space, title)
func FormatTask(w io.Writer, num int, task service.Task) {
	title := normalizeTitle(task.Title)
	fmt.Fprintf(w, "%4d  %s %s\n", num, StatusMarker(task.Status), title)
}

// FormatTaskDetail formats a task with its description and metadata, as
// printed after add and edit.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%s %s\n", StatusMarker(task.Status), normalizeTitle(task.Title))
	if strings.TrimSpace(task.Description) != "" {
		fmt.Fprintf(w, "      %s\n", task.Description)
	}
	fmt.Fprintf(w, "      status: %s  created: %s\n", StatusLabel(task.Status), task.CreatedAt.Format("2006-01-02 15:04"))
}

// FormatListHeader formats a section header for the list command.
func FormatListHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
