package tui

import (
	"fmt"
	"time"
)

// viewState represents the currently active view.
type viewState int

const (
	viewCalendar viewState = iota
	viewShifts
	viewSummary
	viewSettings
)

var viewNames = []string{"Calendar", "Shifts", "Summary", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type importDoneMsg struct {
	path             string
	applied, skipped int
}

// shiftsChangedMsg is sent after a shift type is created, edited or deleted
// so every view reloads.
type shiftsChangedMsg struct{}

type assignmentsClearedMsg struct{}

// --- Helpers ---

// formatHours renders a duration as decimal hours, e.g. 12.5h.
func formatHours(d time.Duration) string {
	return fmt.Sprintf("%.1fh", d.Hours())
}

func monthTitle(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month, year)
}

// addMonths steps year/month by n months.
func addMonths(year int, month time.Month, n int) (int, time.Month) {
	t := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
}
