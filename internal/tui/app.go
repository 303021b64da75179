package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/shiftcal/internal/export"
	"github.com/sadopc/shiftcal/internal/ics"
	"github.com/sadopc/shiftcal/internal/shift"
	"github.com/sadopc/shiftcal/internal/store"
)

// Options configures where exports go and how calendar files are labelled.
type Options struct {
	ExportDir string
	ProductID string
	Log       *zap.Logger
}

type exportFormat int

const (
	formatICS exportFormat = iota
	formatCSV
	formatJSON
	formatXLSX
	formatImportICS
)

var exportFormatNames = []string{
	"iCalendar (.ics)",
	"CSV",
	"JSON",
	"Excel (.xlsx)",
	"Import .ics for this month",
}

// App is the root Bubble Tea model.
type App struct {
	cal    *shift.Calendar
	store  *store.Store
	opts   Options
	log    *zap.Logger
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	calendar calendarModel
	shifts   shiftsModel
	summary  summaryModel
	settings settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(cal *shift.Calendar, s *store.Store, opts Options) App {
	h := help.New()
	h.ShowAll = false

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	calendar := newCalendarModel(cal, s)
	return App{
		cal:        cal,
		store:      s,
		opts:       opts,
		log:        log,
		activeView: viewCalendar,
		calendar:   calendar,
		shifts:     newShiftsModel(cal),
		summary:    newSummaryModel(cal, calendar.now()),
		settings:   newSettingsModel(s, cal),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.calendar.Init(),
		a.shifts.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.calendar.setSize(a.width, contentHeight)
		a.shifts.setSize(a.width, contentHeight)
		a.summary.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		if a.activeView == viewCalendar && a.calendar.capturesKey(msg) {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewCalendar)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewShifts)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewSummary)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	// Data messages go to their owner regardless of the active view.
	case calendarDataMsg:
		if msg.status != "" && msg.err == nil {
			a.status, a.statusError = msg.status, false
		}
		a.calendar, cmd = a.calendar.update(msg)
		return a, cmd

	case shiftsDataMsg:
		a.shifts, cmd = a.shifts.update(msg)
		return a, cmd

	case summaryDataMsg:
		a.summary, cmd = a.summary.update(msg)
		return a, cmd

	case settingsDataMsg:
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case statusMsg:
		a.status, a.statusError = msg.text, msg.isError
		return a, nil

	case shiftsChangedMsg, assignmentsClearedMsg:
		if _, ok := msg.(assignmentsClearedMsg); ok {
			a.status, a.statusError = "All assignments cleared", false
		}
		return a, a.refreshAll()

	case exportDoneMsg:
		a.status, a.statusError = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil

	case importDoneMsg:
		a.status = fmt.Sprintf("Imported %d days from %s", msg.applied, msg.path)
		if msg.skipped > 0 {
			a.status += fmt.Sprintf(" (%d skipped)", msg.skipped)
		}
		a.statusError = false
		return a, a.refreshAll()
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	if v == viewSummary {
		var cmd tea.Cmd
		a.summary, cmd = a.summary.showMonth(a.calendar.year, a.calendar.month)
		return a, cmd
	}
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewShifts:
		a.shifts, cmd = a.shifts.update(msg)
	case viewSummary:
		a.summary, cmd = a.summary.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewShifts:
		return a.shifts.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewCalendar:
		return a.calendar.refresh()
	case viewShifts:
		return a.shifts.refresh()
	case viewSummary:
		return a.summary.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.calendar.refresh(),
		a.shifts.refresh(),
		a.summary.refresh(),
		a.settings.refresh(),
	)
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewCalendar:
		content = a.calendar.view()
	case viewShifts:
		content = a.shifts.view()
	case viewSummary:
		content = a.summary.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("shiftcal")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Export"), "  ",
		subtitleStyle.Render(monthTitle(a.calendar.year, a.calendar.month)),
	)
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormatNames {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  files go to "+a.opts.ExportDir))
	rows = append(rows, mutedStyle.Render("  enter: run  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormatNames)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormat(a.exportCursor))
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the month currently shown in the calendar.
func (a App) doExport(format exportFormat) tea.Cmd {
	year, month := a.calendar.year, a.calendar.month
	dir := export.Dir(a.opts.ExportDir)

	return func() tea.Msg {
		switch format {
		case formatICS:
			exp := ics.NewExporter(a.cal, a.icsOptions(), a.log)
			name, err := exp.Download(year, month, dir)
			if err != nil {
				return errStatus("ICS error", err)
			}
			return exportDoneMsg{path: dir.Path(name)}

		case formatImportICS:
			return a.importICS(dir.Path(ics.FileName(year, month)))
		}

		entries, err := a.cal.MonthRoster(year, month)
		if err != nil {
			return errStatus("Export error", err)
		}
		roster := export.Roster{Year: year, Month: month, Entries: entries}
		if err := os.MkdirAll(string(dir), 0o755); err != nil {
			return errStatus("Export error", err)
		}

		var path string
		switch format {
		case formatCSV:
			path = dir.Path(export.FileName(year, month, "csv"))
			err = export.ToCSV(roster, path)
		case formatJSON:
			path = dir.Path(export.FileName(year, month, "json"))
			err = export.ToJSON(roster, path)
		case formatXLSX:
			path = dir.Path(export.FileName(year, month, "xlsx"))
			err = export.ToXLSX(roster, path)
		}
		if err != nil {
			return errStatus("Export error", err)
		}
		a.log.Info("roster exported", zap.String("path", path), zap.Int("entries", len(entries)))
		return exportDoneMsg{path: path}
	}
}

func (a App) icsOptions() ics.Options {
	opts := ics.DefaultOptions()
	if a.opts.ProductID != "" {
		opts.ProdID = a.opts.ProductID
	}
	opts.ReminderMinutes = a.store.GetSettingInt(store.SettingReminderMinutes, ics.DefaultReminderMinutes)
	return opts
}

func (a App) importICS(path string) tea.Msg {
	f, err := os.Open(path)
	if err != nil {
		return errStatus("Import error", err)
	}
	defer f.Close()

	days, err := ics.Import(f, a.log)
	if err != nil {
		return errStatus("Import error", err)
	}
	applied, skipped, err := a.cal.Restore(days)
	if err != nil {
		return errStatus("Import error", err)
	}
	a.log.Info("import applied",
		zap.String("path", path),
		zap.Int("applied", applied),
		zap.Int("skipped", skipped),
	)
	return importDoneMsg{path: path, applied: applied, skipped: skipped}
}
