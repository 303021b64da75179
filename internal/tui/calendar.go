package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/shiftcal/internal/shift"
	"github.com/sadopc/shiftcal/internal/store"
)

const cellWidth = 8

// calendarModel is the month grid. Picking a day cycles its shift; pressing
// a shift's hotkey assigns that shift directly.
type calendarModel struct {
	cal    *shift.Calendar
	store  *store.Store
	width  int
	height int
	now    func() time.Time

	year      int
	month     time.Month
	cursor    shift.Date
	weekStart time.Weekday

	shifts  []shift.ShiftType
	byID    map[string]shift.ShiftType
	days    map[shift.Date]string
	hotkeys map[string]shift.ShiftType
	summary shift.Summary
}

func newCalendarModel(cal *shift.Calendar, s *store.Store) calendarModel {
	c := calendarModel{
		cal:       cal,
		store:     s,
		now:       time.Now,
		weekStart: time.Monday,
	}
	c.cursor = shift.DateOf(c.now())
	c.year, c.month = c.cursor.Year, c.cursor.Month
	return c
}

func (c calendarModel) Init() tea.Cmd {
	return c.refresh()
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type calendarDataMsg struct {
	year      int
	month     time.Month
	weekStart time.Weekday
	shifts    []shift.ShiftType
	days      map[shift.Date]string
	summary   shift.Summary
	status    string
	err       error
}

func (c calendarModel) refresh() tea.Cmd {
	year, month := c.year, c.month
	return func() tea.Msg {
		return c.load(year, month, "")
	}
}

func (c calendarModel) load(year int, month time.Month, status string) calendarDataMsg {
	msg := calendarDataMsg{year: year, month: month, weekStart: time.Monday, status: status}
	if v, err := c.store.GetSetting(store.SettingWeekStart); err == nil && v == "sunday" {
		msg.weekStart = time.Sunday
	}
	msg.shifts, msg.err = c.cal.Shifts()
	if msg.err != nil {
		return msg
	}
	msg.days, msg.err = c.cal.AssignmentsForMonth(year, month)
	if msg.err != nil {
		return msg
	}
	msg.summary, msg.err = c.cal.MonthSummary(year, month)
	return msg
}

// mutate runs op against the calendar and reloads the month afterwards.
func (c calendarModel) mutate(op func() (string, error)) tea.Cmd {
	year, month := c.year, c.month
	return func() tea.Msg {
		status, err := op()
		if err != nil {
			return errStatus("Error", err)
		}
		return c.load(year, month, status)
	}
}

// capturesKey reports whether msg is a bound shift hotkey. Hotkeys win over
// the global single-letter bindings while the grid is shown.
func (c calendarModel) capturesKey(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 || msg.Alt {
		return false
	}
	_, ok := c.hotkeys[strings.ToLower(string(msg.Runes))]
	return ok
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarDataMsg:
		if msg.err != nil {
			return c, func() tea.Msg { return errStatus("Load error", msg.err) }
		}
		if msg.year != c.year || msg.month != c.month {
			// stale: the user already moved to another month
			return c, nil
		}
		c.applyData(msg)
		return c, nil

	case tea.KeyMsg:
		if c.capturesKey(msg) {
			d, k := c.cursor, strings.ToLower(string(msg.Runes))
			return c, c.mutate(func() (string, error) {
				id, err := c.cal.ResolveAssignment(d, k)
				if err != nil {
					return "", err
				}
				return c.describe(d, id), nil
			})
		}

		switch {
		case key.Matches(msg, keys.Cycle):
			d := c.cursor
			return c, c.mutate(func() (string, error) {
				if len(c.shifts) == 0 {
					return "No shift types yet. Press 2 to create one.", nil
				}
				id, err := c.cal.ResolveAssignment(d, "")
				if err != nil {
					return "", err
				}
				return c.describe(d, id), nil
			})
		case key.Matches(msg, keys.Clear):
			d := c.cursor
			return c, c.mutate(func() (string, error) {
				return d.String() + " cleared", c.cal.Unassign(d)
			})
		case key.Matches(msg, keys.Left):
			return c.moveCursor(-1)
		case key.Matches(msg, keys.Right):
			return c.moveCursor(1)
		case key.Matches(msg, keys.Up):
			return c.moveCursor(-7)
		case key.Matches(msg, keys.Down):
			return c.moveCursor(7)
		case key.Matches(msg, keys.PrevMonth):
			return c.stepMonth(-1)
		case key.Matches(msg, keys.NextMonth):
			return c.stepMonth(1)
		case key.Matches(msg, keys.Today):
			c.cursor = shift.DateOf(c.now())
			return c.goTo(c.cursor.Year, c.cursor.Month)
		}
	}
	return c, nil
}

func (c *calendarModel) applyData(msg calendarDataMsg) {
	c.weekStart = msg.weekStart
	c.shifts = msg.shifts
	c.days = msg.days
	c.summary = msg.summary
	c.byID = make(map[string]shift.ShiftType, len(msg.shifts))
	c.hotkeys = make(map[string]shift.ShiftType)
	for _, s := range msg.shifts {
		c.byID[s.ID] = s
		if s.Hotkey != "" {
			c.hotkeys[s.Hotkey] = s
		}
	}
}

func (c calendarModel) describe(d shift.Date, id string) string {
	if id == "" {
		return d.String() + " unassigned"
	}
	s, err := c.cal.GetShift(id)
	if err != nil {
		return d.String() + " set"
	}
	return fmt.Sprintf("%s → %s", d, s.Summary())
}

func (c calendarModel) moveCursor(days int) (calendarModel, tea.Cmd) {
	c.cursor = c.cursor.AddDays(days)
	if c.cursor.Year != c.year || c.cursor.Month != c.month {
		return c.goTo(c.cursor.Year, c.cursor.Month)
	}
	return c, nil
}

func (c calendarModel) stepMonth(n int) (calendarModel, tea.Cmd) {
	year, month := addMonths(c.year, c.month, n)
	day := min(c.cursor.Day, shift.DaysIn(year, month))
	c.cursor = shift.Date{Year: year, Month: month, Day: day}
	return c.goTo(year, month)
}

func (c calendarModel) goTo(year int, month time.Month) (calendarModel, tea.Cmd) {
	c.year, c.month = year, month
	c.days = nil
	return c, c.refresh()
}

// --- View ---

func (c calendarModel) view() string {
	w := c.width - 4
	title := titleStyle.Render(monthTitle(c.year, c.month))

	rows := []string{title, "", c.renderGrid(), "", c.renderSelected(), "", c.renderLegend()}
	if stats := c.renderStats(); stats != "" {
		rows = append(rows, "", stats)
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// weekdays returns the column order of the grid.
func (c calendarModel) weekdays() []time.Weekday {
	out := make([]time.Weekday, 7)
	for i := range out {
		out[i] = (c.weekStart + time.Weekday(i)) % 7
	}
	return out
}

func (c calendarModel) renderGrid() string {
	var header []string
	for _, wd := range c.weekdays() {
		header = append(header, weekdayHeaderStyle.Render(wd.String()[:3]))
	}
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	first := shift.Date{Year: c.year, Month: c.month, Day: 1}
	lead := (int(first.Weekday()) - int(c.weekStart) + 7) % 7
	today := shift.DateOf(c.now())

	var week []string
	for i := 0; i < lead; i++ {
		week = append(week, cellStyle.Render(""))
	}
	for day := 1; day <= shift.DaysIn(c.year, c.month); day++ {
		d := shift.Date{Year: c.year, Month: c.month, Day: day}
		week = append(week, c.renderCell(d, d == today))
		if len(week) == 7 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, week...))
			week = nil
		}
	}
	if len(week) > 0 {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, week...))
	}
	return strings.Join(lines, "\n")
}

func (c calendarModel) renderCell(d shift.Date, isToday bool) string {
	label := ""
	s, ok := c.byID[c.days[d]]
	if ok {
		label = truncateRunes(s.Label, 3)
	}
	text := fmt.Sprintf("%2d %-3s", d.Day, label)
	if d == c.cursor {
		text = "[" + text + "]"
	}

	style := cellStyle
	switch {
	case d == c.cursor:
		style = cursorCellStyle
	case isToday:
		style = todayCellStyle
	}
	if ok {
		style = style.Background(lipgloss.Color(s.Color)).Foreground(colorOnShift)
	}
	return style.Render(text)
}

func (c calendarModel) renderSelected() string {
	d := c.cursor
	head := highlightStyle.Render(fmt.Sprintf("%s %s", d.Weekday(), d))
	id := c.days[d]
	if id == "" {
		return head + "  " + mutedStyle.Render("unassigned")
	}
	s, ok := c.byID[id]
	if !ok {
		return head + "  " + warningStyle.Render("unknown shift")
	}
	_, start, endDate, end := s.Span(d)
	span := fmt.Sprintf("%s–%s", start, end)
	if endDate != d {
		span += " (+1)"
	}
	return fmt.Sprintf("%s  %s %s  %s", head, shiftBadge(s.Color, s.Label), s.Description, mutedStyle.Render(span))
}

func (c calendarModel) renderLegend() string {
	if len(c.shifts) == 0 {
		return mutedStyle.Render("No shift types. Press 2 to create one.")
	}
	var items []string
	for _, s := range c.shifts {
		item := colorDot(s.Color) + " " + s.Label
		if s.Hotkey != "" {
			item += mutedStyle.Render(" (" + s.Hotkey + ")")
		}
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func (c calendarModel) renderStats() string {
	if len(c.summary.Counts) == 0 {
		return ""
	}
	var parts []string
	for _, sc := range c.summary.Counts {
		if sc.Days == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %dd", sc.Shift.Label, sc.Days))
	}
	parts = append(parts, fmt.Sprintf("free %dd", c.summary.Unassigned))
	parts = append(parts, formatHours(c.summary.Total))
	return mutedStyle.Render(strings.Join(parts, " · "))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
