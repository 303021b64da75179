package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sadopc/shiftcal/internal/ics"
	"github.com/sadopc/shiftcal/internal/shift"
	"github.com/sadopc/shiftcal/internal/store"
)

var june15 = shift.NewDate(2025, time.June, 15)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestCalendar returns a calendar seeded with the default D/S/N/W types.
func newTestCalendar(t *testing.T) (*shift.Calendar, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	cal := shift.NewCalendar(s, zap.NewNop())
	if _, err := cal.Init(); err != nil {
		t.Fatalf("init calendar: %v", err)
	}
	return cal, s
}

// newTestCalendarModel returns a loaded grid showing June 2025 with the
// cursor on the 15th.
func newTestCalendarModel(t *testing.T) (calendarModel, *shift.Calendar) {
	t.Helper()
	cal, s := newTestCalendar(t)
	c := newCalendarModel(cal, s)
	c.now = func() time.Time { return time.Date(2025, time.June, 15, 9, 0, 0, 0, time.Local) }
	c.cursor = june15
	c.year, c.month = 2025, time.June
	c.setSize(120, 40)
	c = loadCalendar(t, c)
	return c, cal
}

func loadCalendar(t *testing.T, c calendarModel) calendarModel {
	t.Helper()
	c, _ = c.update(c.refresh()())
	return c
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestApp(t *testing.T) (App, *shift.Calendar) {
	t.Helper()
	cal, s := newTestCalendar(t)
	app := NewApp(cal, s, Options{ExportDir: t.TempDir()})
	app.width = 120
	app.height = 40
	return app, cal
}

// ============================================================
// Calendar model
// ============================================================

func TestCalendarLoadsMonth(t *testing.T) {
	c, _ := newTestCalendarModel(t)

	if len(c.shifts) != 4 {
		t.Fatalf("expected 4 shift types, got %d", len(c.shifts))
	}
	for _, hk := range []string{"d", "s", "n", "w"} {
		if _, ok := c.hotkeys[hk]; !ok {
			t.Fatalf("hotkey %q not loaded", hk)
		}
	}
	if c.weekStart != time.Monday {
		t.Fatalf("expected monday week start, got %v", c.weekStart)
	}
}

func TestCalendarCapturesKey(t *testing.T) {
	c, _ := newTestCalendarModel(t)

	tests := []struct {
		msg  tea.KeyMsg
		want bool
	}{
		{runes("d"), true},
		{runes("N"), true},
		{runes("q"), false},
		{runes("dd"), false},
		{tea.KeyMsg{Type: tea.KeyEnter}, false},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d"), Alt: true}, false},
	}
	for _, tt := range tests {
		if got := c.capturesKey(tt.msg); got != tt.want {
			t.Errorf("capturesKey(%q) = %v, want %v", tt.msg.String(), got, tt.want)
		}
	}
}

func TestCalendarCycleThroughShifts(t *testing.T) {
	c, cal := newTestCalendarModel(t)
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	want := []string{c.shifts[0].ID, c.shifts[1].ID, c.shifts[2].ID, c.shifts[3].ID, ""}
	for i, id := range want {
		var cmd tea.Cmd
		c, cmd = c.update(enter)
		if cmd == nil {
			t.Fatalf("step %d: expected a command", i)
		}
		msg, ok := cmd().(calendarDataMsg)
		if !ok {
			t.Fatalf("step %d: expected calendarDataMsg", i)
		}
		if msg.status == "" {
			t.Fatalf("step %d: expected a status line", i)
		}
		c, _ = c.update(msg)

		got, err := cal.Assignment(june15)
		if err != nil {
			t.Fatal(err)
		}
		if got != id || c.days[june15] != id {
			t.Fatalf("step %d: got %q (grid %q), want %q", i, got, c.days[june15], id)
		}
	}
}

func TestCalendarHotkeyAssigns(t *testing.T) {
	c, cal := newTestCalendarModel(t)
	night := c.hotkeys["n"]

	c, cmd := c.update(runes("N"))
	if cmd == nil {
		t.Fatal("hotkey should produce a command")
	}
	msg := cmd().(calendarDataMsg)
	if !strings.Contains(msg.status, "N") {
		t.Fatalf("status should name the shift, got %q", msg.status)
	}
	c, _ = c.update(msg)

	got, _ := cal.Assignment(june15)
	if got != night.ID {
		t.Fatalf("expected %q, got %q", night.ID, got)
	}

	// the same hotkey again keeps the assignment instead of cycling
	c, cmd = c.update(runes("n"))
	c, _ = c.update(cmd())
	got, _ = cal.Assignment(june15)
	if got != night.ID {
		t.Fatalf("hotkey should be idempotent, got %q", got)
	}
}

func TestCalendarClearDay(t *testing.T) {
	c, cal := newTestCalendarModel(t)
	if err := cal.Assign(june15, c.shifts[0].ID); err != nil {
		t.Fatal(err)
	}

	c, cmd := c.update(tea.KeyMsg{Type: tea.KeyBackspace})
	if cmd == nil {
		t.Fatal("clear should produce a command")
	}
	c, _ = c.update(cmd())

	got, _ := cal.Assignment(june15)
	if got != "" {
		t.Fatalf("expected unassigned, got %q", got)
	}
	if _, ok := c.days[june15]; ok {
		t.Fatal("grid should not show a cleared day")
	}
}

func TestCalendarCycleWithoutShifts(t *testing.T) {
	c, cal := newTestCalendarModel(t)
	for _, s := range c.shifts {
		if _, err := cal.DeleteShift(s.ID); err != nil {
			t.Fatal(err)
		}
	}
	c = loadCalendar(t, c)

	_, cmd := c.update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := cmd().(calendarDataMsg)
	if !strings.Contains(msg.status, "No shift types") {
		t.Fatalf("unexpected status %q", msg.status)
	}
	got, _ := cal.Assignment(june15)
	if got != "" {
		t.Fatalf("expected day to stay unassigned, got %q", got)
	}
}

func TestCalendarIgnoresStaleMonth(t *testing.T) {
	c, _ := newTestCalendarModel(t)
	before := len(c.shifts)

	c, _ = c.update(calendarDataMsg{year: 2025, month: time.July})
	if len(c.shifts) != before {
		t.Fatal("data for another month should be ignored")
	}
}

func TestCalendarLoadError(t *testing.T) {
	c, _ := newTestCalendarModel(t)

	_, cmd := c.update(calendarDataMsg{year: 2025, month: time.June, err: errors.New("boom")})
	if cmd == nil {
		t.Fatal("expected error status command")
	}
	st, ok := cmd().(statusMsg)
	if !ok || !st.isError {
		t.Fatalf("expected error status, got %#v", st)
	}
}

func TestCalendarMoveCursor(t *testing.T) {
	c, _ := newTestCalendarModel(t)

	c, cmd := c.moveCursor(7)
	if c.cursor != shift.NewDate(2025, time.June, 22) {
		t.Fatalf("unexpected cursor %s", c.cursor)
	}
	if cmd != nil {
		t.Fatal("moving within the month should not reload")
	}

	c.cursor = shift.NewDate(2025, time.June, 30)
	c, cmd = c.moveCursor(1)
	if c.cursor != shift.NewDate(2025, time.July, 1) {
		t.Fatalf("unexpected cursor %s", c.cursor)
	}
	if c.month != time.July || cmd == nil {
		t.Fatal("crossing into July should switch month and reload")
	}
}

func TestCalendarStepMonthClampsDay(t *testing.T) {
	c, _ := newTestCalendarModel(t)
	c.cursor = shift.NewDate(2025, time.January, 31)
	c.year, c.month = 2025, time.January

	c, cmd := c.stepMonth(1)
	if c.cursor != shift.NewDate(2025, time.February, 28) {
		t.Fatalf("expected Feb 28, got %s", c.cursor)
	}
	if cmd == nil {
		t.Fatal("expected reload")
	}

	c, _ = c.stepMonth(-2)
	if c.year != 2024 || c.month != time.December || c.cursor.Day != 28 {
		t.Fatalf("unexpected position %d-%d cursor %s", c.year, c.month, c.cursor)
	}
}

func TestCalendarToday(t *testing.T) {
	c, _ := newTestCalendarModel(t)
	c.cursor = shift.NewDate(2024, time.March, 3)
	c.year, c.month = 2024, time.March

	c, _ = c.update(runes("t"))
	if c.cursor != june15 || c.month != time.June || c.year != 2025 {
		t.Fatalf("today should jump to June 15 2025, got %s", c.cursor)
	}
}

func TestCalendarWeekdays(t *testing.T) {
	c, _ := newTestCalendarModel(t)

	days := c.weekdays()
	if days[0] != time.Monday || days[6] != time.Sunday {
		t.Fatalf("monday start: got %v", days)
	}

	c.weekStart = time.Sunday
	days = c.weekdays()
	if days[0] != time.Sunday || days[6] != time.Saturday {
		t.Fatalf("sunday start: got %v", days)
	}
}

func TestCalendarWeekStartSetting(t *testing.T) {
	cal, s := newTestCalendar(t)
	if err := s.SetSetting(store.SettingWeekStart, "sunday"); err != nil {
		t.Fatal(err)
	}
	c := newCalendarModel(cal, s)
	c = loadCalendar(t, c)
	if c.weekStart != time.Sunday {
		t.Fatalf("expected sunday, got %v", c.weekStart)
	}
}

func TestCalendarView(t *testing.T) {
	c, cal := newTestCalendarModel(t)
	if err := cal.Assign(june15, c.shifts[2].ID); err != nil {
		t.Fatal(err)
	}
	c = loadCalendar(t, c)

	out := c.view()
	for _, want := range []string{"June 2025", "Mon", "Sun", "[15 N  ]", "Night", "20:30–08:30 (+1)"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Day", 3, "Day"},
		{"Night", 3, "Nig"},
		{"日勤です", 2, "日勤"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

// ============================================================
// Shift types view
// ============================================================

func TestShiftFormFieldsForcesNextDay(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		nextDay    bool
		want       bool
	}{
		{"day", "08:00", "16:00", false, false},
		{"overnight", "22:00", "06:00", false, true},
		{"explicit", "08:00", "20:00", true, true},
		{"bad time", "xx", "06:00", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &shiftFormValues{label: "X", start: tt.start, end: tt.end, nextDay: tt.nextDay}
			if got := v.fields().IsNextDay; got != tt.want {
				t.Fatalf("IsNextDay = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateLabelAndClock(t *testing.T) {
	if err := validateLabel("  "); !errors.Is(err, shift.ErrEmptyLabel) {
		t.Fatalf("blank label: got %v", err)
	}
	if err := validateLabel("Day"); err != nil {
		t.Fatalf("valid label: %v", err)
	}
	if err := validateClock("25:00"); !errors.Is(err, shift.ErrInvalidTime) {
		t.Fatalf("bad clock: got %v", err)
	}
	if err := validateClock("07:45"); err != nil {
		t.Fatalf("valid clock: %v", err)
	}
}

func TestValidateHotkey(t *testing.T) {
	cal, _ := newTestCalendar(t)
	day, err := cal.ShiftByHotkey("d")
	if err != nil {
		t.Fatal(err)
	}

	if err := validateHotkey(cal, "D", ""); !errors.Is(err, shift.ErrHotkeyConflict) {
		t.Fatalf("taken hotkey: got %v", err)
	}
	if err := validateHotkey(cal, "d", day.ID); err != nil {
		t.Fatalf("own hotkey should be allowed: %v", err)
	}
	if err := validateHotkey(cal, "", ""); err != nil {
		t.Fatalf("empty hotkey should be allowed: %v", err)
	}
	if err := validateHotkey(cal, "!", ""); !errors.Is(err, shift.ErrInvalidHotkey) {
		t.Fatalf("invalid hotkey: got %v", err)
	}
	if err := validateHotkey(cal, "x", ""); err != nil {
		t.Fatalf("free hotkey: %v", err)
	}
}

func TestShiftsSubmitCreate(t *testing.T) {
	cal, _ := newTestCalendar(t)
	m := newShiftsModel(cal)
	m.formKind = formNewShift
	*m.values = shiftFormValues{label: "Late", start: "14:00", end: "22:00", color: "#EF4444", hotkey: "L"}

	if cmd := m.submit(); cmd == nil {
		t.Fatal("expected follow-up messages")
	}
	s, err := cal.ShiftByHotkey("l")
	if err != nil {
		t.Fatalf("created shift not found: %v", err)
	}
	if s.Label != "Late" || s.IsNextDay {
		t.Fatalf("unexpected shift %+v", s)
	}
}

func TestShiftsSubmitDeleteRequiresConfirm(t *testing.T) {
	cal, _ := newTestCalendar(t)
	m := newShiftsModel(cal)
	m, _ = m.update(m.refresh()())
	target := m.shifts[0]
	if err := cal.Assign(june15, target.ID); err != nil {
		t.Fatal(err)
	}

	m.formKind = formDeleteShift
	m.editingID = target.ID
	m.values.confirm = false
	if cmd := m.submit(); cmd != nil {
		t.Fatal("unconfirmed delete should do nothing")
	}
	if _, err := cal.GetShift(target.ID); err != nil {
		t.Fatal("shift should still exist")
	}

	m.values.confirm = true
	if cmd := m.submit(); cmd == nil {
		t.Fatal("expected follow-up messages")
	}
	if _, err := cal.GetShift(target.ID); !errors.Is(err, shift.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, _ := cal.Assignment(june15)
	if got != "" {
		t.Fatalf("delete should cascade, day still holds %q", got)
	}
}

func TestShiftsListNavigation(t *testing.T) {
	cal, _ := newTestCalendar(t)
	m := newShiftsModel(cal)
	m.setSize(120, 40)
	m, _ = m.update(m.refresh()())

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", m.cursor)
	}
	for i := 0; i < 5; i++ {
		m, _ = m.update(tea.KeyMsg{Type: tea.KeyUp})
	}
	if m.cursor != 0 {
		t.Fatalf("cursor should stop at 0, got %d", m.cursor)
	}

	out := m.view()
	if !strings.Contains(out, "Shift Types") || !strings.Contains(out, "Evening") {
		t.Fatal("list view missing content")
	}
}

func TestShiftsFormOpensAndCancels(t *testing.T) {
	cal, _ := newTestCalendar(t)
	m := newShiftsModel(cal)
	m, _ = m.update(m.refresh()())

	m, _ = m.update(runes("n"))
	if !m.formActive || m.formKind != formNewShift {
		t.Fatal("n should open the new-shift form")
	}
	if m.values.start != "08:00" || m.values.color != shift.DefaultColor {
		t.Fatalf("unexpected defaults %+v", *m.values)
	}

	// data reloads must not be swallowed by the open form
	m, _ = m.update(shiftsDataMsg{})
	if len(m.shifts) != 0 || !m.formActive {
		t.Fatal("data message should update the list and keep the form")
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.formActive {
		t.Fatal("esc should close the form")
	}
}

func TestContainsColor(t *testing.T) {
	if !containsColor([]string{"#3B82F6"}, "#3b82f6") {
		t.Fatal("colour match should ignore case")
	}
	if containsColor(nil, "#000000") {
		t.Fatal("empty list has no colours")
	}
}

// ============================================================
// Summary view
// ============================================================

func TestSummaryModel(t *testing.T) {
	cal, _ := newTestCalendar(t)
	day, _ := cal.ShiftByHotkey("d")
	if err := cal.Assign(june15, day.ID); err != nil {
		t.Fatal(err)
	}

	r := newSummaryModel(cal, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.Local))
	r.setSize(100, 30)
	r, cmd := r.showMonth(2025, time.June)
	r, _ = r.update(cmd())

	if len(r.summary.Counts) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(r.summary.Counts))
	}
	if r.summary.Counts[0].Days != 1 || r.summary.Unassigned != 29 {
		t.Fatalf("unexpected summary %+v", r.summary)
	}

	out := r.view()
	for _, want := range []string{"Summary", "June 2025", "unassigned", "12.0h"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary view missing %q", want)
		}
	}
}

func TestSummaryMonthNavigation(t *testing.T) {
	cal, _ := newTestCalendar(t)
	r := newSummaryModel(cal, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.Local))

	r, cmd := r.update(tea.KeyMsg{Type: tea.KeyLeft})
	if r.year != 2024 || r.month != time.December || cmd == nil {
		t.Fatalf("left should go to Dec 2024, got %d-%d", r.year, r.month)
	}

	// a late reply for January is dropped
	r, _ = r.update(summaryDataMsg{summary: shift.Summary{Year: 2025, Month: time.January, Unassigned: 31}})
	if r.summary.Unassigned != 0 {
		t.Fatal("stale summary should be ignored")
	}

	r, _ = r.update(tea.KeyMsg{Type: tea.KeyRight})
	r, _ = r.update(tea.KeyMsg{Type: tea.KeyRight})
	if r.year != 2025 || r.month != time.February {
		t.Fatalf("expected Feb 2025, got %d-%d", r.year, r.month)
	}
}

func TestSummaryEmptyView(t *testing.T) {
	cal, _ := newTestCalendar(t)
	r := newSummaryModel(cal, time.Now())
	r.setSize(100, 30)
	if !strings.Contains(r.view(), "No shift types") {
		t.Fatal("empty summary should say so")
	}
}

// ============================================================
// Settings
// ============================================================

func TestValidateMinutes(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"0", true},
		{"35", true},
		{"1440", true},
		{"-5", false},
		{"abc", false},
		{"", false},
	}
	for _, tt := range tests {
		err := validateMinutes(tt.in)
		if (err == nil) != tt.valid {
			t.Errorf("validateMinutes(%q) = %v, want valid=%v", tt.in, err, tt.valid)
		}
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		key, val, want string
	}{
		{store.SettingReminderMinutes, "0", "off"},
		{store.SettingReminderMinutes, "35", "35 min before start"},
		{store.SettingReminderMinutes, "x", "x"},
		{store.SettingWeekStart, "sunday", "sunday"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.val); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.val, got, tt.want)
		}
	}
}

func TestSettingsSaveAndView(t *testing.T) {
	cal, s := newTestCalendar(t)
	m := newSettingsModel(s, cal)
	m.setSize(120, 40)

	*m.weekStart = "sunday"
	*m.reminderMinutes = "0"
	if err := m.saveSettings(); err != nil {
		t.Fatal(err)
	}
	if got := s.GetSettingInt(store.SettingReminderMinutes, 35); got != 0 {
		t.Fatalf("reminder not saved, got %d", got)
	}

	m, _ = m.update(m.refresh()())
	out := m.view()
	for _, want := range []string{"week_start", "sunday", "off", "shiftTypes"} {
		if !strings.Contains(out, want) {
			t.Errorf("settings view missing %q", want)
		}
	}
}

func TestSettingsGetValFallback(t *testing.T) {
	cal, s := newTestCalendar(t)
	m := newSettingsModel(s, cal)
	if got := m.getVal("missing", "dflt"); got != "dflt" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := m.getVal(store.SettingWeekStart, "x"); got != "monday" {
		t.Fatalf("expected stored monday, got %q", got)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatHours(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.0h"},
		{12 * time.Hour, "12.0h"},
		{7*time.Hour + 30*time.Minute, "7.5h"},
	}
	for _, tt := range tests {
		if got := formatHours(tt.d); got != tt.want {
			t.Errorf("formatHours(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		year      int
		month     time.Month
		n         int
		wantYear  int
		wantMonth time.Month
	}{
		{2025, time.June, 1, 2025, time.July},
		{2025, time.December, 1, 2026, time.January},
		{2025, time.January, -1, 2024, time.December},
		{2025, time.March, -14, 2024, time.January},
	}
	for _, tt := range tests {
		y, m := addMonths(tt.year, tt.month, tt.n)
		if y != tt.wantYear || m != tt.wantMonth {
			t.Errorf("addMonths(%d, %v, %d) = %d %v, want %d %v",
				tt.year, tt.month, tt.n, y, m, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestViewNames(t *testing.T) {
	if len(viewNames) != 4 {
		t.Fatalf("expected 4 view names, got %d", len(viewNames))
	}
	if viewNames[viewCalendar] != "Calendar" || viewNames[viewSettings] != "Settings" {
		t.Fatal("view names out of order")
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)

	if app.activeView != viewCalendar {
		t.Fatal("default view should be the calendar")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app, _ := newTestApp(t)

	for v := range viewNames {
		app.activeView = viewState(v)
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	app, _ := newTestApp(t)
	app.width = 0
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _ := newTestApp(t)

	model, _ := app.Update(statusMsg{text: "test status"})
	app = model.(App)
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppTabSwitching(t *testing.T) {
	app, _ := newTestApp(t)
	app.calendar = loadCalendar(t, app.calendar)

	model, cmd := app.Update(runes("2"))
	app = model.(App)
	if app.activeView != viewShifts || cmd == nil {
		t.Fatal("2 should switch to shifts and reload")
	}

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = model.(App)
	if app.activeView != viewSummary {
		t.Fatal("tab should move to summary")
	}
	if app.summary.year != app.calendar.year || app.summary.month != app.calendar.month {
		t.Fatal("summary should follow the calendar month")
	}

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	model, _ = model.(App).Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.(App).activeView != viewCalendar {
		t.Fatal("tab should wrap around to the calendar")
	}
}

func TestAppHotkeyBeatsGlobalKeys(t *testing.T) {
	app, cal := newTestApp(t)
	if _, err := cal.CreateShift(shift.Fields{Label: "E", StartTime: "06:00", EndTime: "14:00", Hotkey: "e"}); err != nil {
		t.Fatal(err)
	}
	app.calendar = loadCalendar(t, app.calendar)

	model, cmd := app.Update(runes("e"))
	app = model.(App)
	if app.exportPicking {
		t.Fatal("a shift hotkey should not open the export picker")
	}
	if cmd == nil {
		t.Fatal("hotkey should assign")
	}

	// outside the grid the global binding applies
	app.activeView = viewShifts
	model, _ = app.Update(runes("e"))
	if !model.(App).exportPicking {
		t.Fatal("e should open the export picker outside the calendar")
	}
}

func TestAppQuit(t *testing.T) {
	app, _ := newTestApp(t)
	app.calendar = loadCalendar(t, app.calendar)

	_, cmd := app.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected QuitMsg")
	}
}

func TestAppExportPicker(t *testing.T) {
	app, _ := newTestApp(t)
	app.activeView = viewShifts

	model, _ := app.Update(runes("e"))
	app = model.(App)
	for i := 0; i < 10; i++ {
		model, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
		app = model.(App)
	}
	if app.exportCursor != len(exportFormatNames)-1 {
		t.Fatalf("cursor should stop at last entry, got %d", app.exportCursor)
	}
	if !strings.Contains(app.View(), "Import .ics") {
		t.Fatal("picker should be rendered")
	}

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(App).exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestAppExportFormats(t *testing.T) {
	app, cal := newTestApp(t)
	app.calendar.year, app.calendar.month = 2025, time.June
	night, _ := cal.ShiftByHotkey("n")
	if err := cal.Assign(june15, night.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		format exportFormat
		name   string
	}{
		{formatICS, ics.FileName(2025, time.June)},
		{formatCSV, "shift-roster-2025-06.csv"},
		{formatJSON, "shift-roster-2025-06.json"},
		{formatXLSX, "shift-roster-2025-06.xlsx"},
	}
	for _, tt := range tests {
		msg := app.doExport(tt.format)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("format %d: expected exportDoneMsg, got %#v", tt.format, msg)
		}
		want := filepath.Join(app.opts.ExportDir, tt.name)
		if done.path != want {
			t.Fatalf("format %d: path %q, want %q", tt.format, done.path, want)
		}
		if _, err := os.Stat(want); err != nil {
			t.Fatalf("format %d: file not written: %v", tt.format, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(app.opts.ExportDir, ics.FileName(2025, time.June)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "TRIGGER:-PT35M") {
		t.Fatal("default reminder should be applied")
	}
}

func TestAppExportUsesReminderSetting(t *testing.T) {
	app, cal := newTestApp(t)
	app.calendar.year, app.calendar.month = 2025, time.June
	day, _ := cal.ShiftByHotkey("d")
	if err := cal.Assign(june15, day.ID); err != nil {
		t.Fatal(err)
	}
	if err := app.store.SetSetting(store.SettingReminderMinutes, "0"); err != nil {
		t.Fatal(err)
	}

	done := app.doExport(formatICS)().(exportDoneMsg)
	data, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "VALARM") {
		t.Fatal("reminder 0 should omit the alarm")
	}
}

func TestAppImportRoundTrip(t *testing.T) {
	app, cal := newTestApp(t)
	app.calendar.year, app.calendar.month = 2025, time.June
	day, _ := cal.ShiftByHotkey("d")
	night, _ := cal.ShiftByHotkey("n")
	cal.Assign(june15, day.ID)
	cal.Assign(june15.AddDays(1), night.ID)

	if _, ok := app.doExport(formatICS)().(exportDoneMsg); !ok {
		t.Fatal("export failed")
	}
	if err := cal.ClearAssignments(); err != nil {
		t.Fatal(err)
	}

	msg := app.doExport(formatImportICS)()
	done, ok := msg.(importDoneMsg)
	if !ok {
		t.Fatalf("expected importDoneMsg, got %#v", msg)
	}
	if done.applied != 2 || done.skipped != 0 {
		t.Fatalf("applied=%d skipped=%d", done.applied, done.skipped)
	}
	got, _ := cal.Assignment(june15.AddDays(1))
	if got != night.ID {
		t.Fatalf("night shift not restored, got %q", got)
	}

	model, cmd := app.Update(done)
	if !strings.Contains(model.(App).status, "Imported 2 days") || cmd == nil {
		t.Fatal("import should report and refresh")
	}
}

func TestAppImportMissingFile(t *testing.T) {
	app, _ := newTestApp(t)
	msg := app.doExport(formatImportICS)()
	st, ok := msg.(statusMsg)
	if !ok || !st.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"cell", func() string { return cellStyle.Render("test") }},
		{"cursorCell", func() string { return cursorCellStyle.Render("test") }},
		{"todayCell", func() string { return todayCellStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"subtitle", func() string { return subtitleStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
		{"badge", func() string { return shiftBadge("#3B82F6", "D") }},
		{"dot", func() string { return colorDot("#3B82F6") }},
	}

	for _, s := range styles {
		if result := s.fn(); result == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
