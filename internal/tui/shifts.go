package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/shiftcal/internal/shift"
)

type shiftFormKind int

const (
	formNewShift shiftFormKind = iota
	formEditShift
	formDeleteShift
)

// shiftFormValues backs the huh form. It is held by pointer so the bound
// values survive the model being copied.
type shiftFormValues struct {
	label       string
	description string
	start       string
	end         string
	nextDay     bool
	color       string
	hotkey      string
	confirm     bool
}

// fields converts the form into shift fields. A range whose end is before
// its start always ends on the next day.
func (v *shiftFormValues) fields() shift.Fields {
	f := shift.Fields{
		Label:       v.label,
		Description: v.description,
		StartTime:   v.start,
		EndTime:     v.end,
		IsNextDay:   v.nextDay,
		Color:       v.color,
		Hotkey:      v.hotkey,
	}
	start, err1 := shift.ParseClock(v.start)
	end, err2 := shift.ParseClock(v.end)
	if err1 == nil && err2 == nil && shift.CrossesMidnight(start, end) {
		f.IsNextDay = true
	}
	return f
}

type shiftsModel struct {
	cal    *shift.Calendar
	width  int
	height int

	shifts []shift.ShiftType
	cursor int

	formActive bool
	form       *huh.Form
	formKind   shiftFormKind
	values     *shiftFormValues
	editingID  string
}

func newShiftsModel(cal *shift.Calendar) shiftsModel {
	return shiftsModel{
		cal:    cal,
		values: &shiftFormValues{},
	}
}

func (m *shiftsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type shiftsDataMsg struct {
	shifts []shift.ShiftType
	err    error
}

func (m shiftsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		shifts, err := m.cal.Shifts()
		return shiftsDataMsg{shifts: shifts, err: err}
	}
}

func (m shiftsModel) update(msg tea.Msg) (shiftsModel, tea.Cmd) {
	if data, ok := msg.(shiftsDataMsg); ok {
		if data.err != nil {
			return m, func() tea.Msg { return errStatus("Load error", data.err) }
		}
		m.shifts = data.shifts
		if m.cursor >= len(m.shifts) {
			m.cursor = max(0, len(m.shifts)-1)
		}
		return m, nil
	}

	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.shifts)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showShiftForm(nil)
		case key.Matches(msg, keys.Edit):
			if len(m.shifts) > 0 {
				s := m.shifts[m.cursor]
				return m.showShiftForm(&s)
			}
		case key.Matches(msg, keys.Delete):
			if len(m.shifts) > 0 {
				return m.showDeleteForm()
			}
		}
	}
	return m, nil
}

func (m shiftsModel) showShiftForm(existing *shift.ShiftType) (shiftsModel, tea.Cmd) {
	*m.values = shiftFormValues{start: "08:00", end: "16:00", color: shift.DefaultColor}
	m.formKind = formNewShift
	m.editingID = ""
	if existing != nil {
		*m.values = shiftFormValues{
			label:       existing.Label,
			description: existing.Description,
			start:       existing.StartTime,
			end:         existing.EndTime,
			nextDay:     existing.IsNextDay,
			color:       existing.Color,
			hotkey:      strings.ToUpper(existing.Hotkey),
		}
		m.formKind = formEditShift
		m.editingID = existing.ID
	}

	colors := shift.PresetColors
	if !containsColor(colors, m.values.color) {
		colors = append([]string{m.values.color}, colors...)
	}
	colorOptions := make([]huh.Option[string], len(colors))
	for i, c := range colors {
		colorOptions[i] = huh.NewOption(colorDot(c)+" "+c, c)
	}

	editingID := m.editingID
	cal := m.cal
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Label").Value(&m.values.label).Validate(validateLabel),
			huh.NewInput().Title("Description").Value(&m.values.description),
			huh.NewInput().Title("Start (HH:MM)").Value(&m.values.start).Validate(validateClock),
			huh.NewInput().Title("End (HH:MM)").Value(&m.values.end).Validate(validateClock),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Ends on the next day").
				Description("Set automatically when the end is before the start").
				Value(&m.values.nextDay),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(&m.values.color),
			huh.NewInput().Title("Hotkey (A-Z, 0-9, optional)").CharLimit(1).
				Value(&m.values.hotkey).
				Validate(func(s string) error { return validateHotkey(cal, s, editingID) }),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m shiftsModel) showDeleteForm() (shiftsModel, tea.Cmd) {
	s := m.shifts[m.cursor]
	m.values.confirm = false
	m.formKind = formDeleteShift
	m.editingID = s.ID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete shift %q?", s.Label)).
				Description("Every day assigned to it becomes unassigned.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.values.confirm),
		),
	).WithShowHelp(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m shiftsModel) updateForm(msg tea.Msg) (shiftsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.formActive = false
		m.form = nil
		return m, m.submit()
	case huh.StateAborted:
		m.formActive = false
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m shiftsModel) submit() tea.Cmd {
	var status statusMsg
	switch m.formKind {
	case formNewShift:
		f := m.values.fields()
		if _, err := m.cal.CreateShift(f); err != nil {
			return func() tea.Msg { return errStatus("Create failed", err) }
		}
		status = statusMsg{text: fmt.Sprintf("Shift %q created", strings.TrimSpace(f.Label))}
	case formEditShift:
		f := m.values.fields()
		if err := m.cal.UpdateShift(m.editingID, f); err != nil {
			return func() tea.Msg { return errStatus("Update failed", err) }
		}
		status = statusMsg{text: fmt.Sprintf("Shift %q updated", strings.TrimSpace(f.Label))}
	case formDeleteShift:
		if !m.values.confirm {
			return nil
		}
		removed, err := m.cal.DeleteShift(m.editingID)
		if err != nil {
			return func() tea.Msg { return errStatus("Delete failed", err) }
		}
		status = statusMsg{text: fmt.Sprintf("Shift deleted, %d days unassigned", removed)}
	}
	return tea.Batch(
		func() tea.Msg { return status },
		func() tea.Msg { return shiftsChangedMsg{} },
	)
}

func validateLabel(s string) error {
	if strings.TrimSpace(s) == "" {
		return shift.ErrEmptyLabel
	}
	return nil
}

func validateClock(s string) error {
	_, err := shift.ParseClock(s)
	if err != nil {
		return shift.ErrInvalidTime
	}
	return nil
}

func validateHotkey(cal *shift.Calendar, s, excludeID string) error {
	hk, err := shift.NormalizeHotkey(s)
	if err != nil {
		return err
	}
	taken, err := cal.HotkeyConflict(hk, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%s: %w", strings.ToUpper(hk), shift.ErrHotkeyConflict)
	}
	return nil
}

func containsColor(colors []string, c string) bool {
	for _, x := range colors {
		if strings.EqualFold(x, c) {
			return true
		}
	}
	return false
}

func (m shiftsModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		title := "New Shift"
		switch m.formKind {
		case formEditShift:
			title = "Edit Shift"
		case formDeleteShift:
			title = "Delete Shift"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}
	return m.renderList(w)
}

func (m shiftsModel) renderList(w int) string {
	title := titleStyle.Render("Shift Types")

	if len(m.shifts) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No shift types yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-10s %-20s %-16s %-6s", "", "Label", "Description", "Hours", "Key"))
	rows = append(rows, header)

	for i, s := range m.shifts {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		span := fmt.Sprintf("%s–%s", s.StartTime, s.EndTime)
		if s.IsNextDay {
			span += " +1"
		}
		hk := "-"
		if s.Hotkey != "" {
			hk = strings.ToUpper(s.Hotkey)
		}
		row := style.Render(fmt.Sprintf("%s%s %-10s %-20s %-16s %-6s",
			cursor, colorDot(s.Color), truncateRunes(s.Label, 10), truncateRunes(s.Description, 20), span, hk))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  order = click cycle   n: new  enter: edit  x: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
