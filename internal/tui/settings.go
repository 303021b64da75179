package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/shiftcal/internal/shift"
	"github.com/sadopc/shiftcal/internal/store"
)

type settingsFormKind int

const (
	formPreferences settingsFormKind = iota
	formClearAssignments
)

type settingsModel struct {
	store  *store.Store
	cal    *shift.Calendar
	width  int
	height int

	settings   []store.Setting
	records    []store.Record
	formActive bool
	form       *huh.Form
	formKind   settingsFormKind

	// Form values as pointers (survive value copies)
	weekStart       *string
	reminderMinutes *string
	confirmClear    *bool
}

func newSettingsModel(s *store.Store, cal *shift.Calendar) settingsModel {
	ws, rm, cc := "", "", false
	return settingsModel{
		store:           s,
		cal:             cal,
		weekStart:       &ws,
		reminderMinutes: &rm,
		confirmClear:    &cc,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	records  []store.Record
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		records, _ := s.store.ListRecords()
		return settingsDataMsg{settings: settings, records: records}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if data, ok := msg.(settingsDataMsg); ok {
		s.settings = data.settings
		s.records = data.records
		return s, nil
	}

	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		case key.Matches(msg, keys.Delete):
			return s.showClearForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.weekStart = s.getVal(store.SettingWeekStart, "monday")
	*s.reminderMinutes = s.getVal(store.SettingReminderMinutes, "35")
	s.formKind = formPreferences

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
			huh.NewInput().Title("Calendar reminder (minutes before start, 0 = off)").
				Value(s.reminderMinutes).
				Validate(validateMinutes),
		).Title("Preferences"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) showClearForm() (settingsModel, tea.Cmd) {
	*s.confirmClear = false
	s.formKind = formClearAssignments

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Clear every assigned day?").
				Description("Shift types are kept.").
				Affirmative("Clear").
				Negative("Cancel").
				Value(s.confirmClear),
		),
	).WithShowHelp(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateAborted {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		switch s.formKind {
		case formClearAssignments:
			if !*s.confirmClear {
				return s, nil
			}
			if err := s.cal.ClearAssignments(); err != nil {
				return s, func() tea.Msg { return errStatus("Clear failed", err) }
			}
			return s, tea.Batch(s.refresh(), func() tea.Msg { return assignmentsClearedMsg{} })
		default:
			if err := s.saveSettings(); err != nil {
				return s, func() tea.Msg { return errStatus("Save failed", err) }
			}
			return s, tea.Batch(s.refresh(), func() tea.Msg { return statusMsg{text: "Settings saved"} })
		}
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	if err := s.store.SetSetting(store.SettingWeekStart, *s.weekStart); err != nil {
		return err
	}
	return s.store.SetSetting(store.SettingReminderMinutes, *s.reminderMinutes)
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func validateMinutes(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of minutes")
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	if len(s.records) > 0 {
		rows = append(rows, "", subtitleStyle.Render("Stored records"))
		for _, r := range s.records {
			label := lipgloss.NewStyle().Width(24).Render(r.Key)
			rows = append(rows, fmt.Sprintf("  %s %s", label,
				mutedStyle.Render(fmt.Sprintf("%d bytes, updated %s", r.Size, r.UpdatedAt.Local().Format("2006-01-02 15:04")))))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("enter: edit settings  x: clear all assignments"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingReminderMinutes:
		if n, err := strconv.Atoi(v); err == nil {
			if n == 0 {
				return "off"
			}
			return fmt.Sprintf("%d min before start", n)
		}
	}
	return v
}
