package store

import "time"

// Setting keys.
const (
	SettingWeekStart       = "week_start"
	SettingReminderMinutes = "reminder_minutes"
)

type Record struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}
