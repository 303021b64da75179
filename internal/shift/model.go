// Package shift holds the shift calendar core: user-defined shift types,
// the per-day assignment store, the click-cycle resolver and the
// orchestration layer that keeps the two records consistent.
package shift

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyLabel     = errors.New("label must not be empty")
	ErrInvalidHotkey  = errors.New("hotkey must be a single letter or digit")
	ErrHotkeyConflict = errors.New("hotkey already in use")
	ErrInvalidTime    = errors.New("time must be HH:MM")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
)

// DefaultColor is used when a shift type is saved without a colour.
const DefaultColor = "#3B82F6"

// PresetColors is the palette offered when creating a shift type.
var PresetColors = []string{
	"#EF4444", "#F59E0B", "#10B981", "#3B82F6",
	"#8B5CF6", "#EC4899", "#06B6D4", "#84CC16",
	"#F97316", "#6366F1", "#14B8A6", "#46945f",
}

// Fields are the user-editable attributes of a shift type.
type Fields struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	IsNextDay   bool   `json:"isNextDay"`
	Color       string `json:"color"`
	Hotkey      string `json:"hotkey"`
}

// ShiftType is a user-defined category of work period.
type ShiftType struct {
	ID string `json:"id"`
	Fields
}

// Start returns the parsed start time. Stored values are validated on write,
// so a parse failure only happens for hand-edited records and yields 00:00.
func (s ShiftType) Start() Clock {
	c, _ := ParseClock(s.StartTime)
	return c
}

func (s ShiftType) End() Clock {
	c, _ := ParseClock(s.EndTime)
	return c
}

// Span returns the wall-clock start and end of the shift when worked on d.
// The end falls on the following day when IsNextDay is set.
func (s ShiftType) Span(d Date) (Date, Clock, Date, Clock) {
	endDate := d
	if s.IsNextDay {
		endDate = d.AddDays(1)
	}
	return d, s.Start(), endDate, s.End()
}

// Duration is the scheduled length of one occurrence of the shift.
func (s ShiftType) Duration() time.Duration {
	mins := s.End().Minutes() - s.Start().Minutes()
	if s.IsNextDay {
		mins += 24 * 60
	}
	if mins < 0 {
		return 0
	}
	return time.Duration(mins) * time.Minute
}

// Summary is the event title: the label, followed by the description if any.
func (s ShiftType) Summary() string {
	if s.Description == "" {
		return s.Label
	}
	return s.Label + " - " + s.Description
}

// normalize validates f and returns the canonical form that gets stored.
func (f Fields) normalize() (Fields, error) {
	f.Label = strings.TrimSpace(f.Label)
	if f.Label == "" {
		return f, ErrEmptyLabel
	}
	f.Description = strings.TrimSpace(f.Description)

	start, err := ParseClock(f.StartTime)
	if err != nil {
		return f, fmt.Errorf("start time: %w", err)
	}
	end, err := ParseClock(f.EndTime)
	if err != nil {
		return f, fmt.Errorf("end time: %w", err)
	}
	f.StartTime = start.String()
	f.EndTime = end.String()

	hk, err := NormalizeHotkey(f.Hotkey)
	if err != nil {
		return f, err
	}
	f.Hotkey = hk

	f.Color = strings.TrimSpace(f.Color)
	if f.Color == "" {
		f.Color = DefaultColor
	}
	return f, nil
}

// NormalizeHotkey lower-cases a hotkey and checks that it is a single ASCII
// letter or digit. An empty hotkey is valid and means "no shortcut".
func NormalizeHotkey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", nil
	}
	if utf8.RuneCountInString(key) != 1 {
		return "", ErrInvalidHotkey
	}
	c := key[0]
	if !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') {
		return "", ErrInvalidHotkey
	}
	return key, nil
}

// Clock is a wall-clock time of day with minute granularity.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a 24h "HH:MM" value.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// CrossesMidnight reports whether a shift from start to end has to end on
// the next day.
func CrossesMidnight(start, end Clock) bool {
	return end.Minutes() < start.Minutes()
}

// Date is a calendar day in the local Gregorian calendar.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes out-of-range values the way time.Date does,
// so NewDate(2025, 1, 32) is 2025-02-01.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "YYYY-MM-DD" key and rejects days that do not exist.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
