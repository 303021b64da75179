// Package ics turns a month of shift assignments into an iCalendar document
// and reads such documents back.
package ics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/shiftcal/internal/shift"
)

const (
	// MIMEType is the content type of a generated document.
	MIMEType = "text/calendar"

	DefaultProdID          = "-//ShiftCalendar//CN"
	DefaultReminderMinutes = 35

	uidDomain = "shiftcalendar"
	crlf      = "\r\n"
)

// Source is the part of shift.Calendar the exporter reads from.
type Source interface {
	GetShift(id string) (shift.ShiftType, error)
	AssignmentsForMonth(year int, month time.Month) (map[shift.Date]string, error)
}

// Saver hands a finished file to whatever stores it for the user.
type Saver interface {
	SaveFile(name, mimeType string, data []byte) error
}

type Options struct {
	ProdID string
	// ReminderMinutes adds a display alarm this many minutes before each
	// event. Zero leaves the alarm out.
	ReminderMinutes int
}

func DefaultOptions() Options {
	return Options{ProdID: DefaultProdID, ReminderMinutes: DefaultReminderMinutes}
}

type Exporter struct {
	src  Source
	opts Options
	log  *zap.Logger
}

func NewExporter(src Source, opts Options, log *zap.Logger) *Exporter {
	if opts.ProdID == "" {
		opts.ProdID = DefaultProdID
	}
	if opts.ReminderMinutes < 0 {
		opts.ReminderMinutes = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{src: src, opts: opts, log: log}
}

type event struct {
	date  shift.Date
	shift shift.ShiftType
}

// Generate builds the document for every assigned day of year/month.
// Days whose shift type no longer exists are skipped. A month without
// assignments yields a calendar with no events.
func (e *Exporter) Generate(year int, month time.Month) (string, error) {
	days, err := e.src.AssignmentsForMonth(year, month)
	if err != nil {
		return "", fmt.Errorf("load assignments: %w", err)
	}

	events := make([]event, 0, len(days))
	for d, id := range days {
		s, err := e.src.GetShift(id)
		if errors.Is(err, shift.ErrNotFound) {
			e.log.Debug("export skipping dangling assignment", zap.Stringer("date", d), zap.String("id", id))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("resolve shift %q: %w", id, err)
		}
		events = append(events, event{date: d, shift: s})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].date != events[j].date {
			return events[i].date.Before(events[j].date)
		}
		return events[i].shift.ID < events[j].shift.ID
	})

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + e.opts.ProdID,
	}
	for _, ev := range events {
		lines = append(lines, e.eventLines(ev)...)
	}
	lines = append(lines, "END:VCALENDAR")

	for i, l := range lines {
		lines[i] = fold(l)
	}
	return strings.Join(lines, crlf), nil
}

func (e *Exporter) eventLines(ev event) []string {
	startDate, startClock, endDate, endClock := ev.shift.Span(ev.date)
	lines := []string{
		"BEGIN:VEVENT",
		"UID:" + UID(ev.date, ev.shift.ID),
		"DTSTART:" + stamp(startDate, startClock),
		"DTEND:" + stamp(endDate, endClock),
		"SUMMARY:" + escapeText(ev.shift.Summary()),
	}
	if e.opts.ReminderMinutes > 0 {
		lines = append(lines,
			"BEGIN:VALARM",
			fmt.Sprintf("TRIGGER:-PT%dM", e.opts.ReminderMinutes),
			"ACTION:DISPLAY",
			"DESCRIPTION:Reminder",
			"END:VALARM",
		)
	}
	return append(lines, "END:VEVENT")
}

// Download generates the month and passes it to s under FileName.
// It returns the file name used.
func (e *Exporter) Download(year int, month time.Month, s Saver) (string, error) {
	doc, err := e.Generate(year, month)
	if err != nil {
		return "", err
	}
	name := FileName(year, month)
	if err := s.SaveFile(name, MIMEType, []byte(doc)); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	e.log.Info("calendar exported", zap.String("file", name))
	return name, nil
}

// FileName is the name a month's document is saved under.
func FileName(year int, month time.Month) string {
	return fmt.Sprintf("shift-calendar-%04d-%02d.ics", year, int(month))
}

// UID identifies the event for one assignment. It only depends on the date
// and the shift id, so exporting the same assignment twice gives the same UID.
func UID(d shift.Date, shiftID string) string {
	return d.String() + "-" + shiftID + "@" + uidDomain
}

// stamp formats a floating local date-time (no zone suffix).
func stamp(d shift.Date, c shift.Clock) string {
	return fmt.Sprintf("%04d%02d%02dT%02d%02d00", d.Year, int(d.Month), d.Day, c.Hour, c.Minute)
}
