package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/sadopc/shiftcal/internal/shift"
)

var ErrEmptyCalendar = errors.New("empty calendar document")

// Import reads a document produced by Generate and returns the assignments
// encoded in its event UIDs. Events from other producers are skipped.
// Shift ids are not checked here; see shift.Calendar.Restore.
func Import(r io.Reader, log *zap.Logger) (map[shift.Date]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyCalendar
	}
	// Generate does not terminate the last line.
	if !bytes.HasSuffix(body, []byte("\n")) {
		body = append(body, crlf...)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	out := make(map[shift.Date]string)
	skipped := 0
	for _, ev := range cal.Events() {
		p := ev.GetProperty(ical.ComponentPropertyUniqueId)
		if p == nil {
			skipped++
			continue
		}
		d, id, ok := ParseUID(p.Value)
		if !ok {
			skipped++
			continue
		}
		out[d] = id
	}
	log.Info("calendar imported", zap.Int("events", len(out)), zap.Int("skipped", skipped))
	return out, nil
}

// ParseUID splits a UID built by UID back into date and shift id.
func ParseUID(uid string) (shift.Date, string, bool) {
	rest, ok := strings.CutSuffix(strings.TrimSpace(uid), "@"+uidDomain)
	if !ok || len(rest) < 12 || rest[10] != '-' {
		return shift.Date{}, "", false
	}
	d, err := shift.ParseDate(rest[:10])
	if err != nil {
		return shift.Date{}, "", false
	}
	return d, rest[11:], true
}
