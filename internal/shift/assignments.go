package shift

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const assignmentsKey = "shiftData"

// Assignments maps calendar days to shift type ids. It never validates ids
// against the Registry.
type Assignments struct {
	records Records
	log     *zap.Logger
}

func NewAssignments(records Records, log *zap.Logger) *Assignments {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assignments{records: records, log: log}
}

// load returns the raw "YYYY-MM-DD" -> id mapping. A missing or corrupted
// record reads as empty.
func (a *Assignments) load() (map[string]string, error) {
	data, ok, err := a.records.Load(assignmentsKey)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string)
	if !ok {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		a.log.Warn("discarding unparseable assignments record", zap.Error(err))
		return make(map[string]string), nil
	}
	return m, nil
}

func (a *Assignments) save(m map[string]string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal assignments: %w", err)
	}
	return a.records.Save(assignmentsKey, data)
}

// All returns every assignment. Keys that are not valid dates are skipped.
func (a *Assignments) All() (map[Date]string, error) {
	raw, err := a.load()
	if err != nil {
		return nil, err
	}
	return a.decode(raw, ""), nil
}

// Get returns the id assigned to d, or "" when the day is unassigned.
func (a *Assignments) Get(d Date) (string, error) {
	raw, err := a.load()
	if err != nil {
		return "", err
	}
	return raw[d.String()], nil
}

// Set assigns id to d, replacing any previous value. An empty id removes
// the entry.
func (a *Assignments) Set(d Date, id string) error {
	raw, err := a.load()
	if err != nil {
		return err
	}
	if id == "" {
		delete(raw, d.String())
	} else {
		raw[d.String()] = id
	}
	return a.save(raw)
}

// Clear unassigns d.
func (a *Assignments) Clear(d Date) error {
	return a.Set(d, "")
}

// ForMonth returns the assignments whose date falls in year/month.
// month is 1-indexed (time.January == 1).
func (a *Assignments) ForMonth(year int, month time.Month) (map[Date]string, error) {
	raw, err := a.load()
	if err != nil {
		return nil, err
	}
	return a.decode(raw, fmt.Sprintf("%04d-%02d-", year, int(month))), nil
}

// DeleteReferencesTo removes every entry pointing at id and reports how many
// were removed. The record is only rewritten when something changed.
func (a *Assignments) DeleteReferencesTo(id string) (int, error) {
	raw, err := a.load()
	if err != nil {
		return 0, err
	}
	removed := 0
	for k, v := range raw {
		if v == id {
			delete(raw, k)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	if err := a.save(raw); err != nil {
		return 0, err
	}
	return removed, nil
}

// ClearAll wipes the whole store.
func (a *Assignments) ClearAll() error {
	return a.records.Remove(assignmentsKey)
}

func (a *Assignments) decode(raw map[string]string, prefix string) map[Date]string {
	out := make(map[Date]string, len(raw))
	for k, v := range raw {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		d, err := ParseDate(k)
		if err != nil {
			a.log.Debug("skipping assignment with invalid date", zap.String("key", k))
			continue
		}
		out[d] = v
	}
	return out
}
