package shift

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Calendar is the orchestration layer used by the UI. It owns the
// Registry and Assignments, cascades deletes between them and serializes
// every operation, so a hotkey check and the write that depends on it are
// never interleaved with another writer.
type Calendar struct {
	mu     sync.Mutex
	shifts *Registry
	days   *Assignments
	log    *zap.Logger
}

func NewCalendar(records Records, log *zap.Logger) *Calendar {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calendar{
		shifts: NewRegistry(records, log),
		days:   NewAssignments(records, log),
		log:    log,
	}
}

// Init runs first-run seeding and legacy migration. Call once at startup.
func (c *Calendar) Init() (MigrationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, err := Migrate(c.shifts, c.days, c.log)
	if err != nil {
		return res, fmt.Errorf("initialize shift types: %w", err)
	}
	return res, nil
}

// --- Shift types ---

func (c *Calendar) Shifts() ([]ShiftType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shifts.List()
}

func (c *Calendar) GetShift(id string) (ShiftType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shifts.Get(id)
}

func (c *Calendar) ShiftByHotkey(key string) (ShiftType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shifts.GetByHotkey(key)
}

func (c *Calendar) Hotkeys() (map[string]ShiftType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shifts.Hotkeys()
}

func (c *Calendar) HotkeyConflict(hotkey, excludeID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shifts.HotkeyConflict(hotkey, excludeID)
}

func (c *Calendar) CreateShift(f Fields) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, err := c.shifts.Add(f)
	if err != nil {
		return "", err
	}
	c.log.Info("shift type created", zap.String("id", id), zap.String("label", f.Label))
	return id, nil
}

func (c *Calendar) UpdateShift(id string, f Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.shifts.Update(id, f); err != nil {
		return err
	}
	c.log.Info("shift type updated", zap.String("id", id))
	return nil
}

// DeleteShift removes a shift type and every assignment that references it.
// It returns the number of assignments removed.
func (c *Calendar) DeleteShift(id string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.shifts.Delete(id); err != nil {
		return 0, err
	}
	removed, err := c.days.DeleteReferencesTo(id)
	if err != nil {
		return 0, fmt.Errorf("cascade delete %q: %w", id, err)
	}
	c.log.Info("shift type deleted", zap.String("id", id), zap.Int("assignments_removed", removed))
	return removed, nil
}

// --- Assignments ---

// Assignment returns the raw id stored for d ("" when unassigned).
func (c *Calendar) Assignment(d Date) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.days.Get(d)
}

// AssignedShift resolves the shift type assigned to d. ok is false when the
// day is unassigned or its id no longer exists.
func (c *Calendar) AssignedShift(d Date) (ShiftType, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, err := c.days.Get(d)
	if err != nil || id == "" {
		return ShiftType{}, false, err
	}
	s, err := c.shifts.Get(id)
	if errors.Is(err, ErrNotFound) {
		return ShiftType{}, false, nil
	}
	if err != nil {
		return ShiftType{}, false, err
	}
	return s, true, nil
}

func (c *Calendar) AllAssignments() (map[Date]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.days.All()
}

func (c *Calendar) AssignmentsForMonth(year int, month time.Month) (map[Date]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.days.ForMonth(year, month)
}

// Assign sets d to shift type id. An empty id unassigns the day; any other
// id must exist in the Registry.
func (c *Calendar) Assign(d Date, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != "" {
		if _, err := c.shifts.Get(id); err != nil {
			return err
		}
	}
	return c.days.Set(d, id)
}

func (c *Calendar) Unassign(d Date) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.days.Clear(d)
}

// ClearAssignments wipes every assignment.
func (c *Calendar) ClearAssignments() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.days.ClearAll(); err != nil {
		return err
	}
	c.log.Info("all assignments cleared")
	return nil
}

// Cycle advances d to the next state in Registry order followed by
// unassigned and returns the new id ("" for unassigned).
func (c *Calendar) Cycle(d Date) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycle(d)
}

func (c *Calendar) cycle(d Date) (string, error) {
	shifts, err := c.shifts.List()
	if err != nil {
		return "", err
	}
	current, err := c.days.Get(d)
	if err != nil {
		return "", err
	}
	if len(shifts) == 0 {
		return current, nil
	}
	order := make([]string, len(shifts))
	for i, s := range shifts {
		order[i] = s.ID
	}
	next := NextInCycle(order, current)
	if err := c.days.Set(d, next); err != nil {
		return "", err
	}
	return next, nil
}

// AssignHotkey sets d to the shift type bound to key, whatever d held before.
func (c *Calendar) AssignHotkey(d Date, key string) (ShiftType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assignHotkey(d, key)
}

func (c *Calendar) assignHotkey(d Date, key string) (ShiftType, error) {
	s, err := c.shifts.GetByHotkey(key)
	if err != nil {
		return ShiftType{}, err
	}
	if err := c.days.Set(d, s.ID); err != nil {
		return ShiftType{}, err
	}
	return s, nil
}

// ResolveAssignment is the single entry point for a day being picked in
// the UI: with no key held it cycles, otherwise it applies the hotkey.
// It returns the id now assigned to d.
func (c *Calendar) ResolveAssignment(d Date, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key == "" {
		return c.cycle(d)
	}
	s, err := c.assignHotkey(d, key)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

// Restore applies a batch of assignments, typically read back from an
// exported calendar. Entries whose shift type no longer exists are skipped.
func (c *Calendar) Restore(assignments map[Date]string) (applied, skipped int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := c.days.load()
	if err != nil {
		return 0, 0, err
	}
	for d, id := range assignments {
		if _, err := c.shifts.Get(id); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return 0, 0, err
			}
			skipped++
			continue
		}
		raw[d.String()] = id
		applied++
	}
	if applied > 0 {
		if err := c.days.save(raw); err != nil {
			return 0, 0, err
		}
	}
	c.log.Info("assignments restored", zap.Int("applied", applied), zap.Int("skipped", skipped))
	return applied, skipped, nil
}

// --- Month views ---

// Entry is one resolved assignment.
type Entry struct {
	Date  Date
	Shift ShiftType
}

// MonthRoster returns the resolved assignments of a month sorted by date.
// Dangling ids are left out.
func (c *Calendar) MonthRoster(year int, month time.Month) ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	days, err := c.days.ForMonth(year, month)
	if err != nil {
		return nil, err
	}
	shifts, err := c.shifts.List()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]ShiftType, len(shifts))
	for _, s := range shifts {
		byID[s.ID] = s
	}

	entries := make([]Entry, 0, len(days))
	for d, id := range days {
		s, ok := byID[id]
		if !ok {
			c.log.Debug("skipping dangling assignment", zap.Stringer("date", d), zap.String("id", id))
			continue
		}
		entries = append(entries, Entry{Date: d, Shift: s})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}
