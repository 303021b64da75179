package shift

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Records is the persisted key/value document store. Every write replaces
// the whole document stored under a key.
type Records interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, value []byte) error
	Remove(key string) error
}

const (
	shiftTypesKey = "shiftTypes"
	recordVersion = 1
)

type shiftTypesRecord struct {
	Shifts  []ShiftType `json:"shifts"`
	Version int         `json:"version"`
}

// Registry owns the ordered set of shift types. It knows nothing about
// assignments; cascading a delete is the caller's job.
type Registry struct {
	records Records
	log     *zap.Logger
	newID   func() string
}

func NewRegistry(records Records, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		records: records,
		log:     log,
		newID:   func() string { return "shift_" + uuid.NewString() },
	}
}

// load reads the shift-types record. ok is false when the record is missing
// or cannot be parsed; a corrupted record is treated as absent.
func (r *Registry) load() (shiftTypesRecord, bool, error) {
	var rec shiftTypesRecord
	data, ok, err := r.records.Load(shiftTypesKey)
	if err != nil {
		return rec, false, err
	}
	if !ok {
		return rec, false, nil
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		r.log.Warn("discarding unparseable shift types record", zap.Error(err))
		return shiftTypesRecord{}, false, nil
	}
	return rec, true, nil
}

func (r *Registry) save(rec shiftTypesRecord) error {
	if rec.Version == 0 {
		rec.Version = recordVersion
	}
	if rec.Shifts == nil {
		rec.Shifts = []ShiftType{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal shift types: %w", err)
	}
	return r.records.Save(shiftTypesKey, data)
}

// Exists reports whether a readable shift-types record has been written.
func (r *Registry) Exists() (bool, error) {
	_, ok, err := r.load()
	return ok, err
}

// List returns every shift type in insertion order. The order defines the
// click cycle.
func (r *Registry) List() ([]ShiftType, error) {
	rec, _, err := r.load()
	if err != nil {
		return nil, err
	}
	return rec.Shifts, nil
}

func (r *Registry) Get(id string) (ShiftType, error) {
	rec, _, err := r.load()
	if err != nil {
		return ShiftType{}, err
	}
	if i := indexOf(rec.Shifts, id); i >= 0 {
		return rec.Shifts[i], nil
	}
	return ShiftType{}, fmt.Errorf("shift type %q: %w", id, ErrNotFound)
}

// GetByHotkey returns the first shift type bound to key, ignoring case.
func (r *Registry) GetByHotkey(key string) (ShiftType, error) {
	rec, _, err := r.load()
	if err != nil {
		return ShiftType{}, err
	}
	key = strings.ToLower(key)
	if key != "" {
		for _, s := range rec.Shifts {
			if strings.ToLower(s.Hotkey) == key {
				return s, nil
			}
		}
	}
	return ShiftType{}, fmt.Errorf("hotkey %q: %w", key, ErrNotFound)
}

// Hotkeys maps every bound hotkey (lower-case) to its shift type.
func (r *Registry) Hotkeys() (map[string]ShiftType, error) {
	rec, _, err := r.load()
	if err != nil {
		return nil, err
	}
	keys := make(map[string]ShiftType)
	for _, s := range rec.Shifts {
		if s.Hotkey != "" {
			keys[strings.ToLower(s.Hotkey)] = s
		}
	}
	return keys, nil
}

// HotkeyConflict reports whether a shift type other than excludeID holds
// hotkey. An empty hotkey never conflicts.
func (r *Registry) HotkeyConflict(hotkey, excludeID string) (bool, error) {
	rec, _, err := r.load()
	if err != nil {
		return false, err
	}
	return hotkeyTaken(rec.Shifts, hotkey, excludeID), nil
}

func hotkeyTaken(shifts []ShiftType, hotkey, excludeID string) bool {
	if hotkey == "" {
		return false
	}
	hotkey = strings.ToLower(hotkey)
	for _, s := range shifts {
		if s.ID != excludeID && s.Hotkey != "" && strings.ToLower(s.Hotkey) == hotkey {
			return true
		}
	}
	return false
}

// Add validates f, appends a new shift type with a fresh id and returns the id.
// It refuses a hotkey already held by another shift type.
func (r *Registry) Add(f Fields) (string, error) {
	f, err := f.normalize()
	if err != nil {
		return "", err
	}
	rec, _, err := r.load()
	if err != nil {
		return "", err
	}
	if hotkeyTaken(rec.Shifts, f.Hotkey, "") {
		return "", fmt.Errorf("%q: %w", f.Hotkey, ErrHotkeyConflict)
	}

	id := r.newID()
	for indexOf(rec.Shifts, id) >= 0 {
		id = r.newID()
	}
	rec.Shifts = append(rec.Shifts, ShiftType{ID: id, Fields: f})
	if err := r.save(rec); err != nil {
		return "", err
	}
	return id, nil
}

// Update replaces every field of shift type id except the id itself and
// keeps its position in the order.
func (r *Registry) Update(id string, f Fields) error {
	f, err := f.normalize()
	if err != nil {
		return err
	}
	rec, _, err := r.load()
	if err != nil {
		return err
	}
	i := indexOf(rec.Shifts, id)
	if i < 0 {
		return fmt.Errorf("shift type %q: %w", id, ErrNotFound)
	}
	if hotkeyTaken(rec.Shifts, f.Hotkey, id) {
		return fmt.Errorf("%q: %w", f.Hotkey, ErrHotkeyConflict)
	}
	rec.Shifts[i] = ShiftType{ID: id, Fields: f}
	return r.save(rec)
}

// Delete removes shift type id. Assignments referencing it are left alone.
func (r *Registry) Delete(id string) error {
	rec, _, err := r.load()
	if err != nil {
		return err
	}
	i := indexOf(rec.Shifts, id)
	if i < 0 {
		return fmt.Errorf("shift type %q: %w", id, ErrNotFound)
	}
	rec.Shifts = append(rec.Shifts[:i], rec.Shifts[i+1:]...)
	return r.save(rec)
}

// replaceAll overwrites the record with shifts. Used by first-run seeding.
func (r *Registry) replaceAll(shifts []ShiftType) error {
	return r.save(shiftTypesRecord{Shifts: shifts, Version: recordVersion})
}

func indexOf(shifts []ShiftType, id string) int {
	for i, s := range shifts {
		if s.ID == id {
			return i
		}
	}
	return -1
}
