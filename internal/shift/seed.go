package shift

import (
	"encoding/json"

	"go.uber.org/zap"
)

// DefaultShifts are the shift types created on first run.
func DefaultShifts() []Fields {
	return []Fields{
		{Label: "D", Description: "Day", StartTime: "08:30", EndTime: "20:30", Color: "#3B82F6", Hotkey: "d"},
		{Label: "S", Description: "Evening", StartTime: "08:30", EndTime: "17:30", Color: "#F59E0B", Hotkey: "s"},
		{Label: "N", Description: "Night", StartTime: "20:30", EndTime: "08:30", IsNextDay: true, Color: "#8B5CF6", Hotkey: "n"},
		{Label: "W", Description: "Rest", StartTime: "08:30", EndTime: "17:30", Color: "#46945f", Hotkey: "w"},
	}
}

// legacyCodes maps the single-letter codes stored by the pre-registry
// format to an index in DefaultShifts. "R" was the old rest code.
var legacyCodes = map[string]int{
	"D": 0,
	"S": 1,
	"N": 2,
	"W": 3,
	"R": 3,
}

// MigrationResult describes what a first-run initialization did.
type MigrationResult struct {
	Seeded   bool
	Migrated int
	Dropped  int
}

// Migrate seeds the default shift types and converts legacy letter-coded
// assignments to id-keyed ones. It does nothing once a shift-types record
// exists, so calling it on every start is safe.
func Migrate(shifts *Registry, days *Assignments, log *zap.Logger) (MigrationResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var res MigrationResult

	exists, err := shifts.Exists()
	if err != nil {
		return res, err
	}
	if exists {
		return res, nil
	}

	defaults := DefaultShifts()
	seeded := make([]ShiftType, len(defaults))
	for i, f := range defaults {
		seeded[i] = ShiftType{ID: shifts.newID(), Fields: f}
	}
	if err := shifts.replaceAll(seeded); err != nil {
		return res, err
	}
	res.Seeded = true

	data, ok, err := days.records.Load(assignmentsKey)
	if err != nil {
		return res, err
	}
	if !ok {
		log.Info("seeded default shift types", zap.Int("count", len(seeded)))
		return res, nil
	}

	var legacy map[string]string
	if err := json.Unmarshal(data, &legacy); err != nil {
		log.Warn("legacy assignments unreadable, leaving as is", zap.Error(err))
		return res, nil
	}

	converted := make(map[string]string, len(legacy))
	for date, code := range legacy {
		i, ok := legacyCodes[code]
		if !ok {
			res.Dropped++
			continue
		}
		converted[date] = seeded[i].ID
		res.Migrated++
	}
	if err := days.save(converted); err != nil {
		return res, err
	}

	log.Info("seeded default shift types and migrated legacy assignments",
		zap.Int("count", len(seeded)),
		zap.Int("migrated", res.Migrated),
		zap.Int("dropped", res.Dropped),
	)
	return res, nil
}
