package shift

import (
	"time"
)

// ShiftCount is one row of a month summary.
type ShiftCount struct {
	Shift ShiftType
	Days  int
	Hours time.Duration
}

// Summary aggregates a month of assignments per shift type.
type Summary struct {
	Year       int
	Month      time.Month
	Counts     []ShiftCount // registry order, zero rows included
	Unassigned int
	Total      time.Duration
}

// MonthSummary counts the days each shift type is worked in a month.
// Days whose id no longer resolves count as unassigned.
func (c *Calendar) MonthSummary(year int, month time.Month) (Summary, error) {
	entries, err := c.MonthRoster(year, month)
	if err != nil {
		return Summary{}, err
	}
	shifts, err := c.Shifts()
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Year: year, Month: month, Counts: make([]ShiftCount, len(shifts))}
	pos := make(map[string]int, len(shifts))
	for i, s := range shifts {
		sum.Counts[i].Shift = s
		pos[s.ID] = i
	}

	assigned := 0
	for _, e := range entries {
		i, ok := pos[e.Shift.ID]
		if !ok {
			continue
		}
		sum.Counts[i].Days++
		sum.Counts[i].Hours += e.Shift.Duration()
		sum.Total += e.Shift.Duration()
		assigned++
	}
	sum.Unassigned = DaysIn(year, month) - assigned
	return sum, nil
}
