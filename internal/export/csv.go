package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/shiftcal/internal/shift"
)

// Roster is one month of resolved assignments, sorted by date.
type Roster struct {
	Year    int
	Month   time.Month
	Entries []shift.Entry
}

// FileName names a roster export, e.g. shift-roster-2025-06.csv.
func FileName(year int, month time.Month, ext string) string {
	return fmt.Sprintf("shift-roster-%04d-%02d.%s", year, int(month), ext)
}

func ToCSV(r Roster, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Weekday", "Shift", "Description", "Start", "End", "Next Day", "Hours"}); err != nil {
		return err
	}

	for _, e := range r.Entries {
		s := e.Shift
		row := []string{
			e.Date.String(),
			e.Date.Weekday().String(),
			s.Label,
			s.Description,
			s.StartTime,
			s.EndTime,
			strconv.FormatBool(s.IsNextDay),
			formatHours(s.Duration()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// formatHours renders a duration as HH:MM.
func formatHours(d time.Duration) string {
	mins := int64(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
