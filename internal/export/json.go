package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Month      string      `json:"month"`
	Count      int         `json:"count"`
	TotalHours string      `json:"total_hours"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Date        string `json:"date"`
	ShiftID     string `json:"shift_id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsNextDay   bool   `json:"is_next_day"`
	Color       string `json:"color"`
	Hours       string `json:"hours"`
}

func ToJSON(r Roster, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Month:      fmt.Sprintf("%04d-%02d", r.Year, int(r.Month)),
		Count:      len(r.Entries),
	}

	var total time.Duration
	for _, e := range r.Entries {
		s := e.Shift
		total += s.Duration()
		export.Entries = append(export.Entries, jsonEntry{
			Date:        e.Date.String(),
			ShiftID:     s.ID,
			Label:       s.Label,
			Description: s.Description,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			IsNextDay:   s.IsNextDay,
			Color:       s.Color,
			Hours:       formatHours(s.Duration()),
		})
	}
	export.TotalHours = formatHours(total)

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
