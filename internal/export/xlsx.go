package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/shiftcal/internal/shift"
)

var xlsxHeader = []string{"Date", "Weekday", "Shift", "Description", "Start", "End", "Hours"}

// ToXLSX writes a one-sheet workbook listing every day of the month.
// Unassigned days get an empty row; weekends are shown in red.
func ToXLSX(r Roster, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("%04d-%02d", r.Year, int(r.Month))
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Shift roster %s %d", r.Month, r.Year))
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err == nil {
		f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	}
	f.MergeCell(sheet, "A1", "G1")

	for i, h := range xlsxHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 2},
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err == nil {
		f.SetCellStyle(sheet, "A3", "G3", headerStyle)
	}

	weekendStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "#FF0000"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	shiftStyles := make(map[string]int)

	byDay := make(map[int]shift.ShiftType, len(r.Entries))
	for _, e := range r.Entries {
		byDay[e.Date.Day] = e.Shift
	}

	var total time.Duration
	days := shift.DaysIn(r.Year, r.Month)
	for day := 1; day <= days; day++ {
		row := day + 3
		d := shift.Date{Year: r.Year, Month: r.Month, Day: day}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), d.String())
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), d.Weekday().String()[:3])
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), weekendStyle)
		}

		s, ok := byDay[day]
		if !ok {
			continue
		}
		total += s.Duration()
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), s.Label)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), s.Description)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), s.StartTime)
		end := s.EndTime
		if s.IsNextDay {
			end += " (+1)"
		}
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), end)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), formatHours(s.Duration()))

		style, ok := shiftStyles[s.Color]
		if !ok {
			style, err = f.NewStyle(&excelize.Style{
				Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
				Fill:      excelize.Fill{Type: "pattern", Color: []string{strings.ToUpper(s.Color)}, Pattern: 1},
				Alignment: &excelize.Alignment{Horizontal: "center"},
			})
			if err != nil {
				return fmt.Errorf("shift style %s: %w", s.Color, err)
			}
			shiftStyles[s.Color] = style
		}
		f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), style)
	}

	totalRow := days + 5
	f.SetCellValue(sheet, fmt.Sprintf("F%d", totalRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("G%d", totalRow), formatHours(total))

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 8)
	f.SetColWidth(sheet, "C", "C", 10)
	f.SetColWidth(sheet, "D", "D", 24)
	f.SetColWidth(sheet, "E", "G", 10)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx file: %w", err)
	}
	return nil
}
