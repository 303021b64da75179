package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/shiftcal/internal/shift"
)

type summaryModel struct {
	cal    *shift.Calendar
	width  int
	height int

	year    int
	month   time.Month
	summary shift.Summary

	chart barchart.Model
}

func newSummaryModel(cal *shift.Calendar, now time.Time) summaryModel {
	return summaryModel{
		cal:   cal,
		year:  now.Year(),
		month: now.Month(),
		chart: barchart.New(60, 12),
	}
}

func (r *summaryModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type summaryDataMsg struct {
	summary shift.Summary
	err     error
}

func (r summaryModel) refresh() tea.Cmd {
	year, month := r.year, r.month
	return func() tea.Msg {
		sum, err := r.cal.MonthSummary(year, month)
		return summaryDataMsg{summary: sum, err: err}
	}
}

func (r summaryModel) update(msg tea.Msg) (summaryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryDataMsg:
		if msg.err != nil {
			return r, func() tea.Msg { return errStatus("Summary error", msg.err) }
		}
		if msg.summary.Year != r.year || msg.summary.Month != r.month {
			return r, nil
		}
		r.summary = msg.summary
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.PrevMonth):
			r.year, r.month = addMonths(r.year, r.month, -1)
			return r, r.refresh()
		case key.Matches(msg, keys.Right), key.Matches(msg, keys.NextMonth):
			r.year, r.month = addMonths(r.year, r.month, 1)
			return r, r.refresh()
		}
	}
	return r, nil
}

// showMonth points the summary at the month shown in the calendar.
func (r summaryModel) showMonth(year int, month time.Month) (summaryModel, tea.Cmd) {
	r.year, r.month = year, month
	return r, r.refresh()
}

func (r *summaryModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, sc := range r.summary.Counts {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(sc.Shift.Color))
		bars = append(bars, barchart.BarData{
			Label: truncateRunes(sc.Shift.Label, 6),
			Values: []barchart.BarValue{{
				Name:  sc.Shift.Label,
				Value: float64(sc.Days),
				Style: style,
			}},
		})
	}
	bars = append(bars, barchart.BarData{
		Label: "free",
		Values: []barchart.BarValue{{
			Name:  "free",
			Value: float64(r.summary.Unassigned),
			Style: lipgloss.NewStyle().Foreground(colorSubtle),
		}},
	})

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r summaryModel) view() string {
	w := r.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Summary"), "  ", subtitleStyle.Render(monthTitle(r.year, r.month)),
	)

	nav := mutedStyle.Render("  ←/→: month")

	if len(r.summary.Counts) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				header, "", mutedStyle.Render("  No shift types defined"), "", nav,
			),
		)
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderTable(w), "", nav,
		),
	)
}

func (r summaryModel) renderTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-14s %6s %10s", "", "Shift", "Days", "Hours")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 36))))

	for _, sc := range r.summary.Counts {
		rows = append(rows, fmt.Sprintf("  %s   %-14s %6d %10s",
			colorDot(sc.Shift.Color), truncateRunes(sc.Shift.Label, 14), sc.Days, formatHours(sc.Hours),
		))
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("      %-14s %6d", "unassigned", r.summary.Unassigned)))
	rows = append(rows, highlightStyle.Render(fmt.Sprintf("      %-14s %6s %10s", "total", "", formatHours(r.summary.Total))))
	return strings.Join(rows, "\n")
}
