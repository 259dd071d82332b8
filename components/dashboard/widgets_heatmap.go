package dashboard

import "fmt"

// Heatmap bounds: five weekdays by nine hourly slots starting at 9:00.
const (
	heatmapFirstHour = 9
	heatmapLastHour  = 17
	heatmapMaxLevel  = 4
)

var heatmapDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// HeatmapMatrix holds engagement levels indexed [day][hour slot]. It may be ragged.
type HeatmapMatrix [][]int

// Level returns the clamped level for a cell; absent cells read as 0.
func (m HeatmapMatrix) Level(day, slot int) int {
	if day < 0 || day >= len(m) || slot < 0 || slot >= len(m[day]) {
		return 0
	}
	level := m[day][slot]
	if level < 0 {
		return 0
	}
	if level > heatmapMaxLevel {
		return heatmapMaxLevel
	}
	return level
}

// HeatmapCell is one rendered cell.
type HeatmapCell struct {
	Hour    int
	Level   int
	Class   string
	Tooltip string
}

// HeatmapRow is one weekday.
type HeatmapRow struct {
	Day   string
	Cells []HeatmapCell
}

// HeatmapView is the template model of the engagement heatmap.
type HeatmapView struct {
	TimeSlots []string
	Rows      []HeatmapRow
}

// BuildHeatmapView expands a matrix into the full 5x9 grid.
func BuildHeatmapView(m HeatmapMatrix) HeatmapView {
	view := HeatmapView{}
	for hour := heatmapFirstHour; hour <= heatmapLastHour; hour++ {
		view.TimeSlots = append(view.TimeSlots, fmt.Sprintf("%d:00", hour))
	}
	for dayIdx, day := range heatmapDays {
		row := HeatmapRow{Day: day}
		for hour := heatmapFirstHour; hour <= heatmapLastHour; hour++ {
			level := m.Level(dayIdx, hour-heatmapFirstHour)
			row.Cells = append(row.Cells, HeatmapCell{
				Hour:    hour,
				Level:   level,
				Class:   fmt.Sprintf("engagement-level-%d", level),
				Tooltip: fmt.Sprintf("%s %d:00 - Engagement: %d", day, hour, level),
			})
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// RenderEngagementHeatmap rebuilds the heatmap on mountID.
func (w *WidgetRenderer) RenderEngagementHeatmap(page *Page, mountID string, matrix HeatmapMatrix) error {
	if !page.Has(mountID) {
		return nil
	}
	view := BuildHeatmapView(matrix)
	return w.renderInto(page, mountID, templateHeatmap, map[string]any{
		"time_slots": view.TimeSlots,
		"rows":       view.Rows,
	})
}
