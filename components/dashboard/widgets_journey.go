package dashboard

import (
	"math"
	"strconv"
)

// JourneyBar is one rendered funnel stage.
type JourneyBar struct {
	Label         string
	Count         float64
	CountLabel    string
	HeightPercent float64
	Height        string
	Arrow         bool
}

// BuildJourneyView scales each stage against the largest count. When no stage
// has a positive count every bar is 0% tall. Every stage but the last gets a
// trailing arrow.
func BuildJourneyView(stages []JourneyStage) []JourneyBar {
	max := 0.0
	for _, s := range stages {
		if s.Count > max {
			max = s.Count
		}
	}
	bars := make([]JourneyBar, len(stages))
	for i, s := range stages {
		pct := 0.0
		if max > 0 && s.Count > 0 {
			pct = s.Count / max * 100
		}
		pct = math.Round(pct*100) / 100
		bars[i] = JourneyBar{
			Label:         s.Label,
			Count:         s.Count,
			CountLabel:    strconv.FormatFloat(s.Count, 'f', -1, 64),
			HeightPercent: pct,
			Height:        strconv.FormatFloat(pct, 'f', -1, 64) + "%",
			Arrow:         i < len(stages)-1,
		}
	}
	return bars
}

// RenderCustomerJourney rebuilds the funnel on mountID.
func (w *WidgetRenderer) RenderCustomerJourney(page *Page, mountID string, stages []JourneyStage) error {
	if !page.Has(mountID) {
		return nil
	}
	return w.renderInto(page, mountID, templateJourney, map[string]any{
		"stages": BuildJourneyView(stages),
	})
}
