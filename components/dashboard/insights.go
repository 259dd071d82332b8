package dashboard

import "context"

// StaticInsights returns fixed insight data useful for demos and tests.
type StaticInsights struct {
	Data Insights
}

// Insights returns a copy of the static data.
func (s StaticInsights) Insights(_ context.Context, _ ViewerContext) (Insights, error) {
	out := s.Data
	out.Trends.Labels = append([]string(nil), s.Data.Trends.Labels...)
	out.Trends.NewCustomers = append([]float64(nil), s.Data.Trends.NewCustomers...)
	out.Trends.Interactions = append([]float64(nil), s.Data.Trends.Interactions...)
	out.Conversion.Labels = append([]string(nil), s.Data.Conversion.Labels...)
	out.Conversion.Values = append([]float64(nil), s.Data.Conversion.Values...)
	out.Satisfaction.Labels = append([]string(nil), s.Data.Satisfaction.Labels...)
	out.Satisfaction.Values = append([]float64(nil), s.Data.Satisfaction.Values...)
	out.Journey = append([]JourneyStage(nil), s.Data.Journey...)
	out.Heatmap = make(HeatmapMatrix, len(s.Data.Heatmap))
	for i, row := range s.Data.Heatmap {
		out.Heatmap[i] = append([]int(nil), row...)
	}
	return out, nil
}

// DefaultInsights provides placeholder data for the trend and engagement widgets.
func DefaultInsights() InsightsSource {
	months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	return StaticInsights{
		Data: Insights{
			Trends: TrendSeries{
				Labels:       months,
				NewCustomers: []float64{12, 19, 15, 22, 28, 31},
				Interactions: []float64{45, 52, 49, 61, 70, 76},
			},
			Conversion: SeriesData{
				Labels: months,
				Values: []float64{12.5, 14.2, 13.8, 15.6, 17.1, 18.4},
			},
			Satisfaction: SeriesData{
				Labels: []string{"Electronics", "Software", "Service", "Accessories"},
				Values: []float64{4.2, 3.9, 4.6, 4.1},
			},
			Heatmap: HeatmapMatrix{
				{1, 2, 3, 3, 2, 2, 3, 2, 1},
				{2, 3, 4, 3, 2, 3, 3, 2, 1},
				{1, 2, 3, 4, 3, 3, 4, 3, 2},
				{2, 3, 3, 3, 2, 2, 3, 2, 1},
				{1, 1, 2, 2, 1, 2, 2, 1, 0},
			},
			Journey: []JourneyStage{
				{Label: "Awareness", Count: 1200},
				{Label: "Consideration", Count: 840},
				{Label: "Purchase", Count: 310},
				{Label: "Retention", Count: 190},
				{Label: "Advocacy", Count: 75},
			},
		},
	}
}
