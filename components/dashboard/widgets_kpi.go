package dashboard

// Trend directions for KPI cards.
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"
)

// KPI is the content of a KPI card.
type KPI struct {
	Title      string `json:"title" yaml:"title"`
	Value      string `json:"value" yaml:"value"`
	Icon       string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Trend      string `json:"trend,omitempty" yaml:"trend,omitempty"`
	TrendValue string `json:"trend_value,omitempty" yaml:"trend_value,omitempty"`
}

type kpiView struct {
	KPI
	TrendClass string
	TrendIcon  string
}

func buildKPIView(k KPI) kpiView {
	view := kpiView{KPI: k}
	switch k.Trend {
	case TrendUp:
		view.TrendClass = "trend-up"
		view.TrendIcon = "fas fa-arrow-up"
	case TrendDown:
		view.TrendClass = "trend-down"
		view.TrendIcon = "fas fa-arrow-down"
	default:
		view.Trend = TrendNeutral
		view.TrendValue = ""
	}
	return view
}

// RenderKPICard rebuilds a KPI card on mountID.
func (w *WidgetRenderer) RenderKPICard(page *Page, mountID string, kpi KPI) error {
	if !page.Has(mountID) {
		return nil
	}
	return w.renderInto(page, mountID, templateKPI, map[string]any{
		"kpi": buildKPIView(kpi),
	})
}

// snapshotKPIs derives the headline cards from the analytics totals.
func snapshotKPIs(s *AnalyticsSnapshot) map[string]KPI {
	if s == nil {
		return nil
	}
	return map[string]KPI{
		"total_customers":     {Title: "Total Customers", Value: FormatCount(s.TotalCustomers), Icon: "fas fa-users"},
		"total_products_sold": {Title: "Products Sold", Value: FormatCount(s.TotalProductsSold), Icon: "fas fa-shopping-cart"},
		"total_interactions":  {Title: "Interactions", Value: FormatCount(s.TotalInteractions), Icon: "fas fa-comments"},
	}
}
