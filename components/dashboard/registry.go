package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// RenderInput is everything a mount renderer may draw from during one load.
type RenderInput struct {
	Page            *Page
	Mount           Mount
	Snapshot        *AnalyticsSnapshot
	Insights        Insights
	CustomerID      int
	Recommendations []Recommendation
	Draft           InteractionDraft
	ModalOpen       bool
}

// MountRenderer fills one mount from the loaded data.
type MountRenderer interface {
	RenderMount(ctx context.Context, in RenderInput) error
}

// MountRendererFunc adapts a function to MountRenderer.
type MountRendererFunc func(ctx context.Context, in RenderInput) error

// RenderMount calls f.
func (f MountRendererFunc) RenderMount(ctx context.Context, in RenderInput) error {
	return f(ctx, in)
}

// RendererHook lets packages register mount renderers during init().
type RendererHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []RendererHook
)

// RegisterRendererHook registers a hook executed against new registries.
func RegisterRendererHook(h RendererHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry maps mount kinds to renderers. It is the explicit widget registry
// a session renders through.
type Registry struct {
	mu        sync.RWMutex
	renderers map[MountKind]MountRenderer
}

// NewRegistry builds a registry bound to the chart adapter and widget
// renderer, then applies global hooks.
func NewRegistry(charts *ChartAdapter, widgets *WidgetRenderer) *Registry {
	reg := &Registry{renderers: map[MountKind]MountRenderer{}}
	reg.registerDefaults(charts, widgets)
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered renderer hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register binds a renderer to a kind, replacing any previous binding.
func (r *Registry) Register(kind MountKind, renderer MountRenderer) error {
	if kind == "" {
		return fmt.Errorf("mount kind is required")
	}
	if renderer == nil {
		return fmt.Errorf("renderer cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[kind] = renderer
	return nil
}

// Renderer fetches the renderer bound to kind.
func (r *Registry) Renderer(kind MountKind) (MountRenderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[kind]
	return renderer, ok
}

// Kinds returns the registered kinds sorted.
func (r *Registry) Kinds() []MountKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]MountKind, 0, len(r.renderers))
	for kind := range r.renderers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func (r *Registry) registerDefaults(charts *ChartAdapter, widgets *WidgetRenderer) {
	snapshotChart := func(draw func(in RenderInput) error) MountRenderer {
		return MountRendererFunc(func(_ context.Context, in RenderInput) error {
			if in.Snapshot == nil {
				return nil
			}
			return draw(in)
		})
	}

	r.renderers[MountCategoriesChart] = snapshotChart(func(in RenderInput) error {
		labels, values := categorySeries(in.Snapshot.PopularCategories)
		return charts.InitCategoriesChart(in.Page, in.Mount.ID, labels, values)
	})
	r.renderers[MountPreferencesChart] = snapshotChart(func(in RenderInput) error {
		labels, values := preferenceSeries(in.Snapshot.PreferenceData)
		return charts.InitPreferencesChart(in.Page, in.Mount.ID, labels, values)
	})
	r.renderers[MountInteractionTypesChart] = snapshotChart(func(in RenderInput) error {
		labels, values := interactionSeries(in.Snapshot.InteractionTypes)
		return charts.InitInteractionTypesChart(in.Page, in.Mount.ID, labels, values)
	})
	r.renderers[MountBestSellersChart] = snapshotChart(func(in RenderInput) error {
		labels, values := bestSellerSeries(in.Snapshot.BestSellers)
		return charts.InitBestSellersChart(in.Page, in.Mount.ID, labels, values)
	})
	r.renderers[MountKPI] = snapshotChart(func(in RenderInput) error {
		metric, _ := in.Mount.Config["metric"].(string)
		kpi, ok := snapshotKPIs(in.Snapshot)[metric]
		if !ok {
			return fmt.Errorf("dashboard: unknown kpi metric %q on %s", metric, in.Mount.ID)
		}
		if in.Mount.Title != "" {
			kpi.Title = in.Mount.Title
		}
		if icon, ok := in.Mount.Config["icon"].(string); ok && icon != "" {
			kpi.Icon = icon
		}
		if trend, ok := in.Mount.Config["trend"].(string); ok {
			kpi.Trend = trend
		}
		if value, ok := in.Mount.Config["trend_value"].(string); ok {
			kpi.TrendValue = value
		}
		return widgets.RenderKPICard(in.Page, in.Mount.ID, kpi)
	})

	r.renderers[MountCustomerTrendsChart] = MountRendererFunc(func(_ context.Context, in RenderInput) error {
		t := in.Insights.Trends
		return charts.InitCustomerTrendsChart(in.Page, in.Mount.ID, t.Labels, t.NewCustomers, t.Interactions)
	})
	r.renderers[MountConversionRateChart] = MountRendererFunc(func(_ context.Context, in RenderInput) error {
		c := in.Insights.Conversion
		return charts.InitConversionRateChart(in.Page, in.Mount.ID, c.Labels, c.Values)
	})
	r.renderers[MountSatisfactionChart] = MountRendererFunc(func(_ context.Context, in RenderInput) error {
		s := in.Insights.Satisfaction
		return charts.InitSatisfactionChart(in.Page, in.Mount.ID, s.Labels, s.Values)
	})
	r.renderers[MountHeatmap] = MountRendererFunc(func(_ context.Context, in RenderInput) error {
		return widgets.RenderEngagementHeatmap(in.Page, in.Mount.ID, in.Insights.Heatmap)
	})
	r.renderers[MountJourney] = MountRendererFunc(func(_ context.Context, in RenderInput) error {
		return widgets.RenderCustomerJourney(in.Page, in.Mount.ID, in.Insights.Journey)
	})
	r.renderers[MountChartsError] = MountRendererFunc(func(_ context.Context, in RenderInput) error {
		if in.Snapshot != nil {
			in.Page.Clear(in.Mount.ID)
			return nil
		}
		return widgets.RenderChartsError(in.Page, in.Mount.ID, "")
	})
	r.renderers[MountRecommendations] = MountRendererFunc(func(_ context.Context, in RenderInput) error {
		limit, _ := configInt(in.Mount.Config, "limit")
		return widgets.RenderRecommendations(in.Page, in.Mount.ID, in.CustomerID, in.Recommendations, limit)
	})
	r.renderers[MountInteractionModal] = MountRendererFunc(func(_ context.Context, in RenderInput) error {
		return widgets.RenderInteractionModal(in.Page, in.Mount.ID, in.Draft, in.ModalOpen, suggestionsFor(in.Recommendations))
	})
}

func categorySeries(items []CategoryCount) ([]string, []float64) {
	labels := make([]string, len(items))
	values := make([]float64, len(items))
	for i, item := range items {
		labels[i] = item.Category
		values[i] = float64(item.Count)
	}
	return labels, values
}

func preferenceSeries(items []CategoryAverage) ([]string, []float64) {
	labels := make([]string, len(items))
	values := make([]float64, len(items))
	for i, item := range items {
		labels[i] = item.Category
		values[i] = item.Average
	}
	return labels, values
}

func interactionSeries(items []TypeCount) ([]string, []float64) {
	labels := make([]string, len(items))
	values := make([]float64, len(items))
	for i, item := range items {
		labels[i] = item.Type
		values[i] = float64(item.Count)
	}
	return labels, values
}

func bestSellerSeries(items []ProductCount) ([]string, []float64) {
	labels := make([]string, len(items))
	values := make([]float64, len(items))
	for i, item := range items {
		labels[i] = item.Name
		values[i] = float64(item.Count)
	}
	return labels, values
}
