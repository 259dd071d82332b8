package dashboard

import (
	"html/template"
	"sync"
)

// MountKind selects the renderer bound to a mount point.
type MountKind string

// Mount kinds understood by the default registry.
const (
	MountCategoriesChart       MountKind = "chart.categories"
	MountPreferencesChart      MountKind = "chart.preferences"
	MountInteractionTypesChart MountKind = "chart.interaction_types"
	MountBestSellersChart      MountKind = "chart.best_sellers"
	MountCustomerTrendsChart   MountKind = "chart.customer_trends"
	MountConversionRateChart   MountKind = "chart.conversion_rate"
	MountSatisfactionChart     MountKind = "chart.satisfaction"
	MountHeatmap               MountKind = "widget.heatmap"
	MountJourney               MountKind = "widget.journey"
	MountKPI                   MountKind = "widget.kpi"
	MountRecommendations       MountKind = "widget.recommendations"
	MountInteractionModal      MountKind = "widget.interaction_modal"
	MountChartsError           MountKind = "widget.charts_error"
)

// Mount is a named region of a page that a renderer fills.
type Mount struct {
	ID             string            `json:"id" yaml:"id"`
	Kind           MountKind         `json:"kind" yaml:"kind"`
	Title          string            `json:"title,omitempty" yaml:"title,omitempty"`
	TitleLocalized map[string]string `json:"title_localized,omitempty" yaml:"title_localized,omitempty"`
	Config         map[string]any    `json:"config,omitempty" yaml:"config,omitempty"`
}

// MountView is a mount plus its current content, in page order.
type MountView struct {
	Mount
	HTML template.HTML
}

// Page is the server-held document of one open dashboard. Renderers address
// regions by mount id; ids the page does not declare are ignored.
type Page struct {
	name   string
	title  string
	mounts []Mount
	index  map[string]int

	mu      sync.RWMutex
	content map[string]string
	theme   ThemeVariant
	charts  *ChartInstances
}

// NewPage builds a page exposing the given mounts. Duplicate ids keep the first entry.
func NewPage(name, title string, mounts []Mount) *Page {
	p := &Page{
		name:    name,
		title:   title,
		index:   make(map[string]int, len(mounts)),
		content: make(map[string]string, len(mounts)),
		charts:  NewChartInstances(),
	}
	for _, m := range mounts {
		if m.ID == "" {
			continue
		}
		if _, exists := p.index[m.ID]; exists {
			continue
		}
		p.index[m.ID] = len(p.mounts)
		p.mounts = append(p.mounts, m)
	}
	return p
}

// Name returns the page definition name.
func (p *Page) Name() string { return p.name }

// Title returns the display title.
func (p *Page) Title() string { return p.title }

// Theme returns the variant charts and widgets render with.
func (p *Page) Theme() ThemeVariant {
	if p == nil {
		return ThemeLight
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.theme == "" {
		return ThemeLight
	}
	return p.theme
}

// SetTheme changes the render variant. Existing content is left untouched.
func (p *Page) SetTheme(variant ThemeVariant) {
	p.mu.Lock()
	p.theme = variant
	p.mu.Unlock()
}

// Has reports whether the page declares the mount id.
func (p *Page) Has(id string) bool {
	if p == nil {
		return false
	}
	_, ok := p.index[id]
	return ok
}

// Mount returns the declared mount for id.
func (p *Page) Mount(id string) (Mount, bool) {
	if p == nil {
		return Mount{}, false
	}
	idx, ok := p.index[id]
	if !ok {
		return Mount{}, false
	}
	return p.mounts[idx], true
}

// Mounts returns the declared mounts in page order.
func (p *Page) Mounts() []Mount {
	if p == nil {
		return nil
	}
	return append([]Mount(nil), p.mounts...)
}

// MountsOfKind returns the mounts bound to kind.
func (p *Page) MountsOfKind(kind MountKind) []Mount {
	var out []Mount
	for _, m := range p.Mounts() {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// Replace swaps the mount content wholesale. It returns false, without side
// effects, when the mount is not declared.
func (p *Page) Replace(id, html string) bool {
	if !p.Has(id) {
		return false
	}
	p.mu.Lock()
	p.content[id] = html
	p.mu.Unlock()
	return true
}

// Clear empties the mount content.
func (p *Page) Clear(id string) bool {
	return p.Replace(id, "")
}

// Content returns the current HTML of a mount.
func (p *Page) Content(id string) string {
	if p == nil {
		return ""
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.content[id]
}

// Views returns every mount with its content, ready for the page template.
func (p *Page) Views() []MountView {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]MountView, len(p.mounts))
	for i, m := range p.mounts {
		// content is produced by our own renderers (go-echarts, go-template)
		out[i] = MountView{Mount: m, HTML: template.HTML(p.content[m.ID])} //nolint:gosec
	}
	return out
}

// Charts exposes the live chart instances of the page.
func (p *Page) Charts() *ChartInstances {
	if p == nil {
		return nil
	}
	return p.charts
}

// Teardown destroys chart instances and empties all mounts.
func (p *Page) Teardown() {
	if p == nil {
		return
	}
	p.charts.DestroyAll()
	p.mu.Lock()
	p.content = make(map[string]string, len(p.mounts))
	p.mu.Unlock()
}
