package dashboard

import "fmt"

// Widget template names, relative to the embedded templates directory.
const (
	templatePage             = "page"
	templateHeatmap          = "widgets/heatmap"
	templateJourney          = "widgets/journey"
	templateKPI              = "widgets/kpi"
	templateRecommendations  = "widgets/recommendations"
	templateInteractionModal = "widgets/interaction_modal"
	templateChartsError      = "widgets/charts_error"
)

// WidgetRenderer builds the dashboard's custom widgets from templates. Every
// render clears and rebuilds the target mount.
type WidgetRenderer struct {
	renderer Renderer
}

// NewWidgetRenderer wires a template renderer.
func NewWidgetRenderer(renderer Renderer) *WidgetRenderer {
	return &WidgetRenderer{renderer: renderer}
}

func (w *WidgetRenderer) renderInto(page *Page, mountID, name string, data map[string]any) error {
	if !page.Has(mountID) {
		return nil
	}
	if w == nil || w.renderer == nil {
		return fmt.Errorf("dashboard: widget renderer not configured for %s", mountID)
	}
	data["mount_id"] = mountID
	data["theme"] = string(page.Theme())
	html, err := w.renderer.Render(name, data)
	if err != nil {
		return fmt.Errorf("dashboard: render %s on %s: %w", name, mountID, err)
	}
	page.Replace(mountID, html)
	return nil
}

// RenderChartsError shows the analytics unavailable notice.
func (w *WidgetRenderer) RenderChartsError(page *Page, mountID string, message string) error {
	if message == "" {
		message = "Analytics data is currently unavailable."
	}
	return w.renderInto(page, mountID, templateChartsError, map[string]any{
		"message": message,
	})
}
