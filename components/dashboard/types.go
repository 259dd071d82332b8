package dashboard

import (
	"context"
	"io"
)

// AnalyticsGateway loads the aggregate analytics snapshot. Implementations
// degrade to nil instead of returning errors.
type AnalyticsGateway interface {
	FetchAnalytics(ctx context.Context) *AnalyticsSnapshot
}

// RecommendationGateway loads ranked recommendations for a customer.
// Failures degrade to an empty slice.
type RecommendationGateway interface {
	FetchRecommendations(ctx context.Context, customerID int) []Recommendation
}

// InteractionGateway persists interaction drafts. Unlike reads, failures are
// returned to the caller.
type InteractionGateway interface {
	SaveInteraction(ctx context.Context, draft InteractionDraft) (SaveResult, error)
}

// Gateway is the union implemented by the remote backend clients.
type Gateway interface {
	AnalyticsGateway
	RecommendationGateway
	InteractionGateway
}

// InsightsSource supplies the time-series and engagement data that the
// analytics snapshot does not carry.
type InsightsSource interface {
	Insights(ctx context.Context, viewer ViewerContext) (Insights, error)
}

// PreferenceStore persists the viewer's theme choice.
type PreferenceStore interface {
	ThemePreference(ctx context.Context, viewer ViewerContext) (ThemeVariant, error)
	SaveThemePreference(ctx context.Context, viewer ViewerContext, variant ThemeVariant) error
}

// EventHook notifies transports (WebSocket/SSE) about page changes.
type EventHook interface {
	PageEvent(ctx context.Context, event PageEvent) error
}

// Renderer describes the template renderer contract used for pages and widgets.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// ViewerContext captures the agent looking at a page.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// CategoryCount is one slice of the popular categories chart.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryAverage is one axis of the preferences radar.
type CategoryAverage struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
}

// TypeCount is one slice of the interaction types chart.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ProductCount is one bar of the best sellers chart.
type ProductCount struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AnalyticsSnapshot is the aggregate returned by GET /api/analytics.
type AnalyticsSnapshot struct {
	PopularCategories []CategoryCount   `json:"popular_categories"`
	PreferenceData    []CategoryAverage `json:"preference_data"`
	InteractionTypes  []TypeCount       `json:"interaction_types"`
	BestSellers       []ProductCount    `json:"best_sellers"`
	TotalCustomers    int               `json:"total_customers,omitempty"`
	TotalProductsSold int               `json:"total_products_sold,omitempty"`
	TotalInteractions int               `json:"total_interactions,omitempty"`
}

// Promotion is a discount attached to a recommended product.
type Promotion struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DiscountedPrice    float64 `json:"discounted_price,omitempty"`
}

// Recommendation is a ranked product suggestion for a customer.
type Recommendation struct {
	ProductID   int         `json:"product_id"`
	Name        string      `json:"name"`
	Category    string      `json:"category,omitempty"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	Score       float64     `json:"score,omitempty"`
	Promotions  []Promotion `json:"promotions,omitempty"`
}

// InteractionDraft is the interaction form content before submission.
type InteractionDraft struct {
	CustomerID      int    `json:"customer_id"`
	InteractionType string `json:"interaction_type"`
	Notes           string `json:"notes"`
	Recommendations string `json:"recommendations"`
}

// SaveResult is the backend's answer to an interaction save.
type SaveResult struct {
	Success       bool   `json:"success"`
	InteractionID int    `json:"interaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// JourneyStage is one step of the customer journey funnel.
type JourneyStage struct {
	Label string  `json:"label"`
	Count float64 `json:"count"`
}

// SeriesData pairs labels with one value per label.
type SeriesData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// TrendSeries carries the two customer trend lines.
type TrendSeries struct {
	Labels       []string  `json:"labels"`
	NewCustomers []float64 `json:"new_customers"`
	Interactions []float64 `json:"interactions"`
}

// Insights groups the page data that comes from an InsightsSource.
type Insights struct {
	Trends       TrendSeries    `json:"trends"`
	Conversion   SeriesData     `json:"conversion"`
	Satisfaction SeriesData     `json:"satisfaction"`
	Heatmap      HeatmapMatrix  `json:"heatmap"`
	Journey      []JourneyStage `json:"journey"`
}

// PageEvent describes changes pushed to connected browsers.
type PageEvent struct {
	Type         string         `json:"type"`
	SessionID    string         `json:"session_id,omitempty"`
	MountID      string         `json:"mount_id,omitempty"`
	Notification *Notification  `json:"notification,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
}

// Page event types.
const (
	EventNotificationShow    = "notification.show"
	EventNotificationDismiss = "notification.dismiss"
	EventMountUpdated        = "mount.update"
	EventPageReload          = "page.reload"
	EventThemeChanged        = "theme.change"
)

type noopEventHook struct{}

func (noopEventHook) PageEvent(context.Context, PageEvent) error { return nil }
