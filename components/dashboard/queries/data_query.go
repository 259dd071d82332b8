package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-csdash/components/dashboard"
)

type analyticsSource interface {
	FetchAnalytics(ctx context.Context) *dashboard.AnalyticsSnapshot
}

type recommendationSource interface {
	FetchRecommendations(ctx context.Context, customerID int) []dashboard.Recommendation
}

// AnalyticsInput carries no parameters; the snapshot is global.
type AnalyticsInput struct{}

// AnalyticsQuery reads the analytics snapshot. A nil result means the
// backend could not provide one.
type AnalyticsQuery struct {
	source analyticsSource
}

// NewAnalyticsQuery builds the query.
func NewAnalyticsQuery(source analyticsSource) *AnalyticsQuery {
	return &AnalyticsQuery{source: source}
}

var _ gocommand.Querier[AnalyticsInput, *dashboard.AnalyticsSnapshot] = (*AnalyticsQuery)(nil)

// Query fetches the snapshot.
func (q *AnalyticsQuery) Query(ctx context.Context, _ AnalyticsInput) (*dashboard.AnalyticsSnapshot, error) {
	if q.source == nil {
		return nil, nil
	}
	return q.source.FetchAnalytics(ctx), nil
}

// RecommendationsInput selects the customer.
type RecommendationsInput struct {
	CustomerID int `json:"customer_id"`
}

// RecommendationsQuery reads product recommendations for a customer.
type RecommendationsQuery struct {
	source recommendationSource
}

// NewRecommendationsQuery builds the query.
func NewRecommendationsQuery(source recommendationSource) *RecommendationsQuery {
	return &RecommendationsQuery{source: source}
}

var _ gocommand.Querier[RecommendationsInput, []dashboard.Recommendation] = (*RecommendationsQuery)(nil)

// Query returns the recommendations in server order, never nil.
func (q *RecommendationsQuery) Query(ctx context.Context, msg RecommendationsInput) ([]dashboard.Recommendation, error) {
	if q.source == nil || msg.CustomerID <= 0 {
		return []dashboard.Recommendation{}, nil
	}
	recs := q.source.FetchRecommendations(ctx, msg.CustomerID)
	if recs == nil {
		recs = []dashboard.Recommendation{}
	}
	return recs, nil
}
