package gateway

import (
	"context"
	"sync"

	dashboard "github.com/goliatone/go-csdash/components/dashboard"
)

// MockClient implements dashboard.Gateway using in-memory fixtures. It backs
// local demos and tests.
type MockClient struct {
	mu sync.Mutex

	Snapshot        *dashboard.AnalyticsSnapshot
	Recommendations map[int][]dashboard.Recommendation
	// SaveErr, when set, is returned by every save.
	SaveErr error

	saved  []dashboard.InteractionDraft
	nextID int
}

var _ dashboard.Gateway = (*MockClient)(nil)

// NewMockClient seeds the client with demo analytics.
func NewMockClient() *MockClient {
	return &MockClient{
		Snapshot:        DemoSnapshot(),
		Recommendations: map[int][]dashboard.Recommendation{},
	}
}

// FetchAnalytics returns a copy of the configured snapshot.
func (c *MockClient) FetchAnalytics(context.Context) *dashboard.AnalyticsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Snapshot == nil {
		return nil
	}
	return cloneSnapshot(c.Snapshot)
}

// FetchRecommendations returns the fixtures for customerID, never nil.
func (c *MockClient) FetchRecommendations(_ context.Context, customerID int) []dashboard.Recommendation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []dashboard.Recommendation{}
	if customerID <= 0 {
		return out
	}
	for _, rec := range c.Recommendations[customerID] {
		rec.Promotions = append([]dashboard.Promotion(nil), rec.Promotions...)
		out = append(out, rec)
	}
	return out
}

// SaveInteraction records the draft and assigns a sequential id.
func (c *MockClient) SaveInteraction(_ context.Context, draft dashboard.InteractionDraft) (dashboard.SaveResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SaveErr != nil {
		return dashboard.SaveResult{}, c.SaveErr
	}
	c.nextID++
	c.saved = append(c.saved, draft)
	return dashboard.SaveResult{Success: true, InteractionID: c.nextID}, nil
}

// Saved returns the drafts saved so far.
func (c *MockClient) Saved() []dashboard.InteractionDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]dashboard.InteractionDraft(nil), c.saved...)
}

// DemoSnapshot is the analytics payload served by the mock backend.
func DemoSnapshot() *dashboard.AnalyticsSnapshot {
	return &dashboard.AnalyticsSnapshot{
		PopularCategories: []dashboard.CategoryCount{
			{Category: "Electronics", Count: 42},
			{Category: "Software", Count: 31},
			{Category: "Accessories", Count: 18},
			{Category: "Services", Count: 9},
		},
		PreferenceData: []dashboard.CategoryAverage{
			{Category: "Electronics", Average: 4.3},
			{Category: "Software", Average: 3.8},
			{Category: "Accessories", Average: 3.1},
			{Category: "Services", Average: 2.6},
		},
		InteractionTypes: []dashboard.TypeCount{
			{Type: "call", Count: 56},
			{Type: "email", Count: 38},
			{Type: "chat", Count: 27},
			{Type: "meeting", Count: 8},
		},
		BestSellers: []dashboard.ProductCount{
			{ID: 1, Name: "Laptop Pro", Count: 24},
			{ID: 2, Name: "Wireless Mouse", Count: 19},
			{ID: 3, Name: "Office Suite", Count: 15},
		},
		TotalCustomers:    1250,
		TotalProductsSold: 3480,
		TotalInteractions: 129,
	}
}

func cloneSnapshot(s *dashboard.AnalyticsSnapshot) *dashboard.AnalyticsSnapshot {
	out := *s
	out.PopularCategories = append([]dashboard.CategoryCount(nil), s.PopularCategories...)
	out.PreferenceData = append([]dashboard.CategoryAverage(nil), s.PreferenceData...)
	out.InteractionTypes = append([]dashboard.TypeCount(nil), s.InteractionTypes...)
	out.BestSellers = append([]dashboard.ProductCount(nil), s.BestSellers...)
	return &out
}
