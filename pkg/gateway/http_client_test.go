package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	dashboard "github.com/goliatone/go-csdash/components/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*HTTPConfig)) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := HTTPConfig{BaseURL: server.URL}
	for _, m := range mutate {
		m(&cfg)
	}
	client, err := NewHTTPClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{})
	require.Error(t, err)
}

func TestFetchAnalytics(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathAnalytics, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(DemoSnapshot())
	}, func(cfg *HTTPConfig) { cfg.APIKey = "secret" })

	snapshot := client.FetchAnalytics(context.Background())
	require.NotNil(t, snapshot)
	assert.Equal(t, "Electronics", snapshot.PopularCategories[0].Category)
	assert.Equal(t, 1250, snapshot.TotalCustomers)
}

func TestFetchAnalyticsDegrades(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"not json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		},
		"schema mismatch": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"popular_categories": [{"category": 3}]}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			client := newClient(t, handler)
			assert.Nil(t, client.FetchAnalytics(context.Background()))
		})
	}
}

func TestFetchAnalyticsAcceptsNullAverage(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"preference_data": [{"category": "Software", "average": null}]}`))
	})
	snapshot := client.FetchAnalytics(context.Background())
	require.NotNil(t, snapshot)
	assert.Zero(t, snapshot.PreferenceData[0].Average)
}

func TestFetchAnalyticsTimesOut(t *testing.T) {
	release := make(chan struct{})
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(cfg *HTTPConfig) { cfg.Timeout = 50 * time.Millisecond })
	defer close(release)

	start := time.Now()
	assert.Nil(t, client.FetchAnalytics(context.Background()))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFetchRecommendations(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, PathRecommendations+"5", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"product_id": 2, "name": "Wireless Mouse", "price": 29.99},
			{"product_id": 1, "name": "Laptop Pro", "price": 1299.5,
			 "promotions": [{"id": 7, "name": "Spring Sale", "discount_percentage": 15, "discounted_price": 1104.58}]}
		]`))
	})

	recs := client.FetchRecommendations(context.Background(), 5)
	require.Len(t, recs, 2)
	assert.Equal(t, "Wireless Mouse", recs[0].Name, "server order is kept")
	assert.Equal(t, 15.0, recs[1].Promotions[0].DiscountPercentage)

	empty := client.FetchRecommendations(context.Background(), 0)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.Equal(t, int32(1), calls.Load(), "non-positive ids make no request")
}

func TestFetchRecommendationsDegrades(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	recs := client.FetchRecommendations(context.Background(), 9)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestSaveInteraction(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathSaveInteraction, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var draft dashboard.InteractionDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, 5, draft.CustomerID)
		assert.Equal(t, "call", draft.InteractionType)
		_, _ = w.Write([]byte(`{"success": true, "interaction_id": 77}`))
	})

	result, err := client.SaveInteraction(context.Background(), dashboard.InteractionDraft{
		CustomerID:      5,
		InteractionType: "call",
		Notes:           "Followed up",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 77, result.InteractionID)
}

func TestSaveInteractionPropagatesFailures(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "db down", http.StatusInternalServerError)
	})
	_, err := client.SaveInteraction(context.Background(), dashboard.InteractionDraft{CustomerID: 1})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	assert.Contains(t, err.Error(), "gateway: save interaction")
	assert.Contains(t, err.Error(), "status: 500")
}

func TestBreakerFailsFastAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(cfg *HTTPConfig) { cfg.Breaker = true })

	for i := 0; i < breakerFailures+3; i++ {
		assert.Nil(t, client.FetchAnalytics(context.Background()))
	}
	assert.Equal(t, int32(breakerFailures), calls.Load())
}
