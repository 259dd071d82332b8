package dashboard

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

type renderCall struct {
	name string
	data map[string]any
}

// recordingRenderer echoes the template name and keeps every payload.
type recordingRenderer struct {
	mu    sync.Mutex
	calls []renderCall
	err   error
}

func (r *recordingRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, _ := data.(map[string]any)
	r.calls = append(r.calls, renderCall{name: name, data: payload})
	if r.err != nil {
		return "", r.err
	}
	html := fmt.Sprintf("<div data-template=%q></div>", name)
	if len(out) > 0 && out[0] != nil {
		_, _ = out[0].Write([]byte(html))
	}
	return html, nil
}

func (r *recordingRenderer) last(name string) (map[string]any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].name == name {
			return r.calls[i].data, true
		}
	}
	return nil, false
}

func (r *recordingRenderer) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

// manualScheduler fires callbacks only when the test advances the clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + d, delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock and runs due callbacks outside the lock.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

func (s *manualScheduler) pending() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fakeGateway is an in-memory Gateway with call counters.
type fakeGateway struct {
	mu              sync.Mutex
	snapshot        *AnalyticsSnapshot
	recommendations map[int][]Recommendation
	saveResult      SaveResult
	saveErr         error
	analyticsCalls  int
	recCalls        int
	saved           []InteractionDraft
	block           chan struct{}
}

func (g *fakeGateway) FetchAnalytics(ctx context.Context) *AnalyticsSnapshot {
	g.mu.Lock()
	g.analyticsCalls++
	block := g.block
	g.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot
}

func (g *fakeGateway) FetchRecommendations(_ context.Context, customerID int) []Recommendation {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recCalls++
	return append([]Recommendation{}, g.recommendations[customerID]...)
}

func (g *fakeGateway) SaveInteraction(_ context.Context, draft InteractionDraft) (SaveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saved = append(g.saved, draft)
	return g.saveResult, g.saveErr
}

func (g *fakeGateway) calls() (analytics, recs, saves int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.analyticsCalls, g.recCalls, len(g.saved)
}

// capturingEventHook keeps every published page event.
type capturingEventHook struct {
	mu     sync.Mutex
	events []PageEvent
}

func (h *capturingEventHook) PageEvent(_ context.Context, event PageEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *capturingEventHook) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Type
	}
	return out
}

func sampleSnapshot() *AnalyticsSnapshot {
	return &AnalyticsSnapshot{
		PopularCategories: []CategoryCount{{Category: "Electronics", Count: 12}, {Category: "Software", Count: 7}},
		PreferenceData:    []CategoryAverage{{Category: "Electronics", Average: 4.2}, {Category: "Software", Average: 3.1}},
		InteractionTypes:  []TypeCount{{Type: "call", Count: 9}, {Type: "email", Count: 4}},
		BestSellers:       []ProductCount{{ID: 1, Name: "Laptop Pro", Count: 5}, {ID: 2, Name: "Wireless Mouse", Count: 3}},
		TotalCustomers:    1250,
		TotalProductsSold: 310,
		TotalInteractions: 98,
	}
}
