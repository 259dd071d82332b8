package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Refresh outcome messages.
const (
	MsgRefreshSucceeded = "Analytics data refreshed successfully"
	MsgRefreshFailed    = "Failed to refresh analytics data"
)

var snapshotKinds = map[MountKind]bool{
	MountCategoriesChart:       true,
	MountPreferencesChart:      true,
	MountInteractionTypesChart: true,
	MountBestSellersChart:      true,
	MountKPI:                   true,
	MountChartsError:           true,
}

var insightKinds = map[MountKind]bool{
	MountCustomerTrendsChart: true,
	MountConversionRateChart: true,
	MountSatisfactionChart:   true,
	MountHeatmap:             true,
	MountJourney:             true,
}

type sessionData struct {
	snapshot        *AnalyticsSnapshot
	insights        Insights
	recommendations []Recommendation
	loadedAt        time.Time
}

// Session is one open page: the page document plus its widget registry,
// notification stack and interaction workflow. It is created by Service.Open
// and torn down by Service.Close.
type Session struct {
	id         string
	svc        *Service
	page       *Page
	viewer     ViewerContext
	customerID int

	notifications *NotificationCenter
	workflow      *InteractionWorkflow
	group         singleflight.Group

	mu     sync.RWMutex
	data   sessionData
	closed bool
}

func newSession(svc *Service, id string, page *Page, viewer ViewerContext, params OpenParams) *Session {
	s := &Session{
		id:         id,
		svc:        svc,
		page:       page,
		viewer:     viewer,
		customerID: params.CustomerID,
	}
	s.notifications = NewNotificationCenter(NotificationOptions{
		SessionID:       id,
		Scheduler:       svc.opts.Scheduler,
		EventHook:       svc.opts.EventHook,
		DefaultDuration: svc.opts.NotificationDuration,
		Logger:          &svc.log,
	})
	s.workflow = NewInteractionWorkflow(WorkflowOptions{
		Page:          page,
		Gateway:       svc.opts.Gateway,
		Notifications: s.notifications,
		Widgets:       svc.widgets,
		Scheduler:     svc.opts.Scheduler,
		ReloadDelay:   svc.opts.ReloadDelay,
		Reload:        s.reload,
		Activity:      svc.activity,
		Logger:        &svc.log,
	})
	return s
}

func (s *Session) ID() string                         { return s.id }
func (s *Session) Page() *Page                        { return s.page }
func (s *Session) Viewer() ViewerContext              { return s.viewer }
func (s *Session) CustomerID() int                    { return s.customerID }
func (s *Session) Notifications() *NotificationCenter { return s.notifications }
func (s *Session) Workflow() *InteractionWorkflow     { return s.workflow }

// Snapshot returns the analytics loaded last, nil when unavailable.
func (s *Session) Snapshot() *AnalyticsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.snapshot
}

// Recommendations returns the recommendations loaded last.
func (s *Session) Recommendations() []Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Recommendation(nil), s.data.recommendations...)
}

// LoadedAt returns when the last load finished.
func (s *Session) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.loadedAt
}

// LoadTimeout bounds a shared page load once it no longer follows the
// cancellation of the caller that started it.
const LoadTimeout = 30 * time.Second

// Load fetches everything the page needs and renders every mount. Concurrent
// calls share one in-flight load. A caller whose context ends stops waiting
// but the shared load keeps going for the others.
func (s *Session) Load(ctx context.Context) error {
	_, err := s.loadShared(ctx, EventMountUpdated)
	return err
}

// loadShared runs or joins the shared load. Only the caller that ran it
// publishes event, and it reports true.
func (s *Session) loadShared(ctx context.Context, event string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	leader := false
	ch := s.group.DoChan("load", func() (any, error) {
		leader = true
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		rendered, err := s.load(loadCtx)
		if err != nil {
			return nil, err
		}
		evt := PageEvent{Type: event, SessionID: s.id}
		if event == EventMountUpdated {
			evt.Payload = map[string]any{"mounts": rendered}
		}
		s.svc.publish(loadCtx, evt)
		return nil, nil
	})
	select {
	case res := <-ch:
		return leader, res.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (s *Session) load(ctx context.Context) ([]string, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, s.id)
	}
	s.data = data
	s.mu.Unlock()

	s.workflow.SetSuggestions(suggestionsFor(data.recommendations))
	return s.render(ctx, nil), nil
}

func (s *Session) fetch(ctx context.Context) (sessionData, error) {
	var (
		data sessionData
		g    errgroup.Group
	)
	gateway := s.svc.opts.Gateway
	needSnap := s.pageNeeds(snapshotKinds)
	needIns := s.pageNeeds(insightKinds)
	needRecs := s.customerID > 0 && (s.page.Has(MountIDRecommendations) || s.page.Has(MountIDInteractionModal))
	if needSnap && gateway != nil {
		g.Go(func() error {
			data.snapshot = gateway.FetchAnalytics(ctx)
			return nil
		})
	}
	if needRecs && gateway != nil {
		g.Go(func() error {
			data.recommendations = gateway.FetchRecommendations(ctx, s.customerID)
			return nil
		})
	}
	if needIns {
		g.Go(func() error {
			insights, err := s.svc.opts.Insights.Insights(ctx, s.viewer)
			if err != nil {
				s.svc.log.Error().Err(err).Str("session_id", s.id).Msg("insights unavailable")
				return nil
			}
			data.insights = insights
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return sessionData{}, err
	}
	if data.recommendations == nil {
		data.recommendations = []Recommendation{}
	}
	data.loadedAt = time.Now().UTC()
	return data, nil
}

func (s *Session) pageNeeds(kinds map[MountKind]bool) bool {
	for _, m := range s.page.Mounts() {
		if kinds[m.Kind] {
			return true
		}
	}
	return false
}

// render draws the mounts accepted by filter (all when nil) from the loaded
// data. A failing mount is logged and skipped.
func (s *Session) render(ctx context.Context, filter func(Mount) bool) []string {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()

	var rendered []string
	for _, mount := range s.page.Mounts() {
		if filter != nil && !filter(mount) {
			continue
		}
		renderer, ok := s.svc.opts.Registry.Renderer(mount.Kind)
		if !ok {
			s.svc.log.Warn().Str("mount", mount.ID).Str("kind", string(mount.Kind)).Msg("no renderer for mount kind")
			continue
		}
		in := RenderInput{
			Page:            s.page,
			Mount:           mount,
			Snapshot:        data.snapshot,
			Insights:        data.insights,
			CustomerID:      s.customerID,
			Recommendations: data.recommendations,
			Draft:           s.workflow.Draft(),
			ModalOpen:       s.workflow.ModalOpen(),
		}
		if err := safeRender(ctx, renderer, in); err != nil {
			s.svc.log.Error().Err(err).Str("session_id", s.id).Str("mount", mount.ID).Msg("mount render failed")
			s.svc.recordTelemetry(ctx, "dashboard.mount.render_error", map[string]any{
				"session_id": s.id,
				"mount":      mount.ID,
				"error":      err.Error(),
			})
			continue
		}
		rendered = append(rendered, mount.ID)
	}
	return rendered
}

func safeRender(ctx context.Context, renderer MountRenderer, in RenderInput) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dashboard: render %s panicked: %v", in.Mount.ID, r)
		}
	}()
	return renderer.RenderMount(ctx, in)
}

// Refresh re-runs Load and reports the outcome through a notification when
// the page shows analytics. Callers that joined a refresh already in flight
// share its outcome without repeating the notification.
func (s *Session) Refresh(ctx context.Context) error {
	leader, err := s.loadShared(ctx, EventMountUpdated)
	if err != nil {
		return err
	}
	if !leader {
		return nil
	}
	if s.pageNeeds(snapshotKinds) {
		if s.Snapshot() == nil {
			s.notifications.Error(MsgRefreshFailed)
		} else {
			s.notifications.Success(MsgRefreshSucceeded)
		}
	}
	s.svc.recordTelemetry(ctx, "dashboard.page.refresh", map[string]any{"session_id": s.id})
	s.svc.emit(ctx, VerbPageRefresh, "page", s.page.Name(), map[string]any{"session_id": s.id})
	return nil
}

// ToggleTheme flips light/dark, persists the choice for signed-in viewers
// and redraws every mount with the new theme.
func (s *Session) ToggleTheme(ctx context.Context) (ThemeVariant, error) {
	variant := s.page.Theme().Toggle()
	s.page.SetTheme(variant)
	if s.viewer.UserID != "" {
		if err := s.svc.opts.PreferenceStore.SaveThemePreference(ctx, s.viewer, variant); err != nil {
			return variant, fmt.Errorf("dashboard: save theme preference: %w", err)
		}
	}
	s.render(ctx, nil)
	s.svc.publish(ctx, PageEvent{
		Type:      EventThemeChanged,
		SessionID: s.id,
		Payload:   map[string]any{"theme": string(variant)},
	})
	s.svc.emit(ctx, VerbThemeToggle, "page", s.page.Name(), map[string]any{"theme": string(variant)})
	return variant, nil
}

// Recommend delegates to the interaction workflow for the session customer.
func (s *Session) Recommend(ctx context.Context, productID int, productName string) error {
	return s.workflow.Recommend(ctx, s.customerID, productID, productName)
}

// SubmitInteraction delegates to the interaction workflow. The draft customer
// defaults to the session customer.
func (s *Session) SubmitInteraction(ctx context.Context, draft InteractionDraft) (SaveResult, error) {
	if draft.CustomerID == 0 {
		draft.CustomerID = s.customerID
	}
	return s.workflow.Submit(ctx, draft)
}

// OpenModal shows the interaction form for the session customer.
func (s *Session) OpenModal() error {
	return s.workflow.Open(s.customerID)
}

// CloseModal hides the interaction form and keeps the draft.
func (s *Session) CloseModal() error {
	return s.workflow.CloseModal()
}

// UpdateDraft stores the fields the agent typed so far.
func (s *Session) UpdateDraft(draft InteractionDraft) error {
	if draft.CustomerID == 0 {
		draft.CustomerID = s.customerID
	}
	return s.workflow.Update(draft)
}

// AppendSuggestion adds a one-click suggestion to the draft recommendations.
func (s *Session) AppendSuggestion(text string) error {
	return s.workflow.AppendSuggestion(text)
}

func (s *Session) reload(ctx context.Context) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return
	}
	// The client reloads the whole document, so mount updates are not sent.
	if _, err := s.loadShared(ctx, EventPageReload); err != nil {
		s.svc.log.Error().Err(err).Str("session_id", s.id).Msg("page reload failed")
	}
}

func (s *Session) teardown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.workflow.Stop()
	s.notifications.Close()
	s.page.Teardown()
}
