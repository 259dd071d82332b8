package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-csdash/pkg/activity"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrSessionNotFound is returned for unknown or closed session ids.
	ErrSessionNotFound = errors.New("dashboard: session not found")
	// ErrPageNotFound is returned when no page definition matches the name.
	ErrPageNotFound = errors.New("dashboard: page not found")

	errMissingService = errors.New("dashboard: service not configured")
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Gateway         Gateway
	Insights        InsightsSource
	PreferenceStore PreferenceStore
	Renderer        Renderer
	Charts          *ChartAdapter
	Registry        *Registry
	Pages           *PageSet
	ConfigValidator ConfigValidator
	EventHook       EventHook
	Telemetry       Telemetry
	ActivityHooks   activity.Hooks
	ActivityConfig  activity.Config
	Logger          *zerolog.Logger
	Scheduler       Scheduler

	ReloadDelay          time.Duration
	NotificationDuration time.Duration
}

// OpenParams carries page parameters taken from the request.
type OpenParams struct {
	CustomerID int
}

// Service bootstraps page sessions and owns their lifecycle.
type Service struct {
	opts     Options
	widgets  *WidgetRenderer
	activity *activity.Emitter
	log      zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Insights == nil {
		opts.Insights = DefaultInsights()
	}
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.Charts == nil {
		opts.Charts = NewChartAdapter()
	}
	if opts.Pages == nil {
		opts.Pages = NewPageSet(DefaultPages()...)
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.EventHook == nil {
		opts.EventHook = noopEventHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Scheduler = normalizeScheduler(opts.Scheduler)
	if opts.ReloadDelay <= 0 {
		opts.ReloadDelay = DefaultReloadDelay
	}
	if opts.NotificationDuration <= 0 {
		opts.NotificationDuration = DefaultNotificationDuration
	}
	widgets := NewWidgetRenderer(opts.Renderer)
	if opts.Registry == nil {
		opts.Registry = NewRegistry(opts.Charts, widgets)
	}
	return &Service{
		opts:     opts,
		widgets:  widgets,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
		log:      normalizeLogger(opts.Logger),
		sessions: map[string]*Session{},
	}
}

// Pages returns the page definitions the service can open.
func (s *Service) Pages() *PageSet {
	return s.opts.Pages
}

// Renderer exposes the template renderer, possibly nil.
func (s *Service) Renderer() Renderer {
	return s.opts.Renderer
}

// Open creates a session for the named page and performs the initial load.
func (s *Service) Open(ctx context.Context, pageName string, viewer ViewerContext, params OpenParams) (*Session, error) {
	if s == nil {
		return nil, errMissingService
	}
	def, ok := s.opts.Pages.Lookup(pageName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, pageName)
	}
	if err := ValidatePage(s.opts.ConfigValidator, def); err != nil {
		return nil, err
	}

	page := def.LocalizedPage(viewer.Locale)
	theme, err := s.opts.PreferenceStore.ThemePreference(ctx, viewer)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", viewer.UserID).Msg("theme preference lookup failed")
		theme = ThemeLight
	}
	page.SetTheme(theme)

	session := newSession(s, uuid.NewString(), page, viewer, params)
	s.mu.Lock()
	s.sessions[session.id] = session
	s.mu.Unlock()

	if err := session.Load(ctx); err != nil {
		s.Close(session.id)
		return nil, err
	}
	s.recordTelemetry(ctx, "dashboard.page.open", map[string]any{
		"page":       pageName,
		"session_id": session.id,
		"viewer":     viewer.UserID,
	})
	s.emit(ctx, VerbPageOpen, "page", pageName, map[string]any{
		"session_id":  session.id,
		"customer_id": params.CustomerID,
	})
	return session, nil
}

// Session returns an open session.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// SessionIDs lists open sessions, sorted.
func (s *Service) SessionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close tears the session down. Closing an unknown session is a no-op.
func (s *Service) Close(id string) bool {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	session.teardown()
	return true
}

// Shutdown closes every session.
func (s *Service) Shutdown() {
	for _, id := range s.SessionIDs() {
		s.Close(id)
	}
}

// Refresh re-fetches and re-renders the session page.
func (s *Service) Refresh(ctx context.Context, sessionID string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return session.Refresh(ctx)
}

// ToggleTheme flips the session theme and persists the viewer choice.
func (s *Service) ToggleTheme(ctx context.Context, sessionID string) (ThemeVariant, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return "", err
	}
	return session.ToggleTheme(ctx)
}

// Recommend records a product recommendation on the session page.
func (s *Service) Recommend(ctx context.Context, sessionID string, productID int, productName string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return session.Recommend(ctx, productID, productName)
}

// SubmitInteraction validates and saves the session's interaction draft.
func (s *Service) SubmitInteraction(ctx context.Context, sessionID string, draft InteractionDraft) (SaveResult, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return SaveResult{}, err
	}
	return session.SubmitInteraction(ctx, draft)
}

// OpenModal shows the interaction form of a session.
func (s *Service) OpenModal(sessionID string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return session.OpenModal()
}

// CloseModal hides the interaction form of a session.
func (s *Service) CloseModal(sessionID string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return session.CloseModal()
}

// UpdateDraft replaces the interaction draft of a session without saving it.
func (s *Service) UpdateDraft(sessionID string, draft InteractionDraft) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return session.UpdateDraft(draft)
}

// AppendSuggestion appends a suggestion line to the draft of a session.
func (s *Service) AppendSuggestion(sessionID, text string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return session.AppendSuggestion(text)
}

// Charts returns the chart adapter shared by every session.
func (s *Service) Charts() *ChartAdapter {
	return s.opts.Charts
}

// DismissNotification hides a toast of the session.
func (s *Service) DismissNotification(sessionID, notificationID string) (bool, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return false, err
	}
	return session.Notifications().Dismiss(notificationID), nil
}

// FetchAnalytics reads the snapshot straight from the gateway.
func (s *Service) FetchAnalytics(ctx context.Context) *AnalyticsSnapshot {
	if s.opts.Gateway == nil {
		return nil
	}
	return s.opts.Gateway.FetchAnalytics(ctx)
}

// FetchRecommendations reads recommendations straight from the gateway.
func (s *Service) FetchRecommendations(ctx context.Context, customerID int) []Recommendation {
	if s.opts.Gateway == nil || customerID <= 0 {
		return []Recommendation{}
	}
	return s.opts.Gateway.FetchRecommendations(ctx, customerID)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) emit(ctx context.Context, verb, objectType, objectID string, metadata map[string]any) {
	if err := emitActivity(ctx, s.activity, verb, objectType, objectID, metadata); err != nil {
		s.log.Warn().Err(err).Str("verb", verb).Msg("activity emit failed")
	}
}

func (s *Service) publish(ctx context.Context, event PageEvent) {
	if err := s.opts.EventHook.PageEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", event.Type).Msg("page event hook failed")
	}
}
