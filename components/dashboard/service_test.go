package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-csdash/pkg/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	gateway  *fakeGateway
	renderer *recordingRenderer
	sched    *manualScheduler
	hook     *capturingEventHook
	capture  *activity.CaptureHook
	prefs    *InMemoryPreferenceStore
	service  *Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		gateway: &fakeGateway{
			snapshot: sampleSnapshot(),
			recommendations: map[int][]Recommendation{
				5: {{ProductID: 42, Name: "Wireless Mouse", Price: 29.99}},
			},
			saveResult: SaveResult{Success: true, InteractionID: 1},
		},
		renderer: &recordingRenderer{},
		sched:    &manualScheduler{},
		hook:     &capturingEventHook{},
		capture:  &activity.CaptureHook{},
		prefs:    NewInMemoryPreferenceStore(),
	}
	f.service = NewService(Options{
		Gateway:         f.gateway,
		Renderer:        f.renderer,
		Charts:          NewChartAdapter(WithChartCache(nil)),
		PreferenceStore: f.prefs,
		EventHook:       f.hook,
		Scheduler:       f.sched,
		ActivityHooks:   activity.Hooks{f.capture},
		ActivityConfig:  activity.Config{Enabled: true},
	})
	return f
}

func TestServiceOpenAnalyticsRendersMounts(t *testing.T) {
	f := newServiceFixture()
	ctx := ContextWithActivity(context.Background(), ActivityContext{ActorID: "agent-1", UserID: "agent-1"})

	session, err := f.service.Open(ctx, PageAnalytics, ViewerContext{UserID: "agent-1"}, OpenParams{})
	require.NoError(t, err)

	page := session.Page()
	for _, id := range []string{MountIDCategories, MountIDPreferences, MountIDInteractionTypes, MountIDBestSellers,
		MountIDCustomerTrends, MountIDConversionRate, MountIDSatisfaction} {
		assert.Contains(t, page.Content(id), "echarts", id)
	}
	assert.NotEmpty(t, page.Content(MountIDHeatmap))
	assert.NotEmpty(t, page.Content(MountIDJourney))
	assert.NotEmpty(t, page.Content("kpiTotalCustomers"))
	assert.Empty(t, page.Content(MountIDChartsError))
	assert.Equal(t, 7, page.Charts().Len())

	analytics, recs, _ := f.gateway.calls()
	assert.Equal(t, 1, analytics)
	assert.Equal(t, 0, recs, "analytics page does not ask for recommendations")

	require.Len(t, f.capture.Events, 1)
	assert.Equal(t, VerbPageOpen, f.capture.Events[0].Verb)
	assert.Equal(t, "agent-1", f.capture.Events[0].ActorID)
	assert.Contains(t, f.hook.types(), EventMountUpdated)
}

func TestServiceOpenWithoutSnapshotShowsChartsError(t *testing.T) {
	f := newServiceFixture()
	f.gateway.snapshot = nil

	session, err := f.service.Open(context.Background(), PageAnalytics, ViewerContext{}, OpenParams{})
	require.NoError(t, err)

	page := session.Page()
	assert.Empty(t, page.Content(MountIDCategories))
	assert.Empty(t, page.Content("kpiTotalCustomers"))
	assert.NotEmpty(t, page.Content(MountIDChartsError))
	assert.NotEmpty(t, page.Content(MountIDHeatmap), "insight widgets do not depend on the snapshot")
	assert.Nil(t, session.Snapshot())
}

func TestServiceOpenCustomerPage(t *testing.T) {
	f := newServiceFixture()

	session, err := f.service.Open(context.Background(), PageCustomer, ViewerContext{}, OpenParams{CustomerID: 5})
	require.NoError(t, err)

	analytics, recs, _ := f.gateway.calls()
	assert.Equal(t, 0, analytics)
	assert.Equal(t, 1, recs)
	require.Len(t, session.Recommendations(), 1)

	data, ok := f.renderer.last(templateRecommendations)
	require.True(t, ok)
	assert.Equal(t, 5, data["customer_id"])
	modal, ok := f.renderer.last(templateInteractionModal)
	require.True(t, ok)
	assert.Equal(t, []string{"Recommended Wireless Mouse"}, modal["suggestions"])
}

func TestServiceOpenUnknownPage(t *testing.T) {
	f := newServiceFixture()
	_, err := f.service.Open(context.Background(), "missing", ViewerContext{}, OpenParams{})
	require.ErrorIs(t, err, ErrPageNotFound)
}

func TestServiceOpenRejectsInvalidMountConfig(t *testing.T) {
	f := newServiceFixture()
	f.service.opts.Pages = NewPageSet(PageDefinition{Name: "bad", Mounts: []Mount{{ID: "k", Kind: MountKPI}}})
	_, err := f.service.Open(context.Background(), "bad", ViewerContext{}, OpenParams{})
	require.Error(t, err)
	assert.Empty(t, f.service.SessionIDs())
}

func TestServiceRefreshNotifies(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageAnalytics, ViewerContext{}, OpenParams{})
	require.NoError(t, err)

	require.NoError(t, f.service.Refresh(context.Background(), session.ID()))
	active := session.Notifications().Active()
	require.Len(t, active, 1)
	assert.Equal(t, MsgRefreshSucceeded, active[0].Message)
	assert.Equal(t, NotificationSuccess, active[0].Kind)

	f.gateway.mu.Lock()
	f.gateway.snapshot = nil
	f.gateway.mu.Unlock()
	require.NoError(t, session.Refresh(context.Background()))
	active = session.Notifications().Active()
	require.Len(t, active, 2)
	assert.Equal(t, MsgRefreshFailed, active[1].Message)
	assert.Equal(t, NotificationError, active[1].Kind)
	assert.NotEmpty(t, session.Page().Content(MountIDChartsError))
}

func TestSessionConcurrentRefreshSharesFetch(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageAnalytics, ViewerContext{}, OpenParams{})
	require.NoError(t, err)

	f.gateway.mu.Lock()
	f.gateway.block = make(chan struct{})
	block := f.gateway.block
	f.gateway.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = session.Load(context.Background())
		}()
	}
	require.Eventually(t, func() bool {
		analytics, _, _ := f.gateway.calls()
		return analytics == 2
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(block)
	wg.Wait()

	analytics, _, _ := f.gateway.calls()
	assert.Equal(t, 2, analytics, "one initial load plus one shared refresh")
}

func TestServiceLoadHonoursCancellation(t *testing.T) {
	f := newServiceFixture()
	f.gateway.block = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Open(ctx, PageAnalytics, ViewerContext{}, OpenParams{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.service.SessionIDs())
}

func TestServiceToggleThemePersistsAndRedraws(t *testing.T) {
	f := newServiceFixture()
	viewer := ViewerContext{UserID: "agent-7"}
	session, err := f.service.Open(context.Background(), PageAnalytics, viewer, OpenParams{})
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, session.Page().Theme())

	variant, err := f.service.ToggleTheme(context.Background(), session.ID())
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, variant)

	stored, _ := f.prefs.ThemePreference(context.Background(), viewer)
	assert.Equal(t, ThemeDark, stored)
	inst, ok := session.Page().Charts().Get(MountIDCategories)
	require.True(t, ok)
	assert.Equal(t, ThemeDark.EChartsTheme(), inst.Theme)
	assert.Contains(t, f.hook.types(), EventThemeChanged)

	reopened, err := f.service.Open(context.Background(), PageAnalytics, viewer, OpenParams{})
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, reopened.Page().Theme())
}

func TestServiceSubmitInteractionReloadsPage(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageCustomer, ViewerContext{}, OpenParams{CustomerID: 5})
	require.NoError(t, err)

	require.NoError(t, f.service.Recommend(context.Background(), session.ID(), 42, "Wireless Mouse"))
	assert.Contains(t, session.Workflow().Draft().Recommendations, "Recommended Wireless Mouse")

	result, err := f.service.SubmitInteraction(context.Background(), session.ID(), session.Workflow().Draft())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 5, f.gateway.saved[0].CustomerID)

	_, recsBefore, _ := f.gateway.calls()
	f.sched.Advance(DefaultReloadDelay)
	_, recsAfter, _ := f.gateway.calls()
	assert.Equal(t, recsBefore+1, recsAfter, "reload re-fetches page data")
	assert.Contains(t, f.hook.types(), EventPageReload)
}

func TestServiceReloadPublishesOnlyPageReload(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageCustomer, ViewerContext{}, OpenParams{CustomerID: 5})
	require.NoError(t, err)
	_, err = f.service.SubmitInteraction(context.Background(), session.ID(), InteractionDraft{InteractionType: "call", Notes: "follow up"})
	require.NoError(t, err)

	before := len(f.hook.types())
	f.sched.Advance(DefaultReloadDelay)
	after := f.hook.types()[before:]

	var reloads, mountUpdates int
	for _, typ := range after {
		switch typ {
		case EventPageReload:
			reloads++
		case EventMountUpdated:
			mountUpdates++
		}
	}
	assert.Equal(t, 1, reloads)
	assert.Zero(t, mountUpdates)
}

func TestServiceInteractionFormOperations(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageCustomer, ViewerContext{}, OpenParams{CustomerID: 5})
	require.NoError(t, err)
	id := session.ID()

	require.NoError(t, f.service.OpenModal(id))
	assert.True(t, session.Workflow().ModalOpen())
	modal, ok := f.renderer.last(templateInteractionModal)
	require.True(t, ok)
	assert.Equal(t, true, modal["open"])

	require.NoError(t, f.service.UpdateDraft(id, InteractionDraft{InteractionType: "email", Notes: "asked about shipping"}))
	require.NoError(t, f.service.AppendSuggestion(id, "Recommended Wireless Mouse"))
	draft := session.Workflow().Draft()
	assert.Equal(t, 5, draft.CustomerID)
	assert.Equal(t, "asked about shipping", draft.Notes)
	assert.Equal(t, "Recommended Wireless Mouse", draft.Recommendations)
	modal, _ = f.renderer.last(templateInteractionModal)
	assert.Equal(t, draft, modal["draft"])

	require.NoError(t, f.service.CloseModal(id))
	assert.False(t, session.Workflow().ModalOpen())
	assert.Equal(t, draft, session.Workflow().Draft())

	assert.ErrorIs(t, f.service.OpenModal("missing"), ErrSessionNotFound)
	assert.ErrorIs(t, f.service.UpdateDraft("missing", InteractionDraft{}), ErrSessionNotFound)
	assert.ErrorIs(t, f.service.AppendSuggestion("missing", "x"), ErrSessionNotFound)
	assert.ErrorIs(t, f.service.CloseModal("missing"), ErrSessionNotFound)
}

func TestServiceSubmitInvalidDraftMakesNoCall(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageCustomer, ViewerContext{}, OpenParams{CustomerID: 5})
	require.NoError(t, err)

	_, err = f.service.SubmitInteraction(context.Background(), session.ID(), InteractionDraft{InteractionType: "call"})
	require.ErrorIs(t, err, ErrDraftInvalid)
	_, _, saves := f.gateway.calls()
	assert.Equal(t, 0, saves)
}

func TestServiceDismissNotification(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageAnalytics, ViewerContext{}, OpenParams{})
	require.NoError(t, err)
	note := session.Notifications().Info("hi")

	ok, err := f.service.DismissNotification(session.ID(), note.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.service.DismissNotification(session.ID(), note.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceCloseTearsDown(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageAnalytics, ViewerContext{}, OpenParams{})
	require.NoError(t, err)
	session.Notifications().Info("pending")

	assert.True(t, f.service.Close(session.ID()))
	assert.False(t, f.service.Close(session.ID()))
	assert.Equal(t, 0, session.Page().Charts().Len())
	assert.Empty(t, session.Page().Content(MountIDCategories))
	assert.Empty(t, f.sched.pending())

	_, err = f.service.Session(session.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, f.service.Refresh(context.Background(), session.ID()), ErrSessionNotFound)
}

type failingRenderer struct{}

func (failingRenderer) RenderMount(context.Context, RenderInput) error { return errors.New("render broke") }

type panickingRenderer struct{}

func (panickingRenderer) RenderMount(context.Context, RenderInput) error { panic("boom") }

func TestSessionIsolatesRenderFailures(t *testing.T) {
	f := newServiceFixture()
	telemetry := &recordingTelemetry{}
	reg := NewRegistry(NewChartAdapter(WithChartCache(nil)), NewWidgetRenderer(f.renderer))
	require.NoError(t, reg.Register(MountHeatmap, failingRenderer{}))
	require.NoError(t, reg.Register(MountJourney, panickingRenderer{}))
	service := NewService(Options{Gateway: f.gateway, Renderer: f.renderer, Registry: reg, Scheduler: f.sched, Telemetry: telemetry})

	session, err := service.Open(context.Background(), PageAnalytics, ViewerContext{}, OpenParams{})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Page().Content(MountIDCategories))
	assert.NotEmpty(t, session.Page().Content(MountIDSatisfaction))
	assert.Empty(t, session.Page().Content(MountIDHeatmap))
	assert.Empty(t, session.Page().Content(MountIDJourney))
	assert.Equal(t, 2, telemetry.count("dashboard.mount.render_error"))
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTelemetry) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func TestSessionSharedLoadOutlivesCancelledCaller(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageAnalytics, ViewerContext{}, OpenParams{})
	require.NoError(t, err)

	f.gateway.mu.Lock()
	f.gateway.block = make(chan struct{})
	block := f.gateway.block
	f.gateway.mu.Unlock()

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() { firstErr <- session.Refresh(firstCtx) }()
	require.Eventually(t, func() bool {
		analytics, _, _ := f.gateway.calls()
		return analytics == 2
	}, time.Second, 5*time.Millisecond)

	secondErr := make(chan error, 1)
	go func() { secondErr <- session.Refresh(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(block)
	require.NoError(t, <-secondErr)

	analytics, _, _ := f.gateway.calls()
	assert.Equal(t, 2, analytics, "the second caller joined the first load")
	require.Eventually(t, func() bool {
		return session.Snapshot() != nil
	}, time.Second, 5*time.Millisecond)
}

func TestSessionConcurrentRefreshNotifiesOnce(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageAnalytics, ViewerContext{}, OpenParams{})
	require.NoError(t, err)

	f.gateway.mu.Lock()
	f.gateway.block = make(chan struct{})
	block := f.gateway.block
	f.gateway.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, session.Refresh(context.Background()))
		}()
	}
	require.Eventually(t, func() bool {
		analytics, _, _ := f.gateway.calls()
		return analytics == 2
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(block)
	wg.Wait()

	successes := 0
	for _, n := range session.Notifications().Active() {
		if n.Message == MsgRefreshSucceeded {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
}
