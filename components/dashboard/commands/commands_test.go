package commands

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-csdash/components/dashboard"
)

func TestRefreshPageCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewRefreshPageCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), RefreshPageInput{SessionID: "s1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.refreshCalls != 1 {
		t.Fatalf("expected refresh call")
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry event")
	}
	if err := cmd.Execute(context.Background(), RefreshPageInput{}); err == nil {
		t.Fatalf("expected error without session id")
	}
}

func TestRefreshPageCommandPropagatesError(t *testing.T) {
	service := &stubService{err: dashboard.ErrSessionNotFound}
	telemetry := &stubTelemetry{}
	cmd := NewRefreshPageCommand(service, telemetry)
	err := cmd.Execute(context.Background(), RefreshPageInput{SessionID: "gone"})
	if !errors.Is(err, dashboard.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if telemetry.calls != 0 {
		t.Fatalf("failed commands must not record telemetry")
	}
}

func TestToggleThemeCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewToggleThemeCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), ToggleThemeInput{SessionID: "s1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.themeCalls != 1 {
		t.Fatalf("expected theme call")
	}
	if telemetry.last["theme"] != "dark" {
		t.Fatalf("expected dark theme in telemetry, got %v", telemetry.last["theme"])
	}
}

func TestRecommendProductCommandAttachesActor(t *testing.T) {
	service := &stubService{}
	cmd := NewRecommendProductCommand(service, nil)
	msg := RecommendProductInput{
		SessionID:   "s1",
		ProductID:   42,
		ProductName: "Wireless Mouse",
		Actor:       Actor{ActorID: "agent-1", UserID: "agent-1"},
	}
	if err := cmd.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.recommendCalls != 1 || service.lastProduct != "Wireless Mouse" {
		t.Fatalf("expected recommend call with product name, got %+v", service)
	}
	if !service.sawActor {
		t.Fatalf("expected activity context on recommend")
	}
	if err := cmd.Execute(context.Background(), RecommendProductInput{SessionID: "s1"}); err == nil {
		t.Fatalf("expected error without product name")
	}
}

func TestSaveInteractionCommandFillsResult(t *testing.T) {
	service := &stubService{result: dashboard.SaveResult{Success: true, InteractionID: 9}}
	cmd := NewSaveInteractionCommand(service, nil)
	var result dashboard.SaveResult
	err := cmd.Execute(context.Background(), SaveInteractionInput{
		SessionID: "s1",
		Draft:     dashboard.InteractionDraft{CustomerID: 5, InteractionType: "call", Notes: "hi"},
		Result:    &result,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.InteractionID != 9 {
		t.Fatalf("expected interaction id 9, got %d", result.InteractionID)
	}
}

func TestSaveInteractionCommandReturnsValidationError(t *testing.T) {
	service := &stubService{err: dashboard.ErrDraftInvalid}
	cmd := NewSaveInteractionCommand(service, nil)
	err := cmd.Execute(context.Background(), SaveInteractionInput{SessionID: "s1"})
	if !errors.Is(err, dashboard.ErrDraftInvalid) {
		t.Fatalf("expected ErrDraftInvalid, got %v", err)
	}
}

func TestDismissNotificationCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewDismissNotificationCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), DismissNotificationInput{SessionID: "s1", NotificationID: "n1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.dismissCalls != 1 {
		t.Fatalf("expected dismiss call")
	}
	if err := cmd.Execute(context.Background(), DismissNotificationInput{SessionID: "s1"}); err == nil {
		t.Fatalf("expected error without notification id")
	}
}

func TestSetModalCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewSetModalCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), SetModalInput{SessionID: "s1", Open: true}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := cmd.Execute(context.Background(), SetModalInput{SessionID: "s1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.openModalCalls != 1 || service.closeModalCalls != 1 {
		t.Fatalf("expected one open and one close, got %+v", service)
	}
	if telemetry.last["open"] != false {
		t.Fatalf("expected close in telemetry, got %v", telemetry.last)
	}
	if err := cmd.Execute(context.Background(), SetModalInput{Open: true}); err == nil {
		t.Fatalf("expected error without session id")
	}
}

func TestUpdateDraftCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewUpdateDraftCommand(service, nil)
	draft := dashboard.InteractionDraft{InteractionType: "chat", Notes: "typing"}
	if err := cmd.Execute(context.Background(), UpdateDraftInput{SessionID: "s1", Draft: draft}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.lastDraft != draft {
		t.Fatalf("expected draft to reach service, got %+v", service.lastDraft)
	}
	service.err = dashboard.ErrSubmitInFlight
	err := cmd.Execute(context.Background(), UpdateDraftInput{SessionID: "s1", Draft: draft})
	if !errors.Is(err, dashboard.ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
}

func TestAppendSuggestionCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewAppendSuggestionCommand(service, nil)
	if err := cmd.Execute(context.Background(), AppendSuggestionInput{SessionID: "s1", Text: "Recommended Laptop Pro"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.lastSuggestion != "Recommended Laptop Pro" {
		t.Fatalf("unexpected suggestion %q", service.lastSuggestion)
	}
	if err := cmd.Execute(context.Background(), AppendSuggestionInput{SessionID: "s1", Text: "  "}); err == nil {
		t.Fatalf("expected error for blank suggestion")
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	if err := NewRefreshPageCommand(nil, nil).Execute(ctx, RefreshPageInput{SessionID: "s"}); err == nil {
		t.Fatalf("expected refresh error")
	}
	if err := NewToggleThemeCommand(nil, nil).Execute(ctx, ToggleThemeInput{SessionID: "s"}); err == nil {
		t.Fatalf("expected theme error")
	}
	if err := NewSaveInteractionCommand(nil, nil).Execute(ctx, SaveInteractionInput{SessionID: "s"}); err == nil {
		t.Fatalf("expected interaction error")
	}
}

type stubService struct {
	err            error
	result         dashboard.SaveResult
	refreshCalls   int
	themeCalls     int
	recommendCalls int
	dismissCalls   int
	lastProduct    string
	sawActor       bool

	openModalCalls  int
	closeModalCalls int
	lastDraft       dashboard.InteractionDraft
	lastSuggestion  string
}

func (s *stubService) Refresh(context.Context, string) error {
	s.refreshCalls++
	return s.err
}

func (s *stubService) ToggleTheme(context.Context, string) (dashboard.ThemeVariant, error) {
	s.themeCalls++
	return dashboard.ThemeDark, s.err
}

func (s *stubService) Recommend(ctx context.Context, _ string, _ int, name string) error {
	s.recommendCalls++
	s.lastProduct = name
	s.sawActor = ctx != context.Background()
	return s.err
}

func (s *stubService) SubmitInteraction(context.Context, string, dashboard.InteractionDraft) (dashboard.SaveResult, error) {
	return s.result, s.err
}

func (s *stubService) DismissNotification(string, string) (bool, error) {
	s.dismissCalls++
	return true, s.err
}

func (s *stubService) OpenModal(string) error {
	s.openModalCalls++
	return s.err
}

func (s *stubService) CloseModal(string) error {
	s.closeModalCalls++
	return s.err
}

func (s *stubService) UpdateDraft(_ string, draft dashboard.InteractionDraft) error {
	s.lastDraft = draft
	return s.err
}

func (s *stubService) AppendSuggestion(_ string, text string) error {
	s.lastSuggestion = text
	return s.err
}

type stubTelemetry struct {
	calls int
	last  map[string]any
}

func (s *stubTelemetry) Record(_ context.Context, _ string, payload map[string]any) {
	s.calls++
	s.last = payload
}
