package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-csdash/components/dashboard"
	"github.com/goliatone/go-csdash/components/dashboard/commands"
	"github.com/goliatone/go-csdash/components/dashboard/queries"
)

// Viewer headers read from every request. Authentication happens upstream.
const (
	HeaderUserID    = "X-User-ID"
	HeaderSessionID = "X-Session-ID"
)

type pageOpener interface {
	Open(ctx context.Context, pageName string, viewer dashboard.ViewerContext, params dashboard.OpenParams) (*dashboard.Session, error)
}

// Handlers exposes HTTP endpoints backed by shared commands. Action
// endpoints take JSON or HTML form bodies. Form posts are answered with a
// 303 back to the session page.
type Handlers struct {
	Pages       pageOpener
	Render      gocommand.Querier[queries.RenderPageInput, string]
	Refresh     gocommand.Commander[commands.RefreshPageInput]
	Theme       gocommand.Commander[commands.ToggleThemeInput]
	Recommend   gocommand.Commander[commands.RecommendProductInput]
	Interaction gocommand.Commander[commands.SaveInteractionInput]
	Dismiss     gocommand.Commander[commands.DismissNotificationInput]
	Modal       gocommand.Commander[commands.SetModalInput]
	Draft       gocommand.Commander[commands.UpdateDraftInput]
	Suggestion  gocommand.Commander[commands.AppendSuggestionInput]

	// SessionURL is where form posts return to.
	SessionURL func(sessionID string) string
}

// NewHandlers wires every endpoint to the service and its controller.
func NewHandlers(controller *dashboard.Controller, telemetry commands.Telemetry) *Handlers {
	service := controller.Service()
	return &Handlers{
		Pages:       service,
		Render:      queries.NewRenderPageQuery(controller),
		Refresh:     commands.NewRefreshPageCommand(service, telemetry),
		Theme:       commands.NewToggleThemeCommand(service, telemetry),
		Recommend:   commands.NewRecommendProductCommand(service, telemetry),
		Interaction: commands.NewSaveInteractionCommand(service, telemetry),
		Dismiss:     commands.NewDismissNotificationCommand(service, telemetry),
		Modal:       commands.NewSetModalCommand(service, telemetry),
		Draft:       commands.NewUpdateDraftCommand(service, telemetry),
		Suggestion:  commands.NewAppendSuggestionCommand(service, telemetry),
		SessionURL:  controller.SessionURL,
	}
}

// HandleOpenPage opens a session for pageName and returns its HTML. The
// session id is returned in the X-Session-ID header.
func (h *Handlers) HandleOpenPage(w http.ResponseWriter, r *http.Request, pageName string) {
	params := dashboard.OpenParams{}
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid customer_id", http.StatusBadRequest)
			return
		}
		params.CustomerID = id
	}
	session, err := h.Pages.Open(r.Context(), pageName, viewerFrom(r), params)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(HeaderSessionID, session.ID())
	h.HandleRenderSession(w, r, session.ID())
}

// HandleRenderSession writes the current page HTML of a session.
func (h *Handlers) HandleRenderSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	html, err := h.Render.Query(r.Context(), queries.RenderPageInput{SessionID: sessionID})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request, sessionID string) {
	input := commands.RefreshPageInput{SessionID: sessionID, Actor: actorFrom(r)}
	if err := h.Refresh.Execute(r.Context(), input); err != nil {
		h.fail(w, r, sessionID, err)
		return
	}
	h.done(w, r, sessionID, http.StatusOK, map[string]string{"status": "refreshed", "session_id": sessionID})
}

func (h *Handlers) HandleToggleTheme(w http.ResponseWriter, r *http.Request, sessionID string) {
	input := commands.ToggleThemeInput{SessionID: sessionID, Actor: actorFrom(r)}
	if err := h.Theme.Execute(r.Context(), input); err != nil {
		h.fail(w, r, sessionID, err)
		return
	}
	h.done(w, r, sessionID, http.StatusNoContent, nil)
}

func (h *Handlers) HandleRecommend(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload commands.RecommendProductInput
	var err error
	if IsFormPost(r.Header.Get("Content-Type")) {
		payload, err = RecommendFromForm(r.PostFormValue)
	} else {
		err = decodeJSON(r.Body, &payload)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.SessionID = sessionID
	payload.Actor = actorFrom(r)
	if err := h.Recommend.Execute(r.Context(), payload); err != nil {
		h.fail(w, r, sessionID, err)
		return
	}
	h.done(w, r, sessionID, http.StatusNoContent, nil)
}

func (h *Handlers) HandleSaveInteraction(w http.ResponseWriter, r *http.Request, sessionID string) {
	draft, err := decodeDraft(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var result dashboard.SaveResult
	input := commands.SaveInteractionInput{SessionID: sessionID, Draft: draft, Actor: actorFrom(r), Result: &result}
	if err := h.Interaction.Execute(r.Context(), input); err != nil {
		h.fail(w, r, sessionID, err)
		return
	}
	h.done(w, r, sessionID, http.StatusCreated, result)
}

// HandleSetModal opens or closes the interaction form.
func (h *Handlers) HandleSetModal(w http.ResponseWriter, r *http.Request, sessionID string, open bool) {
	if err := h.Modal.Execute(r.Context(), commands.SetModalInput{SessionID: sessionID, Open: open}); err != nil {
		h.fail(w, r, sessionID, err)
		return
	}
	h.done(w, r, sessionID, http.StatusNoContent, nil)
}

// HandleUpdateDraft keeps what the agent typed without saving it.
func (h *Handlers) HandleUpdateDraft(w http.ResponseWriter, r *http.Request, sessionID string) {
	draft, err := decodeDraft(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Draft.Execute(r.Context(), commands.UpdateDraftInput{SessionID: sessionID, Draft: draft}); err != nil {
		h.fail(w, r, sessionID, err)
		return
	}
	h.done(w, r, sessionID, http.StatusNoContent, nil)
}

// HandleAppendSuggestion adds a suggestion to the draft recommendations.
func (h *Handlers) HandleAppendSuggestion(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload commands.AppendSuggestionInput
	if IsFormPost(r.Header.Get("Content-Type")) {
		payload = SuggestionFromForm(r.PostFormValue)
	} else if err := decodeJSON(r.Body, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.SessionID = sessionID
	if err := h.Suggestion.Execute(r.Context(), payload); err != nil {
		h.fail(w, r, sessionID, err)
		return
	}
	h.done(w, r, sessionID, http.StatusNoContent, nil)
}

func (h *Handlers) HandleDismissNotification(w http.ResponseWriter, r *http.Request, sessionID, notificationID string) {
	input := commands.DismissNotificationInput{SessionID: sessionID, NotificationID: notificationID}
	if err := h.Dismiss.Execute(r.Context(), input); err != nil {
		h.fail(w, r, sessionID, err)
		return
	}
	h.done(w, r, sessionID, http.StatusNoContent, nil)
}

// done answers a successful action. Form posts go back to the page, other
// callers get status and the JSON payload when there is one.
func (h *Handlers) done(w http.ResponseWriter, r *http.Request, sessionID string, status int, payload any) {
	if IsFormPost(r.Header.Get("Content-Type")) {
		http.Redirect(w, r, h.sessionURL(sessionID), http.StatusSeeOther)
		return
	}
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, payload)
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	if IsFormPost(r.Header.Get("Content-Type")) && ReportedOnPage(err) {
		http.Redirect(w, r, h.sessionURL(sessionID), http.StatusSeeOther)
		return
	}
	writeError(w, err)
}

func (h *Handlers) sessionURL(sessionID string) string {
	if h.SessionURL != nil {
		return h.SessionURL(sessionID)
	}
	return "/dashboard/sessions/" + sessionID
}

func decodeDraft(r *http.Request) (dashboard.InteractionDraft, error) {
	if IsFormPost(r.Header.Get("Content-Type")) {
		return DraftFromForm(r.PostFormValue)
	}
	var draft dashboard.InteractionDraft
	err := decodeJSON(r.Body, &draft)
	return draft, err
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrSessionNotFound), errors.Is(err, dashboard.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrDraftInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dashboard.ErrSubmitInFlight):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrSaveRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func viewerFrom(r *http.Request) dashboard.ViewerContext {
	return dashboard.ViewerContext{
		UserID: strings.TrimSpace(r.Header.Get(HeaderUserID)),
		Locale: primaryLanguage(r.Header.Get("Accept-Language")),
	}
}

func actorFrom(r *http.Request) commands.Actor {
	user := strings.TrimSpace(r.Header.Get(HeaderUserID))
	return commands.Actor{ActorID: user, UserID: user}
}

// primaryLanguage returns the first tag of an Accept-Language header.
func primaryLanguage(header string) string {
	tag, _, _ := strings.Cut(header, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.TrimSpace(tag)
}
