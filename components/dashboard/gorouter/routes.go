package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-csdash/components/dashboard"
	"github.com/goliatone/go-csdash/components/dashboard/commands"
	"github.com/goliatone/go-csdash/components/dashboard/httpapi"
	"github.com/goliatone/go-csdash/components/dashboard/queries"
)

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the dashboard service, commands and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Service        *dashboard.Service
	API            *httpapi.Handlers
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	Page         string
	Session      string
	Refresh      string
	Theme        string
	Recommend    string
	Interactions string
	Modal        string
	ModalClose   string
	Draft        string
	Suggestions  string
	Notification string
	Dismiss      string
	WebSocket    string
}

// Register mounts dashboard routes (HTML, actions, WebSocket) on a go-router
// router. Actions take JSON or HTML form bodies; form posts are answered
// with a 303 back to the session page.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Service == nil {
		return errors.New("gorouter: service is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: api handlers are required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/dashboard"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}
	api := cfg.API
	a := actions{sessionURL: api.SessionURL}
	if a.sessionURL == nil {
		a.sessionURL = func(id string) string { return base + "/sessions/" + id }
	}
	group := cfg.Router.Group(base)

	group.Get(routes.Page, router.WrapHandler(func(ctx router.Context) error {
		params := dashboard.OpenParams{}
		if raw := ctx.Query("customer_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return respondError(ctx, http.StatusBadRequest, errors.New("invalid customer_id"))
			}
			params.CustomerID = id
		}
		session, err := cfg.Service.Open(ctx.Context(), ctx.Param("page"), viewerResolver(ctx), params)
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader(httpapi.HeaderSessionID, session.ID())
		return renderSession(ctx, api, session.ID())
	}))

	group.Get(routes.Session, router.WrapHandler(func(ctx router.Context) error {
		return renderSession(ctx, api, ctx.Param("session"))
	}))

	group.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		input := commands.RefreshPageInput{SessionID: id, Actor: actorFrom(viewerResolver(ctx))}
		if err := api.Refresh.Execute(ctx.Context(), input); err != nil {
			return a.fail(ctx, id, err)
		}
		return a.done(ctx, id, http.StatusOK, map[string]string{"status": "refreshed", "session_id": id})
	}))

	group.Post(routes.Theme, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		input := commands.ToggleThemeInput{SessionID: id, Actor: actorFrom(viewerResolver(ctx))}
		if err := api.Theme.Execute(ctx.Context(), input); err != nil {
			return a.fail(ctx, id, err)
		}
		return a.done(ctx, id, http.StatusOK, map[string]string{"status": "toggled"})
	}))

	group.Post(routes.Recommend, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		var payload commands.RecommendProductInput
		var err error
		if formPost(ctx) {
			payload, err = httpapi.RecommendFromForm(formValues(ctx))
		} else {
			err = decodeJSON(ctx.Body(), &payload)
		}
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = id
		payload.Actor = actorFrom(viewerResolver(ctx))
		if err := api.Recommend.Execute(ctx.Context(), payload); err != nil {
			return a.fail(ctx, id, err)
		}
		return a.done(ctx, id, http.StatusOK, map[string]string{"status": "recommended"})
	}))

	saveInteraction := router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		draft, err := decodeDraft(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var result dashboard.SaveResult
		input := commands.SaveInteractionInput{
			SessionID: id,
			Draft:     draft,
			Actor:     actorFrom(viewerResolver(ctx)),
			Result:    &result,
		}
		if err := api.Interaction.Execute(ctx.Context(), input); err != nil {
			return a.fail(ctx, id, err)
		}
		return a.done(ctx, id, http.StatusCreated, result)
	})
	group.Post(routes.Interactions, saveInteraction)
	// The interaction form posts to the page itself when scripts are off.
	group.Post(routes.Session, saveInteraction)

	setModal := func(open bool) router.HandlerFunc {
		return router.WrapHandler(func(ctx router.Context) error {
			id := ctx.Param("session")
			if err := api.Modal.Execute(ctx.Context(), commands.SetModalInput{SessionID: id, Open: open}); err != nil {
				return a.fail(ctx, id, err)
			}
			return a.done(ctx, id, http.StatusOK, map[string]bool{"open": open})
		})
	}
	group.Post(routes.Modal, setModal(true))
	group.Post(routes.ModalClose, setModal(false))

	group.Post(routes.Draft, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		draft, err := decodeDraft(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Draft.Execute(ctx.Context(), commands.UpdateDraftInput{SessionID: id, Draft: draft}); err != nil {
			return a.fail(ctx, id, err)
		}
		return a.done(ctx, id, http.StatusOK, map[string]string{"status": "drafted"})
	}))

	group.Post(routes.Suggestions, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		var payload commands.AppendSuggestionInput
		if formPost(ctx) {
			payload = httpapi.SuggestionFromForm(formValues(ctx))
		} else if err := decodeJSON(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = id
		if err := api.Suggestion.Execute(ctx.Context(), payload); err != nil {
			return a.fail(ctx, id, err)
		}
		return a.done(ctx, id, http.StatusOK, map[string]string{"status": "appended"})
	}))

	dismiss := router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		input := commands.DismissNotificationInput{SessionID: id, NotificationID: ctx.Param("id")}
		if err := api.Dismiss.Execute(ctx.Context(), input); err != nil {
			return a.fail(ctx, id, err)
		}
		return a.done(ctx, id, http.StatusOK, map[string]string{"status": "dismissed"})
	})
	group.Delete(routes.Notification, dismiss)
	group.Post(routes.Dismiss, dismiss)

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

type actions struct {
	sessionURL func(sessionID string) string
}

func (a actions) done(ctx router.Context, sessionID string, status int, payload any) error {
	if formPost(ctx) {
		return ctx.Redirect(a.sessionURL(sessionID), http.StatusSeeOther)
	}
	return ctx.JSON(status, payload)
}

func (a actions) fail(ctx router.Context, sessionID string, err error) error {
	if formPost(ctx) && httpapi.ReportedOnPage(err) {
		return ctx.Redirect(a.sessionURL(sessionID), http.StatusSeeOther)
	}
	return respondError(ctx, httpapi.StatusFor(err), err)
}

func formPost(ctx router.Context) bool {
	return httpapi.IsFormPost(ctx.Header("Content-Type"))
}

func formValues(ctx router.Context) httpapi.FormValue {
	return func(key string) string { return ctx.FormValue(key) }
}

func decodeDraft(ctx router.Context) (dashboard.InteractionDraft, error) {
	if formPost(ctx) {
		return httpapi.DraftFromForm(formValues(ctx))
	}
	var draft dashboard.InteractionDraft
	err := decodeJSON(ctx.Body(), &draft)
	return draft, err
}

// decodeJSON accepts an empty body as the zero value.
func decodeJSON(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func renderSession(ctx router.Context, api *httpapi.Handlers, sessionID string) error {
	html, err := api.Render.Query(ctx.Context(), queries.RenderPageInput{SessionID: sessionID})
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send([]byte(html))
}

// registerWebSocket streams page events; the "session" query parameter
// narrows the stream to one page.
func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		session := ws.Query("session")
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if !event.ForSession(session) {
					continue
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func actorFrom(viewer dashboard.ViewerContext) commands.Actor {
	return commands.Actor{ActorID: viewer.UserID, UserID: viewer.UserID}
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	} else {
		viewer.UserID = strings.TrimSpace(ctx.Header(httpapi.HeaderUserID))
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := ctx.Header("Accept-Language"); header != "" {
		return parseAcceptLanguage(header)
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token, _, _ = strings.Cut(token, ";")
		if token = strings.TrimSpace(token); token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Page == "" {
		routes.Page = "/pages/:page"
	}
	if routes.Session == "" {
		routes.Session = "/sessions/:session"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/sessions/:session/refresh"
	}
	if routes.Theme == "" {
		routes.Theme = "/sessions/:session/theme"
	}
	if routes.Recommend == "" {
		routes.Recommend = "/sessions/:session/recommend"
	}
	if routes.Interactions == "" {
		routes.Interactions = "/sessions/:session/interactions"
	}
	if routes.Modal == "" {
		routes.Modal = "/sessions/:session/modal"
	}
	if routes.ModalClose == "" {
		routes.ModalClose = "/sessions/:session/modal/close"
	}
	if routes.Draft == "" {
		routes.Draft = "/sessions/:session/draft"
	}
	if routes.Suggestions == "" {
		routes.Suggestions = "/sessions/:session/suggestions"
	}
	if routes.Notification == "" {
		routes.Notification = "/sessions/:session/notifications/:id"
	}
	if routes.Dismiss == "" {
		routes.Dismiss = "/sessions/:session/notifications/:id/dismiss"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
