package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-csdash/components/dashboard"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// RouterOptions configures the gorilla/mux transport.
type RouterOptions struct {
	BasePath       string
	Handlers       *Handlers
	Broadcast      *dashboard.BroadcastHook
	AccessLog      io.Writer
	AllowedOrigins []string
}

// NewRouter registers every dashboard route under BasePath and wraps the
// router with access logging and CORS.
func NewRouter(opts RouterOptions) http.Handler {
	base := "/" + strings.Trim(opts.BasePath, "/")
	if base == "/" {
		base = "/dashboard"
	}
	h := opts.Handlers

	r := mux.NewRouter()
	sub := r.PathPrefix(base).Subrouter()
	sub.HandleFunc("/pages/{page}", func(w http.ResponseWriter, req *http.Request) {
		h.HandleOpenPage(w, req, mux.Vars(req)["page"])
	}).Methods(http.MethodGet)

	sessions := sub.PathPrefix("/sessions/{session}").Subrouter()
	sessions.HandleFunc("", func(w http.ResponseWriter, req *http.Request) {
		h.HandleRenderSession(w, req, mux.Vars(req)["session"])
	}).Methods(http.MethodGet)
	// The interaction form posts to the page itself when scripts are off.
	sessions.HandleFunc("", func(w http.ResponseWriter, req *http.Request) {
		h.HandleSaveInteraction(w, req, mux.Vars(req)["session"])
	}).Methods(http.MethodPost)
	sessions.HandleFunc("/refresh", func(w http.ResponseWriter, req *http.Request) {
		h.HandleRefresh(w, req, mux.Vars(req)["session"])
	}).Methods(http.MethodPost)
	sessions.HandleFunc("/theme", func(w http.ResponseWriter, req *http.Request) {
		h.HandleToggleTheme(w, req, mux.Vars(req)["session"])
	}).Methods(http.MethodPost)
	sessions.HandleFunc("/recommend", func(w http.ResponseWriter, req *http.Request) {
		h.HandleRecommend(w, req, mux.Vars(req)["session"])
	}).Methods(http.MethodPost)
	sessions.HandleFunc("/interactions", func(w http.ResponseWriter, req *http.Request) {
		h.HandleSaveInteraction(w, req, mux.Vars(req)["session"])
	}).Methods(http.MethodPost)
	sessions.HandleFunc("/modal", func(w http.ResponseWriter, req *http.Request) {
		h.HandleSetModal(w, req, mux.Vars(req)["session"], true)
	}).Methods(http.MethodPost)
	sessions.HandleFunc("/modal/close", func(w http.ResponseWriter, req *http.Request) {
		h.HandleSetModal(w, req, mux.Vars(req)["session"], false)
	}).Methods(http.MethodPost)
	sessions.HandleFunc("/draft", func(w http.ResponseWriter, req *http.Request) {
		h.HandleUpdateDraft(w, req, mux.Vars(req)["session"])
	}).Methods(http.MethodPost)
	sessions.HandleFunc("/suggestions", func(w http.ResponseWriter, req *http.Request) {
		h.HandleAppendSuggestion(w, req, mux.Vars(req)["session"])
	}).Methods(http.MethodPost)
	sessions.HandleFunc("/notifications/{id}", func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)
		h.HandleDismissNotification(w, req, vars["session"], vars["id"])
	}).Methods(http.MethodDelete)
	sessions.HandleFunc("/notifications/{id}/dismiss", func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)
		h.HandleDismissNotification(w, req, vars["session"], vars["id"])
	}).Methods(http.MethodPost)

	if opts.Broadcast != nil {
		sub.HandleFunc("/ws", opts.Broadcast.ServeWebSocket).Methods(http.MethodGet)
		sub.HandleFunc("/events", opts.Broadcast.ServeSSE).Methods(http.MethodGet)
	}

	var handler http.Handler = r
	if len(opts.AllowedOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(opts.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
			handlers.AllowedHeaders([]string{"Content-Type", HeaderUserID}),
			handlers.ExposedHeaders([]string{HeaderSessionID}),
		)(handler)
	}
	if opts.AccessLog != nil {
		handler = handlers.LoggingHandler(opts.AccessLog, handler)
	}
	return handler
}
