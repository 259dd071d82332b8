package dashboard

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var errMissingRenderer = errors.New("dashboard: template renderer not configured")

// ControllerOptions configures page rendering.
type ControllerOptions struct {
	BasePath   string
	AssetsBase string
}

// Controller turns sessions into full HTML documents for the transports.
type Controller struct {
	service *Service
	opts    ControllerOptions
}

// NewController wires the service into a controller.
func NewController(service *Service, opts ControllerOptions) *Controller {
	if opts.BasePath == "" {
		opts.BasePath = "/dashboard"
	}
	opts.BasePath = "/" + strings.Trim(opts.BasePath, "/")
	if opts.AssetsBase == "" {
		opts.AssetsBase = opts.BasePath + "/assets"
	}
	return &Controller{service: service, opts: opts}
}

// Service returns the wrapped service.
func (c *Controller) Service() *Service {
	return c.service
}

// SessionURL is the page address of a session.
func (c *Controller) SessionURL(sessionID string) string {
	return c.opts.BasePath + "/sessions/" + sessionID
}

// RenderSession renders the current state of a session page.
func (c *Controller) RenderSession(sessionID string, out ...io.Writer) (string, error) {
	if c.service == nil {
		return "", errMissingService
	}
	session, err := c.service.Session(sessionID)
	if err != nil {
		return "", err
	}
	renderer := c.service.Renderer()
	if renderer == nil {
		return "", errMissingRenderer
	}
	html, err := renderer.Render(templatePage, c.PageData(session), out...)
	if err != nil {
		return "", fmt.Errorf("dashboard: render page %s: %w", session.Page().Name(), err)
	}
	return html, nil
}

// PageData builds the template context of the page template.
func (c *Controller) PageData(session *Session) map[string]any {
	page := session.Page()
	views := page.Views()
	mounts := make([]map[string]any, len(views))
	for i, view := range views {
		mounts[i] = map[string]any{
			"id":         view.ID,
			"kind":       string(view.Kind),
			"kind_class": strings.ReplaceAll(string(view.Kind), ".", "-"),
			"title":      view.Title,
			"html":       string(view.HTML),
		}
	}
	active := session.Notifications().Active()
	notes := make([]map[string]any, len(active))
	for i, n := range active {
		notes[i] = map[string]any{
			"id":      n.ID,
			"kind":    bootstrapAlertClass(n.Kind),
			"message": n.Message,
		}
	}
	var scripts []string
	if charts := c.service.Charts(); charts != nil && page.Charts().Len() > 0 {
		scripts = charts.Scripts(page.Theme())
	}
	updated := ""
	if loaded := session.LoadedAt(); !loaded.IsZero() {
		updated = FormatDate(loaded, true)
	}
	return map[string]any{
		"title":         page.Title(),
		"page":          page.Name(),
		"theme":         string(page.Theme()),
		"session_id":    session.ID(),
		"session_url":   c.SessionURL(session.ID()),
		"customer_id":   session.CustomerID(),
		"base_path":     c.opts.BasePath,
		"assets_base":   c.opts.AssetsBase,
		"mounts":        mounts,
		"notifications": notes,
		"chart_scripts": scripts,
		"updated_at":    updated,
	}
}

// bootstrapAlertClass maps toast kinds to alert classes; error renders as danger.
func bootstrapAlertClass(kind NotificationKind) string {
	if kind == NotificationError {
		return "danger"
	}
	return string(kind)
}
