package queries

import (
	"context"
	"errors"
	"io"

	gocommand "github.com/goliatone/go-command"
)

// RenderPageInput selects the session whose page is rendered.
type RenderPageInput struct {
	SessionID string `json:"session_id"`
}

type pageRenderer interface {
	RenderSession(sessionID string, out ...io.Writer) (string, error)
}

// RenderPageQuery renders the current HTML of an open page.
type RenderPageQuery struct {
	controller pageRenderer
}

// NewRenderPageQuery builds the query.
func NewRenderPageQuery(controller pageRenderer) *RenderPageQuery {
	return &RenderPageQuery{controller: controller}
}

var _ gocommand.Querier[RenderPageInput, string] = (*RenderPageQuery)(nil)

// Query renders the page document.
func (q *RenderPageQuery) Query(_ context.Context, msg RenderPageInput) (string, error) {
	if q.controller == nil {
		return "", errors.New("render page query requires controller")
	}
	return q.controller.RenderSession(msg.SessionID)
}
