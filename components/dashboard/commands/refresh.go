package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshPageInput reloads the data of an open page.
type RefreshPageInput struct {
	SessionID string `json:"session_id"`
	Actor
}

type refreshService interface {
	Refresh(ctx context.Context, sessionID string) error
}

// RefreshPageCommand wraps Service.Refresh.
type RefreshPageCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshPageCommand creates the command.
func NewRefreshPageCommand(service refreshService, telemetry Telemetry) *RefreshPageCommand {
	return &RefreshPageCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshPageInput] = (*RefreshPageCommand)(nil)

// Execute re-fetches and redraws every mount of the session page.
func (c *RefreshPageCommand) Execute(ctx context.Context, msg RefreshPageInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("refresh command requires session id")
	}
	if err := c.service.Refresh(msg.Actor.context(ctx), msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "csdash.command.refresh", map[string]any{
		"session_id": msg.SessionID,
	})
	return nil
}
