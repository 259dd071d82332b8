package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// DismissNotificationInput closes one toast.
type DismissNotificationInput struct {
	SessionID      string `json:"session_id"`
	NotificationID string `json:"notification_id"`
}

type dismissService interface {
	DismissNotification(sessionID, notificationID string) (bool, error)
}

// DismissNotificationCommand wraps Service.DismissNotification. Dismissing a
// toast that is already gone is not an error.
type DismissNotificationCommand struct {
	service   dismissService
	telemetry Telemetry
}

// NewDismissNotificationCommand creates the command.
func NewDismissNotificationCommand(service dismissService, telemetry Telemetry) *DismissNotificationCommand {
	return &DismissNotificationCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DismissNotificationInput] = (*DismissNotificationCommand)(nil)

// Execute removes the toast.
func (c *DismissNotificationCommand) Execute(ctx context.Context, msg DismissNotificationInput) error {
	if c.service == nil {
		return errors.New("dismiss command requires service")
	}
	if msg.SessionID == "" || msg.NotificationID == "" {
		return errors.New("dismiss command requires session and notification id")
	}
	removed, err := c.service.DismissNotification(msg.SessionID, msg.NotificationID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "csdash.command.dismiss", map[string]any{
		"session_id":      msg.SessionID,
		"notification_id": msg.NotificationID,
		"removed":         removed,
	})
	return nil
}
