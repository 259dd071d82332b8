package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-csdash/components/dashboard"
)

// ToggleThemeInput flips the theme of an open page.
type ToggleThemeInput struct {
	SessionID string `json:"session_id"`
	Actor
}

type themeService interface {
	ToggleTheme(ctx context.Context, sessionID string) (dashboard.ThemeVariant, error)
}

// ToggleThemeCommand wraps Service.ToggleTheme.
type ToggleThemeCommand struct {
	service   themeService
	telemetry Telemetry
}

// NewToggleThemeCommand creates the command.
func NewToggleThemeCommand(service themeService, telemetry Telemetry) *ToggleThemeCommand {
	return &ToggleThemeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleThemeInput] = (*ToggleThemeCommand)(nil)

// Execute toggles light/dark and records the resulting variant.
func (c *ToggleThemeCommand) Execute(ctx context.Context, msg ToggleThemeInput) error {
	if c.service == nil {
		return errors.New("theme command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("theme command requires session id")
	}
	variant, err := c.service.ToggleTheme(msg.Actor.context(ctx), msg.SessionID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "csdash.command.theme", map[string]any{
		"session_id": msg.SessionID,
		"theme":      string(variant),
	})
	return nil
}
