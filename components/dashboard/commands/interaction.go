package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-csdash/components/dashboard"
)

// SaveInteractionInput submits the interaction form of a customer page.
// Result is filled with the backend response when non-nil.
type SaveInteractionInput struct {
	SessionID string                     `json:"session_id"`
	Draft     dashboard.InteractionDraft `json:"draft"`
	Actor
	Result *dashboard.SaveResult `json:"-"`
}

type interactionService interface {
	SubmitInteraction(ctx context.Context, sessionID string, draft dashboard.InteractionDraft) (dashboard.SaveResult, error)
}

// SaveInteractionCommand wraps Service.SubmitInteraction.
type SaveInteractionCommand struct {
	service   interactionService
	telemetry Telemetry
}

// NewSaveInteractionCommand creates the command.
func NewSaveInteractionCommand(service interactionService, telemetry Telemetry) *SaveInteractionCommand {
	return &SaveInteractionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveInteractionInput] = (*SaveInteractionCommand)(nil)

// Execute validates and saves the draft.
func (c *SaveInteractionCommand) Execute(ctx context.Context, msg SaveInteractionInput) error {
	if c.service == nil {
		return errors.New("interaction command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("interaction command requires session id")
	}
	result, err := c.service.SubmitInteraction(msg.Actor.context(ctx), msg.SessionID, msg.Draft)
	if msg.Result != nil {
		*msg.Result = result
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "csdash.command.interaction", map[string]any{
		"session_id":     msg.SessionID,
		"customer_id":    msg.Draft.CustomerID,
		"interaction_id": result.InteractionID,
	})
	return nil
}
