package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-csdash/components/dashboard"
)

// SetModalInput shows or hides the interaction form of a session.
type SetModalInput struct {
	SessionID string `json:"session_id"`
	Open      bool   `json:"open"`
}

type modalService interface {
	OpenModal(sessionID string) error
	CloseModal(sessionID string) error
}

// SetModalCommand wraps Service.OpenModal and Service.CloseModal.
type SetModalCommand struct {
	service   modalService
	telemetry Telemetry
}

// NewSetModalCommand creates the command.
func NewSetModalCommand(service modalService, telemetry Telemetry) *SetModalCommand {
	return &SetModalCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetModalInput] = (*SetModalCommand)(nil)

// Execute opens or closes the form. The draft survives a close.
func (c *SetModalCommand) Execute(ctx context.Context, msg SetModalInput) error {
	if c.service == nil {
		return errors.New("modal command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("modal command requires session id")
	}
	var err error
	if msg.Open {
		err = c.service.OpenModal(msg.SessionID)
	} else {
		err = c.service.CloseModal(msg.SessionID)
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "csdash.command.modal", map[string]any{
		"session_id": msg.SessionID,
		"open":       msg.Open,
	})
	return nil
}

// UpdateDraftInput stores a partially filled interaction form.
type UpdateDraftInput struct {
	SessionID string                     `json:"session_id"`
	Draft     dashboard.InteractionDraft `json:"draft"`
}

type draftService interface {
	UpdateDraft(sessionID string, draft dashboard.InteractionDraft) error
}

// UpdateDraftCommand wraps Service.UpdateDraft.
type UpdateDraftCommand struct {
	service   draftService
	telemetry Telemetry
}

// NewUpdateDraftCommand creates the command.
func NewUpdateDraftCommand(service draftService, telemetry Telemetry) *UpdateDraftCommand {
	return &UpdateDraftCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateDraftInput] = (*UpdateDraftCommand)(nil)

// Execute replaces the draft without validating or saving it.
func (c *UpdateDraftCommand) Execute(ctx context.Context, msg UpdateDraftInput) error {
	if c.service == nil {
		return errors.New("draft command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("draft command requires session id")
	}
	if err := c.service.UpdateDraft(msg.SessionID, msg.Draft); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "csdash.command.draft", map[string]any{
		"session_id":       msg.SessionID,
		"interaction_type": msg.Draft.InteractionType,
	})
	return nil
}

// AppendSuggestionInput adds a suggestion line to the draft recommendations.
type AppendSuggestionInput struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type suggestionService interface {
	AppendSuggestion(sessionID, text string) error
}

// AppendSuggestionCommand wraps Service.AppendSuggestion.
type AppendSuggestionCommand struct {
	service   suggestionService
	telemetry Telemetry
}

// NewAppendSuggestionCommand creates the command.
func NewAppendSuggestionCommand(service suggestionService, telemetry Telemetry) *AppendSuggestionCommand {
	return &AppendSuggestionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AppendSuggestionInput] = (*AppendSuggestionCommand)(nil)

// Execute appends the suggestion and redraws the form.
func (c *AppendSuggestionCommand) Execute(ctx context.Context, msg AppendSuggestionInput) error {
	if c.service == nil {
		return errors.New("suggestion command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("suggestion command requires session id")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return errors.New("suggestion command requires text")
	}
	if err := c.service.AppendSuggestion(msg.SessionID, msg.Text); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "csdash.command.suggestion", map[string]any{
		"session_id": msg.SessionID,
	})
	return nil
}
