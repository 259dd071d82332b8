package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
)

// RecommendProductInput records that an agent recommended a product.
type RecommendProductInput struct {
	SessionID   string `json:"session_id"`
	ProductID   int    `json:"product_id"`
	ProductName string `json:"product_name"`
	Actor
}

type recommendService interface {
	Recommend(ctx context.Context, sessionID string, productID int, productName string) error
}

// RecommendProductCommand wraps Service.Recommend.
type RecommendProductCommand struct {
	service   recommendService
	telemetry Telemetry
}

// NewRecommendProductCommand creates the command.
func NewRecommendProductCommand(service recommendService, telemetry Telemetry) *RecommendProductCommand {
	return &RecommendProductCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RecommendProductInput] = (*RecommendProductCommand)(nil)

// Execute notifies the agent and pre-fills the interaction form.
func (c *RecommendProductCommand) Execute(ctx context.Context, msg RecommendProductInput) error {
	if c.service == nil {
		return errors.New("recommend command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("recommend command requires session id")
	}
	if strings.TrimSpace(msg.ProductName) == "" {
		return errors.New("recommend command requires product name")
	}
	if err := c.service.Recommend(msg.Actor.context(ctx), msg.SessionID, msg.ProductID, msg.ProductName); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "csdash.command.recommend", map[string]any{
		"session_id": msg.SessionID,
		"product_id": msg.ProductID,
	})
	return nil
}
