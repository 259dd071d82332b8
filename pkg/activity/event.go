package activity

import (
	"context"
	"strings"
	"time"
)

// DefaultChannel tags events emitted by the customer-service dashboard.
const DefaultChannel = "csdash"

// Event is a normalized activity entry describing a user action on a page.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives normalized activity events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls f.
func (f HookFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// NormalizeEvent trims identifiers and clones mutable fields so hooks can
// keep the event without sharing state with the caller.
func NormalizeEvent(event Event) Event {
	out := event
	out.Verb = strings.TrimSpace(event.Verb)
	out.ActorID = strings.TrimSpace(event.ActorID)
	out.UserID = strings.TrimSpace(event.UserID)
	out.TenantID = strings.TrimSpace(event.TenantID)
	out.ObjectType = strings.TrimSpace(event.ObjectType)
	out.ObjectID = strings.TrimSpace(event.ObjectID)
	out.Channel = strings.TrimSpace(event.Channel)
	out.DefinitionCode = strings.TrimSpace(event.DefinitionCode)
	if len(event.Metadata) > 0 {
		out.Metadata = make(map[string]any, len(event.Metadata))
		for key, value := range event.Metadata {
			out.Metadata[key] = value
		}
	}
	if len(event.Recipients) > 0 {
		out.Recipients = append([]string(nil), event.Recipients...)
	}
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now().UTC()
	}
	return out
}

func (e Event) valid() bool {
	return e.Verb != "" && e.ObjectType != ""
}
