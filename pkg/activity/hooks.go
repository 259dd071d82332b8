package activity

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Hooks fans an event out to every registered hook.
type Hooks []Hook

// Notify normalizes the event and forwards it. Events without a verb or
// object type are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	event = NormalizeEvent(event)
	if !event.valid() {
		return nil
	}
	var errs error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// CaptureHook stores events in memory. Useful in tests and local demos.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

// Notify records the event.
func (c *CaptureHook) Notify(_ context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Events = append(c.Events, event)
	return nil
}

// LogHook writes events to a zerolog logger at info level.
type LogHook struct {
	Logger zerolog.Logger
}

// Notify logs the event.
func (h LogHook) Notify(_ context.Context, event Event) error {
	h.Logger.Info().
		Str("verb", event.Verb).
		Str("actor_id", event.ActorID).
		Str("object_type", event.ObjectType).
		Str("object_id", event.ObjectID).
		Str("channel", event.Channel).
		Fields(event.Metadata).
		Msg("activity")
	return nil
}
