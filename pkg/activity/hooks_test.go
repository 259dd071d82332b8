package activity

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHooksNotifyNormalizesAndSkipsInvalid(t *testing.T) {
	var called int
	hooks := Hooks{
		HookFunc(func(ctx context.Context, evt Event) error {
			called++
			if evt.Verb != "recommend" {
				t.Fatalf("unexpected verb %q", evt.Verb)
			}
			if evt.ObjectType != "product" || evt.ObjectID != "123" {
				t.Fatalf("unexpected object %s %s", evt.ObjectType, evt.ObjectID)
			}
			return nil
		}),
	}

	_ = hooks.Notify(context.Background(), Event{})
	if called != 0 {
		t.Fatalf("expected no calls for invalid event")
	}

	_ = hooks.Notify(context.Background(), Event{
		Verb:       " recommend ",
		ObjectType: " product ",
		ObjectID:   " 123 ",
	})
	if called != 1 {
		t.Fatalf("expected hook to be called once, got %d", called)
	}
}

func TestHooksNotifyJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	capture := &CaptureHook{}
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { return boom }),
		capture,
	}
	err := hooks.Notify(context.Background(), Event{Verb: "v", ObjectType: "o"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("later hooks should still run")
	}
}

func TestNormalizeEventClones(t *testing.T) {
	meta := map[string]any{"k": "v"}
	recipients := []string{"agent@example.com"}
	now := time.Now()

	evt := Event{
		Verb:       "verb",
		ObjectType: "obj",
		ObjectID:   "id",
		Metadata:   meta,
		Recipients: recipients,
		OccurredAt: now,
	}
	n := NormalizeEvent(evt)

	n.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("original metadata mutated")
	}

	n.Recipients[0] = "other@example.com"
	if recipients[0] != "agent@example.com" {
		t.Fatalf("original recipients mutated")
	}
	if !n.OccurredAt.Equal(now) {
		t.Fatalf("occurred_at should be preserved when set")
	}
}

func TestNormalizeEventStampsTime(t *testing.T) {
	n := NormalizeEvent(Event{Verb: "v", ObjectType: "o"})
	if n.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be stamped")
	}
}

func TestLogHookWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	hook := LogHook{Logger: zerolog.New(&buf)}
	err := hook.Notify(context.Background(), Event{Verb: "csdash.page.open", ObjectType: "page", ObjectID: "analytics", Metadata: map[string]any{"session_id": "s1"}})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"verb":"csdash.page.open"`) || !strings.Contains(out, `"session_id":"s1"`) {
		t.Fatalf("unexpected log line %s", out)
	}
}
