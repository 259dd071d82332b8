package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotificationKind styles a toast.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationWarning NotificationKind = "warning"
	NotificationInfo    NotificationKind = "info"
)

// DefaultNotificationDuration is how long a toast stays visible when the
// caller does not pick a duration.
const DefaultNotificationDuration = 3 * time.Second

func normalizeKind(kind NotificationKind) NotificationKind {
	switch kind {
	case NotificationSuccess, NotificationError, NotificationWarning, NotificationInfo:
		return kind
	default:
		return NotificationInfo
	}
}

// Notification is a transient message shown to the agent.
type Notification struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	Duration  time.Duration    `json:"duration"`
	CreatedAt time.Time        `json:"created_at"`
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay. Tests swap in a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func normalizeScheduler(s Scheduler) Scheduler {
	if s == nil {
		return realScheduler{}
	}
	return s
}

type activeNotification struct {
	note  Notification
	timer Timer
}

// NotificationCenter keeps the toasts of one session. Each toast dismisses
// itself after its duration; dismissing twice is a no-op.
type NotificationCenter struct {
	mu        sync.Mutex
	items     map[string]*activeNotification
	order     []string
	scheduler Scheduler
	hook      EventHook
	log       zerolog.Logger
	sessionID string
	fallback  time.Duration
	closed    bool
}

// NotificationOptions configures a NotificationCenter.
type NotificationOptions struct {
	SessionID       string
	Scheduler       Scheduler
	EventHook       EventHook
	DefaultDuration time.Duration
	Logger          *zerolog.Logger
}

// NewNotificationCenter builds a center with safe defaults.
func NewNotificationCenter(opts NotificationOptions) *NotificationCenter {
	hook := opts.EventHook
	if hook == nil {
		hook = noopEventHook{}
	}
	fallback := opts.DefaultDuration
	if fallback <= 0 {
		fallback = DefaultNotificationDuration
	}
	return &NotificationCenter{
		items:     map[string]*activeNotification{},
		scheduler: normalizeScheduler(opts.Scheduler),
		hook:      hook,
		log:       normalizeLogger(opts.Logger),
		sessionID: opts.SessionID,
		fallback:  fallback,
	}
}

// Notify shows a toast. Unknown kinds fall back to info and non-positive
// durations fall back to the center default.
func (c *NotificationCenter) Notify(message string, kind NotificationKind, duration time.Duration) Notification {
	if duration <= 0 {
		duration = c.fallback
	}
	note := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      normalizeKind(kind),
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return note
	}
	entry := &activeNotification{note: note}
	c.items[note.ID] = entry
	c.order = append(c.order, note.ID)
	entry.timer = c.scheduler.AfterFunc(duration, func() { c.Dismiss(note.ID) })
	c.mu.Unlock()

	c.publish(PageEvent{
		Type:         EventNotificationShow,
		SessionID:    c.sessionID,
		Notification: &note,
	})
	return note
}

func (c *NotificationCenter) Success(message string) Notification {
	return c.Notify(message, NotificationSuccess, 0)
}

func (c *NotificationCenter) Error(message string) Notification {
	return c.Notify(message, NotificationError, 0)
}

func (c *NotificationCenter) Warning(message string) Notification {
	return c.Notify(message, NotificationWarning, 0)
}

func (c *NotificationCenter) Info(message string) Notification {
	return c.Notify(message, NotificationInfo, 0)
}

// Dismiss removes the toast and cancels its timer. It reports whether the
// toast was still visible.
func (c *NotificationCenter) Dismiss(id string) bool {
	c.mu.Lock()
	entry, ok := c.items[id]
	if !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.items, id)
	c.order = removeString(c.order, id)
	c.mu.Unlock()

	if entry.timer != nil {
		entry.timer.Stop()
	}
	note := entry.note
	c.publish(PageEvent{
		Type:         EventNotificationDismiss,
		SessionID:    c.sessionID,
		Notification: &note,
	})
	return true
}

// publish runs outside the lock; timers call Dismiss from their own goroutine.
func (c *NotificationCenter) publish(event PageEvent) {
	if err := c.hook.PageEvent(context.Background(), event); err != nil {
		c.log.Warn().Err(err).
			Str("session_id", c.sessionID).
			Str("event", event.Type).
			Msg("notification event hook failed")
	}
}

// Active returns visible toasts, oldest first.
func (c *NotificationCenter) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id].note)
	}
	return out
}

// Close cancels pending timers and drops every toast.
func (c *NotificationCenter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.items {
		if entry.timer != nil {
			entry.timer.Stop()
		}
	}
	c.items = map[string]*activeNotification{}
	c.order = nil
	c.closed = true
}

func removeString(values []string, target string) []string {
	out := values[:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
