package commands

import (
	"context"

	dashboard "github.com/goliatone/go-csdash/components/dashboard"
)

// Actor identifies who issued a command. It is attached to the context so
// activity events carry it.
type Actor struct {
	ActorID  string `json:"actor_id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

func (a Actor) context(ctx context.Context) context.Context {
	if a == (Actor{}) {
		return ctx
	}
	return dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID:  a.ActorID,
		UserID:   a.UserID,
		TenantID: a.TenantID,
	})
}
