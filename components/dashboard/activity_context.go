package dashboard

import (
	"context"

	"github.com/goliatone/go-csdash/pkg/activity"
)

// ActivityContext captures actor/user/tenant identifiers for activity events.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ContextWithActivity stores activity context on the provided context.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

// activityContextFrom extracts the activity context from the context, if present.
func activityContextFrom(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	if meta, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
		return meta
	}
	return ActivityContext{}
}

// Activity verbs emitted by sessions and workflows.
const (
	VerbPageOpen         = "csdash.page.open"
	VerbPageRefresh      = "csdash.page.refresh"
	VerbThemeToggle      = "csdash.theme.toggle"
	VerbProductRecommend = "csdash.product.recommend"
	VerbInteractionSave  = "csdash.interaction.save"
)

func emitActivity(ctx context.Context, emitter *activity.Emitter, verb, objectType, objectID string, metadata map[string]any) error {
	if !emitter.Enabled() {
		return nil
	}
	meta := activityContextFrom(ctx)
	return emitter.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    meta.ActorID,
		UserID:     meta.UserID,
		TenantID:   meta.TenantID,
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   metadata,
	})
}
