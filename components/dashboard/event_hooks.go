package dashboard

import (
	"context"
	"errors"
)

// EventHooks fans a page event out to every hook and joins their errors.
type EventHooks []EventHook

// PageEvent forwards the event to each non-nil hook.
func (h EventHooks) PageEvent(ctx context.Context, event PageEvent) error {
	var errs error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		errs = errors.Join(errs, hook.PageEvent(ctx, event))
	}
	return errs
}
