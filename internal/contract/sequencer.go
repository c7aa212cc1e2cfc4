package contract

import (
	"context"
	"fmt"
)

// nextPostID advances the post counter. It writes through the request's
// storage handle, so the advance is discarded together with the rest of an
// aborted request.
func nextPostID(ctx context.Context, store Storage) (uint64, error) {
	last, err := store.LoadLastPostID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load last post id: %w", err)
	}
	next := last + 1
	if err := store.SaveLastPostID(ctx, next); err != nil {
		return 0, fmt.Errorf("failed to save last post id: %w", err)
	}
	return next, nil
}
