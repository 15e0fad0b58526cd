package hub

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/knowhub/pkg/core"
)

// ErrWatchUnsupported is returned by Watch when the repository cannot
// report external changes.
var ErrWatchUnsupported = errors.New("repository does not support watching")

// Watch reloads the mirror whenever the repository reports a change made
// outside this hub. It returns once watching has started; the loop ends
// with ctx.
func (h *Hub) Watch(ctx context.Context) error {
	w, ok := h.repo.(core.Watchable)
	if !ok {
		return ErrWatchUnsupported
	}
	events, err := w.Watch(ctx, "")
	if err != nil {
		return fmt.Errorf("watch repository: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				h.logger.Info("external change detected", "event", e.String())
				if err := h.Load(ctx); err != nil {
					h.logger.Error("reload after external change failed", "error", err)
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		h.logger.Error("hub watch loop failed", "error", err)
	}))
	return nil
}
