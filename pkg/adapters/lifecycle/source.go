// Package lifecycle exposes knowhub change events as a lifecycle.Source so
// they can drive a lifecycle-managed application loop.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/knowhub/pkg/core"
)

type eventSource struct {
	events <-chan core.Event
	kinds  map[core.Kind]bool
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits the events read from
// events, optionally restricted to the given collections.
func NewSource(events <-chan core.Event, kinds ...core.Kind) lifecycle.Source {
	s := &eventSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	if len(kinds) > 0 {
		s.kinds = make(map[core.Kind]bool, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = true
		}
	}
	return s
}

func (s *eventSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the input channel closes,
// then closes the output channel.
func (s *eventSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if s.kinds != nil && e.Kind != "" && !s.kinds[e.Kind] {
					continue
				}
				// core.Event satisfies lifecycle.Event through String().
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
