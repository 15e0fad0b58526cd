package platform

import (
	"context"

	"github.com/aretw0/knowhub/pkg/hub"
)

// New opens the knowledge base at uri and returns a loaded hub.
//
//	h, err := platform.New(ctx, "./kb", platform.WithAutoInit(true))
func New(ctx context.Context, uri string, opts ...Option) (*hub.Hub, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo, err := open(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	hubOpts := []hub.Option{hub.WithLogger(o.logger)}
	if o.clock != nil {
		hubOpts = append(hubOpts, hub.WithClock(o.clock))
	}
	h := hub.New(repo, hubOpts...)

	if err := h.Load(ctx); err != nil {
		_ = Close(repo)
		return nil, err
	}
	return h, nil
}
