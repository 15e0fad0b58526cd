package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	lcadapter "github.com/aretw0/knowhub/pkg/adapters/lifecycle"
	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/hub"
)

func watchCmd(a *app) *cobra.Command {
	var (
		kinds    []string
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload and report changes made to the knowledge base by other programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter []core.Kind
			for _, k := range kinds {
				kind := core.Kind(k)
				if !kind.Valid() {
					return fmt.Errorf("unknown collection %q", k)
				}
				filter = append(filter, kind)
			}

			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				if duration > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, duration)
					defer cancel()
				}

				events, unsubscribe := h.Subscribe(16)
				defer unsubscribe()

				if err := h.Watch(ctx); err != nil {
					return err
				}
				src := lcadapter.NewSource(events, filter...)
				if err := src.Start(ctx); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", a.vault)
				for e := range src.Events() {
					fmt.Fprintln(out, line(dimStyle.Render(a.now().Format(time.TimeOnly)), e.String()))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Only report these collections (notices, knowledgeItems, categories)")
	cmd.Flags().DurationVar(&duration, "for", 0, "Stop after this long (default: until interrupted)")
	return cmd
}
