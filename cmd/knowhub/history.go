package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/knowhub/pkg/adapters/fs"
	"github.com/aretw0/knowhub/pkg/hub"
)

func historyCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the latest committed changes of a versioned vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				repo, ok := h.Repository().(*fs.Repository)
				if !ok {
					return errors.New("history needs the fs adapter")
				}
				entries, err := repo.History(ctx, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, e := range entries {
					fmt.Fprintln(out, line(idStyle.Render(e.Hash), dimStyle.Render(e.When.Format("2006-01-02 15:04")), e.Subject))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of changes to show")
	return cmd
}
