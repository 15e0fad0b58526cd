package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/knowhub/internal/platform"
)

func initCmd(a *app) *cobra.Command {
	var (
		versioning bool
		sample     bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a knowledge base",
		Long: `Create a knowledge base at the vault location. With --git the vault is a
git repository and every change is committed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			opts := []platform.Option{platform.WithAutoInit(true)}
			if cmd.Flags().Changed("git") {
				opts = append(opts, platform.WithVersioning(versioning))
			}
			h, release, err := a.openHub(ctx, opts...)
			if err != nil {
				return fmt.Errorf("failed to initialize knowledge base: %w", err)
			}
			defer release()

			if sample {
				if err := h.ResetToSampleData(ctx); err != nil {
					return fmt.Errorf("failed to load sample data: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized knowledge base in %s\n", a.vault)
			return nil
		},
	}
	cmd.Flags().BoolVar(&versioning, "git", false, "Version the vault with git")
	cmd.Flags().BoolVar(&sample, "sample", false, "Load the sample dataset")
	return cmd
}
