package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/knowhub/pkg/hub"
	"github.com/aretw0/knowhub/pkg/transfer"
)

func exportCmd(a *app) *cobra.Command {
	var (
		scope  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export collections to a JSON file",
		Long: `Export writes the selected collections as one JSON document. Without
--output the file is named after the scope and the current date; use
--output - to write to standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := transfer.ParseScope(scope)
			if err != nil {
				return err
			}
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				actions := a.actions(cmd, h)
				if output == "-" {
					return actions.Export(ctx, sc, cmd.OutOrStdout())
				}

				path := output
				if path == "" {
					path = transfer.Filename(sc, a.now())
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := actions.Export(ctx, sc, f); err != nil {
					f.Close()
					os.Remove(path)
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&scope, "scope", string(transfer.ScopeAll), "Collections to export: all, notices or knowledge")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for standard output")
	return cmd
}

func importCmd(a *app) *cobra.Command {
	var (
		notices    string
		knowledge  string
		categories string
		fromExport string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace collections from JSON files",
		Long: `Import replaces every collection for which a file with at least one valid
record is given. Invalid records are skipped; files that are not JSON arrays
are reported and leave their collection untouched. --from-export reads a
file written by "knowhub export".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := importSources(fromExport, notices, knowledge, categories)
			if err != nil {
				return err
			}
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				res, done, err := a.actions(cmd, h).Import(ctx, src)
				if err != nil || !done {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&notices, "notices", "", "JSON array of notices")
	cmd.Flags().StringVar(&knowledge, "knowledge", "", "JSON array of knowledge items")
	cmd.Flags().StringVar(&categories, "categories", "", "JSON array of categories")
	cmd.Flags().StringVar(&fromExport, "from-export", "", "Export document holding any of the collections")
	cmd.MarkFlagsMutuallyExclusive("from-export", "notices")
	cmd.MarkFlagsMutuallyExclusive("from-export", "knowledge")
	cmd.MarkFlagsMutuallyExclusive("from-export", "categories")
	return cmd
}

func importSources(fromExport, notices, knowledge, categories string) (transfer.Sources, error) {
	if fromExport != "" {
		data, err := os.ReadFile(fromExport)
		if err != nil {
			return transfer.Sources{}, err
		}
		return transfer.SplitExport(filepath.Base(fromExport), data)
	}

	var src transfer.Sources
	for _, in := range []struct {
		path string
		dst  **transfer.File
	}{
		{notices, &src.Notices},
		{knowledge, &src.KnowledgeItems},
		{categories, &src.Categories},
	} {
		if in.path == "" {
			continue
		}
		f, err := transfer.ReadFile(in.path)
		if err != nil {
			return src, err
		}
		*in.dst = f
	}
	if src.Notices == nil && src.KnowledgeItems == nil && src.Categories == nil {
		return src, errors.New("nothing to import: give --notices, --knowledge, --categories or --from-export")
	}
	return src, nil
}

func resetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace all data with the sample dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				_, err := a.actions(cmd, h).ResetToSampleData(ctx)
				return err
			})
		},
	}
}
