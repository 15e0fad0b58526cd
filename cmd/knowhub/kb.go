package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/hub"
	"github.com/aretw0/knowhub/pkg/query"
)

func kbCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kb",
		Aliases: []string{"article", "articles"},
		Short:   "Manage knowledge-base articles",
	}
	cmd.AddCommand(
		kbListCmd(a),
		kbShowCmd(a),
		kbAddCmd(a),
		kbEditCmd(a),
		kbDeleteCmd(a),
	)
	return cmd
}

func kbListCmd(a *app) *cobra.Command {
	var (
		category string
		sortBy   string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := query.ParseSort(sortBy, query.KnowledgeSorts)
			if err != nil {
				return err
			}
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				items := query.SortKnowledgeItems(query.FilterKnowledgeItems(h.KnowledgeItems(), category), s)
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(out, "No articles found.")
					return nil
				}
				categories := h.Categories()
				for _, k := range items {
					fmt.Fprintln(out, line(
						idStyle.Render(k.ID),
						query.FormatDate(k.Updated),
						dimStyle.Render("["+query.CategoryName(categories, k.CategoryID)+"]"),
						k.Title,
					))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", query.AllCategories, "Category ID, or all")
	cmd.Flags().StringVar(&sortBy, "sort", string(query.SortUpdatedDesc), "Sort order")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func kbShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				if !h.SelectKnowledgeItem(args[0]) {
					return fmt.Errorf("article %s: %w", args[0], core.ErrNotFound)
				}
				k, _ := h.SelectedKnowledgeItem()

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, titleStyle.Render(k.Title))
				fmt.Fprintln(out, dimStyle.Render(line(
					query.CategoryName(h.Categories(), k.CategoryID),
					"updated "+query.FormatDate(k.Updated),
				)))
				body, err := renderMarkdown(out, k.Content)
				if err != nil {
					return err
				}
				fmt.Fprint(out, body)
				return nil
			})
		},
	}
}

type kbFlags struct {
	title       string
	content     string
	contentFile string
	category    string
}

func (f *kbFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Article title")
	cmd.Flags().StringVar(&f.content, "content", "", "Article content (markdown)")
	cmd.Flags().StringVar(&f.contentFile, "content-file", "", "Read the content from a file")
	cmd.Flags().StringVar(&f.category, "category", "", "Category ID")
}

func kbAddCmd(a *app) *cobra.Command {
	var f kbFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Write an article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(f.content, f.contentFile)
			if err != nil {
				return err
			}
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				k, err := a.actions(cmd, h).AddKnowledgeItem(ctx, hub.KnowledgeInput{
					Title:      f.title,
					Content:    content,
					CategoryID: f.category,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), k.ID)
				return nil
			})
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func kbEditCmd(a *app) *cobra.Command {
	var f kbFlags
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit an article; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				if !h.SelectKnowledgeItem(args[0]) {
					return fmt.Errorf("article %s: %w", args[0], core.ErrNotFound)
				}
				k, _ := h.SelectedKnowledgeItem()

				changed := cmd.Flags().Changed
				if changed("title") {
					k.Title = f.title
				}
				if changed("content") || changed("content-file") {
					content, err := readContent(f.content, f.contentFile)
					if err != nil {
						return err
					}
					k.Content = content
				}
				if changed("category") {
					k.CategoryID = f.category
				}
				_, err := a.actions(cmd, h).UpdateKnowledgeItem(ctx, k)
				return err
			})
		},
	}
	f.register(cmd)
	return cmd
}

func kbDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				_, err := a.actions(cmd, h).DeleteKnowledgeItem(ctx, args[0])
				return err
			})
		},
	}
}

func categoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Browse categories",
	}
	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories with their article counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				categories := h.Categories()
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, categories)
				}
				counts := query.CountByCategory(h.KnowledgeItems())
				for _, c := range categories {
					fmt.Fprintln(out, line(idStyle.Render(c.ID), c.Name, dimStyle.Render(fmt.Sprintf("(%d)", counts[c.ID]))))
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.AddCommand(list)
	return cmd
}
