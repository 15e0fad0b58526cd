package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/knowhub/pkg/hub"
	"github.com/aretw0/knowhub/pkg/query"
)

const previewLength = 100

func searchCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search notices and articles by title and content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				res := query.Search(strings.Join(args, " "), h.Notices(), h.KnowledgeItems())
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, res)
				}
				if res.Empty() {
					fmt.Fprintln(out, "No results.")
					return nil
				}
				if len(res.Notices) > 0 {
					fmt.Fprintln(out, titleStyle.Render("Notices"))
					for _, n := range res.Notices {
						fmt.Fprintln(out, line(idStyle.Render(n.ID), n.Title))
						fmt.Fprintln(out, "  "+dimStyle.Render(query.TruncateText(n.Content, previewLength)))
					}
				}
				if len(res.KnowledgeItems) > 0 {
					fmt.Fprintln(out, titleStyle.Render("Articles"))
					for _, k := range res.KnowledgeItems {
						fmt.Fprintln(out, line(idStyle.Render(k.ID), k.Title))
						fmt.Fprintln(out, "  "+dimStyle.Render(query.TruncateText(k.Content, previewLength)))
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		Aliases: []string{"dashboard"},
		Short:   "Show the dashboard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				notices, items, categories := h.Notices(), h.KnowledgeItems(), h.Categories()
				out := cmd.OutOrStdout()

				fmt.Fprintf(out, "Notices:     %d (%d active this month)\n", len(notices), query.ActiveNoticesCount(notices, a.now()))
				fmt.Fprintf(out, "Articles:    %d\n", len(items))
				fmt.Fprintf(out, "Categories:  %d\n", len(categories))

				fmt.Fprintln(out)
				fmt.Fprintln(out, titleStyle.Render("Recent notices"))
				for _, n := range query.RecentNotices(notices) {
					fmt.Fprintln(out, line("-", query.FormatDate(n.Date), priorityBadge(n.Priority), n.Title))
				}

				fmt.Fprintln(out)
				fmt.Fprintln(out, titleStyle.Render("Recently updated articles"))
				for _, k := range query.PopularKnowledgeItems(items) {
					fmt.Fprintln(out, line("-", k.Title, dimStyle.Render("["+query.CategoryName(categories, k.CategoryID)+"]")))
				}
				return nil
			})
		},
	}
}
