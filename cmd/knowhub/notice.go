package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/hub"
	"github.com/aretw0/knowhub/pkg/query"
)

func noticeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notice",
		Aliases: []string{"notices"},
		Short:   "Manage notices",
	}
	cmd.AddCommand(
		noticeListCmd(a),
		noticeShowCmd(a),
		noticeAddCmd(a),
		noticeEditCmd(a),
		noticeDeleteCmd(a),
	)
	return cmd
}

func noticeListCmd(a *app) *cobra.Command {
	var (
		filter string
		sortBy string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := query.ParseNoticeFilter(filter)
			if err != nil {
				return err
			}
			s, err := query.ParseSort(sortBy, query.NoticeSorts)
			if err != nil {
				return err
			}
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				notices := query.SortNotices(query.FilterNotices(h.Notices(), f, a.now()), s)
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, notices)
				}
				if len(notices) == 0 {
					fmt.Fprintln(out, "No notices found.")
					return nil
				}
				for _, n := range notices {
					fmt.Fprintln(out, line(idStyle.Render(n.ID), query.FormatDate(n.Date), priorityBadge(n.Priority), n.Title))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(query.FilterAll), "Filter: all, high, normal or recent")
	cmd.Flags().StringVar(&sortBy, "sort", string(query.SortDateDesc), "Sort order")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func noticeShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a notice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				if !h.SelectNotice(args[0]) {
					return fmt.Errorf("notice %s: %w", args[0], core.ErrNotFound)
				}
				n, _ := h.SelectedNotice()

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, line(titleStyle.Render(n.Title), priorityBadge(n.Priority)))
				fmt.Fprintln(out, dimStyle.Render(line(n.Author, query.FormatDate(n.Date))))
				body, err := renderMarkdown(out, n.Content)
				if err != nil {
					return err
				}
				fmt.Fprint(out, body)
				return nil
			})
		},
	}
}

type noticeFlags struct {
	title       string
	content     string
	contentFile string
	author      string
	date        string
	priority    string
}

func (f *noticeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Notice title")
	cmd.Flags().StringVar(&f.content, "content", "", "Notice content (markdown)")
	cmd.Flags().StringVar(&f.contentFile, "content-file", "", "Read the content from a file")
	cmd.Flags().StringVar(&f.author, "author", "", "Author")
	cmd.Flags().StringVar(&f.date, "date", "", "Publication date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.priority, "priority", string(core.PriorityNormal), "Priority: high or normal")
}

func validDate(s string) error {
	if s == "" {
		return nil
	}
	if _, ok := core.ParseDate(s); !ok {
		return fmt.Errorf("invalid date %q", s)
	}
	return nil
}

func noticeAddCmd(a *app) *cobra.Command {
	var f noticeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Publish a notice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(f.content, f.contentFile)
			if err != nil {
				return err
			}
			if err := validDate(f.date); err != nil {
				return err
			}
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				n, err := a.actions(cmd, h).AddNotice(ctx, hub.NoticeInput{
					Title:    f.title,
					Content:  content,
					Author:   f.author,
					Date:     f.date,
					Priority: core.ParsePriority(f.priority),
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n.ID)
				return nil
			})
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func noticeEditCmd(a *app) *cobra.Command {
	var f noticeFlags
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a notice; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validDate(f.date); err != nil {
				return err
			}
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				if !h.SelectNotice(args[0]) {
					return fmt.Errorf("notice %s: %w", args[0], core.ErrNotFound)
				}
				n, _ := h.SelectedNotice()

				changed := cmd.Flags().Changed
				if changed("title") {
					n.Title = f.title
				}
				if changed("content") || changed("content-file") {
					content, err := readContent(f.content, f.contentFile)
					if err != nil {
						return err
					}
					n.Content = content
				}
				if changed("author") {
					n.Author = f.author
				}
				if changed("date") {
					n.Date = f.date
				}
				if changed("priority") {
					n.Priority = core.ParsePriority(f.priority)
				}
				return a.actions(cmd, h).UpdateNotice(ctx, n)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func noticeDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a notice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHub(cmd, func(ctx context.Context, h *hub.Hub) error {
				_, err := a.actions(cmd, h).DeleteNotice(ctx, args[0])
				return err
			})
		},
	}
}
