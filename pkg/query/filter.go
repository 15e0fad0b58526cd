// Package query holds the pure functions the views apply to the in-memory
// collections: filtering, sorting, search and the dashboard aggregates.
// Nothing here touches a repository, and every function that depends on
// the current time takes it as an argument.
package query

import (
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/knowhub/pkg/core"
)

// NoticeFilter selects a subset of notices.
type NoticeFilter string

const (
	FilterAll    NoticeFilter = "all"
	FilterHigh   NoticeFilter = "high"
	FilterNormal NoticeFilter = "normal"
	FilterRecent NoticeFilter = "recent"
)

// RecentWindow is how far back a notice counts as recent.
const RecentWindow = 7 * 24 * time.Hour

// AllCategories disables the category filter.
const AllCategories = "all"

// ParseNoticeFilter validates a filter name; the empty string means FilterAll.
func ParseNoticeFilter(s string) (NoticeFilter, error) {
	switch f := NoticeFilter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterHigh, FilterNormal, FilterRecent:
		return f, nil
	default:
		return "", fmt.Errorf("unknown notice filter %q (want all, high, normal or recent)", s)
	}
}

// FilterNotices returns the notices matching filter, in input order.
// FilterRecent keeps notices dated at or after now minus RecentWindow;
// notices with unreadable dates are never recent. Unknown filters keep
// everything.
func FilterNotices(notices []core.Notice, filter NoticeFilter, now time.Time) []core.Notice {
	switch filter {
	case FilterHigh:
		return keep(notices, func(n core.Notice) bool { return n.Priority == core.PriorityHigh })
	case FilterNormal:
		return keep(notices, func(n core.Notice) bool { return n.Priority == core.PriorityNormal })
	case FilterRecent:
		cutoff := now.Add(-RecentWindow)
		return keep(notices, func(n core.Notice) bool {
			t, ok := core.ParseDate(n.Date)
			return ok && !t.Before(cutoff)
		})
	default:
		return slices.Clone(notices)
	}
}

// FilterKnowledgeItems returns the items of one category, or all of them
// for AllCategories.
func FilterKnowledgeItems(items []core.KnowledgeItem, categoryID string) []core.KnowledgeItem {
	if categoryID == AllCategories {
		return slices.Clone(items)
	}
	return keep(items, func(k core.KnowledgeItem) bool { return k.CategoryID == categoryID })
}

func keep[T any](in []T, pred func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}
