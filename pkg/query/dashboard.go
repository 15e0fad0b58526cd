package query

import (
	"time"
	"unicode/utf8"

	"github.com/aretw0/knowhub/pkg/core"
)

// DashboardSize is the length of the dashboard's top lists.
const DashboardSize = 3

// Uncategorized labels items whose category is missing.
const Uncategorized = "Uncategorized"

// RecentNotices returns the newest notices by date.
func RecentNotices(notices []core.Notice) []core.Notice {
	return head(SortNotices(notices, SortDateDesc), DashboardSize)
}

// ActiveNoticesCount counts the notices dated within the month before now.
func ActiveNoticesCount(notices []core.Notice, now time.Time) int {
	cutoff := now.AddDate(0, -1, 0)
	n := 0
	for _, notice := range notices {
		if t, ok := core.ParseDate(notice.Date); ok && !t.Before(cutoff) {
			n++
		}
	}
	return n
}

// PopularKnowledgeItems returns the most recently updated items.
func PopularKnowledgeItems(items []core.KnowledgeItem) []core.KnowledgeItem {
	return head(SortKnowledgeItems(items, SortUpdatedDesc), DashboardSize)
}

// CategoryName resolves a category ID, falling back to Uncategorized.
func CategoryName(categories []core.Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return Uncategorized
}

// CountByCategory returns how many items reference each category ID.
func CountByCategory(items []core.KnowledgeItem) map[string]int {
	counts := make(map[string]int)
	for _, k := range items {
		counts[k.CategoryID]++
	}
	return counts
}

// TruncateText shortens text to limit runes, marking the cut with "...".
func TruncateText(text string, limit int) string {
	if limit < 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}

// FormatDate renders a stored date as "Jan 2, 2006". Empty input yields ""
// and unreadable input "Invalid date".
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	t, ok := core.ParseDate(s)
	if !ok {
		return "Invalid date"
	}
	return t.Format("Jan 2, 2006")
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
