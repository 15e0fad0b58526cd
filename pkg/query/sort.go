package query

import (
	"fmt"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aretw0/knowhub/pkg/core"
)

// SortOption names an ordering.
type SortOption string

const (
	SortDateDesc     SortOption = "date-desc"
	SortDateAsc      SortOption = "date-asc"
	SortPriorityDesc SortOption = "priority-desc"
	SortTitleAsc     SortOption = "title-asc"
	SortTitleDesc    SortOption = "title-desc"
	SortUpdatedDesc  SortOption = "updated-desc"
	SortUpdatedAsc   SortOption = "updated-asc"
)

// NoticeSorts and KnowledgeSorts list the options each collection supports.
var (
	NoticeSorts    = []SortOption{SortDateDesc, SortDateAsc, SortPriorityDesc, SortTitleAsc, SortTitleDesc}
	KnowledgeSorts = []SortOption{SortUpdatedDesc, SortUpdatedAsc, SortTitleAsc, SortTitleDesc}
)

// ParseSort validates s against the supported options.
func ParseSort(s string, supported []SortOption) (SortOption, error) {
	if slices.Contains(supported, SortOption(s)) {
		return SortOption(s), nil
	}
	return "", fmt.Errorf("unknown sort option %q (want one of %v)", s, supported)
}

// SortNotices returns a sorted copy of notices. The sort is stable and
// unknown options return the copy unsorted.
func SortNotices(notices []core.Notice, opt SortOption) []core.Notice {
	out := slices.Clone(notices)
	switch opt {
	case SortDateDesc:
		slices.SortStableFunc(out, func(a, b core.Notice) int { return compareDates(b.Date, a.Date) })
	case SortDateAsc:
		slices.SortStableFunc(out, func(a, b core.Notice) int { return compareDates(a.Date, b.Date) })
	case SortPriorityDesc:
		slices.SortStableFunc(out, func(a, b core.Notice) int {
			ah, bh := a.Priority == core.PriorityHigh, b.Priority == core.PriorityHigh
			switch {
			case ah && !bh:
				return -1
			case !ah && bh:
				return 1
			}
			return compareDates(b.Date, a.Date)
		})
	case SortTitleAsc, SortTitleDesc:
		sortByTitle(out, opt == SortTitleDesc, func(n core.Notice) string { return n.Title })
	}
	return out
}

// SortKnowledgeItems returns a sorted copy of items. The sort is stable and
// unknown options return the copy unsorted.
func SortKnowledgeItems(items []core.KnowledgeItem, opt SortOption) []core.KnowledgeItem {
	out := slices.Clone(items)
	switch opt {
	case SortUpdatedDesc:
		slices.SortStableFunc(out, func(a, b core.KnowledgeItem) int { return compareDates(b.Updated, a.Updated) })
	case SortUpdatedAsc:
		slices.SortStableFunc(out, func(a, b core.KnowledgeItem) int { return compareDates(a.Updated, b.Updated) })
	case SortTitleAsc, SortTitleDesc:
		sortByTitle(out, opt == SortTitleDesc, func(k core.KnowledgeItem) string { return k.Title })
	}
	return out
}

// sortByTitle orders by a locale collator. A collator is not safe for
// concurrent use, so each call builds its own.
func sortByTitle[T any](s []T, desc bool, title func(T) string) {
	c := collate.New(language.English)
	slices.SortStableFunc(s, func(a, b T) int {
		if desc {
			return c.CompareString(title(b), title(a))
		}
		return c.CompareString(title(a), title(b))
	})
}

// compareDates orders unreadable dates before every readable one.
func compareDates(a, b string) int {
	return dateOf(a).Compare(dateOf(b))
}

func dateOf(s string) time.Time {
	t, _ := core.ParseDate(s)
	return t
}
