package query_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/query"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func day(offset int) string {
	return core.FormatTimestamp(now.AddDate(0, 0, offset))
}

func noticeIDs(ns []core.Notice) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

func itemIDs(ks []core.KnowledgeItem) []string {
	out := make([]string, 0, len(ks))
	for _, k := range ks {
		out = append(out, k.ID)
	}
	return out
}

func TestRecentScenario(t *testing.T) {
	notices := []core.Notice{
		{ID: "old", Title: "Old", Date: day(-10), Priority: core.PriorityNormal},
		{ID: "today", Title: "Today", Date: day(0), Priority: core.PriorityNormal},
	}

	assert.Equal(t, []string{"today"}, noticeIDs(query.FilterNotices(notices, query.FilterRecent, now)))
	assert.Equal(t, []string{"old", "today"}, noticeIDs(query.FilterNotices(notices, query.FilterAll, now)))
	assert.Equal(t, []string{"today", "old"}, noticeIDs(query.SortNotices(notices, query.SortDateDesc)))
}

func TestFilterNotices(t *testing.T) {
	notices := []core.Notice{
		{ID: "h", Priority: core.PriorityHigh, Date: day(-1)},
		{ID: "n", Priority: core.PriorityNormal, Date: day(-7)},
		{ID: "bad", Priority: core.PriorityNormal, Date: "not a date"},
	}

	tests := []struct {
		filter query.NoticeFilter
		want   []string
	}{
		{filter: query.FilterAll, want: []string{"h", "n", "bad"}},
		{filter: query.FilterHigh, want: []string{"h"}},
		{filter: query.FilterNormal, want: []string{"n", "bad"}},
		{filter: query.FilterRecent, want: []string{"h", "n"}},
		{filter: "bogus", want: []string{"h", "n", "bad"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			assert.Equal(t, tt.want, noticeIDs(query.FilterNotices(notices, tt.filter, now)))
		})
	}
}

func TestParseNoticeFilter(t *testing.T) {
	f, err := query.ParseNoticeFilter("")
	require.NoError(t, err)
	assert.Equal(t, query.FilterAll, f)

	_, err = query.ParseNoticeFilter("urgent")
	assert.Error(t, err)
}

func TestFilterKnowledgeItems(t *testing.T) {
	items := []core.KnowledgeItem{
		{ID: "a", CategoryID: "c1"},
		{ID: "b", CategoryID: "c2"},
		{ID: "c", CategoryID: "c1"},
	}
	assert.Equal(t, []string{"a", "c"}, itemIDs(query.FilterKnowledgeItems(items, "c1")))
	assert.Equal(t, []string{"a", "b", "c"}, itemIDs(query.FilterKnowledgeItems(items, query.AllCategories)))
	assert.Empty(t, query.FilterKnowledgeItems(items, "missing"))
}

func TestSortNotices_PriorityThenDate(t *testing.T) {
	notices := []core.Notice{
		{ID: "n-old", Priority: core.PriorityNormal, Date: day(-5)},
		{ID: "h-old", Priority: core.PriorityHigh, Date: day(-4)},
		{ID: "n-new", Priority: core.PriorityNormal, Date: day(-1)},
		{ID: "h-new", Priority: core.PriorityHigh, Date: day(0)},
	}
	got := query.SortNotices(notices, query.SortPriorityDesc)
	assert.Equal(t, []string{"h-new", "h-old", "n-new", "n-old"}, noticeIDs(got))
}

func TestSortNotices_DoesNotMutateInput(t *testing.T) {
	notices := []core.Notice{{ID: "b", Title: "Beta"}, {ID: "a", Title: "alpha"}}
	before := append([]core.Notice(nil), notices...)

	got := query.SortNotices(notices, query.SortTitleAsc)

	assert.Equal(t, []string{"a", "b"}, noticeIDs(got))
	if diff := cmp.Diff(before, notices); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestSort_StableAndIdempotent(t *testing.T) {
	notices := []core.Notice{
		{ID: "1", Title: "Same", Date: day(-2)},
		{ID: "2", Title: "Other", Date: day(-2)},
		{ID: "3", Title: "Same", Date: day(-1)},
		{ID: "4", Title: "same", Date: day(-3)},
	}

	for _, opt := range query.NoticeSorts {
		t.Run(string(opt), func(t *testing.T) {
			once := query.SortNotices(notices, opt)
			twice := query.SortNotices(once, opt)
			assert.Equal(t, noticeIDs(once), noticeIDs(twice))
		})
	}

	// Equal dates keep their input order.
	assert.Equal(t, []string{"3", "1", "2", "4"}, noticeIDs(query.SortNotices(notices, query.SortDateDesc)))
}

func TestSortKnowledgeItems(t *testing.T) {
	items := []core.KnowledgeItem{
		{ID: "mid", Title: "Écoles", Updated: day(-2)},
		{ID: "new", Title: "zebra", Updated: day(0)},
		{ID: "old", Title: "Apple", Updated: day(-9)},
	}

	assert.Equal(t, []string{"new", "mid", "old"}, itemIDs(query.SortKnowledgeItems(items, query.SortUpdatedDesc)))
	assert.Equal(t, []string{"old", "mid", "new"}, itemIDs(query.SortKnowledgeItems(items, query.SortUpdatedAsc)))
	assert.Equal(t, []string{"old", "mid", "new"}, itemIDs(query.SortKnowledgeItems(items, query.SortTitleAsc)))
	assert.Equal(t, []string{"new", "mid", "old"}, itemIDs(query.SortKnowledgeItems(items, query.SortTitleDesc)))
	assert.Equal(t, []string{"mid", "new", "old"}, itemIDs(query.SortKnowledgeItems(items, "unknown")))
}

func TestParseSort(t *testing.T) {
	opt, err := query.ParseSort("updated-desc", query.KnowledgeSorts)
	require.NoError(t, err)
	assert.Equal(t, query.SortUpdatedDesc, opt)

	_, err = query.ParseSort("priority-desc", query.KnowledgeSorts)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	notices := []core.Notice{
		{ID: "n1", Title: "Budget review", Content: "Q3"},
		{ID: "n2", Title: "Picnic", Content: "bring the budget sheet"},
		{ID: "n3", Title: "Unrelated", Content: "nothing"},
	}
	items := []core.KnowledgeItem{
		{ID: "k1", Title: "How to file expenses", Content: "Budget codes live here"},
	}

	upper := query.Search("BUDGET", notices, items)
	lower := query.Search("  budget ", notices, items)

	assert.Equal(t, []string{"n1", "n2"}, noticeIDs(upper.Notices))
	assert.Equal(t, []string{"k1"}, itemIDs(upper.KnowledgeItems))
	if diff := cmp.Diff(upper, lower); diff != "" {
		t.Errorf("search is case sensitive (-upper +lower):\n%s", diff)
	}
}

func TestSearch_BlankQuery(t *testing.T) {
	notices := []core.Notice{{ID: "n1", Title: " "}}
	for _, q := range []string{"", "   ", "\t\n"} {
		res := query.Search(q, notices, []core.KnowledgeItem{{ID: "k1"}})
		assert.NotNil(t, res.Notices)
		assert.NotNil(t, res.KnowledgeItems)
		assert.True(t, res.Empty(), "query %q", q)
	}
}

func TestSearch_Limit(t *testing.T) {
	var notices []core.Notice
	for i := range 8 {
		notices = append(notices, core.Notice{ID: string(rune('a' + i)), Title: "match"})
	}
	res := query.Search("match", notices, nil)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, noticeIDs(res.Notices))
	assert.Empty(t, res.KnowledgeItems)
}
