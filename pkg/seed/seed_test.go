package seed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/query"
	"github.com/aretw0/knowhub/pkg/seed"
)

func TestSample(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	ds, err := seed.Sample(now)
	require.NoError(t, err)

	require.NotEmpty(t, ds.Categories)
	require.NotEmpty(t, ds.KnowledgeItems)
	require.NotEmpty(t, ds.Notices)

	categories := make(map[string]bool)
	for _, c := range ds.Categories {
		categories[c.ID] = true
	}
	for _, k := range ds.KnowledgeItems {
		assert.True(t, categories[k.CategoryID], "%s references unknown category %s", k.ID, k.CategoryID)
		created, ok := core.ParseDate(k.Created)
		require.True(t, ok)
		updated, ok := core.ParseDate(k.Updated)
		require.True(t, ok)
		assert.False(t, updated.Before(created), "%s updated before created", k.ID)
	}

	// The sample is useful for every notice filter.
	assert.NotEmpty(t, query.FilterNotices(ds.Notices, query.FilterRecent, now))
	assert.NotEmpty(t, query.FilterNotices(ds.Notices, query.FilterHigh, now))
	assert.Less(t, len(query.FilterNotices(ds.Notices, query.FilterRecent, now)), len(ds.Notices))
}

func TestParse_Invalid(t *testing.T) {
	_, err := seed.Parse([]byte("notices: [unclosed"), time.Now())
	assert.Error(t, err)
}
