package typed_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/adapters/memory"
	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/typed"
)

func TestCollection_RoundTrip(t *testing.T) {
	repo := memory.NewRepository()
	notices := typed.NewCollection[core.Notice](repo)
	ctx := context.Background()

	in := core.Notice{
		ID:       "n1",
		Title:    "Office closed",
		Content:  "The office is **closed** on Friday.",
		Author:   "Facilities",
		Date:     "2024-05-10",
		Priority: core.PriorityHigh,
	}
	require.NoError(t, notices.Put(ctx, in))

	got, err := notices.Get(ctx, "n1")
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("notice mismatch (-want +got):\n%s", diff)
	}

	all, err := notices.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, core.KindNotices, notices.Kind())
}

func TestCollection_KindsDoNotLeak(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	items := typed.NewCollection[core.KnowledgeItem](repo)
	cats := typed.NewCollection[core.Category](repo)

	require.NoError(t, items.Put(ctx, core.KnowledgeItem{ID: "k1", Title: "VPN", CategoryID: "it"}))
	require.NoError(t, cats.Put(ctx, core.Category{ID: "it", Name: "IT", Icon: "laptop"}))

	gotItems, err := items.GetAll(ctx)
	require.NoError(t, err)
	gotCats, err := cats.GetAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, []core.KnowledgeItem{{ID: "k1", Title: "VPN", CategoryID: "it"}}, gotItems)
	assert.Equal(t, []core.Category{{ID: "it", Name: "IT", Icon: "laptop"}}, gotCats)
}

func TestCollection_UpdateMissing(t *testing.T) {
	repo := memory.NewRepository()
	notices := typed.NewCollection[core.Notice](repo)

	ok, err := notices.Update(context.Background(), core.Notice{ID: "ghost", Title: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollection_PutRequiresID(t *testing.T) {
	repo := memory.NewRepository()
	notices := typed.NewCollection[core.Notice](repo)

	err := notices.Put(context.Background(), core.Notice{Title: "no id"})
	assert.ErrorIs(t, err, core.ErrInvalidRecord)
}

func TestCollection_BulkPutAndClear(t *testing.T) {
	repo := memory.NewRepository()
	cats := typed.NewCollection[core.Category](repo)
	ctx := context.Background()

	require.NoError(t, cats.BulkPut(ctx, []core.Category{
		{ID: "a", Name: "A"}, {ID: "b", Name: "B"},
	}))
	all, err := cats.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, cats.Clear(ctx))
	all, err = cats.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTransaction_Replace(t *testing.T) {
	repo := memory.NewRepository()
	cats := typed.NewCollection[core.Category](repo)
	ctx := context.Background()
	require.NoError(t, cats.Put(ctx, core.Category{ID: "old", Name: "Old"}))

	err := core.WithTransaction(ctx, repo, "replace categories", func(tx core.Transaction) error {
		return typed.InTransaction[core.Category](tx).Replace(ctx, []core.Category{{ID: "new", Name: "New"}})
	})
	require.NoError(t, err)

	all, err := cats.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Category{{ID: "new", Name: "New"}}, all)
}
