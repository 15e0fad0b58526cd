// Package repotest holds the behavior every core.Repository backend must
// share. Adapter tests call Run with a factory for their backend.
package repotest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/core"
)

// Factory returns a fresh, initialized repository for one subtest.
type Factory func(t *testing.T) core.Repository

func note(id, title string) core.Document {
	return core.Document{
		ID:      id,
		Content: "body of " + id,
		Metadata: core.Metadata{
			"title":    title,
			"author":   "ops",
			"date":     "2024-03-01",
			"priority": "normal",
		},
	}
}

func listIDs(t *testing.T, repo core.Repository, kind core.Kind) []string {
	t.Helper()
	docs, err := repo.List(context.Background(), kind)
	require.NoError(t, err)
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

// Run executes the shared contract against the backend built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("SaveGetList", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("n1", "First")))
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("n2", "Second")))

		doc, err := repo.Get(ctx, core.KindNotices, "n1")
		require.NoError(t, err)
		assert.Equal(t, "body of n1", doc.Content)
		assert.Equal(t, "First", doc.Metadata["title"])

		assert.Equal(t, []string{"n1", "n2"}, listIDs(t, repo, core.KindNotices))
	})

	t.Run("SaveOverwritesInPlace", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("a", "A")))
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("b", "B")))
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("a", "A2")))

		assert.Equal(t, []string{"a", "b"}, listIDs(t, repo, core.KindNotices))
		doc, err := repo.Get(ctx, core.KindNotices, "a")
		require.NoError(t, err)
		assert.Equal(t, "A2", doc.Metadata["title"])
	})

	t.Run("CollectionsAreIndependent", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("same", "notice")))
		require.NoError(t, repo.Save(ctx, core.KindCategories, core.Document{
			ID: "same", Metadata: core.Metadata{"name": "cat", "icon": "book"},
		}))

		require.NoError(t, repo.Clear(ctx, core.KindCategories))
		assert.Equal(t, []string{"same"}, listIDs(t, repo, core.KindNotices))
		assert.Empty(t, listIDs(t, repo, core.KindCategories))
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, core.KindNotices, "ghost")
		assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("n1", "Old")))

		patch := note("n1", "New")
		patch.Content = "edited"
		ok, err := repo.Update(ctx, core.KindNotices, patch)
		require.NoError(t, err)
		assert.True(t, ok)

		doc, err := repo.Get(ctx, core.KindNotices, "n1")
		require.NoError(t, err)
		assert.Equal(t, "New", doc.Metadata["title"])
		assert.Equal(t, "edited", doc.Content)
	})

	t.Run("UpdateMissingIsSilentNoop", func(t *testing.T) {
		repo := newRepo(t)
		ok, err := repo.Update(ctx, core.KindNotices, note("ghost", "Ghost"))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, listIDs(t, repo, core.KindNotices))
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("n1", "One")))
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("n2", "Two")))

		require.NoError(t, repo.Delete(ctx, core.KindNotices, "n1"))
		require.NoError(t, repo.Delete(ctx, core.KindNotices, "n1"))
		assert.Equal(t, []string{"n2"}, listIDs(t, repo, core.KindNotices))
	})

	t.Run("SaveAllAndClear", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveAll(ctx, core.KindNotices, []core.Document{
			note("x", "X"), note("y", "Y"), note("z", "Z"),
		}))
		assert.Equal(t, []string{"x", "y", "z"}, listIDs(t, repo, core.KindNotices))

		require.NoError(t, repo.Clear(ctx, core.KindNotices))
		assert.Empty(t, listIDs(t, repo, core.KindNotices))
	})

	t.Run("UnknownKind", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.List(ctx, core.Kind("users"))
		assert.Error(t, err)
	})

	if _, ok := newRepo(t).(core.Transactional); !ok {
		return
	}

	t.Run("TransactionCommit", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("old", "Old")))

		err := core.WithTransaction(ctx, repo, "replace notices", func(tx core.Transaction) error {
			if err := tx.Clear(ctx, core.KindNotices); err != nil {
				return err
			}
			if err := tx.SaveAll(ctx, core.KindNotices, []core.Document{note("new1", "N1"), note("new2", "N2")}); err != nil {
				return err
			}
			return tx.Save(ctx, core.KindCategories, core.Document{ID: "c1", Metadata: core.Metadata{"name": "General"}})
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"new1", "new2"}, listIDs(t, repo, core.KindNotices))
		assert.Equal(t, []string{"c1"}, listIDs(t, repo, core.KindCategories))
	})

	t.Run("TransactionIsolation", func(t *testing.T) {
		repo := newRepo(t)
		tx, err := repo.(core.Transactional).Begin(ctx)
		require.NoError(t, err)

		require.NoError(t, tx.Save(ctx, core.KindNotices, note("staged", "S")))
		assert.Empty(t, listIDs(t, repo, core.KindNotices), "staged writes must stay invisible")

		require.NoError(t, tx.Commit(ctx, ""))
		assert.Equal(t, []string{"staged"}, listIDs(t, repo, core.KindNotices))

		assert.ErrorIs(t, tx.Commit(ctx, ""), core.ErrTxClosed)
	})

	t.Run("TransactionRollback", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, core.KindNotices, note("keep", "K")))

		boom := errors.New("boom")
		err := core.WithTransaction(ctx, repo, "", func(tx core.Transaction) error {
			if err := tx.Clear(ctx, core.KindNotices); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"keep"}, listIDs(t, repo, core.KindNotices))
	})
}
