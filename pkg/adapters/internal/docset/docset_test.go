package docset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/core"
)

func ids(docs []core.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestSet_InsertionOrder(t *testing.T) {
	s := New()
	s.Put(core.Document{ID: "b"})
	s.Put(core.Document{ID: "a"})
	s.Put(core.Document{ID: "c"})
	s.Put(core.Document{ID: "a", Content: "again"})

	assert.Equal(t, []string{"b", "a", "c"}, ids(s.List()))

	doc, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "again", doc.Content)

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	assert.Equal(t, []string{"b", "c"}, ids(s.List()))
}

func TestSet_UpdateMissingIsNoop(t *testing.T) {
	s := New()
	assert.False(t, s.Update(core.Document{ID: "ghost", Content: "x"}))
	assert.Equal(t, 0, s.Len())
}

func TestSet_UpdateMergesMetadata(t *testing.T) {
	s := New()
	s.Put(core.Document{ID: "1", Content: "old", Metadata: core.Metadata{"title": "T", "author": "A"}})

	require.True(t, s.Update(core.Document{ID: "1", Content: "new", Metadata: core.Metadata{"title": "T2"}}))

	doc, _ := s.Get("1")
	assert.Equal(t, "new", doc.Content)
	assert.Equal(t, "T2", doc.Metadata["title"])
	assert.Equal(t, "A", doc.Metadata["author"])
}

func TestSet_CloneIsIndependent(t *testing.T) {
	s := New()
	s.Put(core.Document{ID: "1", Metadata: core.Metadata{"k": "v"}})
	c := s.Clone()
	c.Put(core.Document{ID: "2"})
	c.Clear()

	assert.Equal(t, 1, s.Len())
}

func TestApply(t *testing.T) {
	sets := map[core.Kind]*Set{
		core.KindNotices: FromDocuments([]core.Document{{ID: "old"}}),
	}
	touched := Apply(sets, []Op{
		{Kind: core.KindNotices, Clear: true},
		{Kind: core.KindNotices, Docs: []core.Document{{ID: "n1"}, {ID: "n2"}}},
		{Kind: core.KindCategories, Docs: []core.Document{{ID: "c1"}}},
		{Kind: core.KindNotices, Delete: "n1"},
	})

	assert.Equal(t, []core.Kind{core.KindNotices, core.KindCategories}, touched)
	assert.Equal(t, []string{"n2"}, ids(sets[core.KindNotices].List()))
	assert.Equal(t, []string{"c1"}, ids(sets[core.KindCategories].List()))
}
