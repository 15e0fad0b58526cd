package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/knowhub/pkg/adapters/internal/docset"
	"github.com/aretw0/knowhub/pkg/core"
)

func statFile(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	return info
}

func TestCache_Stamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notices.json")
	if err := os.WriteFile(path, []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	set := docset.FromDocuments([]core.Document{{ID: "n1", Metadata: core.Metadata{"title": "One"}}})

	t.Run("Hit on Same Stamp", func(t *testing.T) {
		c := newCache()
		info := statFile(t, path)
		c.put(core.KindNotices, set, info)

		got, ok := c.get(core.KindNotices, info)
		if !ok {
			t.Fatal("expected cache hit")
		}
		if got.Len() != 1 {
			t.Errorf("expected 1 document, got %d", got.Len())
		}
		if c.len() != 1 {
			t.Errorf("expected len 1, got %d", c.len())
		}
	})

	t.Run("Miss After File Changes", func(t *testing.T) {
		c := newCache()
		c.put(core.KindNotices, set, statFile(t, path))

		later := time.Now().Add(2 * time.Second)
		if err := os.WriteFile(path, []byte(`[{"id":"n1"},{"id":"n2"}]`), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, later, later); err != nil {
			t.Fatal(err)
		}

		if _, ok := c.get(core.KindNotices, statFile(t, path)); ok {
			t.Error("expected cache miss after rewrite")
		}
	})

	t.Run("Miss Without File Info", func(t *testing.T) {
		c := newCache()
		c.put(core.KindNotices, set, statFile(t, path))
		if _, ok := c.get(core.KindNotices, nil); ok {
			t.Error("expected miss for missing file")
		}
	})

	t.Run("Invalidate", func(t *testing.T) {
		c := newCache()
		info := statFile(t, path)
		c.put(core.KindCategories, set, info)
		c.invalidate(core.KindCategories)
		if _, ok := c.get(core.KindCategories, info); ok {
			t.Error("expected miss after invalidate")
		}
		if c.len() != 0 {
			t.Errorf("expected empty cache, got %d", c.len())
		}
	})
}
