package hub_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/adapters/fs"
	"github.com/aretw0/knowhub/pkg/core"
)

func TestWatch_ReloadsOnExternalChange(t *testing.T) {
	dir := t.TempDir()
	repo, err := fs.NewRepository(fs.Config{Path: dir, AutoInit: true})
	require.NoError(t, err)
	require.NoError(t, repo.Initialize(context.Background()))

	h := newHub(t, repo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, unsubscribe := h.Subscribe(4)
	defer unsubscribe()
	require.NoError(t, h.Watch(ctx))

	data := `[{"id":"c1","name":"Edited by hand"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.json"), []byte(data), 0644))

	deadline := time.After(3 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Type != core.EventReload {
				continue
			}
			assert.Equal(t, []core.Category{{ID: "c1", Name: "Edited by hand"}}, h.Categories())
			return
		case <-deadline:
			t.Fatal("hub did not reload")
		}
	}
}
