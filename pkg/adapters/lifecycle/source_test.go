package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/adapters/lifecycle"
	"github.com/aretw0/knowhub/pkg/core"
)

func TestSource_ForwardsAndFilters(t *testing.T) {
	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventModify, Kind: core.KindCategories, ID: "c1"}
	in <- core.Event{Type: core.EventCreate, Kind: core.KindNotices, ID: "n1"}
	in <- core.Event{Type: core.EventReload}
	close(in)

	src := lifecycle.NewSource(in, core.KindNotices)
	require.NoError(t, src.Start(context.Background()))

	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-src.Events():
			if !ok {
				assert.Equal(t, []string{"CREATE notices/n1", "RELOAD"}, got)
				return
			}
			got = append(got, e.String())
		case <-timeout:
			t.Fatal("source did not close")
		}
	}
}

func TestSource_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := lifecycle.NewSource(make(chan core.Event))
	require.NoError(t, src.Start(ctx))

	cancel()
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not close")
	}
}
