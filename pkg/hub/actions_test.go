package hub_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/adapters/memory"
	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/hub"
	"github.com/aretw0/knowhub/pkg/notify"
	"github.com/aretw0/knowhub/pkg/transfer"
)

func TestActions_DeleteNeedsConfirmation(t *testing.T) {
	h := newHub(t, memory.NewRepository())
	ctx := context.Background()
	n, err := h.AddNotice(ctx, hub.NoticeInput{Title: "A"})
	require.NoError(t, err)

	var rec notify.Recorder
	var prompts []string
	answer := false
	confirmer := notify.ConfirmerFunc(func(_ context.Context, prompt string) (bool, error) {
		prompts = append(prompts, prompt)
		return answer, nil
	})
	actions := hub.NewActions(h, &rec, confirmer)

	done, err := actions.DeleteNotice(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Len(t, h.Notices(), 1)

	answer = true
	done, err = actions.DeleteNotice(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Empty(t, h.Notices())

	assert.Equal(t, []string{hub.PromptDeleteNotice, hub.PromptDeleteNotice}, prompts)
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.SeveritySuccess, last.Severity)
}

func TestActions_FailuresBecomeNotifications(t *testing.T) {
	repo := &failingRepo{Repository: memory.NewRepository(), fail: true}
	h := hub.New(repo)
	var rec notify.Recorder
	actions := hub.NewActions(h, &rec, notify.Static(true))
	ctx := context.Background()

	_, err := actions.AddNotice(ctx, hub.NoticeInput{Title: "A"})
	assert.ErrorIs(t, err, core.ErrStorage)
	assert.ErrorIs(t, actions.Load(ctx), core.ErrStorage)

	got := rec.Notifications()
	require.Len(t, got, 2)
	assert.Equal(t, notify.SeverityError, got[0].Severity)
	assert.Equal(t, "Failed to save notice", got[0].Message)
	assert.Equal(t, "Failed to load data from database", got[1].Message)
}

func TestActions_UpdateMissingReportsNotFound(t *testing.T) {
	h := newHub(t, memory.NewRepository())
	var rec notify.Recorder
	actions := hub.NewActions(h, &rec, nil)

	err := actions.UpdateNotice(context.Background(), core.Notice{ID: "ghost"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "Failed to save notice: record not found", last.Message)
}

func TestActions_ImportAndExport(t *testing.T) {
	h := newHub(t, memory.NewRepository())
	var rec notify.Recorder
	actions := hub.NewActions(h, &rec, notify.Static(true))
	ctx := context.Background()

	res, done, err := actions.Import(ctx, transfer.Sources{
		Notices:    &transfer.File{Name: "n.json", Data: []byte(`[{"id":"n1","title":"T","content":"C","date":"2024-03-01"}]`)},
		Categories: &transfer.File{Name: "c.json", Data: []byte(`nope`)},
	})
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, res.Total())

	got := rec.Notifications()
	require.Len(t, got, 2)
	assert.Equal(t, notify.SeverityWarning, got[0].Severity)
	assert.Equal(t, "Imported 1 items successfully.", got[1].Message)

	var buf bytes.Buffer
	require.NoError(t, actions.Export(ctx, transfer.ScopeNotices, &buf))
	assert.Contains(t, buf.String(), `"n1"`)
}

func TestActions_ImportFailure(t *testing.T) {
	h := newHub(t, memory.NewRepository())
	var rec notify.Recorder
	actions := hub.NewActions(h, &rec, notify.Static(true))

	_, done, err := actions.Import(context.Background(), transfer.Sources{
		Notices: &transfer.File{Name: "n.json", Data: []byte(`[{"id":"n1"}]`)},
	})
	assert.True(t, done)
	assert.ErrorIs(t, err, transfer.ErrNoValidData)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "Import Failed", last.Title)
}

func TestActions_ResetCancelled(t *testing.T) {
	h := newHub(t, memory.NewRepository())
	var rec notify.Recorder
	actions := hub.NewActions(h, &rec, notify.Static(false))

	done, err := actions.ResetToSampleData(context.Background())
	require.NoError(t, err)
	assert.False(t, done)
	assert.Empty(t, h.Notices())

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "Cancelled", last.Title)
}
