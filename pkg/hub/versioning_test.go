package hub_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/adapters/fs"
	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/git"
	"github.com/aretw0/knowhub/pkg/hub"
	"github.com/aretw0/knowhub/pkg/typed"
)

func TestVersioningFailureKeepsMirrorInSync(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks not supported")
	}

	dir := t.TempDir()
	repo, err := fs.NewRepository(fs.Config{Path: dir, AutoInit: true, Versioning: true})
	require.NoError(t, err)
	require.NoError(t, repo.Initialize(context.Background()))

	hook := filepath.Join(dir, ".git", "hooks", "pre-commit")
	require.NoError(t, os.MkdirAll(filepath.Dir(hook), 0755))
	require.NoError(t, os.WriteFile(hook, []byte("#!/bin/sh\nexit 1\n"), 0755))

	h := newHub(t, repo)
	ctx := context.Background()

	n, err := h.AddNotice(ctx, hub.NoticeInput{Title: "Drill", Date: "2024-03-16"})
	require.NoError(t, err)

	stored, err := typed.NewCollection[core.Notice](repo).GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Notice{n}, stored)
	assert.Equal(t, stored, h.Notices())
}
