package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/git"
	"github.com/aretw0/knowhub/pkg/transfer"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type result struct {
	out, errOut string
	err         error
}

// run executes one CLI invocation against vault with stdin as input.
func run(t *testing.T, vault, stdin string, args ...string) result {
	t.Helper()
	a := newApp()
	a.now = func() time.Time { return fixedNow }

	cmd := newRootCmd(a)
	var out, errOut bytes.Buffer
	cmd.SetArgs(append([]string{"--vault", vault}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

// newVault creates an empty knowledge base, optionally with the sample data.
func newVault(t *testing.T, sample bool, extra ...string) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	vault := t.TempDir()

	args := append([]string{"init"}, extra...)
	if sample {
		args = append(args, "--sample")
	}
	res := run(t, vault, "", args...)
	require.NoError(t, res.err, res.errOut)
	require.Contains(t, res.out, "Initialized knowledge base")
	return vault
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func noticeIDs(t *testing.T, vault string, args ...string) []string {
	t.Helper()
	res := run(t, vault, "", append([]string{"notice", "list", "--json"}, args...)...)
	require.NoError(t, res.err, res.errOut)
	var ids []string
	for _, n := range decode[[]core.Notice](t, res.out) {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestNoticeList(t *testing.T) {
	vault := newVault(t, true)

	res := run(t, vault, "", "notice", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Scheduled network maintenance")
	assert.Contains(t, res.out, "HIGH")

	assert.Equal(t, []string{"notice-maintenance", "notice-fire-drill"}, noticeIDs(t, vault, "--filter", "high"))
	assert.Equal(t, []string{"notice-maintenance", "notice-welcome", "notice-fire-drill"}, noticeIDs(t, vault, "--filter", "recent"))
	assert.Equal(t, "notice-lunch", noticeIDs(t, vault, "--sort", "date-asc")[0])

	res = run(t, vault, "", "notice", "list", "--filter", "urgent")
	assert.Error(t, res.err)
	res = run(t, vault, "", "notice", "list", "--sort", "updated-desc")
	assert.Error(t, res.err, "notices cannot be sorted by update time")
}

func TestNoticeLifecycle(t *testing.T) {
	vault := newVault(t, false)

	res := run(t, vault, "", "notice", "add", "--title", "Parking", "--content", "# Parking\n\nUse level **two**.", "--author", "Facilities", "--date", "2024-03-14")
	require.NoError(t, res.err, res.errOut)
	id := strings.TrimSpace(res.out)
	require.NotEmpty(t, id)
	assert.Contains(t, res.errOut, "Notice added")

	res = run(t, vault, "", "notice", "show", id)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Parking")
	assert.Contains(t, res.out, "Facilities")
	assert.Contains(t, res.out, "Mar 14, 2024")
	assert.Contains(t, res.out, "level")

	res = run(t, vault, "", "notice", "edit", id, "--priority", "high")
	require.NoError(t, res.err, res.errOut)
	assert.Equal(t, []string{id}, noticeIDs(t, vault, "--filter", "high"))

	res = run(t, vault, "", "notice", "list", "--json")
	require.NoError(t, res.err)
	notices := decode[[]core.Notice](t, res.out)
	require.Len(t, notices, 1)
	assert.Equal(t, "Parking", notices[0].Title, "edit keeps the fields not given")
	assert.Equal(t, "2024-03-14", notices[0].Date)

	res = run(t, vault, "n\n", "notice", "delete", id)
	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, "Cancelled")
	assert.Equal(t, []string{id}, noticeIDs(t, vault))

	res = run(t, vault, "yes\n", "notice", "delete", id)
	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, "Notice deleted")
	assert.Empty(t, noticeIDs(t, vault))
}

func TestNoticeErrors(t *testing.T) {
	vault := newVault(t, false)

	res := run(t, vault, "", "notice", "show", "missing")
	assert.ErrorIs(t, res.err, core.ErrNotFound)

	res = run(t, vault, "", "notice", "edit", "missing", "--title", "x")
	assert.ErrorIs(t, res.err, core.ErrNotFound)

	res = run(t, vault, "", "notice", "add", "--content", "no title")
	assert.Error(t, res.err)

	res = run(t, vault, "", "notice", "add", "--title", "x", "--date", "tomorrow")
	assert.Error(t, res.err)
	assert.Empty(t, noticeIDs(t, vault))
}

func TestKnowledgeCommands(t *testing.T) {
	vault := newVault(t, true)

	res := run(t, vault, "", "kb", "list", "--category", "cat-it", "--json")
	require.NoError(t, res.err)
	items := decode[[]core.KnowledgeItem](t, res.out)
	require.Len(t, items, 2)
	assert.Equal(t, "kb-wifi", items[0].ID)
	assert.Equal(t, "kb-vpn", items[1].ID)

	res = run(t, vault, "", "kb", "show", "kb-wifi")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "IT & Equipment")
	assert.Contains(t, res.out, "Corp")

	res = run(t, vault, "", "kb", "edit", "kb-wifi", "--category", "cat-general")
	require.NoError(t, res.err, res.errOut)
	res = run(t, vault, "", "kb", "list", "--category", "cat-general", "--json")
	require.NoError(t, res.err)
	moved := decode[[]core.KnowledgeItem](t, res.out)
	require.NotEmpty(t, moved)
	assert.Equal(t, "kb-wifi", moved[0].ID, "the edited article is the most recently updated")
	assert.Equal(t, core.FormatTimestamp(fixedNow), moved[0].Updated)

	res = run(t, vault, "", "kb", "add", "--title", "Printers", "--category", "missing-category")
	require.NoError(t, res.err, res.errOut)
	id := strings.TrimSpace(res.out)
	res = run(t, vault, "", "kb", "show", id)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Uncategorized")

	res = run(t, vault, "", "--yes", "kb", "delete", id)
	require.NoError(t, res.err)
	res = run(t, vault, "", "kb", "show", id)
	assert.ErrorIs(t, res.err, core.ErrNotFound)

	res = run(t, vault, "", "category", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "IT & Equipment")
	assert.Contains(t, res.out, "(1)")
}

func TestSearchAndStats(t *testing.T) {
	vault := newVault(t, true)

	res := run(t, vault, "", "search", "wi-fi")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "kb-wifi")

	res = run(t, vault, "", "search", "--json", "WI-FI")
	require.NoError(t, res.err)
	found := decode[map[string][]map[string]any](t, res.out)
	assert.NotEmpty(t, found["knowledgeItems"])

	res = run(t, vault, "", "search", "zzz-nothing")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "No results.")

	res = run(t, vault, "", "stats")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Notices:     5 (4 active this month)")
	assert.Contains(t, res.out, "Articles:    6")
	assert.Contains(t, res.out, "Categories:  4")
	assert.Contains(t, res.out, "Scheduled network maintenance")
}

func TestExportImport(t *testing.T) {
	source := newVault(t, true)

	res := run(t, source, "", "export", "-o", "-")
	require.NoError(t, res.err)
	all := decode[transfer.ExportData](t, res.out)
	assert.Len(t, all.Notices, 5)
	assert.Len(t, all.KnowledgeItems, 6)
	assert.Len(t, all.Categories, 4)

	exportPath := filepath.Join(t.TempDir(), "knowledge.json")
	res = run(t, source, "", "export", "--scope", "knowledge", "-o", exportPath)
	require.NoError(t, res.err)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	partial := decode[transfer.ExportData](t, string(data))
	assert.Nil(t, partial.Notices)
	assert.Len(t, partial.KnowledgeItems, 6)

	res = run(t, source, "", "export", "--scope", "everything")
	assert.Error(t, res.err)

	target := newVault(t, false)

	res = run(t, target, "", "import")
	assert.Error(t, res.err)

	res = run(t, target, "no\n", "import", "--from-export", exportPath)
	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, "Cancelled")

	res = run(t, target, "", "--yes", "import", "--from-export", exportPath)
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "imported")
	assert.Contains(t, res.errOut, "Import Successful")

	res = run(t, target, "", "kb", "list", "--json")
	require.NoError(t, res.err)
	assert.Len(t, decode[[]core.KnowledgeItem](t, res.out), 6)

	bad := filepath.Join(t.TempDir(), "notices.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "an array"}`), 0644))
	res = run(t, target, "", "--yes", "import", "--notices", bad)
	assert.ErrorIs(t, res.err, transfer.ErrNoValidData)
	assert.Contains(t, res.errOut, "Import Failed")
}

func TestReset(t *testing.T) {
	vault := newVault(t, false)

	res := run(t, vault, "", "--yes", "reset")
	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, "Sample data loaded.")
	assert.Len(t, noticeIDs(t, vault), 5)
}

func TestReadOnly(t *testing.T) {
	vault := newVault(t, true)

	res := run(t, vault, "", "--read-only", "notice", "add", "--title", "x")
	assert.ErrorIs(t, res.err, core.ErrReadOnly)
	assert.Contains(t, res.errOut, "read-only")

	res = run(t, vault, "", "--read-only", "notice", "list")
	assert.NoError(t, res.err)
}

func TestSQLiteAdapter(t *testing.T) {
	vault := newVault(t, true, "--adapter", "sqlite")

	_, err := os.Stat(filepath.Join(vault, "knowhub.db"))
	require.NoError(t, err)

	assert.Len(t, noticeIDs(t, vault, "--adapter", "sqlite"), 5)

	res := run(t, vault, "", "--adapter", "sqlite", "history")
	assert.Error(t, res.err)
}

func TestHistory(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	vault := newVault(t, true, "--git")

	res := run(t, vault, "", "history", "-n", "5")
	require.NoError(t, res.err, res.errOut)
	assert.NotEmpty(t, strings.TrimSpace(res.out))

	plain := newVault(t, false, "--git=false")
	res = run(t, plain, "", "history")
	assert.Error(t, res.err)
}

func TestConfigCommand(t *testing.T) {
	vault := newVault(t, false)

	res := run(t, vault, "", "--format", "yaml", "config")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "adapter: fs")
	assert.Contains(t, res.out, "format: yaml")

	res = run(t, vault, "", "--format", "yaml", "config", "init")
	require.NoError(t, res.err)
	assert.FileExists(t, filepath.Join(vault, ".knowhub", "config.yaml"))

	res = run(t, vault, "", "config")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "# from:")
	assert.Contains(t, res.out, "format: yaml", "the vault file is picked up")
}

func TestWatchStops(t *testing.T) {
	vault := newVault(t, false)

	res := run(t, vault, "", "watch", "--for", "200ms", "--kind", "notices")
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "Watching")

	res = run(t, vault, "", "watch", "--kind", "people")
	assert.Error(t, res.err)
}

func TestVersion(t *testing.T) {
	vault := newVault(t, false)
	res := run(t, vault, "", "version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.out, "knowhub version "))
}
