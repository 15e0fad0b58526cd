package hub

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/notify"
	"github.com/aretw0/knowhub/pkg/transfer"
)

// Prompts shown before destructive actions.
const (
	PromptDeleteNotice    = "Are you sure you want to delete this notice? This action cannot be undone."
	PromptDeleteKnowledge = "Are you sure you want to delete this knowledge article? This action cannot be undone."
	PromptImport          = "Importing will replace the existing data of every collection you provide. Continue?"
	PromptReset           = "Reset all data to the sample dataset? Your current data will be replaced."
)

// Actions is what a user interface calls. It asks for confirmation before
// destructive operations and reports every outcome through the notifier,
// returning the error as well so callers can set an exit status.
type Actions struct {
	hub       *Hub
	notifier  notify.Notifier
	confirmer notify.Confirmer
}

// NewActions wires a hub to a notification surface and a confirmation
// service. A nil confirmer approves everything.
func NewActions(h *Hub, n notify.Notifier, c notify.Confirmer) *Actions {
	if c == nil {
		c = notify.Static(true)
	}
	if n == nil {
		n = notify.SlogNotifier{Logger: h.logger}
	}
	return &Actions{hub: h, notifier: n, confirmer: c}
}

// Hub returns the underlying hub.
func (a *Actions) Hub() *Hub {
	return a.hub
}

// AddNotice creates a notice.
func (a *Actions) AddNotice(ctx context.Context, in NoticeInput) (core.Notice, error) {
	n, err := a.hub.AddNotice(ctx, in)
	if err != nil {
		return n, a.fail(ctx, "Error", "Failed to save notice", err)
	}
	a.ok(ctx, "Notice added", fmt.Sprintf("%q was published.", n.Title))
	return n, nil
}

// UpdateNotice saves an edited notice.
func (a *Actions) UpdateNotice(ctx context.Context, n core.Notice) error {
	if err := a.hub.UpdateNotice(ctx, n); err != nil {
		return a.fail(ctx, "Error", "Failed to save notice", err)
	}
	a.ok(ctx, "Notice updated", fmt.Sprintf("%q was saved.", n.Title))
	return nil
}

// DeleteNotice removes a notice after confirmation. It reports whether
// the deletion went ahead.
func (a *Actions) DeleteNotice(ctx context.Context, id string) (bool, error) {
	if ok, err := a.confirm(ctx, PromptDeleteNotice); !ok || err != nil {
		return false, err
	}
	if err := a.hub.DeleteNotice(ctx, id); err != nil {
		return false, a.fail(ctx, "Error", "Failed to delete notice", err)
	}
	a.ok(ctx, "Notice deleted", "The notice was removed.")
	return true, nil
}

// AddKnowledgeItem creates a knowledge article.
func (a *Actions) AddKnowledgeItem(ctx context.Context, in KnowledgeInput) (core.KnowledgeItem, error) {
	k, err := a.hub.AddKnowledgeItem(ctx, in)
	if err != nil {
		return k, a.fail(ctx, "Error", "Failed to save knowledge article", err)
	}
	a.ok(ctx, "Article added", fmt.Sprintf("%q was saved.", k.Title))
	return k, nil
}

// UpdateKnowledgeItem saves an edited knowledge article.
func (a *Actions) UpdateKnowledgeItem(ctx context.Context, k core.KnowledgeItem) (core.KnowledgeItem, error) {
	saved, err := a.hub.UpdateKnowledgeItem(ctx, k)
	if err != nil {
		return saved, a.fail(ctx, "Error", "Failed to save knowledge article", err)
	}
	a.ok(ctx, "Article updated", fmt.Sprintf("%q was saved.", saved.Title))
	return saved, nil
}

// DeleteKnowledgeItem removes a knowledge article after confirmation. It
// reports whether the deletion went ahead.
func (a *Actions) DeleteKnowledgeItem(ctx context.Context, id string) (bool, error) {
	if ok, err := a.confirm(ctx, PromptDeleteKnowledge); !ok || err != nil {
		return false, err
	}
	if err := a.hub.DeleteKnowledgeItem(ctx, id); err != nil {
		return false, a.fail(ctx, "Error", "Failed to delete knowledge article", err)
	}
	a.ok(ctx, "Article deleted", "The knowledge article was removed.")
	return true, nil
}

// Import replaces collections from files after confirmation. The bool
// reports whether the import went ahead.
func (a *Actions) Import(ctx context.Context, src transfer.Sources) (transfer.Result, bool, error) {
	if ok, err := a.confirm(ctx, PromptImport); !ok || err != nil {
		return transfer.Result{}, false, err
	}
	res, err := a.hub.Import(ctx, src)
	if err != nil {
		return res, true, a.fail(ctx, "Import Failed", "Error: "+err.Error(), err)
	}
	for _, kind := range core.Kinds() {
		ferr, ok := res.Errors[kind]
		if !ok {
			continue
		}
		a.notifier.Notify(ctx, notify.Notification{
			Title:    "Skipped file",
			Message:  fmt.Sprintf("%s: %v", kind, ferr),
			Severity: notify.SeverityWarning,
		})
	}
	a.ok(ctx, "Import Successful", fmt.Sprintf("Imported %d items successfully.", res.Total()))
	return res, true, nil
}

// Export writes the collections of scope to w as an export document.
func (a *Actions) Export(ctx context.Context, scope transfer.Scope, w io.Writer) error {
	data, err := a.hub.Export(ctx, scope)
	if err == nil {
		err = transfer.Encode(w, data)
	}
	if err != nil {
		return a.fail(ctx, "Export Failed", "Error: "+err.Error(), err)
	}
	a.ok(ctx, "Export Successful", fmt.Sprintf("Exported %s data.", scope))
	return nil
}

// ResetToSampleData replaces all data with the sample dataset after
// confirmation. It reports whether the reset went ahead.
func (a *Actions) ResetToSampleData(ctx context.Context) (bool, error) {
	if ok, err := a.confirm(ctx, PromptReset); !ok || err != nil {
		return false, err
	}
	if err := a.hub.ResetToSampleData(ctx); err != nil {
		return false, a.fail(ctx, "Error", "Failed to reset data", err)
	}
	a.ok(ctx, "Data reset", "Sample data loaded.")
	return true, nil
}

// Load fills the hub, reporting a failure as a notification.
func (a *Actions) Load(ctx context.Context) error {
	if err := a.hub.Load(ctx); err != nil {
		return a.fail(ctx, "Error", "Failed to load data from database", err)
	}
	return nil
}

func (a *Actions) confirm(ctx context.Context, prompt string) (bool, error) {
	ok, err := a.confirmer.RequestConfirmation(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("confirmation: %w", err)
	}
	if !ok {
		a.notifier.Notify(ctx, notify.Notification{Title: "Cancelled", Message: "Nothing was changed.", Severity: notify.SeverityInfo})
	}
	return ok, nil
}

func (a *Actions) ok(ctx context.Context, title, msg string) {
	a.notifier.Notify(ctx, notify.Notification{Title: title, Message: msg, Severity: notify.SeveritySuccess})
}

func (a *Actions) fail(ctx context.Context, title, msg string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		msg += ": record not found"
	} else if errors.Is(err, core.ErrReadOnly) {
		msg += ": the knowledge base is read-only"
	}
	a.notifier.Notify(ctx, notify.Notification{Title: title, Message: msg, Severity: notify.SeverityError})
	return err
}
