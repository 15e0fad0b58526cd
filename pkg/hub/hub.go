// Package hub is the application state cache: an in-memory mirror of the
// three collections kept in step with a core.Repository. Every mutation
// writes to the repository first and touches memory only once the write
// succeeded, so a failed write leaves the mirror as it was.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/git"
	"github.com/aretw0/knowhub/pkg/seed"
	"github.com/aretw0/knowhub/pkg/transfer"
	"github.com/aretw0/knowhub/pkg/typed"
)

// Hub holds the session's view of the knowledge base.
type Hub struct {
	repo       core.Repository
	notices    *typed.Collection[core.Notice]
	items      *typed.Collection[core.KnowledgeItem]
	categories *typed.Collection[core.Category]

	now    func() time.Time
	newID  func() (string, error)
	logger *slog.Logger
	broker *broker

	// writeMu serializes mutations so the store write and the memory update
	// of one mutation never interleave with another.
	writeMu sync.Mutex

	mu             sync.RWMutex
	state          Mirror
	selectedNotice string
	selectedItem   string
}

// Mirror is a copy of the mirrored collections.
type Mirror struct {
	Notices        []core.Notice
	KnowledgeItems []core.KnowledgeItem
	Categories     []core.Category
	Loading        bool
}

// Option configures a Hub.
type Option func(*Hub)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		h.now = now
	}
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(h *Hub) {
		h.newID = gen
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// New creates a hub over repo. Call Load to fill it.
func New(repo core.Repository, opts ...Option) *Hub {
	h := &Hub{
		repo:       repo,
		notices:    typed.NewCollection[core.Notice](repo),
		items:      typed.NewCollection[core.KnowledgeItem](repo),
		categories: typed.NewCollection[core.Category](repo),
		now:        time.Now,
		newID:      newUUID,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.broker = newBroker(h.logger)
	return h
}

// newUUID returns a version 7 UUID: a millisecond timestamp followed by
// random bits, so IDs sort roughly by creation time.
func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Repository returns the underlying store.
func (h *Hub) Repository() core.Repository {
	return h.repo
}

// Load replaces the mirror with the repository content. On failure the
// previous mirror is kept.
func (h *Hub) Load(ctx context.Context) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return h.load(ctx)
}

func (h *Hub) load(ctx context.Context) error {
	h.setLoading(true)
	defer h.setLoading(false)

	categories, err := h.categories.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	notices, err := h.notices.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load notices: %w", err)
	}
	items, err := h.items.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load knowledge items: %w", err)
	}

	h.mu.Lock()
	h.state.Categories = categories
	h.state.Notices = notices
	h.state.KnowledgeItems = items
	if !slices.ContainsFunc(notices, func(n core.Notice) bool { return n.ID == h.selectedNotice }) {
		h.selectedNotice = ""
	}
	if !slices.ContainsFunc(items, func(k core.KnowledgeItem) bool { return k.ID == h.selectedItem }) {
		h.selectedItem = ""
	}
	h.mu.Unlock()

	h.logger.Debug("state loaded", "notices", len(notices), "knowledgeItems", len(items), "categories", len(categories))
	h.publish(core.EventReload, "", "")
	return nil
}

func (h *Hub) setLoading(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Loading = v
}

// NoticeInput holds the fields of a new notice. An empty Date means now.
type NoticeInput struct {
	Title    string
	Content  string
	Author   string
	Date     string
	Priority core.Priority
}

// KnowledgeInput holds the fields of a new knowledge item.
type KnowledgeInput struct {
	Title      string
	Content    string
	CategoryID string
}

// AddNotice stores a new notice under a fresh ID and appends it.
func (h *Hub) AddNotice(ctx context.Context, in NoticeInput) (core.Notice, error) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	id, err := h.newID()
	if err != nil {
		return core.Notice{}, fmt.Errorf("generate id: %w", err)
	}
	n := core.Notice{
		ID:       id,
		Title:    in.Title,
		Content:  in.Content,
		Author:   in.Author,
		Date:     in.Date,
		Priority: core.ParsePriority(string(in.Priority)),
	}
	if n.Date == "" {
		n.Date = core.FormatTimestamp(h.now())
	}

	ctx = withReason(ctx, git.ChangeAdd, core.KindNotices, "add "+n.Title)
	if err := h.notices.Put(ctx, n); err != nil {
		return core.Notice{}, err
	}

	h.mu.Lock()
	h.state.Notices = append(h.state.Notices, n)
	h.mu.Unlock()

	h.publish(core.EventCreate, core.KindNotices, n.ID)
	return n, nil
}

// AddKnowledgeItem stores a new item, stamping Created and Updated.
func (h *Hub) AddKnowledgeItem(ctx context.Context, in KnowledgeInput) (core.KnowledgeItem, error) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	id, err := h.newID()
	if err != nil {
		return core.KnowledgeItem{}, fmt.Errorf("generate id: %w", err)
	}
	stamp := core.FormatTimestamp(h.now())
	k := core.KnowledgeItem{
		ID:         id,
		Title:      in.Title,
		Content:    in.Content,
		CategoryID: in.CategoryID,
		Created:    stamp,
		Updated:    stamp,
	}

	ctx = withReason(ctx, git.ChangeAdd, core.KindKnowledgeItems, "add "+k.Title)
	if err := h.items.Put(ctx, k); err != nil {
		return core.KnowledgeItem{}, err
	}

	h.mu.Lock()
	h.state.KnowledgeItems = append(h.state.KnowledgeItems, k)
	h.mu.Unlock()

	h.publish(core.EventCreate, core.KindKnowledgeItems, k.ID)
	return k, nil
}

// UpdateNotice overwrites the stored notice with the same ID. It returns
// core.ErrNotFound, and changes nothing, when no such notice is stored.
func (h *Hub) UpdateNotice(ctx context.Context, n core.Notice) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	n.Priority = core.ParsePriority(string(n.Priority))

	ctx = withReason(ctx, git.ChangeEdit, core.KindNotices, "update "+n.Title)
	ok, err := h.notices.Update(ctx, n)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: notice %s", core.ErrNotFound, n.ID)
	}

	h.mu.Lock()
	h.state.Notices = upsert(h.state.Notices, n)
	h.mu.Unlock()

	h.publish(core.EventModify, core.KindNotices, n.ID)
	return nil
}

// UpdateKnowledgeItem overwrites the stored item with the same ID, keeping
// its stored Created and setting Updated to now. It returns the stored
// version, or core.ErrNotFound when no such item is stored.
func (h *Hub) UpdateKnowledgeItem(ctx context.Context, k core.KnowledgeItem) (core.KnowledgeItem, error) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	stored, err := h.items.Get(ctx, k.ID)
	if err != nil {
		return core.KnowledgeItem{}, err
	}

	now := h.now()
	k.Created = stored.Created
	k.Updated = core.FormatTimestamp(now)
	if created, ok := core.ParseDate(k.Created); ok && created.After(now) {
		k.Updated = k.Created
	}

	ctx = withReason(ctx, git.ChangeEdit, core.KindKnowledgeItems, "update "+k.Title)
	ok, err := h.items.Update(ctx, k)
	if err != nil {
		return core.KnowledgeItem{}, err
	}
	if !ok {
		return core.KnowledgeItem{}, fmt.Errorf("%w: knowledge item %s", core.ErrNotFound, k.ID)
	}

	h.mu.Lock()
	h.state.KnowledgeItems = upsert(h.state.KnowledgeItems, k)
	h.mu.Unlock()

	h.publish(core.EventModify, core.KindKnowledgeItems, k.ID)
	return k, nil
}

// DeleteNotice removes a notice. Deleting a missing ID is not an error.
func (h *Hub) DeleteNotice(ctx context.Context, id string) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	ctx = withReason(ctx, git.ChangeDelete, core.KindNotices, "delete "+id)
	if err := h.notices.Delete(ctx, id); err != nil {
		return err
	}

	h.mu.Lock()
	h.state.Notices = remove(h.state.Notices, id)
	if h.selectedNotice == id {
		h.selectedNotice = ""
	}
	h.mu.Unlock()

	h.publish(core.EventDelete, core.KindNotices, id)
	return nil
}

// DeleteKnowledgeItem removes a knowledge item. Deleting a missing ID is
// not an error.
func (h *Hub) DeleteKnowledgeItem(ctx context.Context, id string) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	ctx = withReason(ctx, git.ChangeDelete, core.KindKnowledgeItems, "delete "+id)
	if err := h.items.Delete(ctx, id); err != nil {
		return err
	}

	h.mu.Lock()
	h.state.KnowledgeItems = remove(h.state.KnowledgeItems, id)
	if h.selectedItem == id {
		h.selectedItem = ""
	}
	h.mu.Unlock()

	h.publish(core.EventDelete, core.KindKnowledgeItems, id)
	return nil
}

// ResetToSampleData replaces every collection with the sample dataset and
// reloads.
func (h *Hub) ResetToSampleData(ctx context.Context) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	ds, err := seed.Sample(h.now())
	if err != nil {
		return err
	}

	reason := git.FormatChangeReason(git.ChangeReset, "", "reset to sample data", "")
	if _, ok := h.repo.(core.Transactional); ok {
		err = core.WithTransaction(ctx, h.repo, reason, func(tx core.Transaction) error {
			if err := typed.InTransaction[core.Category](tx).Replace(ctx, ds.Categories); err != nil {
				return err
			}
			if err := typed.InTransaction[core.KnowledgeItem](tx).Replace(ctx, ds.KnowledgeItems); err != nil {
				return err
			}
			return typed.InTransaction[core.Notice](tx).Replace(ctx, ds.Notices)
		})
	} else {
		ctx := context.WithValue(ctx, core.ChangeReasonKey, reason)
		err = replaceAll(ctx, h, ds)
	}
	if err != nil {
		return fmt.Errorf("reset to sample data: %w", err)
	}
	return h.load(ctx)
}

func replaceAll(ctx context.Context, h *Hub, ds seed.Dataset) error {
	if err := h.categories.Clear(ctx); err != nil {
		return err
	}
	if err := h.categories.BulkPut(ctx, ds.Categories); err != nil {
		return err
	}
	if err := h.items.Clear(ctx); err != nil {
		return err
	}
	if err := h.items.BulkPut(ctx, ds.KnowledgeItems); err != nil {
		return err
	}
	if err := h.notices.Clear(ctx); err != nil {
		return err
	}
	return h.notices.BulkPut(ctx, ds.Notices)
}

// Import replaces collections from files (see transfer.Import) and reloads
// after a successful import.
func (h *Hub) Import(ctx context.Context, src transfer.Sources) (transfer.Result, error) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	res, err := transfer.Import(ctx, h.repo, src)
	if err != nil {
		if !errors.Is(err, transfer.ErrNoValidData) {
			// A partial write may have landed.
			if lerr := h.load(ctx); lerr != nil {
				h.logger.Warn("reload after failed import", "error", lerr)
			}
		}
		return res, err
	}
	if err := h.load(ctx); err != nil {
		return res, fmt.Errorf("reload after import: %w", err)
	}
	return res, nil
}

// Export reads the collections of scope from the repository.
func (h *Hub) Export(ctx context.Context, scope transfer.Scope) (transfer.ExportData, error) {
	return transfer.Export(ctx, h.repo, scope)
}

// SelectNotice marks a notice as selected; an empty or unknown ID clears
// the selection. It reports whether a notice is now selected.
func (h *Hub) SelectNotice(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if slices.ContainsFunc(h.state.Notices, func(n core.Notice) bool { return n.ID == id }) {
		h.selectedNotice = id
		return true
	}
	h.selectedNotice = ""
	return false
}

// SelectKnowledgeItem marks an item as selected; an empty or unknown ID
// clears the selection. It reports whether an item is now selected.
func (h *Hub) SelectKnowledgeItem(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if slices.ContainsFunc(h.state.KnowledgeItems, func(k core.KnowledgeItem) bool { return k.ID == id }) {
		h.selectedItem = id
		return true
	}
	h.selectedItem = ""
	return false
}

// SelectedNotice returns the selected notice.
func (h *Hub) SelectedNotice() (core.Notice, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return find(h.state.Notices, h.selectedNotice)
}

// SelectedKnowledgeItem returns the selected knowledge item.
func (h *Hub) SelectedKnowledgeItem() (core.KnowledgeItem, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return find(h.state.KnowledgeItems, h.selectedItem)
}

// Notices returns a copy of the notices.
func (h *Hub) Notices() []core.Notice {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.state.Notices)
}

// KnowledgeItems returns a copy of the knowledge items.
func (h *Hub) KnowledgeItems() []core.KnowledgeItem {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.state.KnowledgeItems)
}

// Categories returns a copy of the categories.
func (h *Hub) Categories() []core.Category {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.state.Categories)
}

// Loading reports whether a load is in progress.
func (h *Hub) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.Loading
}

// Snapshot returns a consistent copy of the whole mirror.
func (h *Hub) Snapshot() Mirror {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Mirror{
		Notices:        slices.Clone(h.state.Notices),
		KnowledgeItems: slices.Clone(h.state.KnowledgeItems),
		Categories:     slices.Clone(h.state.Categories),
		Loading:        h.state.Loading,
	}
}

// Subscribe returns a channel of change events and a function that ends
// the subscription. Events that do not fit in buffer are dropped.
func (h *Hub) Subscribe(buffer int) (<-chan core.Event, func()) {
	return h.broker.subscribe(buffer)
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.broker.close()
}

func (h *Hub) publish(t core.EventType, kind core.Kind, id string) {
	h.broker.publish(core.Event{Type: t, Kind: kind, ID: id, Timestamp: h.now().Unix()})
}

func withReason(ctx context.Context, change string, scope core.Kind, subject string) context.Context {
	if _, ok := ctx.Value(core.ChangeReasonKey).(string); ok {
		return ctx
	}
	return context.WithValue(ctx, core.ChangeReasonKey, git.FormatChangeReason(change, string(scope), subject, ""))
}

func upsert[T core.Record](s []T, rec T) []T {
	out := slices.Clone(s)
	for i, v := range out {
		if v.RecordID() == rec.RecordID() {
			out[i] = rec
			return out
		}
	}
	return append(out, rec)
}

func remove[T core.Record](s []T, id string) []T {
	return slices.DeleteFunc(slices.Clone(s), func(v T) bool { return v.RecordID() == id })
}

func find[T core.Record](s []T, id string) (T, bool) {
	if id != "" {
		for _, v := range s {
			if v.RecordID() == id {
				return v, true
			}
		}
	}
	var zero T
	return zero, false
}
