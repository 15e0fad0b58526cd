// Package memory implements core.Repository in process memory.
// It backs tests and throwaway sessions; nothing survives the process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/knowhub/pkg/adapters/internal/docset"
	"github.com/aretw0/knowhub/pkg/core"
)

// Repository is a transactional in-memory store.
type Repository struct {
	mu       sync.RWMutex
	sets     map[core.Kind]*docset.Set
	readOnly bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(r *Repository) { r.readOnly = enabled }
}

// NewRepository creates an empty repository.
func NewRepository(opts ...Option) *Repository {
	r := &Repository{sets: make(map[core.Kind]*docset.Set)}
	for _, k := range core.Kinds() {
		r.sets[k] = docset.New()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize is a no-op: memory is always ready.
func (r *Repository) Initialize(ctx context.Context) error { return nil }

func (r *Repository) set(kind core.Kind) (*docset.Set, error) {
	s, ok := r.sets[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}
	return s, nil
}

func (r *Repository) writable() error {
	if r.readOnly {
		return core.ErrReadOnly
	}
	return nil
}

// List returns all documents of a kind in insertion order.
func (r *Repository) List(ctx context.Context, kind core.Kind) ([]core.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, err := r.set(kind)
	if err != nil {
		return nil, err
	}
	return s.List(), nil
}

// Get retrieves a document by ID.
func (r *Repository) Get(ctx context.Context, kind core.Kind, id string) (core.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, err := r.set(kind)
	if err != nil {
		return core.Document{}, err
	}
	doc, ok := s.Get(id)
	if !ok {
		return core.Document{}, fmt.Errorf("%w: %s/%s", core.ErrNotFound, kind, id)
	}
	return doc, nil
}

// Save inserts or overwrites a document.
func (r *Repository) Save(ctx context.Context, kind core.Kind, doc core.Document) error {
	return r.SaveAll(ctx, kind, []core.Document{doc})
}

// SaveAll inserts or overwrites many documents atomically.
func (r *Repository) SaveAll(ctx context.Context, kind core.Kind, docs []core.Document) error {
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("%w: missing id", core.ErrInvalidRecord)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return err
	}
	s, err := r.set(kind)
	if err != nil {
		return err
	}
	s.PutAll(docs)
	return nil
}

// Update merges doc into an existing document; it reports false if absent.
func (r *Repository) Update(ctx context.Context, kind core.Kind, doc core.Document) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return false, err
	}
	s, err := r.set(kind)
	if err != nil {
		return false, err
	}
	return s.Update(doc), nil
}

// Delete removes a document; missing IDs are ignored.
func (r *Repository) Delete(ctx context.Context, kind core.Kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return err
	}
	s, err := r.set(kind)
	if err != nil {
		return err
	}
	s.Delete(id)
	return nil
}

// Clear removes every document of a kind.
func (r *Repository) Clear(ctx context.Context, kind core.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return err
	}
	s, err := r.set(kind)
	if err != nil {
		return err
	}
	s.Clear()
	return nil
}

// Begin starts a new transaction.
func (r *Repository) Begin(ctx context.Context) (core.Transaction, error) {
	if err := r.writable(); err != nil {
		return nil, err
	}
	return &transaction{repo: r}, nil
}

// Len returns the number of documents held across all kinds.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.sets {
		n += s.Len()
	}
	return n
}

type transaction struct {
	docset.Stage
	repo *Repository
}

// Commit applies the staged ops to copies of the touched sets and swaps
// them in under the write lock, so readers never observe a partial commit.
func (t *transaction) Commit(ctx context.Context, changeReason string) error {
	ops, err := t.Drain()
	if err != nil {
		return err
	}

	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	if err := t.repo.writable(); err != nil {
		return err
	}

	next := make(map[core.Kind]*docset.Set, len(t.repo.sets))
	for k, s := range t.repo.sets {
		next[k] = s
	}
	for _, op := range ops {
		if cur, ok := t.repo.sets[op.Kind]; ok && next[op.Kind] == cur {
			next[op.Kind] = cur.Clone()
		}
	}
	docset.Apply(next, ops)
	t.repo.sets = next
	return nil
}

var _ core.Repository = (*Repository)(nil)
var _ core.Transactional = (*Repository)(nil)
