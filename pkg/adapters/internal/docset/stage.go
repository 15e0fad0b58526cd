package docset

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/knowhub/pkg/core"
)

// Stage records the changes of a transaction until it is committed.
// Adapters embed it and implement Commit on top of Drain.
type Stage struct {
	mu     sync.Mutex
	ops    []Op
	closed bool
}

func (s *Stage) push(op Op) error {
	if !op.Kind.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownKind, op.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.ErrTxClosed
	}
	s.ops = append(s.ops, op)
	return nil
}

// Save stages a document for persistence.
func (s *Stage) Save(ctx context.Context, kind core.Kind, doc core.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: missing id", core.ErrInvalidRecord)
	}
	return s.push(Op{Kind: kind, Docs: []core.Document{doc.Clone()}})
}

// SaveAll stages many documents for persistence.
func (s *Stage) SaveAll(ctx context.Context, kind core.Kind, docs []core.Document) error {
	staged := make([]core.Document, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("%w: missing id", core.ErrInvalidRecord)
		}
		staged = append(staged, d.Clone())
	}
	return s.push(Op{Kind: kind, Docs: staged})
}

// Delete stages a document for removal.
func (s *Stage) Delete(ctx context.Context, kind core.Kind, id string) error {
	if id == "" {
		return nil
	}
	return s.push(Op{Kind: kind, Delete: id})
}

// Clear stages the removal of every document of a kind.
func (s *Stage) Clear(ctx context.Context, kind core.Kind) error {
	return s.push(Op{Kind: kind, Clear: true})
}

// Rollback discards all staged changes.
func (s *Stage) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ops = nil
	s.closed = true
	return nil
}

// Drain closes the stage and hands back the staged ops.
// Committing a closed stage fails with core.ErrTxClosed.
func (s *Stage) Drain() ([]Op, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, core.ErrTxClosed
	}
	s.closed = true
	ops := s.ops
	s.ops = nil
	return ops, nil
}
