package fs

import (
	"context"

	"github.com/aretw0/knowhub/pkg/adapters/internal/docset"
	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/git"
)

// Transaction implements core.Transaction for the filesystem.
// Staged changes are applied to copies of the touched collections on
// Commit and written together.
type Transaction struct {
	docset.Stage
	repo *Repository
}

// Commit applies all staged changes.
func (t *Transaction) Commit(ctx context.Context, changeReason string) error {
	ops, err := t.Drain()
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}

	r := t.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	sets := make(map[core.Kind]*docset.Set)
	for _, op := range ops {
		if _, ok := sets[op.Kind]; ok {
			continue
		}
		current, err := r.load(op.Kind)
		if err != nil {
			return err
		}
		sets[op.Kind] = current.Clone()
	}
	docset.Apply(sets, ops)

	if changeReason == "" {
		changeReason = git.FormatChangeReason("chore", "", "batch transaction update", "")
	}
	return r.persist(ctx, sets, changeReason)
}
