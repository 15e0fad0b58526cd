package core

import "context"

// Repository defines the contract for storing and retrieving records.
// Adhering to this interface allows the rest of knowhub to be independent
// of the underlying storage mechanism (memory, filesystem, SQLite).
//
// Collections are independent: IDs are unique within a kind, not globally.
// List returns documents in insertion order.
type Repository interface {
	// Initialize ensures the underlying storage is ready (directories, schema).
	Initialize(ctx context.Context) error

	// List returns all documents of a kind.
	List(ctx context.Context, kind Kind) ([]Document, error)

	// Get retrieves a document by ID. Missing documents yield ErrNotFound.
	Get(ctx context.Context, kind Kind, id string) (Document, error)

	// Save inserts or overwrites a document by ID.
	Save(ctx context.Context, kind Kind, doc Document) error

	// Update overwrites the fields of an existing document.
	// It reports false, without error, when the ID does not exist.
	Update(ctx context.Context, kind Kind, doc Document) (bool, error)

	// Delete removes a document by ID. Deleting a missing ID is a no-op.
	Delete(ctx context.Context, kind Kind, id string) error

	// Clear removes every document of a kind.
	Clear(ctx context.Context, kind Kind) error

	// SaveAll inserts or overwrites many documents in one atomic call.
	SaveAll(ctx context.Context, kind Kind, docs []Document) error
}

// Transaction defines the contract for a unit of work spanning several
// collections. Staged changes become visible only on Commit.
type Transaction interface {
	// Save stages a document for persistence.
	Save(ctx context.Context, kind Kind, doc Document) error

	// SaveAll stages many documents for persistence.
	SaveAll(ctx context.Context, kind Kind, docs []Document) error

	// Delete stages a document for removal.
	Delete(ctx context.Context, kind Kind, id string) error

	// Clear stages the removal of every document of a kind. Saves staged
	// after the clear survive it.
	Clear(ctx context.Context, kind Kind) error

	// Commit applies all staged changes atomically.
	Commit(ctx context.Context, changeReason string) error

	// Rollback discards all staged changes.
	Rollback(ctx context.Context) error
}

// Transactional is implemented by repositories that support transactions.
type Transactional interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Watchable is implemented by repositories that can observe changes made
// outside the process (e.g. a collection file edited by hand).
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// WithTransaction runs fn inside a transaction on repo, committing on
// success and rolling back on error.
func WithTransaction(ctx context.Context, repo Repository, reason string, fn func(tx Transaction) error) error {
	tr, ok := repo.(Transactional)
	if !ok {
		return ErrNoTransactions
	}

	tx, err := tr.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if reason == "" {
		reason = "batch transaction"
		if val, ok := ctx.Value(ChangeReasonKey).(string); ok && val != "" {
			reason = val
		}
	}
	return tx.Commit(ctx, reason)
}
