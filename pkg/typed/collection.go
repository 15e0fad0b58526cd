// Package typed provides type-safe views over a core.Repository.
// A Collection[T] exposes the per-collection Record Store operations for one
// record type, converting between records and core.Document.
package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/knowhub/pkg/core"
)

// Collection wraps a core.Repository to provide type-safe access to the
// collection that holds records of type T.
type Collection[T core.Record] struct {
	repo core.Repository
	kind core.Kind
}

// NewCollection creates a typed view over repo for the kind of T.
func NewCollection[T core.Record](repo core.Repository) *Collection[T] {
	return &Collection[T]{repo: repo, kind: core.KindOf[T]()}
}

// Kind returns the collection this view reads and writes.
func (c *Collection[T]) Kind() core.Kind { return c.kind }

// GetAll returns every record in insertion order.
func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	docs, err := c.repo.List(ctx, c.kind)
	if err != nil {
		return nil, err
	}
	return FromDocuments[T](docs)
}

// Get retrieves one record by ID.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	doc, err := c.repo.Get(ctx, c.kind, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return FromDocument[T](doc)
}

// Put inserts or overwrites a record by ID.
func (c *Collection[T]) Put(ctx context.Context, rec T) error {
	doc, err := ToDocument(rec)
	if err != nil {
		return err
	}
	return c.repo.Save(ctx, c.kind, doc)
}

// Update overwrites an existing record. It reports false when no record
// with that ID exists; nothing is written in that case.
func (c *Collection[T]) Update(ctx context.Context, rec T) (bool, error) {
	doc, err := ToDocument(rec)
	if err != nil {
		return false, err
	}
	return c.repo.Update(ctx, c.kind, doc)
}

// Delete removes a record by ID; missing IDs are ignored.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.repo.Delete(ctx, c.kind, id)
}

// Clear removes every record of the collection.
func (c *Collection[T]) Clear(ctx context.Context) error {
	return c.repo.Clear(ctx, c.kind)
}

// BulkPut inserts or overwrites many records in one call.
func (c *Collection[T]) BulkPut(ctx context.Context, recs []T) error {
	docs, err := ToDocuments(recs)
	if err != nil {
		return err
	}
	return c.repo.SaveAll(ctx, c.kind, docs)
}

// Transaction wraps a core.Transaction for typed staging.
type Transaction[T core.Record] struct {
	tx   core.Transaction
	kind core.Kind
}

// InTransaction returns a typed view of tx for records of type T.
func InTransaction[T core.Record](tx core.Transaction) *Transaction[T] {
	return &Transaction[T]{tx: tx, kind: core.KindOf[T]()}
}

// Put stages a record.
func (t *Transaction[T]) Put(ctx context.Context, rec T) error {
	doc, err := ToDocument(rec)
	if err != nil {
		return err
	}
	return t.tx.Save(ctx, t.kind, doc)
}

// Replace stages clearing the collection and writing recs in its place.
func (t *Transaction[T]) Replace(ctx context.Context, recs []T) error {
	docs, err := ToDocuments(recs)
	if err != nil {
		return err
	}
	if err := t.tx.Clear(ctx, t.kind); err != nil {
		return err
	}
	return t.tx.SaveAll(ctx, t.kind, docs)
}

// Delete stages the removal of a record.
func (t *Transaction[T]) Delete(ctx context.Context, id string) error {
	return t.tx.Delete(ctx, t.kind, id)
}

// ToDocument converts a record to its storage form.
func ToDocument[T core.Record](rec T) (core.Document, error) {
	if rec.RecordID() == "" {
		return core.Document{}, fmt.Errorf("%w: missing id", core.ErrInvalidRecord)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to marshal %T: %w", rec, err)
	}
	var doc core.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.Document{}, fmt.Errorf("failed to convert %T to document: %w", rec, err)
	}
	return doc, nil
}

// ToDocuments converts a slice of records.
func ToDocuments[T core.Record](recs []T) ([]core.Document, error) {
	docs := make([]core.Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := ToDocument(rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// FromDocument converts a stored document back into a record.
func FromDocument[T core.Record](doc core.Document) (T, error) {
	var rec T
	data, err := json.Marshal(doc)
	if err != nil {
		return rec, fmt.Errorf("document marshal failed: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("unmarshal document %s to %T failed: %w", doc.ID, rec, err)
	}
	return rec, nil
}

// FromDocuments converts a slice of stored documents.
func FromDocuments[T core.Record](docs []core.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		rec, err := FromDocument[T](d)
		if err != nil {
			return nil, fmt.Errorf("failed to process document %s: %w", d.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
