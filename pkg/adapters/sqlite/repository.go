// Package sqlite implements core.Repository on a SQLite database using the
// pure-Go modernc.org/sqlite driver. All collections share one table:
//
//	records(kind, id, seq, body)
//
// where body is the record's JSON object and seq keeps insertion order.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/aretw0/knowhub/pkg/adapters/internal/docset"
	"github.com/aretw0/knowhub/pkg/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	kind TEXT    NOT NULL,
	id   TEXT    NOT NULL,
	seq  INTEGER NOT NULL,
	body TEXT    NOT NULL,
	PRIMARY KEY (kind, id)
);
CREATE INDEX IF NOT EXISTS records_kind_seq ON records (kind, seq);`

// querier is the subset of *sql.DB and *sql.Tx the statements need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements core.Repository using SQLite.
type Repository struct {
	Path     string
	readOnly bool

	mu sync.RWMutex
	db *sql.DB
}

// Option configures the repository.
type Option func(*Repository)

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(r *Repository) {
		r.readOnly = readOnly
	}
}

// Open opens (or creates) the database at path.
// Use ":memory:" for an in-memory database.
func Open(path string, opts ...Option) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	r := &Repository{Path: path, db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Initialize creates the schema.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return core.Storage("initialize", "", fmt.Errorf("set WAL mode: %w", err))
	}
	if r.readOnly {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return core.Storage("initialize", "", fmt.Errorf("create schema: %w", err))
	}
	return nil
}

// List returns all documents of a kind in insertion order.
func (r *Repository) List(ctx context.Context, kind core.Kind) ([]core.Document, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, "SELECT body FROM records WHERE kind = ? ORDER BY seq", string(kind))
	if err != nil {
		return nil, core.Storage("list", kind, err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, core.Storage("list", kind, err)
		}
		doc, err := decode(body)
		if err != nil {
			return nil, core.Storage("list", kind, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Storage("list", kind, err)
	}
	if docs == nil {
		docs = []core.Document{}
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (r *Repository) Get(ctx context.Context, kind core.Kind, id string) (core.Document, error) {
	if !kind.Valid() {
		return core.Document{}, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, found, err := get(ctx, r.db, kind, id)
	if err != nil {
		return core.Document{}, core.Storage("get", kind, err)
	}
	if !found {
		return core.Document{}, fmt.Errorf("%w: %s/%s", core.ErrNotFound, kind, id)
	}
	return doc, nil
}

// Save inserts or overwrites a document.
func (r *Repository) Save(ctx context.Context, kind core.Kind, doc core.Document) error {
	return r.SaveAll(ctx, kind, []core.Document{doc})
}

// SaveAll inserts or overwrites many documents in one database transaction.
func (r *Repository) SaveAll(ctx context.Context, kind core.Kind, docs []core.Document) error {
	if err := r.writable(kind); err != nil {
		return err
	}
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("%w: missing id", core.ErrInvalidRecord)
		}
	}
	return r.inTx(ctx, "save", kind, func(tx *sql.Tx) error {
		for _, d := range docs {
			if err := put(ctx, tx, kind, d); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update merges doc into an existing document; it reports false if absent.
func (r *Repository) Update(ctx context.Context, kind core.Kind, doc core.Document) (bool, error) {
	if err := r.writable(kind); err != nil {
		return false, err
	}
	var updated bool
	err := r.inTx(ctx, "update", kind, func(tx *sql.Tx) error {
		current, found, err := get(ctx, tx, kind, doc.ID)
		if err != nil || !found {
			return err
		}
		body, err := encode(current.Merge(doc))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE records SET body = ? WHERE kind = ? AND id = ?", body, string(kind), doc.ID); err != nil {
			return err
		}
		updated = true
		return nil
	})
	return updated, err
}

// Delete removes a document; missing IDs are ignored.
func (r *Repository) Delete(ctx context.Context, kind core.Kind, id string) error {
	if err := r.writable(kind); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := removeRecord(ctx, r.db, kind, id); err != nil {
		return core.Storage("delete", kind, err)
	}
	return nil
}

// Clear removes every document of a kind.
func (r *Repository) Clear(ctx context.Context, kind core.Kind) error {
	if err := r.writable(kind); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := clearKind(ctx, r.db, kind); err != nil {
		return core.Storage("clear", kind, err)
	}
	return nil
}

// Begin starts a new transaction. Changes are staged in memory and replayed
// inside one sql.Tx on Commit.
func (r *Repository) Begin(ctx context.Context) (core.Transaction, error) {
	if r.readOnly {
		return nil, core.ErrReadOnly
	}
	return &transaction{repo: r}, nil
}

func (r *Repository) writable(kind core.Kind) error {
	if r.readOnly {
		return core.ErrReadOnly
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, op string, kind core.Kind, fn func(tx *sql.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Storage(op, kind, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return core.Storage(op, kind, err)
	}
	if err := tx.Commit(); err != nil {
		return core.Storage(op, kind, err)
	}
	return nil
}

type transaction struct {
	docset.Stage
	repo *Repository
}

// Commit replays the staged changes in a single database transaction.
// The change reason is not recorded: the database keeps no history.
func (t *transaction) Commit(ctx context.Context, changeReason string) error {
	ops, err := t.Drain()
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}
	return t.repo.inTx(ctx, "commit", "", func(tx *sql.Tx) error {
		for _, op := range ops {
			var err error
			switch {
			case op.Clear:
				err = clearKind(ctx, tx, op.Kind)
			case op.Delete != "":
				err = removeRecord(ctx, tx, op.Kind, op.Delete)
			default:
				for _, d := range op.Docs {
					if err = put(ctx, tx, op.Kind, d); err != nil {
						break
					}
				}
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func get(ctx context.Context, q querier, kind core.Kind, id string) (core.Document, bool, error) {
	var body string
	err := q.QueryRowContext(ctx, "SELECT body FROM records WHERE kind = ? AND id = ?", string(kind), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, false, nil
	}
	if err != nil {
		return core.Document{}, false, err
	}
	doc, err := decode(body)
	if err != nil {
		return core.Document{}, false, err
	}
	return doc, true, nil
}

// put upserts doc. An existing row keeps its seq, so overwrites keep their position.
func put(ctx context.Context, q querier, kind core.Kind, doc core.Document) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO records (kind, id, seq, body)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE kind = ?), ?)
		ON CONFLICT (kind, id) DO UPDATE SET body = excluded.body`,
		string(kind), doc.ID, string(kind), body)
	return err
}

func removeRecord(ctx context.Context, q querier, kind core.Kind, id string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM records WHERE kind = ? AND id = ?", string(kind), id)
	return err
}

func clearKind(ctx context.Context, q querier, kind core.Kind) error {
	_, err := q.ExecContext(ctx, "DELETE FROM records WHERE kind = ?", string(kind))
	return err
}

func encode(doc core.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decode(body string) (core.Document, error) {
	var doc core.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return core.Document{}, fmt.Errorf("decode record: %w", err)
	}
	return doc, nil
}

var _ core.Repository = (*Repository)(nil)
var _ core.Transactional = (*Repository)(nil)
