// Package fs implements core.Repository on a local directory (the vault).
// Each collection lives in one file (notices.json, knowledgeItems.json,
// categories.json, or the .yaml equivalents) that is rewritten atomically
// on every change. The vault may optionally be versioned with git.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/knowhub/pkg/adapters/internal/docset"
	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/git"
)

// DefaultSystemDir marks a directory as a knowhub vault.
const DefaultSystemDir = ".knowhub"

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	AutoInit     bool // create the vault (and git repository when versioned) if missing
	MustExist    bool
	Versioning   bool   // commit every write to git
	Format       string // "json" (default) or "yaml"
	SystemDir    string // e.g. ".knowhub"
	ReadOnly     bool
	Logger       *slog.Logger
	ErrorHandler func(error) // receives watcher failures
}

// Repository implements core.Repository using the filesystem.
type Repository struct {
	Path       string
	config     Config
	serializer Serializer
	git        *git.Client
	cache      *cache

	mu sync.Mutex // serializes reads that fill the cache and all writes

	stateMu        sync.RWMutex
	watcherActive  bool
	lastExternal   *time.Time
	writesRecorded int
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) (*Repository, error) {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	serializer, err := NewSerializer(config.Format)
	if err != nil {
		return nil, err
	}

	return &Repository{
		Path:       config.Path,
		config:     config,
		serializer: serializer,
		git:        git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		cache:      newCache(),
	}, nil
}

// Initialize prepares the vault directory and, when versioning is enabled,
// its git repository.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return core.Storage("initialize", "", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
	}

	if r.config.ReadOnly {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(r.Path, r.config.SystemDir), 0755); err != nil {
		return core.Storage("initialize", "", fmt.Errorf("failed to create vault directory: %w", err))
	}

	if !r.config.Versioning {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	if r.git.IsRepo() {
		return nil
	}
	if !r.config.AutoInit {
		return fmt.Errorf("path is not a git repository: %s", r.Path)
	}
	if err := r.git.Init(ctx); err != nil {
		return fmt.Errorf("failed to git init: %w", err)
	}
	if err := r.ensureIgnore(); err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	if err := r.git.Add(ctx, ".gitignore"); err != nil {
		return fmt.Errorf("failed to add .gitignore: %w", err)
	}
	msg := git.FormatChangeReason("chore", "", fmt.Sprintf("configure %s ignore", r.config.SystemDir), "")
	if err := r.git.Commit(ctx, msg); err != nil {
		return fmt.Errorf("failed to commit .gitignore: %w", err)
	}
	return nil
}

// ensureIgnore keeps the system directory, the lock file and temp files out of git.
func (r *Repository) ensureIgnore() error {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	wanted := []string{r.config.SystemDir + "/", r.config.SystemDir + ".lock", TempFilePrefix + "*"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var sb strings.Builder
	sb.Write(content)
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		sb.WriteString("\n")
	}
	for _, w := range wanted {
		if !present[w] {
			sb.WriteString(w + "\n")
		}
	}
	return writeFileAtomic(ignorePath, []byte(sb.String()), 0644)
}

// Filename returns the collection file name for kind (relative to the vault).
func (r *Repository) Filename(kind core.Kind) string {
	return string(kind) + r.serializer.Ext()
}

func (r *Repository) fullPath(kind core.Kind) string {
	return filepath.Join(r.Path, r.Filename(kind))
}

// load returns the current content of a collection. Callers hold r.mu and
// must clone the set before modifying it.
func (r *Repository) load(kind core.Kind) (*docset.Set, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}

	path := r.fullPath(kind)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return docset.New(), nil
	}
	if err != nil {
		return nil, core.Storage("read", kind, err)
	}

	if set, ok := r.cache.get(kind, info); ok {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.Storage("read", kind, err)
	}
	docs, err := r.serializer.Decode(data)
	if err != nil {
		return nil, core.Storage("read", kind, fmt.Errorf("failed to parse %s: %w", r.Filename(kind), err))
	}

	set := docset.FromDocuments(docs)
	r.cache.put(kind, set, info)
	return set, nil
}

// List returns all documents of a kind in insertion order.
func (r *Repository) List(ctx context.Context, kind core.Kind) ([]core.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.load(kind)
	if err != nil {
		return nil, err
	}
	return set.List(), nil
}

// Get retrieves a document by ID.
func (r *Repository) Get(ctx context.Context, kind core.Kind, id string) (core.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.load(kind)
	if err != nil {
		return core.Document{}, err
	}
	doc, ok := set.Get(id)
	if !ok {
		return core.Document{}, fmt.Errorf("%w: %s/%s", core.ErrNotFound, kind, id)
	}
	return doc, nil
}

// Save inserts or overwrites a document.
func (r *Repository) Save(ctx context.Context, kind core.Kind, doc core.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: missing id", core.ErrInvalidRecord)
	}
	_, err := r.mutate(ctx, kind, "save "+doc.ID, func(s *docset.Set) bool {
		s.Put(doc)
		return true
	})
	return err
}

// SaveAll inserts or overwrites many documents with a single file write.
func (r *Repository) SaveAll(ctx context.Context, kind core.Kind, docs []core.Document) error {
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("%w: missing id", core.ErrInvalidRecord)
		}
	}
	_, err := r.mutate(ctx, kind, fmt.Sprintf("save %d records", len(docs)), func(s *docset.Set) bool {
		s.PutAll(docs)
		return len(docs) > 0
	})
	return err
}

// Update merges doc into an existing document; it reports false if absent.
func (r *Repository) Update(ctx context.Context, kind core.Kind, doc core.Document) (bool, error) {
	return r.mutate(ctx, kind, "update "+doc.ID, func(s *docset.Set) bool {
		return s.Update(doc)
	})
}

// Delete removes a document; missing IDs are ignored.
func (r *Repository) Delete(ctx context.Context, kind core.Kind, id string) error {
	_, err := r.mutate(ctx, kind, "delete "+id, func(s *docset.Set) bool {
		return s.Delete(id)
	})
	return err
}

// Clear removes every document of a kind.
func (r *Repository) Clear(ctx context.Context, kind core.Kind) error {
	_, err := r.mutate(ctx, kind, "clear", func(s *docset.Set) bool {
		if s.Len() == 0 {
			return false
		}
		s.Clear()
		return true
	})
	return err
}

// Begin starts a new transaction.
func (r *Repository) Begin(ctx context.Context) (core.Transaction, error) {
	if r.config.ReadOnly {
		return nil, core.ErrReadOnly
	}
	return &Transaction{repo: r}, nil
}

// mutate applies fn to a copy of the collection and persists the copy if
// fn reports a change. The cached collection is replaced only after the
// file write succeeded.
func (r *Repository) mutate(ctx context.Context, kind core.Kind, what string, fn func(s *docset.Set) bool) (bool, error) {
	if r.config.ReadOnly {
		return false, core.ErrReadOnly
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(kind)
	if err != nil {
		return false, err
	}
	next := current.Clone()
	if !fn(next) {
		return false, nil
	}

	reason := changeReason(ctx, git.FormatChangeReason("chore", string(kind), what, ""))
	if err := r.persist(ctx, map[core.Kind]*docset.Set{kind: next}, reason); err != nil {
		return false, err
	}
	return true, nil
}

// persist writes the given collections. All files are staged before any is
// renamed into place, keeping the window for a partial multi-file write to
// the renames themselves. Callers hold r.mu.
func (r *Repository) persist(ctx context.Context, sets map[core.Kind]*docset.Set, reason string) error {
	var staged []stagedFile
	var files []string
	kinds := make([]core.Kind, 0, len(sets))

	for _, kind := range core.Kinds() {
		set, ok := sets[kind]
		if !ok {
			continue
		}
		data, err := r.serializer.Encode(set.List())
		if err != nil {
			discardAll(staged)
			return core.Storage("encode", kind, err)
		}
		f, err := stageFile(r.fullPath(kind), data, 0644)
		if err != nil {
			discardAll(staged)
			return core.Storage("write", kind, err)
		}
		staged = append(staged, f)
		files = append(files, r.Filename(kind))
		kinds = append(kinds, kind)
	}

	if err := commitAll(staged); err != nil {
		// Earlier renames may have landed; force the next read to go to disk.
		for _, k := range kinds {
			r.cache.invalidate(k)
		}
		return core.Storage("write", "", err)
	}

	for _, kind := range kinds {
		info, err := os.Stat(r.fullPath(kind))
		if err != nil {
			r.cache.invalidate(kind)
			continue
		}
		r.cache.put(kind, sets[kind], info)
	}
	r.recordWrite()

	// The files are already in place; a failed commit leaves them uncommitted
	// but does not fail the write.
	if r.config.Versioning {
		if err := r.commit(ctx, files, reason); err != nil {
			r.config.Logger.Warn("versioning failed; changes left uncommitted",
				"files", files,
				"error", err,
			)
		}
	}
	return nil
}

func (r *Repository) commit(ctx context.Context, files []string, reason string) error {
	unlock, err := r.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := r.git.Add(ctx, files...); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	if err := r.git.Commit(ctx, reason); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// History returns the latest n versioned changes, newest first.
func (r *Repository) History(ctx context.Context, n int) ([]git.Entry, error) {
	if !r.config.Versioning {
		return nil, errors.New("vault is not versioned")
	}
	return r.git.Log(ctx, n)
}

func discardAll(files []stagedFile) {
	for _, f := range files {
		f.discard()
	}
}

func changeReason(ctx context.Context, fallback string) string {
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		return val
	}
	return fallback
}

var _ core.Repository = (*Repository)(nil)
var _ core.Transactional = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
