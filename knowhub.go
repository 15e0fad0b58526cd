package knowhub

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/knowhub/internal/platform"
	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/hub"
	"github.com/aretw0/knowhub/pkg/typed"
)

// --- Types ---

// Hub is the in-memory application state over a knowledge base.
type Hub = hub.Hub

// Collection is a typed view over one record collection.
type Collection[T core.Record] = typed.Collection[T]

// Record types.
type (
	Notice        = core.Notice
	KnowledgeItem = core.KnowledgeItem
	Category      = core.Category
)

// --- Configuration ---

// Option defines a functional option for opening a knowledge base.
type Option = platform.Option

// Adapter names.
const (
	AdapterFS     = platform.AdapterFS
	AdapterSQLite = platform.AdapterSQLite
	AdapterMemory = platform.AdapterMemory
)

// WithAutoInit creates the knowledge base if it does not exist.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables git versioning of the fs adapter.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithSystemDir sets the hidden directory name (e.g. ".knowhub").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithFormat selects "json" or "yaml" collection files.
func WithFormat(format string) Option {
	return platform.WithFormat(format)
}

// WithReadOnly opens the knowledge base without write access.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the dev sandbox for `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New opens the knowledge base at uri and returns a loaded hub.
func New(ctx context.Context, uri string, opts ...Option) (*Hub, error) {
	return platform.New(ctx, uri, opts...)
}

// Open returns the raw repository without a hub.
func Open(ctx context.Context, uri string, opts ...Option) (core.Repository, error) {
	return platform.Open(ctx, uri, opts...)
}

// Close releases the repository's resources, if it holds any.
func Close(repo core.Repository) error {
	return platform.Close(repo)
}

// Notices returns a typed view of the notices collection.
func Notices(repo core.Repository) *Collection[Notice] {
	return typed.NewCollection[Notice](repo)
}

// KnowledgeItems returns a typed view of the knowledge items collection.
func KnowledgeItems(repo core.Repository) *Collection[KnowledgeItem] {
	return typed.NewCollection[KnowledgeItem](repo)
}

// Categories returns a typed view of the categories collection.
func Categories(repo core.Repository) *Collection[Category] {
	return typed.NewCollection[Category](repo)
}

// --- Safety & Utils ---

// ResolveVaultPath determines the actual path for the vault based on safety rules.
func ResolveVaultPath(userPath string, forceTemp bool) string {
	return platform.ResolveVaultPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindVaultRoot looks upwards for a directory holding a knowledge base.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
