package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path               string     `json:"path"`
	SystemDir          string     `json:"system_dir"`
	Format             string     `json:"format"`
	CacheSize          int        `json:"cache_size"`
	Versioning         bool       `json:"versioning"`
	ReadOnly           bool       `json:"read_only"`
	WatcherActive      bool       `json:"watcher_active"`
	Writes             int        `json:"writes"`
	LastExternalChange *time.Time `json:"last_external_change,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()

	return RepositoryState{
		Path:               r.Path,
		SystemDir:          r.config.SystemDir,
		Format:             r.serializer.Ext()[1:],
		CacheSize:          r.cache.len(),
		Versioning:         r.config.Versioning,
		ReadOnly:           r.config.ReadOnly,
		WatcherActive:      r.watcherActive,
		Writes:             r.writesRecorded,
		LastExternalChange: r.lastExternal,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.watcherActive = active
}

func (r *Repository) recordWrite() {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.writesRecorded++
}

func (r *Repository) recordExternalChange() {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	now := time.Now()
	r.lastExternal = &now
}
