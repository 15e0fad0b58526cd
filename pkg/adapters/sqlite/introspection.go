package sqlite

import (
	"context"

	"github.com/aretw0/introspection"

	"github.com/aretw0/knowhub/pkg/core"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path     string            `json:"path"`
	ReadOnly bool              `json:"read_only"`
	Records  map[core.Kind]int `json:"records"`
	Error    string            `json:"error,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state := RepositoryState{Path: r.Path, ReadOnly: r.readOnly, Records: make(map[core.Kind]int)}

	rows, err := r.db.QueryContext(context.Background(), "SELECT kind, COUNT(*) FROM records GROUP BY kind")
	if err != nil {
		state.Error = err.Error()
		return state
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			state.Error = err.Error()
			break
		}
		state.Records[core.Kind(kind)] = n
	}
	return state
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
