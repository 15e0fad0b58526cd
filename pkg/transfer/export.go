// Package transfer moves collections in and out of a repository as JSON
// files: a single export document per scope, and one array file per
// collection on import.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/typed"
)

// Scope selects the collections of an export.
type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeNotices Scope = "notices"
	// ScopeKnowledge exports knowledge items together with the categories
	// they reference.
	ScopeKnowledge Scope = "knowledge"
)

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(s); sc {
	case ScopeAll, ScopeNotices, ScopeKnowledge:
		return sc, nil
	default:
		return "", fmt.Errorf("unknown export scope %q (want all, notices or knowledge)", s)
	}
}

// Kinds returns the collections the scope covers.
func (s Scope) Kinds() []core.Kind {
	switch s {
	case ScopeNotices:
		return []core.Kind{core.KindNotices}
	case ScopeKnowledge:
		return []core.Kind{core.KindKnowledgeItems, core.KindCategories}
	default:
		return core.Kinds()
	}
}

// ExportData is the export document. Collections outside the scope are
// nil and left out of the encoded output; requested but empty ones are
// written as empty arrays.
type ExportData struct {
	Notices        []core.Notice        `json:"notices,omitzero"`
	KnowledgeItems []core.KnowledgeItem `json:"knowledgeItems,omitzero"`
	Categories     []core.Category      `json:"categories,omitzero"`
}

// Export reads the collections of scope from repo.
func Export(ctx context.Context, repo core.Repository, scope Scope) (ExportData, error) {
	var data ExportData
	for _, kind := range scope.Kinds() {
		var err error
		switch kind {
		case core.KindNotices:
			data.Notices, err = readAll[core.Notice](ctx, repo)
		case core.KindKnowledgeItems:
			data.KnowledgeItems, err = readAll[core.KnowledgeItem](ctx, repo)
		case core.KindCategories:
			data.Categories, err = readAll[core.Category](ctx, repo)
		}
		if err != nil {
			return ExportData{}, fmt.Errorf("export %s: %w", kind, err)
		}
	}
	return data, nil
}

func readAll[T core.Record](ctx context.Context, repo core.Repository) ([]T, error) {
	recs, err := typed.NewCollection[T](repo).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

// Encode writes data as JSON indented with two spaces.
func Encode(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Filename names an export of scope taken at t.
func Filename(scope Scope, t time.Time) string {
	return fmt.Sprintf("knowledge-hub-export-%s-%s.json", scope, t.Format(time.DateOnly))
}
