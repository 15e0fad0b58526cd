package query

import (
	"strings"

	"github.com/aretw0/knowhub/pkg/core"
)

// SearchLimit caps the matches returned per collection.
const SearchLimit = 5

// Results holds the matches of a search.
type Results struct {
	Notices        []core.Notice        `json:"notices"`
	KnowledgeItems []core.KnowledgeItem `json:"knowledgeItems"`
}

// Empty reports whether nothing matched.
func (r Results) Empty() bool {
	return len(r.Notices) == 0 && len(r.KnowledgeItems) == 0
}

// Search matches q case-insensitively as a substring of the title or the
// content, keeping the first SearchLimit matches of each collection in
// input order. A blank query matches nothing.
func Search(q string, notices []core.Notice, items []core.KnowledgeItem) Results {
	res := Results{Notices: []core.Notice{}, KnowledgeItems: []core.KnowledgeItem{}}

	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return res
	}

	for _, n := range notices {
		if len(res.Notices) == SearchLimit {
			break
		}
		if contains(n.Title, needle) || contains(n.Content, needle) {
			res.Notices = append(res.Notices, n)
		}
	}
	for _, k := range items {
		if len(res.KnowledgeItems) == SearchLimit {
			break
		}
		if contains(k.Title, needle) || contains(k.Content, needle) {
			res.KnowledgeItems = append(res.KnowledgeItems, k)
		}
	}
	return res
}

func contains(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
