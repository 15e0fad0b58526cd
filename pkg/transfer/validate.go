package transfer

import (
	"encoding/json"

	"github.com/aretw0/knowhub/pkg/core"
)

// object is an element decoded for validation.
type object map[string]any

// str returns the field as a string. Required fields must be present
// strings; optional ones read as empty when absent, null or not a string.
func (o object) str(key string, required bool) (string, bool) {
	v, present := o[key]
	if !present || v == nil {
		return "", !required
	}
	s, ok := v.(string)
	return s, ok || !required
}

func validateAll[T any](elems []json.RawMessage, valid func(object) (T, bool)) []T {
	out := make([]T, 0, len(elems))
	for _, raw := range elems {
		var o object
		if err := json.Unmarshal(raw, &o); err != nil || o == nil {
			continue
		}
		if rec, ok := valid(o); ok {
			out = append(out, rec)
		}
	}
	return out
}

type field struct {
	key      string
	required bool
	dst      *string
}

func collect(o object, fields []field) bool {
	for _, f := range fields {
		s, ok := o.str(f.key, f.required)
		if !ok {
			return false
		}
		*f.dst = s
	}
	return true
}

func validNotice(o object) (core.Notice, bool) {
	var n core.Notice
	var priority string
	ok := collect(o, []field{
		{"id", true, &n.ID},
		{"title", true, &n.Title},
		{"content", true, &n.Content},
		{"date", true, &n.Date},
		{"author", false, &n.Author},
		{"priority", false, &priority},
	})
	n.Priority = core.ParsePriority(priority)
	return n, ok && n.ID != ""
}

func validKnowledgeItem(o object) (core.KnowledgeItem, bool) {
	var k core.KnowledgeItem
	ok := collect(o, []field{
		{"id", true, &k.ID},
		{"title", true, &k.Title},
		{"content", true, &k.Content},
		{"categoryId", false, &k.CategoryID},
		{"created", false, &k.Created},
		{"updated", false, &k.Updated},
	})
	created, okC := core.ParseDate(k.Created)
	updated, okU := core.ParseDate(k.Updated)
	if okC && okU && updated.Before(created) {
		k.Updated = k.Created
	}
	return k, ok && k.ID != ""
}

func validCategory(o object) (core.Category, bool) {
	var c core.Category
	ok := collect(o, []field{
		{"id", true, &c.ID},
		{"name", true, &c.Name},
		{"icon", false, &c.Icon},
	})
	return c, ok && c.ID != ""
}
