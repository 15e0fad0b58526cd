// Package docset implements the ordered, ID-keyed document set shared by the
// storage adapters. A Set keeps insertion order: overwriting an existing ID
// keeps its position, deleting it removes it.
package docset

import "github.com/aretw0/knowhub/pkg/core"

// Set is not safe for concurrent use; adapters guard it with their own locks.
type Set struct {
	order []string
	docs  map[string]core.Document
}

// New returns an empty set.
func New() *Set {
	return &Set{docs: make(map[string]core.Document)}
}

// FromDocuments builds a set from docs, later duplicates overwriting earlier ones.
func FromDocuments(docs []core.Document) *Set {
	s := New()
	s.PutAll(docs)
	return s
}

// Len returns the number of documents.
func (s *Set) Len() int { return len(s.order) }

// List returns copies of the documents in insertion order.
func (s *Set) List() []core.Document {
	out := make([]core.Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id].Clone())
	}
	return out
}

// Get returns a copy of the document with the given ID.
func (s *Set) Get(id string) (core.Document, bool) {
	doc, ok := s.docs[id]
	if !ok {
		return core.Document{}, false
	}
	return doc.Clone(), true
}

// Put inserts or overwrites a document.
func (s *Set) Put(doc core.Document) {
	if _, ok := s.docs[doc.ID]; !ok {
		s.order = append(s.order, doc.ID)
	}
	s.docs[doc.ID] = doc.Clone()
}

// PutAll inserts or overwrites every document in order.
func (s *Set) PutAll(docs []core.Document) {
	for _, doc := range docs {
		s.Put(doc)
	}
}

// Update merges patch into the existing document with the same ID.
// It reports false when the ID is absent.
func (s *Set) Update(patch core.Document) bool {
	cur, ok := s.docs[patch.ID]
	if !ok {
		return false
	}
	s.docs[patch.ID] = cur.Merge(patch)
	return true
}

// Delete removes a document; missing IDs are ignored.
// It reports whether something was removed.
func (s *Set) Delete(id string) bool {
	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every document.
func (s *Set) Clear() {
	s.order = nil
	s.docs = make(map[string]core.Document)
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	c := &Set{
		order: append([]string(nil), s.order...),
		docs:  make(map[string]core.Document, len(s.docs)),
	}
	for id, doc := range s.docs {
		c.docs[id] = doc.Clone()
	}
	return c
}

// Op is a staged change recorded by a transaction.
type Op struct {
	Kind core.Kind
	// Exactly one of the following applies.
	Clear  bool
	Delete string
	Docs   []core.Document
}

// Apply replays ops onto sets, creating missing sets on demand.
// It returns the kinds touched by the ops.
func Apply(sets map[core.Kind]*Set, ops []Op) []core.Kind {
	var touched []core.Kind
	seen := make(map[core.Kind]bool)
	for _, op := range ops {
		s, ok := sets[op.Kind]
		if !ok {
			s = New()
			sets[op.Kind] = s
		}
		switch {
		case op.Clear:
			s.Clear()
		case op.Delete != "":
			s.Delete(op.Delete)
		default:
			s.PutAll(op.Docs)
		}
		if !seen[op.Kind] {
			seen[op.Kind] = true
			touched = append(touched, op.Kind)
		}
	}
	return touched
}
