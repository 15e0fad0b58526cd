// Package core defines the domain of knowhub: the record kinds, the storage
// contracts every backend implements, and the events exchanged between them.
package core

import (
	"encoding/json"
	"fmt"
)

// Kind identifies one of the record collections held by a repository.
// The value doubles as the collection key in export documents.
type Kind string

const (
	KindNotices        Kind = "notices"
	KindKnowledgeItems Kind = "knowledgeItems"
	KindCategories     Kind = "categories"
)

// Kinds returns every collection kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindCategories, KindKnowledgeItems, KindNotices}
}

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	switch k {
	case KindNotices, KindKnowledgeItems, KindCategories:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Metadata represents the flexible key-value pairs associated with a document.
type Metadata map[string]any

// Document is the storage-level form of a record.
// Backends persist documents; pkg/typed converts them to and from the
// concrete record types.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// MarshalJSON flattens the document into a single object so that stored
// collections look exactly like the records they hold.
func (d Document) MarshalJSON() ([]byte, error) {
	payload := make(map[string]any, len(d.Metadata)+2)
	for k, v := range d.Metadata {
		payload[k] = v
	}
	payload["id"] = d.ID
	if d.Content != "" {
		payload["content"] = d.Content
	}
	return json.Marshal(payload)
}

// UnmarshalJSON splits a flat object into ID, content and metadata.
func (d *Document) UnmarshalJSON(data []byte) error {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if payload == nil {
		return fmt.Errorf("%w: document is not an object", ErrInvalidRecord)
	}
	*d = DocumentFromMap(payload)
	return nil
}

// DocumentFromMap builds a document from a decoded object (JSON or YAML).
// The "id" and "content" keys are lifted out of the metadata.
func DocumentFromMap(payload map[string]any) Document {
	doc := Document{Metadata: make(Metadata, len(payload))}
	for k, v := range payload {
		switch k {
		case "id":
			doc.ID = fmt.Sprint(v)
		case "content":
			if s, ok := v.(string); ok {
				doc.Content = s
				continue
			}
			doc.Metadata[k] = v
		default:
			doc.Metadata[k] = v
		}
	}
	return doc
}

// Map returns the flat object form of the document.
func (d Document) Map() map[string]any {
	out := make(map[string]any, len(d.Metadata)+2)
	for k, v := range d.Metadata {
		out[k] = v
	}
	out["id"] = d.ID
	if d.Content != "" {
		out["content"] = d.Content
	}
	return out
}

// Clone returns a copy whose metadata map can be mutated independently.
func (d Document) Clone() Document {
	meta := make(Metadata, len(d.Metadata))
	for k, v := range d.Metadata {
		meta[k] = v
	}
	return Document{ID: d.ID, Content: d.Content, Metadata: meta}
}

// Merge overwrites the fields of d with the ones set in patch.
// Metadata keys present in patch replace existing values; content is
// always taken from patch.
func (d Document) Merge(patch Document) Document {
	out := d.Clone()
	for k, v := range patch.Metadata {
		out.Metadata[k] = v
	}
	out.Content = patch.Content
	return out
}

// EventType represents the type of change in a repository.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
	// EventReload signals that a whole collection (or all of them) was
	// replaced, e.g. after an import or an external edit.
	EventReload EventType = "RELOAD"
)

// Event represents a change in a repository or in the application state.
type Event struct {
	Type      EventType
	Kind      Kind
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	if e.Kind == "" {
		return string(e.Type)
	}
	if e.ID == "" {
		return fmt.Sprintf("%s %s", e.Type, e.Kind)
	}
	return fmt.Sprintf("%s %s/%s", e.Type, e.Kind, e.ID)
}

type contextKey string

// ChangeReasonKey is the context key for passing the change reason (commit
// message) to versioned backends during writes.
const ChangeReasonKey contextKey = "change_reason"
