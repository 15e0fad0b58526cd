package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/knowhub/pkg/core"
)

// Serializer converts a whole collection file to and from documents.
type Serializer interface {
	// Ext is the file extension of the format, including the dot.
	Ext() string
	// Decode parses a collection file. Empty input yields no documents.
	Decode(data []byte) ([]core.Document, error)
	// Encode renders documents as a collection file.
	Encode(docs []core.Document) ([]byte, error)
}

// Format names accepted by NewSerializer.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// NewSerializer returns the serializer for a format name.
// The empty name selects JSON.
func NewSerializer(format string) (Serializer, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return JSONSerializer{}, nil
	case FormatYAML, "yml":
		return YAMLSerializer{}, nil
	default:
		return nil, fmt.Errorf("unknown storage format: %q", format)
	}
}

// --- JSON Serializer ---

// JSONSerializer stores a collection as an indented JSON array of records,
// the same shape the import pipeline accepts.
type JSONSerializer struct{}

func (JSONSerializer) Ext() string { return ".json" }

func (JSONSerializer) Decode(data []byte) ([]core.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var payload []map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return toDocuments(payload)
}

func (JSONSerializer) Encode(docs []core.Document) ([]byte, error) {
	payload := toMaps(docs)
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// --- YAML Serializer ---

// YAMLSerializer stores a collection as a YAML sequence of mappings.
type YAMLSerializer struct{}

func (YAMLSerializer) Ext() string { return ".yaml" }

func (YAMLSerializer) Decode(data []byte) ([]core.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var payload []map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return toDocuments(payload)
}

func (YAMLSerializer) Encode(docs []core.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toMaps(docs)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toMaps(docs []core.Document) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Map())
	}
	return out
}

func toDocuments(payload []map[string]any) ([]core.Document, error) {
	docs := make([]core.Document, 0, len(payload))
	for i, m := range payload {
		if m == nil {
			return nil, fmt.Errorf("%w: entry %d is not an object", core.ErrInvalidRecord, i)
		}
		doc := core.DocumentFromMap(normalize(m))
		if doc.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", core.ErrInvalidRecord, i)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// normalize keeps stored values in the types the JSON codec produces, so a
// record reads the same whichever format the vault uses.
func normalize(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case time.Time:
			m[k] = core.FormatTimestamp(val)
		case int:
			m[k] = float64(val)
		}
	}
	return m
}
