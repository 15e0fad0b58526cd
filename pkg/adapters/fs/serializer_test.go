package fs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/knowhub/pkg/core"
)

func sampleDocs() []core.Document {
	return []core.Document{
		{ID: "n1", Content: "Water is off", Metadata: core.Metadata{"title": "Maintenance", "priority": "high"}},
		{ID: "n2", Metadata: core.Metadata{"title": "Empty body", "rank": float64(3)}},
	}
}

func TestSerializers_RoundTrip(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			s, err := NewSerializer(format)
			require.NoError(t, err)

			data, err := s.Encode(sampleDocs())
			require.NoError(t, err)

			got, err := s.Decode(data)
			require.NoError(t, err)
			if diff := cmp.Diff(sampleDocs(), got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSerializers_EmptyInput(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		s, err := NewSerializer(format)
		require.NoError(t, err)

		docs, err := s.Decode([]byte("  \n"))
		require.NoError(t, err, format)
		assert.Empty(t, docs, format)
	}
}

func TestSerializers_RejectEntriesWithoutID(t *testing.T) {
	_, err := JSONSerializer{}.Decode([]byte(`[{"title":"no id"}]`))
	assert.ErrorIs(t, err, core.ErrInvalidRecord)

	_, err = YAMLSerializer{}.Decode([]byte("- title: no id\n"))
	assert.ErrorIs(t, err, core.ErrInvalidRecord)
}

func TestYAMLSerializer_NormalizesScalars(t *testing.T) {
	docs, err := YAMLSerializer{}.Decode([]byte("- id: k1\n  rank: 2\n  created: 2024-03-01T10:00:00Z\n"))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, float64(2), docs[0].Metadata["rank"])
	assert.Equal(t, "2024-03-01T10:00:00Z", docs[0].Metadata["created"])
}

func TestNewSerializer_UnknownFormat(t *testing.T) {
	_, err := NewSerializer("toml")
	assert.Error(t, err)

	s, err := NewSerializer("")
	require.NoError(t, err)
	assert.Equal(t, ".json", s.Ext())
}
