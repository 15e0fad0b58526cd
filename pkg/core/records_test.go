package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/knowhub/pkg/core"
)

func TestParsePriority(t *testing.T) {
	tests := map[string]core.Priority{
		"high":   core.PriorityHigh,
		" HIGH ": core.PriorityHigh,
		"normal": core.PriorityNormal,
		"":       core.PriorityNormal,
		"urgent": core.PriorityNormal,
	}
	for in, want := range tests {
		assert.Equal(t, want, core.ParsePriority(in), "%q", in)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{in: "2024-03-15", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{in: "2024-03-15T10:30:00Z", want: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), ok: true},
		{in: "2024-03-15T10:30:00.123Z", want: time.Date(2024, 3, 15, 10, 30, 0, 123000000, time.UTC), ok: true},
		{in: "2024-03-15T10:30:00", want: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), ok: true},
		{in: "  2024-03-15  ", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{in: ""},
		{in: "yesterday"},
		{in: "2024-13-01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := core.ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	ts := time.Date(2024, 3, 15, 13, 0, 0, 0, loc)

	assert.Equal(t, "2024-03-15T10:00:00Z", core.FormatTimestamp(ts))
	assert.Equal(t, "2024-03-15", core.FormatCalendarDate(ts))

	back, ok := core.ParseDate(core.FormatTimestamp(ts))
	assert.True(t, ok)
	assert.True(t, back.Equal(ts))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, core.KindNotices, core.KindOf[core.Notice]())
	assert.Equal(t, core.KindKnowledgeItems, core.KindOf[core.KnowledgeItem]())
	assert.Equal(t, core.KindCategories, core.KindOf[core.Category]())
}
