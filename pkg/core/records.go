package core

import (
	"strings"
	"time"
)

// Priority controls the emphasis of a notice and its sort/filter behavior.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// ParsePriority maps any value other than "high" to PriorityNormal.
func ParsePriority(s string) Priority {
	if strings.EqualFold(strings.TrimSpace(s), string(PriorityHigh)) {
		return PriorityHigh
	}
	return PriorityNormal
}

// Notice is an announcement.
type Notice struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Content  string   `json:"content" yaml:"content"`
	Author   string   `json:"author" yaml:"author"`
	Date     string   `json:"date" yaml:"date"`
	Priority Priority `json:"priority" yaml:"priority"`
}

// RecordID implements Record.
func (n Notice) RecordID() string { return n.ID }

// KnowledgeItem is a knowledge-base article. CategoryID is a soft reference:
// it is not enforced and may dangle.
type KnowledgeItem struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Content    string `json:"content" yaml:"content"`
	CategoryID string `json:"categoryId" yaml:"categoryId"`
	Created    string `json:"created" yaml:"created"`
	Updated    string `json:"updated" yaml:"updated"`
}

// RecordID implements Record.
func (k KnowledgeItem) RecordID() string { return k.ID }

// Category groups knowledge items. Icon is an opaque glyph name.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon" yaml:"icon"`
}

// RecordID implements Record.
func (c Category) RecordID() string { return c.ID }

// Record is implemented by every storable record type.
type Record interface {
	Notice | KnowledgeItem | Category
	RecordID() string
}

// KindOf returns the collection a record type belongs to.
func KindOf[T Record]() Kind {
	var zero T
	switch any(zero).(type) {
	case Notice:
		return KindNotices
	case KnowledgeItem:
		return KindKnowledgeItems
	default:
		return KindCategories
	}
}

// Date layouts accepted by ParseDate, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseDate interprets the date strings stored on records: RFC 3339
// timestamps or plain calendar dates (read as UTC midnight).
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way record timestamps are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatCalendarDate renders t as a calendar date.
func FormatCalendarDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
