package hub

import (
	"github.com/aretw0/introspection"
)

// HubState exposes the mirror's shape for observability.
type HubState struct {
	Notices        int    `json:"notices"`
	KnowledgeItems int    `json:"knowledge_items"`
	Categories     int    `json:"categories"`
	Loading        bool   `json:"loading"`
	SelectedNotice string `json:"selected_notice,omitempty"`
	SelectedItem   string `json:"selected_item,omitempty"`
	Subscribers    int    `json:"subscribers"`
}

// State implements introspection.Introspectable.
func (h *Hub) State() any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return HubState{
		Notices:        len(h.state.Notices),
		KnowledgeItems: len(h.state.KnowledgeItems),
		Categories:     len(h.state.Categories),
		Loading:        h.state.Loading,
		SelectedNotice: h.selectedNotice,
		SelectedItem:   h.selectedItem,
		Subscribers:    h.broker.len(),
	}
}

// ComponentType implements introspection.Component.
func (h *Hub) ComponentType() string {
	return "hub"
}

var _ introspection.Introspectable = (*Hub)(nil)
var _ introspection.Component = (*Hub)(nil)
