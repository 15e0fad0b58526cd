// Package knowhub is the composition root of a small local knowledge base:
// notices, knowledge-base articles and their categories.
//
// Records live in a storage adapter behind core.Repository (JSON/YAML files
// with optional git history, SQLite, or memory). The hub keeps the whole
// dataset in memory for the UI layer and writes through to the store on
// every mutation. Queries (filters, sorts, search, dashboard aggregates) are
// pure functions in pkg/query; JSON import and export live in pkg/transfer.
//
// Usage:
//
//	h, err := knowhub.New(ctx, "./kb", knowhub.WithAutoInit(true))
//	if err != nil {
//		return err
//	}
//	n, err := h.AddNotice(ctx, hub.NoticeInput{Title: "Maintenance", Content: "..."})
package knowhub
