// Package tasks defines the messages carried on the tree event topic.
package tasks

import "contenthub/internal/model"

// EventType names a tree mutation.
type EventType string

const (
	CategoryCreated EventType = "category.created"
	CategoryUpdated EventType = "category.updated"
	CategoryDeleted EventType = "category.deleted"
	ContentCreated  EventType = "content.created"
	ContentUpdated  EventType = "content.updated"
	ContentDeleted  EventType = "content.deleted"
)

// TreeEvent is published after every successful tree mutation. Document is
// set for created and updated events.
type TreeEvent struct {
	Type     EventType             `json:"type"`
	ID       string                `json:"id"`
	Document *model.SearchDocument `json:"document,omitempty"`
}

// IsDelete reports whether the event removes a record.
func (e TreeEvent) IsDelete() bool {
	return e.Type == CategoryDeleted || e.Type == ContentDeleted
}
