package service

import (
	"context"

	"contenthub/internal/model"
	"contenthub/pkg/log"
	"contenthub/pkg/tasks"
)

// EventPublisher receives a TreeEvent after every successful tree mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event tasks.TreeEvent) error
}

// NoopPublisher drops every event. It is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, tasks.TreeEvent) error { return nil }

// publish never fails the mutation that triggered it.
func publish(ctx context.Context, p EventPublisher, event tasks.TreeEvent) {
	if err := p.Publish(ctx, event); err != nil {
		log.Warnw("failed to publish tree event", "type", event.Type, "id", event.ID, "error", err)
	}
}

func categoryEvent(t tasks.EventType, c *model.Category) tasks.TreeEvent {
	doc := model.CategoryDocument(c)
	return tasks.TreeEvent{Type: t, ID: c.ID, Document: &doc}
}

func contentEvent(t tasks.EventType, c *model.Content) tasks.TreeEvent {
	doc := model.ContentDocument(c)
	return tasks.TreeEvent{Type: t, ID: c.ID, Document: &doc}
}
