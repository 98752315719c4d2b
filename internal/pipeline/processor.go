// Package pipeline keeps the search index in step with the tree.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/log"
	"contenthub/pkg/tasks"
)

// DocumentIndex is the write side of the search index.
type DocumentIndex interface {
	Upsert(ctx context.Context, doc model.SearchDocument) error
	Delete(ctx context.Context, id string) error
}

// IndexProcessor applies tree events to the index. Created and updated
// events reload the record from the store, so a late event never writes
// stale data and a record deleted in the meantime is removed instead.
type IndexProcessor struct {
	store repository.TreeStore
	index DocumentIndex
}

func NewIndexProcessor(store repository.TreeStore, index DocumentIndex) *IndexProcessor {
	return &IndexProcessor{store: store, index: index}
}

// Process implements kafka.TaskProcessor.
func (p *IndexProcessor) Process(ctx context.Context, event tasks.TreeEvent) error {
	log.Infow("indexing tree event", "type", event.Type, "id", event.ID)

	if event.IsDelete() {
		return p.remove(ctx, event.ID)
	}

	doc, err := p.load(ctx, event)
	if errors.Is(err, repository.ErrNotFound) {
		return p.remove(ctx, event.ID)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", event.ID, err)
	}
	if err := p.index.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("index %s: %w", event.ID, err)
	}
	return nil
}

func (p *IndexProcessor) load(ctx context.Context, event tasks.TreeEvent) (model.SearchDocument, error) {
	if strings.HasPrefix(string(event.Type), model.KindCategory+".") {
		category, err := p.store.Categories().FindByID(ctx, event.ID)
		if err != nil {
			return model.SearchDocument{}, err
		}
		return model.CategoryDocument(category), nil
	}
	content, err := p.store.Contents().FindByID(ctx, event.ID)
	if err != nil {
		return model.SearchDocument{}, err
	}
	return model.ContentDocument(content), nil
}

func (p *IndexProcessor) remove(ctx context.Context, id string) error {
	if err := p.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove %s from index: %w", id, err)
	}
	return nil
}
