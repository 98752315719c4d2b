package jobs

import (
	"context"
	"fmt"

	"contenthub/internal/repository"
	"contenthub/internal/service"
	"contenthub/pkg/log"
	"contenthub/pkg/tasks"

	mapset "github.com/deckarep/golang-set/v2"
)

// OrphanSweeper deletes content filed under categories that no longer
// exist. A best-effort cascade that failed halfway leaves such items behind.
type OrphanSweeper struct {
	store    repository.TreeStore
	events   service.EventPublisher
	schedule string
}

func NewOrphanSweeper(store repository.TreeStore, events service.EventPublisher, schedule string) *OrphanSweeper {
	return &OrphanSweeper{store: store, events: events, schedule: schedule}
}

func (s *OrphanSweeper) Name() string     { return "orphan-sweeper" }
func (s *OrphanSweeper) Schedule() string { return s.schedule }

func (s *OrphanSweeper) Run(ctx context.Context) {
	removed, err := s.Sweep(ctx)
	if err != nil {
		log.Error("orphan sweep failed", err)
		return
	}
	if removed > 0 {
		log.Infow("orphan sweep removed content", "count", removed)
	}
}

// Sweep returns the number of deleted content items.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	referenced, err := s.store.Contents().DistinctCategoryIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list referenced categories: %w", err)
	}
	if len(referenced) == 0 {
		return 0, nil
	}
	existing, err := s.store.Categories().ExistingIDs(ctx, referenced)
	if err != nil {
		return 0, fmt.Errorf("check categories: %w", err)
	}

	missing := mapset.NewThreadUnsafeSet(referenced...).Difference(mapset.NewThreadUnsafeSet(existing...))
	removed := 0
	for _, categoryID := range missing.ToSlice() {
		ids, err := s.store.Contents().DeleteByCategory(ctx, categoryID)
		if err != nil {
			return removed, fmt.Errorf("delete content of missing category %s: %w", categoryID, err)
		}
		for _, id := range ids {
			if err := s.events.Publish(ctx, tasks.TreeEvent{Type: tasks.ContentDeleted, ID: id}); err != nil {
				log.Warnw("failed to publish tree event", "id", id, "error", err)
			}
		}
		removed += len(ids)
	}
	return removed, nil
}
