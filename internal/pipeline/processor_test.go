package pipeline

import (
	"context"
	"testing"
	"time"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/database"
	"contenthub/pkg/tasks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryIndex struct {
	docs map[string]model.SearchDocument
}

func (m *memoryIndex) Upsert(_ context.Context, doc model.SearchDocument) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memoryIndex) Delete(_ context.Context, id string) error {
	delete(m.docs, id)
	return nil
}

func newStore(t *testing.T) repository.TreeStore {
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrateTree(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return repository.NewGormTreeStore(db)
}

func TestIndexProcessorFollowsStore(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	index := &memoryIndex{docs: map[string]model.SearchDocument{}}
	p := NewIndexProcessor(store, index)

	now := time.Now()
	category := &model.Category{ID: uuid.NewString(), Name: "Shop", Keywords: []string{"store"}, Enabled: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Categories().Create(ctx, category))
	content := &model.Content{ID: uuid.NewString(), CategoryID: &category.ID, Name: "Hammer", Keywords: []string{}, Checklist: []string{}, Description: "steel"}
	require.NoError(t, store.Contents().Create(ctx, content))

	require.NoError(t, p.Process(ctx, tasks.TreeEvent{Type: tasks.CategoryCreated, ID: category.ID}))
	require.NoError(t, p.Process(ctx, tasks.TreeEvent{Type: tasks.ContentCreated, ID: content.ID}))
	assert.Equal(t, model.KindCategory, index.docs[category.ID].Kind)
	assert.Equal(t, "steel", index.docs[content.ID].Description)
	assert.Equal(t, &category.ID, index.docs[content.ID].ParentID)

	require.NoError(t, p.Process(ctx, tasks.TreeEvent{Type: tasks.ContentDeleted, ID: content.ID}))
	assert.NotContains(t, index.docs, content.ID)

	// an update for a record that no longer exists removes it
	require.NoError(t, store.Categories().Delete(ctx, category.ID))
	require.NoError(t, p.Process(ctx, tasks.TreeEvent{Type: tasks.CategoryUpdated, ID: category.ID}))
	assert.Empty(t, index.docs)
}
