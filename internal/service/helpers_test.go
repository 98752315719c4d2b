package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/database"
	"contenthub/pkg/storage"
	"contenthub/pkg/tasks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	admin  = Caller{Authenticated: true, UserID: 1, Email: "admin@example.com", Role: model.RoleAdmin}
	editor = Caller{Authenticated: true, UserID: 2, Email: "editor@example.com", Role: model.RoleEditor}
	member = Caller{Authenticated: true, UserID: 3, Email: "user@example.com", Role: model.RoleUser}
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrateTree(db))
	require.NoError(t, repository.AutoMigrateAccounts(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func newTestStore(t *testing.T) repository.TreeStore {
	return repository.NewGormTreeStore(newTestDB(t))
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []tasks.TreeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event tasks.TreeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(t tasks.EventType) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ids []string
	for _, e := range p.events {
		if e.Type == t {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func mustCreateCategory(t *testing.T, svc CategoryService, parentID *string, name string, enabled bool) *model.Category {
	t.Helper()
	c, err := svc.Create(context.Background(), editor, CreateCategoryInput{
		ParentID: parentID,
		Name:     name,
		Keywords: []string{},
		Enabled:  boolPtr(enabled),
	})
	require.NoError(t, err)
	return c
}

func mustCreateContent(t *testing.T, svc ContentService, categoryID *string, name string, enabled bool) *model.Content {
	t.Helper()
	c, err := svc.Create(context.Background(), editor, CreateContentInput{
		CategoryID: categoryID,
		Name:       name,
		Keywords:   []string{},
		Enabled:    boolPtr(enabled),
	})
	require.NoError(t, err)
	return c
}

var errInjected = errors.New("injected failure")

// failingTreeStore wraps a store and fails content deletion for one category.
type failingTreeStore struct {
	repository.TreeStore
	failContentOf string
}

func (s *failingTreeStore) Contents() repository.ContentRepository {
	return &failingContents{ContentRepository: s.TreeStore.Contents(), failFor: s.failContentOf}
}

func (s *failingTreeStore) Transaction(ctx context.Context, fn func(ctx context.Context, tx repository.TreeStore) error) error {
	return s.TreeStore.Transaction(ctx, func(ctx context.Context, tx repository.TreeStore) error {
		return fn(ctx, &failingTreeStore{TreeStore: tx, failContentOf: s.failContentOf})
	})
}

type failingContents struct {
	repository.ContentRepository
	failFor string
}

func (r *failingContents) DeleteByCategory(ctx context.Context, categoryID string) ([]string, error) {
	if categoryID == r.failFor {
		return nil, errInjected
	}
	return r.ContentRepository.DeleteByCategory(ctx, categoryID)
}

// memoryBlacklist is an in-process TokenBlacklist.
type memoryBlacklist struct {
	revoked map[string]time.Duration
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{revoked: map[string]time.Duration{}}
}

func (b *memoryBlacklist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	b.revoked[token] = ttl
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	_, ok := b.revoked[token]
	return ok, nil
}

// memorySettingCache is an in-process SettingCache.
type memorySettingCache struct {
	entries     map[string]model.Setting
	invalidated []string
}

func newMemorySettingCache() *memorySettingCache {
	return &memorySettingCache{entries: map[string]model.Setting{}}
}

func (c *memorySettingCache) Get(_ context.Context, key string) (*model.Setting, error) {
	s, ok := c.entries[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (c *memorySettingCache) Set(_ context.Context, setting *model.Setting) error {
	c.entries[setting.Key] = *setting
	return nil
}

func (c *memorySettingCache) Invalidate(_ context.Context, key string) error {
	delete(c.entries, key)
	c.invalidated = append(c.invalidated, key)
	return nil
}

// memoryObjectStore is an in-process storage.ObjectStore.
type memoryObjectStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryObjectStore) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[name] = data
	s.types[name] = contentType
	return nil
}

func (s *memoryObjectStore) Get(_ context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error) {
	data, ok := s.objects[name]
	if !ok {
		return nil, storage.ObjectInfo{}, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Size: int64(len(data)), ContentType: s.types[name]}, nil
}

func (s *memoryObjectStore) Remove(_ context.Context, name string) error {
	delete(s.objects, name)
	return nil
}
