package repository

import (
	"context"

	"contenthub/internal/model"
)

// TextQuery is a case-insensitive substring search with paging.
type TextQuery struct {
	Text        string
	EnabledOnly bool
	Skip        int
	Limit       int
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	FindByID(ctx context.Context, id string) (*model.Category, error)
	// FindByParentAndName looks up a sibling; a nil parentID means root level.
	FindByParentAndName(ctx context.Context, parentID *string, name string) (*model.Category, error)
	FindByParent(ctx context.Context, parentID *string, enabledOnly bool) ([]model.Category, error)
	FindAll(ctx context.Context, enabledOnly bool) ([]model.Category, error)
	// ExistingIDs returns the subset of ids that still exist.
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
	// Search matches name or any keyword.
	Search(ctx context.Context, q TextQuery) ([]model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

// ContentRepository persists content items.
type ContentRepository interface {
	FindByID(ctx context.Context, id string) (*model.Content, error)
	// FindByCategoryAndName returns the oldest match; names are not unique.
	FindByCategoryAndName(ctx context.Context, categoryID *string, name string) (*model.Content, error)
	FindByCategory(ctx context.Context, categoryID *string, enabledOnly bool) ([]model.Content, error)
	// DistinctCategoryIDs lists every non-null categoryId in use.
	DistinctCategoryIDs(ctx context.Context) ([]string, error)
	// Search matches name, description or any keyword.
	Search(ctx context.Context, q TextQuery) ([]model.Content, error)
	Create(ctx context.Context, content *model.Content) error
	Update(ctx context.Context, content *model.Content) error
	Delete(ctx context.Context, id string) error
	// DeleteByCategory removes every item filed under categoryID and
	// returns the removed ids.
	DeleteByCategory(ctx context.Context, categoryID string) ([]string, error)
}

// TreeStore groups the category and content repositories behind one
// optional transaction boundary.
type TreeStore interface {
	Categories() CategoryRepository
	Contents() ContentRepository
	// SupportsTransactions reports whether Transaction is atomic.
	SupportsTransactions() bool
	// Transaction runs fn against a store bound to one transaction. fn must
	// use the ctx and tx it is given. Stores without transactions call fn
	// directly with themselves.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx TreeStore) error) error
}
