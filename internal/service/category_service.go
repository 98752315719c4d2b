package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/log"
	"contenthub/pkg/tasks"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// CreateCategoryInput is the body of a category create request.
type CreateCategoryInput struct {
	ParentID *string  `json:"parentId" validate:"omitempty,uuid"`
	Name     string   `json:"name" validate:"min=1,max=32"`
	Image    string   `json:"image"`
	Keywords []string `json:"keywords" validate:"required"`
	Enabled  *bool    `json:"enabled" validate:"required"`
}

// CategoryService manages the category tree.
type CategoryService interface {
	List(ctx context.Context, parentID *string, caller Caller) ([]model.Category, error)
	Tree(ctx context.Context, caller Caller) ([]*model.CategoryNode, error)
	Create(ctx context.Context, caller Caller, in CreateCategoryInput) (*model.Category, error)
	Update(ctx context.Context, caller Caller, id string, patch model.CategoryPatch) (*model.Category, error)
	// Delete removes the category, its whole subtree and every content item
	// filed under it. It returns the record as it was before deletion.
	Delete(ctx context.Context, caller Caller, id string) (*model.Category, error)
}

type categoryService struct {
	store                repository.TreeStore
	events               EventPublisher
	transactionalCascade bool
}

// NewCategoryService creates a CategoryService. When transactionalCascade is
// set and the store supports transactions, deletes are all-or-nothing.
func NewCategoryService(store repository.TreeStore, events EventPublisher, transactionalCascade bool) CategoryService {
	return &categoryService{
		store:                store,
		events:               events,
		transactionalCascade: transactionalCascade,
	}
}

func (s *categoryService) List(ctx context.Context, parentID *string, caller Caller) ([]model.Category, error) {
	categories, err := s.store.Categories().FindByParent(ctx, normalizeID(parentID), !caller.seesDisabled())
	if err != nil {
		return nil, storageError("failed to list categories", err)
	}
	return categories, nil
}

// Tree returns the whole forest. For anonymous callers a disabled category
// hides its entire subtree.
func (s *categoryService) Tree(ctx context.Context, caller Caller) ([]*model.CategoryNode, error) {
	categories, err := s.store.Categories().FindAll(ctx, !caller.seesDisabled())
	if err != nil {
		return nil, storageError("failed to load categories", err)
	}

	nodes := make(map[string]*model.CategoryNode, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &model.CategoryNode{
			Category: &categories[i],
			Children: []*model.CategoryNode{},
		}
	}

	tree := []*model.CategoryNode{}
	for i := range categories {
		node := nodes[categories[i].ID]
		if node.ParentID == nil {
			tree = append(tree, node)
			continue
		}
		// a parent missing from the map was filtered out, so is the child
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return tree, nil
}

func (s *categoryService) Create(ctx context.Context, caller Caller, in CreateCategoryInput) (*model.Category, error) {
	if err := requireTreeEditor(caller); err != nil {
		return nil, err
	}
	in.ParentID = normalizeID(in.ParentID)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		if _, err := s.store.Categories().FindByID(ctx, *in.ParentID); err != nil {
			return nil, lookupError("parent category", err)
		}
	}

	_, err := s.store.Categories().FindByParentAndName(ctx, in.ParentID, in.Name)
	if err == nil {
		return nil, conflict("name already in use under this parent")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storageError("failed to check sibling names", err)
	}

	now := time.Now()
	category := &model.Category{
		ID:        uuid.NewString(),
		ParentID:  in.ParentID,
		Name:      in.Name,
		Image:     in.Image,
		Keywords:  nonNil(in.Keywords),
		Enabled:   *in.Enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("name already in use under this parent")
		}
		return nil, storageError("failed to create category", err)
	}

	publish(ctx, s.events, categoryEvent(tasks.CategoryCreated, category))
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, caller Caller, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := requireTreeEditor(caller); err != nil {
		return nil, err
	}
	category, err := s.store.Categories().FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("category", err)
	}

	if patch.Name.Set {
		if patch.Name.Null {
			return nil, invalidInput("validation failed", FieldError{Field: "name", Message: "must not be null"})
		}
		if err := validateVar("name", patch.Name.Value, "min=1,max=32"); err != nil {
			return nil, err
		}
		sibling, err := s.store.Categories().FindByParentAndName(ctx, category.ParentID, patch.Name.Value)
		switch {
		case err == nil && sibling.ID != category.ID:
			return nil, conflict("name already in use under this parent")
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, storageError("failed to check sibling names", err)
		}
		category.Name = patch.Name.Value
	}
	if patch.Enabled.Set {
		if patch.Enabled.Null {
			return nil, invalidInput("validation failed", FieldError{Field: "enabled", Message: "must not be null"})
		}
		category.Enabled = patch.Enabled.Value
	}
	if patch.Image.Set {
		category.Image = patch.Image.Value
	}
	if patch.Keywords.Set {
		category.Keywords = nonNil(patch.Keywords.Value)
	}
	category.UpdatedAt = time.Now()

	if err := s.store.Categories().Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("name already in use under this parent")
		}
		return nil, storageError("failed to update category", err)
	}

	publish(ctx, s.events, categoryEvent(tasks.CategoryUpdated, category))
	return category, nil
}

// cascadeResult lists what a cascade actually removed.
type cascadeResult struct {
	categories []string
	contents   []string
}

func (s *categoryService) Delete(ctx context.Context, caller Caller, id string) (*model.Category, error) {
	if err := requireTreeEditor(caller); err != nil {
		return nil, err
	}
	target, err := s.store.Categories().FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("category", err)
	}

	var removed cascadeResult
	if s.transactionalCascade && s.store.SupportsTransactions() {
		err = s.store.Transaction(ctx, func(ctx context.Context, tx repository.TreeStore) error {
			var err error
			removed, err = cascadeDelete(ctx, tx, target.ID, true)
			return err
		})
		if err != nil {
			// rolled back, nothing to announce
			return nil, storageError("failed to delete category", err)
		}
	} else {
		removed, err = cascadeDelete(ctx, s.store, target.ID, false)
	}

	for _, contentID := range removed.contents {
		publish(ctx, s.events, tasks.TreeEvent{Type: tasks.ContentDeleted, ID: contentID})
	}
	for _, categoryID := range removed.categories {
		publish(ctx, s.events, tasks.TreeEvent{Type: tasks.CategoryDeleted, ID: categoryID})
	}
	if err != nil {
		return nil, storageError("failed to delete category", err)
	}

	log.Infow("category deleted", "id", target.ID, "categories", len(removed.categories), "contents", len(removed.contents))
	return target, nil
}

// collectSubtree returns rootID and all of its descendants. Every category
// appears after its parent.
func collectSubtree(ctx context.Context, categories repository.CategoryRepository, rootID string) ([]string, error) {
	visited := mapset.NewThreadUnsafeSet[string]()
	order := []string{}
	stack := []string{rootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visited.Add(id) {
			continue
		}
		order = append(order, id)

		children, err := categories.FindByParent(ctx, &id, false)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", id, err)
		}
		for _, child := range children {
			stack = append(stack, child.ID)
		}
	}
	return order, nil
}

// cascadeDelete removes the subtree under rootID bottom-up, the content of
// each category before the category itself and rootID last. With strict
// set the first error aborts. Otherwise content failures are logged and
// collected while the walk continues; a category failure still aborts.
func cascadeDelete(ctx context.Context, store repository.TreeStore, rootID string, strict bool) (cascadeResult, error) {
	var res cascadeResult

	order, err := collectSubtree(ctx, store.Categories(), rootID)
	if err != nil {
		return res, err
	}

	var contentErrs []error
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]

		contentIDs, err := store.Contents().DeleteByCategory(ctx, id)
		if err != nil {
			if strict {
				return res, fmt.Errorf("delete content of category %s: %w", id, err)
			}
			log.Errorf("failed to delete content of category %s: %v", id, err)
			contentErrs = append(contentErrs, fmt.Errorf("delete content of category %s: %w", id, err))
		}
		res.contents = append(res.contents, contentIDs...)

		err = store.Categories().Delete(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("delete category %s: %w", id, err)
		}
		res.categories = append(res.categories, id)
	}

	return res, errors.Join(contentErrs...)
}

// normalizeID maps an empty id to nil, the root level.
func normalizeID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
