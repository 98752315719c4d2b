package service

import (
	"context"
	"time"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/tasks"

	"github.com/google/uuid"
)

// CreateContentInput is the body of a content create request.
type CreateContentInput struct {
	CategoryID  *string  `json:"categoryId" validate:"omitempty,uuid"`
	Name        string   `json:"name" validate:"min=1,max=16"`
	Image       string   `json:"image"`
	Keywords    []string `json:"keywords" validate:"required"`
	Enabled     *bool    `json:"enabled" validate:"required"`
	Checklist   []string `json:"checklist"`
	Description string   `json:"description"`
	Video       string   `json:"video"`
}

// ContentService manages the leaf items of the tree.
//
// Creating content needs ADMIN or EDITOR, while any authenticated account
// may update or delete it.
type ContentService interface {
	List(ctx context.Context, categoryID *string, caller Caller) ([]model.Content, error)
	Get(ctx context.Context, id string, caller Caller) (*model.Content, error)
	Create(ctx context.Context, caller Caller, in CreateContentInput) (*model.Content, error)
	Update(ctx context.Context, caller Caller, id string, patch model.ContentPatch) (*model.Content, error)
	Delete(ctx context.Context, caller Caller, id string) (*model.Content, error)
}

type contentService struct {
	store  repository.TreeStore
	events EventPublisher
}

func NewContentService(store repository.TreeStore, events EventPublisher) ContentService {
	return &contentService{store: store, events: events}
}

func (s *contentService) List(ctx context.Context, categoryID *string, caller Caller) ([]model.Content, error) {
	contents, err := s.store.Contents().FindByCategory(ctx, normalizeID(categoryID), !caller.seesDisabled())
	if err != nil {
		return nil, storageError("failed to list content", err)
	}
	return contents, nil
}

func (s *contentService) Get(ctx context.Context, id string, caller Caller) (*model.Content, error) {
	content, err := s.store.Contents().FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("content", err)
	}
	if !content.Enabled && !caller.seesDisabled() {
		return nil, notFound("content not found")
	}
	return content, nil
}

func (s *contentService) Create(ctx context.Context, caller Caller, in CreateContentInput) (*model.Content, error) {
	if err := requireTreeEditor(caller); err != nil {
		return nil, err
	}
	in.CategoryID = normalizeID(in.CategoryID)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if in.CategoryID != nil {
		if _, err := s.store.Categories().FindByID(ctx, *in.CategoryID); err != nil {
			return nil, lookupError("category", err)
		}
	}

	now := time.Now()
	content := &model.Content{
		ID:          uuid.NewString(),
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Image:       in.Image,
		Keywords:    nonNil(in.Keywords),
		Enabled:     *in.Enabled,
		Checklist:   nonNil(in.Checklist),
		Description: in.Description,
		Video:       in.Video,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Contents().Create(ctx, content); err != nil {
		return nil, storageError("failed to create content", err)
	}

	publish(ctx, s.events, contentEvent(tasks.ContentCreated, content))
	return content, nil
}

func (s *contentService) Update(ctx context.Context, caller Caller, id string, patch model.ContentPatch) (*model.Content, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	content, err := s.store.Contents().FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("content", err)
	}

	if patch.Name.Set {
		if patch.Name.Null {
			return nil, invalidInput("validation failed", FieldError{Field: "name", Message: "must not be null"})
		}
		if err := validateVar("name", patch.Name.Value, "min=1,max=16"); err != nil {
			return nil, err
		}
		content.Name = patch.Name.Value
	}
	if patch.Enabled.Set {
		if patch.Enabled.Null {
			return nil, invalidInput("validation failed", FieldError{Field: "enabled", Message: "must not be null"})
		}
		content.Enabled = patch.Enabled.Value
	}
	if patch.Image.Set {
		content.Image = patch.Image.Value
	}
	if patch.Keywords.Set {
		content.Keywords = nonNil(patch.Keywords.Value)
	}
	if patch.Checklist.Set {
		content.Checklist = nonNil(patch.Checklist.Value)
	}
	if patch.Description.Set {
		content.Description = patch.Description.Value
	}
	if patch.Video.Set {
		content.Video = patch.Video.Value
	}
	content.UpdatedAt = time.Now()

	if err := s.store.Contents().Update(ctx, content); err != nil {
		return nil, storageError("failed to update content", err)
	}

	publish(ctx, s.events, contentEvent(tasks.ContentUpdated, content))
	return content, nil
}

func (s *contentService) Delete(ctx context.Context, caller Caller, id string) (*model.Content, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	content, err := s.store.Contents().FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("content", err)
	}
	if err := s.store.Contents().Delete(ctx, id); err != nil {
		return nil, lookupError("content", err)
	}

	publish(ctx, s.events, tasks.TreeEvent{Type: tasks.ContentDeleted, ID: id})
	return content, nil
}
