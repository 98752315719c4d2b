package service

import (
	"context"
	"errors"
	"net/url"

	"contenthub/internal/model"
	"contenthub/internal/repository"

	mapset "github.com/deckarep/golang-set/v2"
)

// PathResolution is the result of walking a human-readable path. IDs holds
// the category ids in path order; Element is set when the last segment named
// a content item.
type PathResolution struct {
	IDs     []string       `json:"ids"`
	Element *model.Content `json:"element"`
}

// PathService translates between name paths and id chains.
type PathService interface {
	ResolvePath(ctx context.Context, segments []string, caller Caller) (*PathResolution, error)
	ResolveAncestorChain(ctx context.Context, id string, caller Caller) ([]model.AncestorLink, error)
}

type pathService struct {
	store repository.TreeStore
}

func NewPathService(store repository.TreeStore) PathService {
	return &pathService{store: store}
}

// ResolvePath walks segments from the root. A segment that matches no
// category is looked up as a content item in the current category, which
// ends the walk.
func (s *pathService) ResolvePath(ctx context.Context, segments []string, caller Caller) (*PathResolution, error) {
	if len(segments) == 0 {
		return nil, invalidInput("path must contain at least one segment",
			FieldError{Field: "segments", Message: "must not be empty"})
	}

	var parentID *string
	ids := make([]string, 0, len(segments))

	for _, raw := range segments {
		name, err := url.PathUnescape(raw)
		if err != nil {
			return nil, invalidInput("path segment is not valid URL encoding",
				FieldError{Field: "segments", Message: err.Error()})
		}

		category, err := s.store.Categories().FindByParentAndName(ctx, parentID, name)
		if errors.Is(err, repository.ErrNotFound) {
			element, err := s.store.Contents().FindByCategoryAndName(ctx, parentID, name)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("path not found")
			}
			if err != nil {
				return nil, storageError("failed to resolve path", err)
			}
			if !element.Enabled && !caller.seesDisabled() {
				return nil, notFound("path not found")
			}
			return &PathResolution{IDs: ids, Element: element}, nil
		}
		if err != nil {
			return nil, storageError("failed to resolve path", err)
		}
		if !category.Enabled && !caller.seesDisabled() {
			return nil, notFound("path not found")
		}

		ids = append(ids, category.ID)
		id := category.ID
		parentID = &id
	}

	return &PathResolution{IDs: ids}, nil
}

// ResolveAncestorChain walks from id up to its root and returns the visited
// categories, starting with id itself. The walk stops quietly at a missing
// or hidden record.
func (s *pathService) ResolveAncestorChain(ctx context.Context, id string, caller Caller) ([]model.AncestorLink, error) {
	chain := []model.AncestorLink{}
	visited := mapset.NewThreadUnsafeSet[string]()

	next := &id
	for next != nil && visited.Add(*next) {
		category, err := s.store.Categories().FindByID(ctx, *next)
		if errors.Is(err, repository.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, storageError("failed to resolve ancestors", err)
		}
		if !category.Enabled && !caller.seesDisabled() {
			break
		}
		chain = append(chain, model.AncestorLink{
			ID:       category.ID,
			ParentID: category.ParentID,
			Name:     category.Name,
		})
		next = category.ParentID
	}
	return chain, nil
}
