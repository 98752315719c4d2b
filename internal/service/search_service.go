package service

import (
	"context"
	"strings"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/log"
)

const (
	defaultSearchLimit = 10
	defaultMaxLimit    = 100
)

// Search type filters. The empty string searches both kinds.
const (
	SearchTypeAll      = ""
	SearchTypeCategory = model.KindCategory
	SearchTypeContent  = model.KindContent
)

// SearchQuery is a paged substring search over the tree.
type SearchQuery struct {
	Text  string `json:"query"`
	Type  string `json:"type"`
	Page  *int   `json:"page"`
	Limit *int   `json:"limit"`
}

// SearchResult lists categories first, then content. There is no total.
type SearchResult struct {
	Categories []model.Category `json:"categories"`
	Contents   []model.Content  `json:"contents"`
}

// SearchService runs the store-backed search.
type SearchService interface {
	Search(ctx context.Context, q SearchQuery, caller Caller) (*SearchResult, error)
}

type searchService struct {
	store    repository.TreeStore
	maxLimit int
}

func NewSearchService(store repository.TreeStore, maxLimit int) SearchService {
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	return &searchService{store: store, maxLimit: maxLimit}
}

// Search fills one page with matching categories and tops it up with
// content. The content page offset is derived from the space the categories
// left, so content pages shift as the category matches run out.
func (s *searchService) Search(ctx context.Context, q SearchQuery, caller Caller) (*SearchResult, error) {
	page, limit := 0, defaultSearchLimit
	if q.Page != nil {
		page = *q.Page
	}
	if q.Limit != nil {
		limit = *q.Limit
	}

	var fields []FieldError
	if page < 0 {
		fields = append(fields, FieldError{Field: "page", Message: "must not be negative"})
	}
	if limit < 1 || limit > s.maxLimit {
		fields = append(fields, FieldError{Field: "limit", Message: "must be between 1 and the maximum page size"})
	}
	switch q.Type {
	case SearchTypeAll, SearchTypeCategory, SearchTypeContent:
	default:
		fields = append(fields, FieldError{Field: "type", Message: "must be empty, category or content"})
	}
	if len(fields) > 0 {
		return nil, invalidInput("validation failed", fields...)
	}

	text := strings.TrimSpace(q.Text)
	enabledOnly := !caller.seesDisabled()
	result := &SearchResult{Categories: []model.Category{}, Contents: []model.Content{}}

	if q.Type != SearchTypeContent {
		categories, err := s.store.Categories().Search(ctx, repository.TextQuery{
			Text:        text,
			EnabledOnly: enabledOnly,
			Skip:        limit * page,
			Limit:       limit,
		})
		if err != nil {
			return nil, storageError("failed to search categories", err)
		}
		result.Categories = categories
	}

	contentLimit := limit - len(result.Categories)
	if q.Type != SearchTypeCategory && contentLimit > 0 {
		contents, err := s.store.Contents().Search(ctx, repository.TextQuery{
			Text:        text,
			EnabledOnly: enabledOnly,
			Skip:        contentLimit * page,
			Limit:       contentLimit,
		})
		if err != nil {
			return nil, storageError("failed to search content", err)
		}
		result.Contents = contents
	}

	log.Infow("tree search", "query", text, "type", q.Type, "page", page, "limit", limit,
		"categories", len(result.Categories), "contents", len(result.Contents))
	return result, nil
}

// FullTextIndex is the search engine behind FullTextSearcher.
type FullTextIndex interface {
	Search(ctx context.Context, text string, size int, enabledOnly bool) ([]model.SearchHit, error)
}

// FullTextSearcher queries the Elasticsearch index of tree records.
type FullTextSearcher interface {
	Search(ctx context.Context, text string, size int, caller Caller) ([]model.SearchHit, error)
}

type fullTextSearcher struct {
	index    FullTextIndex
	maxLimit int
}

func NewFullTextSearcher(index FullTextIndex, maxLimit int) FullTextSearcher {
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	return &fullTextSearcher{index: index, maxLimit: maxLimit}
}

func (s *fullTextSearcher) Search(ctx context.Context, text string, size int, caller Caller) ([]model.SearchHit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidInput("validation failed", FieldError{Field: "q", Message: "is required"})
	}
	if size == 0 {
		size = defaultSearchLimit
	}
	if size < 1 || size > s.maxLimit {
		return nil, invalidInput("validation failed", FieldError{Field: "size", Message: "must be between 1 and the maximum page size"})
	}

	hits, err := s.index.Search(ctx, text, size, !caller.seesDisabled())
	if err != nil {
		return nil, storageError("full-text search failed", err)
	}
	return hits, nil
}
