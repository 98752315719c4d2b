package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"contenthub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSearchTree(t *testing.T) SearchService {
	t.Helper()
	store := newTestStore(t)
	categories := NewCategoryService(store, NoopPublisher{}, true)
	contents := NewContentService(store, NoopPublisher{})
	for i := 0; i < 3; i++ {
		mustCreateCategory(t, categories, nil, fmt.Sprintf("Tool cat %d", i), true)
	}
	mustCreateCategory(t, categories, nil, "Hidden tool", false)
	for i := 0; i < 5; i++ {
		mustCreateContent(t, contents, nil, fmt.Sprintf("Tool item %d", i), true)
	}
	mustCreateContent(t, contents, nil, "Unrelated", true)
	return NewSearchService(store, 100)
}

func TestSearchFillsPageWithCategoriesFirst(t *testing.T) {
	svc := seedSearchTree(t)

	res, err := svc.Search(context.Background(), SearchQuery{Text: "TOOL", Limit: intPtr(4)}, Anonymous)
	require.NoError(t, err)
	assert.Len(t, res.Categories, 3)
	assert.Len(t, res.Contents, 1)

	res, err = svc.Search(context.Background(), SearchQuery{Text: "tool", Limit: intPtr(4)}, member)
	require.NoError(t, err)
	assert.Len(t, res.Categories, 4)
	assert.Empty(t, res.Contents)
}

func TestSearchSecondPageUsesContentOffset(t *testing.T) {
	svc := seedSearchTree(t)

	// categories skip 4 and find none, so content gets the whole page at offset 4
	res, err := svc.Search(context.Background(), SearchQuery{Text: "tool", Page: intPtr(1), Limit: intPtr(4)}, Anonymous)
	require.NoError(t, err)
	assert.Empty(t, res.Categories)
	assert.Len(t, res.Contents, 1)
}

func TestSearchTypeFilter(t *testing.T) {
	svc := seedSearchTree(t)

	res, err := svc.Search(context.Background(), SearchQuery{Text: "tool", Type: "content"}, Anonymous)
	require.NoError(t, err)
	assert.Empty(t, res.Categories)
	assert.Len(t, res.Contents, 5)

	res, err = svc.Search(context.Background(), SearchQuery{Text: "tool", Type: "category"}, Anonymous)
	require.NoError(t, err)
	assert.Len(t, res.Categories, 3)
	assert.Empty(t, res.Contents)

	_, err = svc.Search(context.Background(), SearchQuery{Text: "tool", Type: "image"}, Anonymous)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSearchValidatesPaging(t *testing.T) {
	svc := seedSearchTree(t)
	for _, q := range []SearchQuery{
		{Limit: intPtr(0)},
		{Limit: intPtr(101)},
		{Page: intPtr(-1)},
	} {
		_, err := svc.Search(context.Background(), q, Anonymous)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

type stubIndex struct {
	hits        []model.SearchHit
	err         error
	enabledOnly bool
}

func (s *stubIndex) Search(_ context.Context, _ string, _ int, enabledOnly bool) ([]model.SearchHit, error) {
	s.enabledOnly = enabledOnly
	return s.hits, s.err
}

func TestFullTextSearcher(t *testing.T) {
	idx := &stubIndex{hits: []model.SearchHit{{SearchDocument: model.SearchDocument{ID: "1", Name: "Hammer"}, Score: 2}}}
	svc := NewFullTextSearcher(idx, 100)

	hits, err := svc.Search(context.Background(), "hammer", 0, Anonymous)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.True(t, idx.enabledOnly)

	_, err = svc.Search(context.Background(), "hammer", 5, member)
	require.NoError(t, err)
	assert.False(t, idx.enabledOnly)

	_, err = svc.Search(context.Background(), "  ", 5, member)
	assert.ErrorIs(t, err, ErrInvalidInput)

	idx.err = errors.New("cluster down")
	_, err = svc.Search(context.Background(), "hammer", 5, member)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestSearchMatchesKeywordsNotTheirEncoding(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	categories := NewCategoryService(store, NoopPublisher{}, true)
	for name, keywords := range map[string][]string{
		"Shop": {"tools"},
		"Lab":  {"R&D", "a<b"},
	} {
		_, err := categories.Create(ctx, editor, CreateCategoryInput{Name: name, Keywords: keywords, Enabled: boolPtr(true)})
		require.NoError(t, err)
	}
	svc := NewSearchService(store, 100)

	names := func(text string) []string {
		res, err := svc.Search(ctx, SearchQuery{Text: text}, admin)
		require.NoError(t, err)
		out := []string{}
		for _, c := range res.Categories {
			out = append(out, c.Name)
		}
		return out
	}

	assert.Empty(t, names(`[`))
	assert.Empty(t, names(`"`))
	assert.Empty(t, names(`","`))
	assert.Equal(t, []string{"Lab"}, names(`&`))
	assert.Equal(t, []string{"Lab"}, names(`<`))
}
