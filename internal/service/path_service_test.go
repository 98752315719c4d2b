package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathShopToolsHammer(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	categories := NewCategoryService(store, NoopPublisher{}, true)
	contents := NewContentService(store, NoopPublisher{})
	paths := NewPathService(store)

	shop := mustCreateCategory(t, categories, nil, "Shop", true)
	tools := mustCreateCategory(t, categories, &shop.ID, "Tools", true)
	hammer := mustCreateContent(t, contents, &tools.ID, "Hammer", true)

	res, err := paths.ResolvePath(ctx, []string{"Shop", "Tools", "Hammer"}, Anonymous)
	require.NoError(t, err)
	assert.Equal(t, []string{shop.ID, tools.ID}, res.IDs)
	require.NotNil(t, res.Element)
	assert.Equal(t, hammer.ID, res.Element.ID)

	res, err = paths.ResolvePath(ctx, []string{"Shop", "Tools"}, Anonymous)
	require.NoError(t, err)
	assert.Equal(t, []string{shop.ID, tools.ID}, res.IDs)
	assert.Nil(t, res.Element)

	_, err = categories.Delete(ctx, editor, shop.ID)
	require.NoError(t, err)

	_, err = paths.ResolvePath(ctx, []string{"Shop"}, Anonymous)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolvePathRejectsEmptyAndMalformedInput(t *testing.T) {
	paths := NewPathService(newTestStore(t))

	_, err := paths.ResolvePath(context.Background(), nil, admin)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = paths.ResolvePath(context.Background(), []string{"%zz"}, admin)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolvePathDecodesSegments(t *testing.T) {
	store := newTestStore(t)
	categories := NewCategoryService(store, NoopPublisher{}, true)
	power := mustCreateCategory(t, categories, nil, "Power Tools", true)

	res, err := NewPathService(store).ResolvePath(context.Background(), []string{"Power%20Tools"}, Anonymous)
	require.NoError(t, err)
	assert.Equal(t, []string{power.ID}, res.IDs)
}

func TestResolvePathHidesDisabledFromAnonymous(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	categories := NewCategoryService(store, NoopPublisher{}, true)
	contents := NewContentService(store, NoopPublisher{})
	paths := NewPathService(store)

	shop := mustCreateCategory(t, categories, nil, "Shop", true)
	hidden := mustCreateCategory(t, categories, &shop.ID, "Hidden", false)
	mustCreateContent(t, contents, &shop.ID, "Draft", false)

	_, err := paths.ResolvePath(ctx, []string{"Shop", "Hidden"}, Anonymous)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := paths.ResolvePath(ctx, []string{"Shop", "Hidden"}, member)
	require.NoError(t, err)
	assert.Equal(t, []string{shop.ID, hidden.ID}, res.IDs)

	_, err = paths.ResolvePath(ctx, []string{"Shop", "Draft"}, Anonymous)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err = paths.ResolvePath(ctx, []string{"Shop", "Draft"}, member)
	require.NoError(t, err)
	assert.Equal(t, "Draft", res.Element.Name)

	_, err = paths.ResolvePath(ctx, []string{"Shop", "Nowhere"}, member)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveAncestorChain(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	categories := NewCategoryService(store, NoopPublisher{}, true)
	paths := NewPathService(store)

	shop := mustCreateCategory(t, categories, nil, "Shop", true)
	hidden := mustCreateCategory(t, categories, &shop.ID, "Hidden", false)
	leaf := mustCreateCategory(t, categories, &hidden.ID, "Leaf", true)

	chain, err := paths.ResolveAncestorChain(ctx, leaf.ID, member)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, leaf.ID, chain[0].ID)
	assert.Equal(t, hidden.ID, chain[1].ID)
	assert.Equal(t, shop.ID, chain[2].ID)
	assert.Nil(t, chain[2].ParentID)

	chain, err = paths.ResolveAncestorChain(ctx, leaf.ID, Anonymous)
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, "Leaf", chain[0].Name)

	chain, err = paths.ResolveAncestorChain(ctx, uuid.NewString(), member)
	require.NoError(t, err)
	assert.Empty(t, chain)
}
