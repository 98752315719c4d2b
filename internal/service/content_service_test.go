package service

import (
	"context"
	"testing"

	"contenthub/internal/model"
	"contenthub/pkg/tasks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContentChecksRoleAndCategory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewContentService(store, NoopPublisher{})
	in := CreateContentInput{Name: "Hammer", Keywords: []string{}, Enabled: boolPtr(true)}

	_, err := svc.Create(ctx, member, in)
	assert.ErrorIs(t, err, ErrForbidden)

	missing := uuid.NewString()
	in.CategoryID = &missing
	_, err = svc.Create(ctx, editor, in)
	assert.ErrorIs(t, err, ErrNotFound)

	in.CategoryID = nil
	in.Name = "seventeen chars!!"
	_, err = svc.Create(ctx, editor, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateContentAllowsDuplicateNames(t *testing.T) {
	svc := NewContentService(newTestStore(t), NoopPublisher{})
	a := mustCreateContent(t, svc, nil, "Hammer", true)
	b := mustCreateContent(t, svc, nil, "Hammer", true)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, []string{}, a.Checklist)
}

func TestUpdateContentByAnyAuthenticatedUser(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewContentService(newTestStore(t), pub)
	c, err := svc.Create(ctx, editor, CreateContentInput{
		Name:        "Hammer",
		Keywords:    []string{"tool"},
		Enabled:     boolPtr(true),
		Checklist:   []string{"grip"},
		Description: "steel",
		Video:       "hammer.mp4",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, Anonymous, c.ID, model.ContentPatch{Name: model.Some("Mallet")})
	assert.ErrorIs(t, err, ErrUnauthorized)

	updated, err := svc.Update(ctx, member, c.ID, model.ContentPatch{
		Enabled:     model.Some(false),
		Description: model.Null[string](),
		Checklist:   model.Some([]string{"grip", "head"}),
	})
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, []string{"grip", "head"}, updated.Checklist)
	assert.Equal(t, "Hammer", updated.Name)
	assert.Equal(t, "hammer.mp4", updated.Video)
	assert.Equal(t, []string{"tool"}, updated.Keywords)

	stored, err := svc.Get(ctx, c.ID, member)
	require.NoError(t, err)
	assert.Equal(t, updated.Checklist, stored.Checklist)

	_, err = svc.Get(ctx, c.ID, Anonymous)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{c.ID}, pub.ofType(tasks.ContentUpdated))
}

func TestDeleteContentReturnsPreviousRecord(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewContentService(newTestStore(t), pub)
	c := mustCreateContent(t, svc, nil, "Hammer", true)

	_, err := svc.Delete(ctx, Anonymous, c.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	deleted, err := svc.Delete(ctx, member, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", deleted.Name)
	assert.Equal(t, []string{c.ID}, pub.ofType(tasks.ContentDeleted))

	_, err = svc.Delete(ctx, member, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListContentsFiltersDisabled(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	categories := NewCategoryService(store, NoopPublisher{}, true)
	svc := NewContentService(store, NoopPublisher{})
	shop := mustCreateCategory(t, categories, nil, "Shop", true)
	mustCreateContent(t, svc, &shop.ID, "On", true)
	mustCreateContent(t, svc, &shop.ID, "Off", false)
	mustCreateContent(t, svc, nil, "Loose", true)

	visible, err := svc.List(ctx, &shop.ID, Anonymous)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "On", visible[0].Name)

	all, err := svc.List(ctx, &shop.ID, member)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	loose, err := svc.List(ctx, nil, Anonymous)
	require.NoError(t, err)
	assert.Len(t, loose, 1)
}
