package service

import (
	"context"
	"errors"
	"testing"

	"catalog-annotations/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetail(t *testing.T, f *listFixture, owner, name string) *DetailProjection {
	t.Helper()
	p, err := NewDetailProjection(f.catalog, f.svc, f.toggles, owner, name, NewMockLogger())
	require.NoError(t, err)
	return p
}

func TestDetailProjection_LoadsItemAndAnnotations(t *testing.T) {
	f := newListFixture()
	ctx := context.Background()
	fav, err := f.svc.Create(ctx, &domain.Annotation{OwnerID: "u1", SubjectName: "Agumon", Kind: domain.AnnotationFavorite})
	require.NoError(t, err)

	p := newTestDetail(t, f, "u1", "Agumon")
	state, err := p.Load(ctx)
	require.NoError(t, err)

	assert.False(t, state.Loading)
	require.NotNil(t, state.Item)
	assert.Equal(t, "Rookie", state.Item.Level)
	require.NotNil(t, state.Favorite)
	assert.Equal(t, fav.ID, state.Favorite.ID)
	assert.Nil(t, state.Dislike)
}

func TestDetailProjection_CatalogFailure(t *testing.T) {
	f := newListFixture()

	p := newTestDetail(t, f, "u1", "Missingmon")
	state, err := p.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogItemNotFound)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Item)
	assert.NotEmpty(t, state.Error)
	assert.Nil(t, state.Favorite)
}

func TestDetailProjection_LookupFailureShowsOff(t *testing.T) {
	f := newListFixture()
	ctx := context.Background()
	_, err := f.svc.Create(ctx, &domain.Annotation{OwnerID: "u1", SubjectName: "Agumon", Kind: domain.AnnotationDislike})
	require.NoError(t, err)
	f.store.set(func(s *flakyStore) { s.failQuery = true })

	p := newTestDetail(t, f, "u1", "Agumon")
	state, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, state.Dislike)
}

func TestDetailProjection_ToggleRoundTrip(t *testing.T) {
	f := newListFixture()
	ctx := context.Background()

	p := newTestDetail(t, f, "u1", "Agumon")
	_, err := p.Load(ctx)
	require.NoError(t, err)

	state, err := p.ToggleFavorite(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.Favorite)
	assert.NotEmpty(t, state.Favorite.ID)

	state, err = p.ToggleDislike(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.Dislike)

	state, err = p.ToggleFavorite(ctx)
	require.NoError(t, err)
	assert.Nil(t, state.Favorite)
	assert.NotNil(t, state.Dislike)
	assert.Equal(t, 0, f.store.Count(domain.AnnotationFavorite, "u1", "Agumon"))
}

func TestDetailProjection_ToggleFailureKeepsState(t *testing.T) {
	f := newListFixture()
	ctx := context.Background()

	p := newTestDetail(t, f, "u1", "Agumon")
	_, err := p.Load(ctx)
	require.NoError(t, err)
	before, err := p.ToggleFavorite(ctx)
	require.NoError(t, err)

	f.store.set(func(s *flakyStore) { s.failDelete = true })
	after, err := p.ToggleFavorite(ctx)
	assert.True(t, errors.Is(err, domain.ErrRemoteUnavailable))
	assert.Equal(t, before.Favorite, after.Favorite)
	assert.Equal(t, before.Favorite, p.State().Favorite)
}

func TestNewDetailProjection_Validates(t *testing.T) {
	f := newListFixture()

	_, err := NewDetailProjection(f.catalog, f.svc, f.toggles, "", "Agumon", NewMockLogger())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	var validation *domain.ValidationError
	_, err = NewDetailProjection(f.catalog, f.svc, f.toggles, "u1", " ", NewMockLogger())
	assert.ErrorAs(t, err, &validation)
}

func TestDetailProjection_ToggleAfterFailedLookupKeepsOneRecord(t *testing.T) {
	f := newListFixture()
	ctx := context.Background()
	existing, err := f.store.MemoryAnnotationStore.Insert(ctx, &domain.Annotation{OwnerID: "u1", SubjectName: "Agumon", Kind: domain.AnnotationFavorite})
	require.NoError(t, err)

	f.store.set(func(s *flakyStore) { s.failQuery = true })
	p := newTestDetail(t, f, "u1", "Agumon")
	state, err := p.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, state.Favorite, "failed lookup shows off")

	f.store.set(func(s *flakyStore) { s.failQuery = false })
	state, err = p.ToggleFavorite(ctx)
	require.NoError(t, err)

	require.NotNil(t, state.Favorite)
	assert.Equal(t, existing.ID, state.Favorite.ID)
	assert.Equal(t, 1, f.store.Count(domain.AnnotationFavorite, "u1", "Agumon"))
}
