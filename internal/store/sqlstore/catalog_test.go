package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

func TestCategories_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := mustCategory(t, s, "books")
	assert.NotZero(t, c.ID)

	got, err := s.GetCategoryBySlug(ctx, "books")
	require.NoError(t, err)
	assert.Equal(t, *c, *got)

	err = s.CreateCategory(ctx, &domain.Category{Name: "Other", Slug: "books"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	err = s.CreateCategory(ctx, &domain.Category{Name: c.Name, Slug: "other"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, s.DeleteCategory(ctx, "books"))
	_, err = s.GetCategoryBySlug(ctx, "books")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCategory(ctx, "books"), store.ErrNotFound)
}

func TestListCategories_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateCategory(ctx, &domain.Category{Name: "Films", Slug: "films"}))
	require.NoError(t, s.CreateCategory(ctx, &domain.Category{Name: "Books", Slug: "books"}))
	require.NoError(t, s.CreateCategory(ctx, &domain.Category{Name: "Music", Slug: "music"}))

	res, err := s.ListCategories(ctx, store.CatalogFilter{Search: "o"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "books", res.Items[0].Slug)

	res, err = s.ListCategories(ctx, store.CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "films", res.Items[0].Slug, "ordered by id")
}

func TestListCatalog_SearchFoldsUnicodeCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateGenre(ctx, &domain.Genre{Name: "Драма", Slug: "drama"}))
	require.NoError(t, s.CreateGenre(ctx, &domain.Genre{Name: "Комедия", Slug: "comedy"}))

	for _, q := range []string{"драм", "ДРАМА", "дРаМ"} {
		res, err := s.ListGenres(ctx, store.CatalogFilter{Search: q})
		require.NoError(t, err)
		require.Equal(t, 1, res.Total, "search %q", q)
		assert.Equal(t, "drama", res.Items[0].Slug)
	}

	res, err := s.ListGenres(ctx, store.CatalogFilter{Search: "%"})
	require.NoError(t, err)
	assert.Zero(t, res.Total, "wildcards stay escaped")
}

func TestGenres_BySlugs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustGenre(t, s, "drama")
	mustGenre(t, s, "comedy")
	mustGenre(t, s, "horror")

	got, err := s.GetGenresBySlugs(ctx, []string{"horror", "missing", "drama", "horror"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "horror", got[0].Slug)
	assert.Equal(t, "drama", got[1].Slug)

	empty, err := s.GetGenresBySlugs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteGenre_RemovesLinksOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	drama := mustGenre(t, s, "drama")
	comedy := mustGenre(t, s, "comedy")
	title := mustTitle(t, s, "Film", 2000, nil, drama, comedy)

	require.NoError(t, s.DeleteGenre(ctx, "drama"))

	got, err := s.GetTitle(ctx, title.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"comedy"}, got.GenreSlugs())

	res, err := s.ListGenres(ctx, store.CatalogFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}
