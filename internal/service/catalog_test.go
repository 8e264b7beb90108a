package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
)

func TestCatalogService_Categories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.identity(t, "admin", domain.RoleAdmin)

	c, err := f.catalog.CreateCategory(ctx, admin, CatalogEntryRequest{Name: "Books", Slug: "books"})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	_, err = f.catalog.CreateCategory(ctx, admin, CatalogEntryRequest{Name: "Books", Slug: "books-2"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	_, err = f.catalog.CreateCategory(ctx, admin, CatalogEntryRequest{Name: "Films", Slug: "фильмы"})
	assert.Contains(t, fieldErrors(t, err), "slug")

	list, err := f.catalog.ListCategories(ctx, policy.Identity{}, store.CatalogFilter{Search: "boo"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "books", list.Items[0].Slug)

	require.NoError(t, f.catalog.DeleteCategory(ctx, admin, "books"))
	assert.ErrorIs(t, f.catalog.DeleteCategory(ctx, admin, "books"), domainerrors.ErrNotFound)
}

func TestCatalogService_Genres(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.identity(t, "admin", domain.RoleAdmin)

	_, err := f.catalog.CreateGenre(ctx, admin, CatalogEntryRequest{Name: "Drama", Slug: "drama"})
	require.NoError(t, err)

	list, err := f.catalog.ListGenres(ctx, policy.Identity{}, store.CatalogFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	require.NoError(t, f.catalog.DeleteGenre(ctx, admin, "drama"))
	assert.ErrorIs(t, f.catalog.DeleteGenre(ctx, admin, "drama"), domainerrors.ErrNotFound)
}

func TestCatalogService_WritesNeedAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := f.identity(t, "mod", domain.RoleModerator)
	req := CatalogEntryRequest{Name: "Drama", Slug: "drama"}

	_, err := f.catalog.CreateGenre(ctx, policy.Identity{}, req)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	_, err = f.catalog.CreateGenre(ctx, mod, req)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	assert.ErrorIs(t, f.catalog.DeleteCategory(ctx, mod, "missing"), domainerrors.ErrForbidden,
		"permission is checked before the lookup")
}
