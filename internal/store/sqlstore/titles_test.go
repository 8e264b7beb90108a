package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

func TestCreateTitle_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := mustCategory(t, s, "books")
	scifi := mustGenre(t, s, "sci-fi")
	classic := mustGenre(t, s, "classic")

	title := &domain.Title{
		Name:        "Dune",
		Year:        1965,
		Description: "Spice",
		Category:    books,
		Genres:      []domain.Genre{*scifi, *classic},
	}
	require.NoError(t, s.CreateTitle(ctx, title))

	got, err := s.GetTitle(ctx, title.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Name)
	assert.Equal(t, 1965, got.Year)
	assert.Equal(t, "Spice", got.Description)
	require.NotNil(t, got.Category)
	assert.Equal(t, "books", got.Category.Slug)
	assert.Equal(t, []string{"sci-fi", "classic"}, got.GenreSlugs())
	assert.Nil(t, got.Rating, "no reviews means no rating")
}

func TestCreateTitle_UnknownGenreRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	title := &domain.Title{Name: "Ghost", Year: 2000, Genres: []domain.Genre{{ID: 999, Slug: "ghost"}}}
	err := s.CreateTitle(ctx, title)
	assert.ErrorIs(t, err, store.ErrInvalidReference)

	n, err := s.CountTitles(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTitle_RatingIsMeanOfScores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	title := mustTitle(t, s, "Dune", 1965, nil)

	for i, score := range []int{10, 7, 4} {
		u := mustUser(t, s, []string{"a", "b", "c"}[i])
		require.NoError(t, s.CreateReview(ctx, &domain.Review{TitleID: title.ID, AuthorID: u.ID, Text: "x", Score: score}))
	}

	got, err := s.GetTitle(ctx, title.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 7.0, *got.Rating, 1e-9)

	res, err := s.ListTitles(ctx, store.TitleFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.NotNil(t, res.Items[0].Rating)
	assert.InDelta(t, 7.0, *res.Items[0].Rating, 1e-9)
}

func TestDeleteCategory_SetsTitleCategoryNull(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := mustCategory(t, s, "books")
	title := mustTitle(t, s, "Dune", 1965, books)

	require.NoError(t, s.DeleteCategory(ctx, "books"))

	got, err := s.GetTitle(ctx, title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Category)
}

func TestUpdateTitle_ReplacesGenres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	drama := mustGenre(t, s, "drama")
	comedy := mustGenre(t, s, "comedy")
	films := mustCategory(t, s, "films")
	title := mustTitle(t, s, "Film", 2000, nil, drama)

	title.Name = "Film 2"
	title.Category = films
	title.Genres = []domain.Genre{*comedy}
	require.NoError(t, s.UpdateTitle(ctx, title))

	got, err := s.GetTitle(ctx, title.ID)
	require.NoError(t, err)
	assert.Equal(t, "Film 2", got.Name)
	assert.Equal(t, "films", got.Category.Slug)
	assert.Equal(t, []string{"comedy"}, got.GenreSlugs())

	missing := &domain.Title{ID: 999, Name: "x", Year: 1}
	assert.ErrorIs(t, s.UpdateTitle(ctx, missing), store.ErrNotFound)
}

func TestListTitles_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := mustCategory(t, s, "books")
	films := mustCategory(t, s, "films")
	drama := mustGenre(t, s, "drama")
	scifi := mustGenre(t, s, "sci-fi")

	dune := mustTitle(t, s, "Dune", 1965, books, scifi)
	mustTitle(t, s, "Dune", 2021, films, scifi, drama)
	mustTitle(t, s, "Hamlet", 1603, books, drama)

	year := 2021
	tests := []struct {
		name   string
		filter store.TitleFilter
		want   int
	}{
		{name: "no filter", filter: store.TitleFilter{}, want: 3},
		{name: "category", filter: store.TitleFilter{Category: "books"}, want: 2},
		{name: "genre", filter: store.TitleFilter{Genre: "drama"}, want: 2},
		{name: "name substring case-insensitive", filter: store.TitleFilter{Name: "dun"}, want: 2},
		{name: "year", filter: store.TitleFilter{Year: &year}, want: 1},
		{name: "combined", filter: store.TitleFilter{Category: "books", Genre: "sci-fi"}, want: 1},
		{name: "ids", filter: store.TitleFilter{IDs: []int64{dune.ID}}, want: 1},
		{name: "empty ids match nothing", filter: store.TitleFilter{IDs: []int64{}}, want: 0},
		{name: "unknown category", filter: store.TitleFilter{Category: "music"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.ListTitles(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Total)
			assert.Len(t, res.Items, tt.want)
		})
	}
}

func TestDeleteTitle_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	title := mustTitle(t, s, "Dune", 1965, nil, mustGenre(t, s, "sci-fi"))

	r := &domain.Review{TitleID: title.ID, AuthorID: u.ID, Text: "x", Score: 5}
	require.NoError(t, s.CreateReview(ctx, r))
	c := &domain.Comment{ReviewID: r.ID, AuthorID: u.ID, Text: "y"}
	require.NoError(t, s.CreateComment(ctx, c))

	require.NoError(t, s.DeleteTitle(ctx, title.ID))

	_, err := s.GetTitle(ctx, title.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetComment(ctx, r.ID, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	var links int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM genre_titles").Scan(&links))
	assert.Zero(t, links)
}

func TestAddTitleGenre(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := mustGenre(t, s, "drama")
	title := mustTitle(t, s, "Film", 2000, nil)

	require.NoError(t, s.AddTitleGenre(ctx, 50, title.ID, g.ID))
	assert.ErrorIs(t, s.AddTitleGenre(ctx, 0, title.ID, g.ID), store.ErrAlreadyExists)
	assert.ErrorIs(t, s.AddTitleGenre(ctx, 0, 999, g.ID), store.ErrInvalidReference)
}

func TestListTitles_NameFoldsUnicodeCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustTitle(t, s, "Побег из Шоушенка", 1994, nil)
	mustTitle(t, s, "Крестный отец", 1972, nil)

	res, err := s.ListTitles(ctx, store.TitleFilter{Name: "ШОУШЕНК"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Побег из Шоушенка", res.Items[0].Name)
}
