package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

func TestCreateReview_OnePerAuthor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	title := mustTitle(t, s, "Dune", 1965, nil)

	first := &domain.Review{TitleID: title.ID, AuthorID: u.ID, Text: "good", Score: 8}
	require.NoError(t, s.CreateReview(ctx, first))
	assert.False(t, first.PubDate.IsZero())

	exists, err := s.ReviewExists(ctx, title.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	second := &domain.Review{TitleID: title.ID, AuthorID: u.ID, Text: "again", Score: 3}
	assert.ErrorIs(t, s.CreateReview(ctx, second), store.ErrAlreadyExists)

	other := mustTitle(t, s, "Emma", 1815, nil)
	assert.NoError(t, s.CreateReview(ctx, &domain.Review{TitleID: other.ID, AuthorID: u.ID, Text: "ok", Score: 6}))
}

func TestGetReview_ScopedToTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	dune := mustTitle(t, s, "Dune", 1965, nil)
	emma := mustTitle(t, s, "Emma", 1815, nil)

	r := &domain.Review{TitleID: dune.ID, AuthorID: u.ID, Text: "good", Score: 8}
	require.NoError(t, s.CreateReview(ctx, r))

	got, err := s.GetReview(ctx, dune.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.TitleName)
	assert.Equal(t, "alice", got.Author)
	assert.Equal(t, r.PubDate, got.PubDate)

	_, err = s.GetReview(ctx, emma.ID, r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListReviews_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	title := mustTitle(t, s, "Dune", 1965, nil)

	var ids []int64
	for _, name := range []string{"a", "b", "c"} {
		u := mustUser(t, s, name)
		r := &domain.Review{TitleID: title.ID, AuthorID: u.ID, Text: name, Score: 5}
		require.NoError(t, s.CreateReview(ctx, r))
		ids = append(ids, r.ID)
	}

	res, err := s.ListReviews(ctx, title.ID, store.PaginationParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.True(t, res.HasMore)
	require.Len(t, res.Items, 2)
	assert.Equal(t, ids[2], res.Items[0].ID)
	assert.Equal(t, ids[1], res.Items[1].ID)
}

func TestUpdateReview_KeepsPubDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	title := mustTitle(t, s, "Dune", 1965, nil)
	r := &domain.Review{TitleID: title.ID, AuthorID: u.ID, Text: "good", Score: 8}
	require.NoError(t, s.CreateReview(ctx, r))

	r.Text = "better"
	r.Score = 9
	require.NoError(t, s.UpdateReview(ctx, r))

	got, err := s.GetReview(ctx, title.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "better", got.Text)
	assert.Equal(t, 9, got.Score)
	assert.Equal(t, r.PubDate, got.PubDate)
}

func TestComments_ScopedAndOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	title := mustTitle(t, s, "Dune", 1965, nil)
	r1 := &domain.Review{TitleID: title.ID, AuthorID: u.ID, Text: "one", Score: 8}
	require.NoError(t, s.CreateReview(ctx, r1))
	bob := mustUser(t, s, "bob")
	r2 := &domain.Review{TitleID: title.ID, AuthorID: bob.ID, Text: "two", Score: 4}
	require.NoError(t, s.CreateReview(ctx, r2))

	older := &domain.Comment{ReviewID: r1.ID, AuthorID: bob.ID, Text: "first"}
	require.NoError(t, s.CreateComment(ctx, older))
	newer := &domain.Comment{ReviewID: r1.ID, AuthorID: u.ID, Text: "second"}
	require.NoError(t, s.CreateComment(ctx, newer))

	res, err := s.ListComments(ctx, r1.ID, store.DefaultPaginationParams())
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, newer.ID, res.Items[0].ID)
	assert.Equal(t, "bob", res.Items[1].Author)

	other, err := s.ListComments(ctx, r2.ID, store.DefaultPaginationParams())
	require.NoError(t, err)
	assert.Zero(t, other.Total)

	_, err = s.GetComment(ctx, r2.ID, older.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	older.Text = "edited"
	require.NoError(t, s.UpdateComment(ctx, older))
	got, err := s.GetComment(ctx, r1.ID, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)

	require.NoError(t, s.DeleteComment(ctx, older.ID))
	assert.ErrorIs(t, s.DeleteComment(ctx, older.ID), store.ErrNotFound)
}

func TestCreateComment_UnknownReview(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, "alice")

	err := s.CreateComment(context.Background(), &domain.Comment{ReviewID: 999, AuthorID: u.ID, Text: "x"})
	assert.ErrorIs(t, err, store.ErrInvalidReference)
}
