package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := Open(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func title(id int64, name, description string) *domain.Title {
	return &domain.Title{
		ID:          id,
		Name:        name,
		Year:        2000,
		Description: description,
		Category:    &domain.Category{Slug: "books"},
		Genres:      []domain.Genre{{Slug: "sci-fi"}, {Slug: "classic"}},
	}
}

func TestNewTitleDocument(t *testing.T) {
	doc := NewTitleDocument(title(42, "Dune", "Spice"))

	assert.Equal(t, "42", doc.ID)
	assert.Equal(t, "books", doc.Category)
	assert.Equal(t, []string{"sci-fi", "classic"}, doc.Genres)

	m := doc.ToMap()
	assert.Equal(t, float64(2000), m["year"])
	assert.Equal(t, "Spice", m["description"])

	bare := NewTitleDocument(&domain.Title{ID: 1, Name: "Untitled"})
	assert.NotContains(t, bare.ToMap(), "category")
	assert.NotContains(t, bare.ToMap(), "genres")
}

func TestOpen_MemoryIndex(t *testing.T) {
	index := setupTestIndex(t)

	assert.True(t, index.Created())
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchTitles(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexTitles([]*TitleDocument{
		NewTitleDocument(title(1, "Dune", "A desert planet and its spice")),
		NewTitleDocument(title(2, "Dune Messiah", "The emperor Paul")),
		NewTitleDocument(title(3, "Emma", "A matchmaker in a village")),
		NewTitleDocument(title(4, "Война и мир", "Роман-эпопея")),
	}))

	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{name: "name match", query: "dune", want: []int64{1, 2}},
		{name: "description match", query: "matchmaker", want: []int64{3}},
		{name: "stemmed description", query: "planets", want: []int64{1}},
		{name: "prefix", query: "mess", want: []int64{2}},
		{name: "typo", query: "emmma", want: []int64{3}},
		{name: "cyrillic", query: "война", want: []int64{4}},
		{name: "no match", query: "zzzz", want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := index.SearchTitles(ctx, tt.query)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestSearchTitles_NameRanksFirst(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexTitle(NewTitleDocument(title(1, "Sands", "A story about a dune"))))
	require.NoError(t, index.IndexTitle(NewTitleDocument(title(2, "Dune", "Spice"))))

	ids, err := index.SearchTitles(context.Background(), "dune")
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, int64(2), ids[0])
}

func TestSearchTitles_EmptyQuery(t *testing.T) {
	index := setupTestIndex(t)

	ids, err := index.SearchTitles(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestIndexTitle_ReplaceAndDelete(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexTitle(NewTitleDocument(title(1, "Dune", ""))))
	require.NoError(t, index.IndexTitle(NewTitleDocument(title(1, "Emma", ""))))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ids, err := index.SearchTitles(ctx, "dune")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, index.DeleteTitle(1))
	require.NoError(t, index.DeleteTitle(99))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRebuild_DropsDocuments(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexTitle(NewTitleDocument(title(1, "Dune", ""))))

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOpen_DiskIndexPersistsAndVersions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search", "titles.bleve")

	index, err := Open(Options{Path: path})
	require.NoError(t, err)
	assert.True(t, index.Created())
	require.NoError(t, index.IndexTitle(NewTitleDocument(title(1, "Dune", ""))))
	require.NoError(t, index.Close())

	index, err = Open(Options{Path: path})
	require.NoError(t, err)
	assert.False(t, index.Created())
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	require.NoError(t, index.Close())

	require.NoError(t, os.WriteFile(path+".version", []byte("0"), 0o644))
	index, err = Open(Options{Path: path})
	require.NoError(t, err)
	defer index.Close()
	assert.True(t, index.Created())
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchTitles_ReturnsEveryPage(t *testing.T) {
	old := searchPageSize
	searchPageSize = 2
	t.Cleanup(func() { searchPageSize = old })

	index := setupTestIndex(t)
	var docs []*TitleDocument
	for i := int64(1); i <= 5; i++ {
		docs = append(docs, NewTitleDocument(title(i, "Dune", "Spice")))
	}
	docs = append(docs, NewTitleDocument(title(6, "Emma", "Village")))
	require.NoError(t, index.IndexTitles(docs))

	ids, err := index.SearchTitles(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids, "equal scores are ordered by id")
}
