package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns genres ordered by name",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createGenre",
		Method:        http.MethodPost,
		Path:          "/api/v1/genres",
		Summary:       "Create genre",
		Description:   "Creates a genre. Admin only.",
		Tags:          []string{"Genres"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateGenre)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteGenre",
		Method:        http.MethodDelete,
		Path:          "/api/v1/genres/{slug}",
		Summary:       "Delete genre",
		Description:   "Deletes a genre and unlinks it from its titles. Admin only.",
		Tags:          []string{"Genres"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteGenre)
}

func (s *Server) handleListGenres(ctx context.Context, input *ListCatalogInput) (*ListCatalogOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Catalog.ListGenres(ctx, id, input.filter())
	if err != nil {
		return nil, err
	}
	return &ListCatalogOutput{Body: newPage(result, genreEntry)}, nil
}

func (s *Server) handleCreateGenre(ctx context.Context, input *CreateCatalogEntryInput) (*CatalogEntryOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	g, err := s.services.Catalog.CreateGenre(ctx, id, input.Body.request())
	if err != nil {
		return nil, err
	}
	return &CatalogEntryOutput{Body: genreEntry(g)}, nil
}

func (s *Server) handleDeleteGenre(ctx context.Context, input *SlugInput) (*struct{}, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteGenre(ctx, id, input.Slug); err != nil {
		return nil, err
	}
	return nil, nil
}
