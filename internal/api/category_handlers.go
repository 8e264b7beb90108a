package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/service"
	"github.com/yamdb/yamdb-server/internal/store"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns categories ordered by name",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCategory",
		Method:        http.MethodPost,
		Path:          "/api/v1/categories",
		Summary:       "Create category",
		Description:   "Creates a category. Admin only.",
		Tags:          []string{"Categories"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteCategory",
		Method:        http.MethodDelete,
		Path:          "/api/v1/categories/{slug}",
		Summary:       "Delete category",
		Description:   "Deletes a category. Its titles keep existing without a category. Admin only.",
		Tags:          []string{"Categories"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteCategory)
}

// CatalogEntryRequest is the request body for creating a category or genre.
type CatalogEntryRequest struct {
	Name string `json:"name,omitempty" doc:"Display name"`
	Slug string `json:"slug,omitempty" doc:"Unique slug of latin letters, digits, hyphens and underscores"`
}

func (r CatalogEntryRequest) request() service.CatalogEntryRequest {
	return service.CatalogEntryRequest{Name: r.Name, Slug: r.Slug}
}

// CreateCatalogEntryInput wraps the create request for Huma.
type CreateCatalogEntryInput struct {
	Body CatalogEntryRequest
}

// CatalogEntryOutput wraps a single category or genre.
type CatalogEntryOutput struct {
	Body CatalogEntry
}

// ListCatalogInput contains parameters for listing categories or genres.
type ListCatalogInput struct {
	Search string `query:"search" doc:"Case-insensitive name substring"`
	PageQuery
}

func (in *ListCatalogInput) filter() store.CatalogFilter {
	return store.CatalogFilter{Search: in.Search, PaginationParams: in.params()}
}

// ListCatalogOutput contains a page of categories or genres.
type ListCatalogOutput struct {
	Body Page[CatalogEntry]
}

// SlugInput addresses a category or genre by slug.
type SlugInput struct {
	Slug string `path:"slug" doc:"Slug"`
}

func (s *Server) handleListCategories(ctx context.Context, input *ListCatalogInput) (*ListCatalogOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Catalog.ListCategories(ctx, id, input.filter())
	if err != nil {
		return nil, err
	}
	return &ListCatalogOutput{Body: newPage(result, categoryEntry)}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCatalogEntryInput) (*CatalogEntryOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Catalog.CreateCategory(ctx, id, input.Body.request())
	if err != nil {
		return nil, err
	}
	return &CatalogEntryOutput{Body: categoryEntry(c)}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *SlugInput) (*struct{}, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteCategory(ctx, id, input.Slug); err != nil {
		return nil, err
	}
	return nil, nil
}
