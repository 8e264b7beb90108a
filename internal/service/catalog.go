package service

import (
	"context"
	"log/slog"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// CatalogService manages categories and genres.
type CatalogService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, validator *validation.Validator, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, validator: validator, logger: discardIfNil(logger)}
}

// CatalogEntryRequest creates a category or a genre.
type CatalogEntryRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,slug"`
}

// ListCategories returns categories, optionally filtered by name substring.
func (s *CatalogService) ListCategories(ctx context.Context, id policy.Identity, f store.CatalogFilter) (*store.PaginatedResult[domain.Category], error) {
	if err := policy.Catalog(id, policy.Read); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, f)
}

// CreateCategory adds a category.
func (s *CatalogService) CreateCategory(ctx context.Context, id policy.Identity, req CatalogEntryRequest) (*domain.Category, error) {
	if err := policy.Catalog(id, policy.Create); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	c := &domain.Category{Name: req.Name, Slug: req.Slug}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, alreadyExists(err, "a category with this name or slug already exists")
	}
	s.logger.Info("category created", "slug", c.Slug, "by", id.Username)
	return c, nil
}

// DeleteCategory removes a category; its titles lose their category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id policy.Identity, slug string) error {
	if err := policy.Catalog(id, policy.Delete); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, slug); err != nil {
		return notFound(err, "category not found")
	}
	s.logger.Info("category deleted", "slug", slug, "by", id.Username)
	return nil
}

// ListGenres returns genres, optionally filtered by name substring.
func (s *CatalogService) ListGenres(ctx context.Context, id policy.Identity, f store.CatalogFilter) (*store.PaginatedResult[domain.Genre], error) {
	if err := policy.Catalog(id, policy.Read); err != nil {
		return nil, err
	}
	return s.store.ListGenres(ctx, f)
}

// CreateGenre adds a genre.
func (s *CatalogService) CreateGenre(ctx context.Context, id policy.Identity, req CatalogEntryRequest) (*domain.Genre, error) {
	if err := policy.Catalog(id, policy.Create); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	g := &domain.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.store.CreateGenre(ctx, g); err != nil {
		return nil, alreadyExists(err, "a genre with this name or slug already exists")
	}
	s.logger.Info("genre created", "slug", g.Slug, "by", id.Username)
	return g, nil
}

// DeleteGenre removes a genre and its title links.
func (s *CatalogService) DeleteGenre(ctx context.Context, id policy.Identity, slug string) error {
	if err := policy.Catalog(id, policy.Delete); err != nil {
		return err
	}
	if err := s.store.DeleteGenre(ctx, slug); err != nil {
		return notFound(err, "genre not found")
	}
	s.logger.Info("genre deleted", "slug", slug, "by", id.Username)
	return nil
}
