package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/search"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// TitleIndex is the full-text index kept in sync with stored titles.
type TitleIndex interface {
	IndexTitle(doc *search.TitleDocument) error
	IndexTitles(docs []*search.TitleDocument) error
	DeleteTitle(titleID int64) error
	SearchTitles(ctx context.Context, text string) ([]int64, error)
	DocumentCount() (uint64, error)
	Rebuild() error
}

// TitleService manages titles and their search index entries.
type TitleService struct {
	store     store.Store
	index     TitleIndex
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTitleService creates a new title service.
func NewTitleService(store store.Store, index TitleIndex, validator *validation.Validator, logger *slog.Logger) *TitleService {
	return &TitleService{store: store, index: index, validator: validator, logger: discardIfNil(logger)}
}

// TitleFilter narrows List. Search is a full-text query over name and
// description; the other fields match the store filter.
type TitleFilter struct {
	Category string
	Genre    string
	Name     string
	Year     *int
	Search   string
	store.PaginationParams
}

// CreateTitleRequest creates a title. Category and genres are slugs.
type CreateTitleRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int      `json:"year" validate:"gte=0,notfuture"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"omitempty,slug"`
	Genre       []string `json:"genre" validate:"dive,slug"`
}

// UpdateTitleRequest is a partial update. Nil fields are left unchanged; a
// non-nil Genre replaces the genre set and an empty Category clears it.
type UpdateTitleRequest struct {
	Name        *string   `json:"name" validate:"omitnil,required,max=256"`
	Year        *int      `json:"year" validate:"omitnil,gte=0,notfuture"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" validate:"omitnil"`
	Genre       *[]string `json:"genre" validate:"omitnil,dive,slug"`
}

// List returns titles ordered by id.
func (s *TitleService) List(ctx context.Context, id policy.Identity, f TitleFilter) (*store.PaginatedResult[domain.Title], error) {
	if err := policy.Catalog(id, policy.Read); err != nil {
		return nil, err
	}

	sf := store.TitleFilter{
		Category:         f.Category,
		Genre:            f.Genre,
		Name:             f.Name,
		Year:             f.Year,
		PaginationParams: f.PaginationParams,
	}
	if strings.TrimSpace(f.Search) != "" {
		ids, err := s.index.SearchTitles(ctx, f.Search)
		if err != nil {
			return nil, fmt.Errorf("search titles: %w", err)
		}
		if ids == nil {
			ids = []int64{}
		}
		sf.IDs = ids
	}
	return s.store.ListTitles(ctx, sf)
}

// Get returns a title with its computed rating.
func (s *TitleService) Get(ctx context.Context, id policy.Identity, titleID int64) (*domain.Title, error) {
	if err := policy.Catalog(id, policy.Read); err != nil {
		return nil, err
	}
	t, err := s.store.GetTitle(ctx, titleID)
	if err != nil {
		return nil, notFound(err, "title not found")
	}
	return t, nil
}

// Create adds a title.
func (s *TitleService) Create(ctx context.Context, id policy.Identity, req CreateTitleRequest) (*domain.Title, error) {
	if err := policy.Catalog(id, policy.Create); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	t := &domain.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Category:    category,
		Genres:      genres,
	}
	if err := s.store.CreateTitle(ctx, t); err != nil {
		return nil, fmt.Errorf("create title: %w", err)
	}

	s.logger.Info("title created", "title_id", t.ID, "by", id.Username)
	return s.reloadAndIndex(ctx, t.ID)
}

// Update applies a partial update.
func (s *TitleService) Update(ctx context.Context, id policy.Identity, titleID int64, req UpdateTitleRequest) (*domain.Title, error) {
	if err := policy.Catalog(id, policy.Update); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Category != nil && *req.Category != "" {
		if err := validation.ValidateSlugField("category", *req.Category); err != nil {
			return nil, err
		}
	}

	t, err := s.store.GetTitle(ctx, titleID)
	if err != nil {
		return nil, notFound(err, "title not found")
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Year != nil {
		t.Year = *req.Year
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		if t.Category, err = s.resolveCategory(ctx, *req.Category); err != nil {
			return nil, err
		}
	}
	if req.Genre != nil {
		if t.Genres, err = s.resolveGenres(ctx, *req.Genre); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateTitle(ctx, t); err != nil {
		return nil, notFound(err, "title not found")
	}

	s.logger.Info("title updated", "title_id", t.ID, "by", id.Username)
	return s.reloadAndIndex(ctx, t.ID)
}

// Delete removes a title with its reviews and comments.
func (s *TitleService) Delete(ctx context.Context, id policy.Identity, titleID int64) error {
	if err := policy.Catalog(id, policy.Delete); err != nil {
		return err
	}
	if err := s.store.DeleteTitle(ctx, titleID); err != nil {
		return notFound(err, "title not found")
	}
	if err := s.index.DeleteTitle(titleID); err != nil {
		s.logger.Warn("failed to remove title from search index", "title_id", titleID, "error", err)
	}
	s.logger.Info("title deleted", "title_id", titleID, "by", id.Username)
	return nil
}

// Reindex rebuilds the search index from the store and returns the number
// of titles indexed.
func (s *TitleService) Reindex(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	p := store.PaginationParams{Page: 1, PageSize: store.MaxPageSize}
	indexed := 0
	for {
		page, err := s.store.ListTitles(ctx, store.TitleFilter{PaginationParams: p})
		if err != nil {
			return indexed, fmt.Errorf("list titles: %w", err)
		}

		docs := make([]*search.TitleDocument, len(page.Items))
		for i := range page.Items {
			docs[i] = search.NewTitleDocument(&page.Items[i])
		}
		if err := s.index.IndexTitles(docs); err != nil {
			return indexed, err
		}
		indexed += len(docs)

		if !page.HasMore {
			break
		}
		p.Page++
	}

	s.logger.Info("search index rebuilt", "titles", indexed)
	return indexed, nil
}

// EnsureIndex reindexes when the index is empty but titles exist, as after a
// first start or a mapping version change.
func (s *TitleService) EnsureIndex(ctx context.Context) error {
	docs, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count indexed titles: %w", err)
	}
	if docs > 0 {
		return nil
	}
	titles, err := s.store.CountTitles(ctx)
	if err != nil {
		return fmt.Errorf("count titles: %w", err)
	}
	if titles == 0 {
		return nil
	}
	_, err = s.Reindex(ctx)
	return err
}

func (s *TitleService) reloadAndIndex(ctx context.Context, titleID int64) (*domain.Title, error) {
	t, err := s.store.GetTitle(ctx, titleID)
	if err != nil {
		return nil, fmt.Errorf("reload title: %w", err)
	}
	// The store is authoritative; a stale index entry is repaired by reindex.
	if err := s.index.IndexTitle(search.NewTitleDocument(t)); err != nil {
		s.logger.Warn("failed to index title", "title_id", t.ID, "error", err)
	}
	return t, nil
}

func (s *TitleService) resolveCategory(ctx context.Context, slug string) (*domain.Category, error) {
	if slug == "" {
		return nil, nil
	}
	c, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.FieldError("category", fmt.Sprintf("category %q does not exist", slug))
		}
		return nil, err
	}
	return c, nil
}

func (s *TitleService) resolveGenres(ctx context.Context, slugs []string) ([]domain.Genre, error) {
	genres, err := s.store.GetGenresBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(genres))
	for _, g := range genres {
		found[g.Slug] = true
	}
	for _, slug := range slugs {
		if !found[slug] {
			return nil, domainerrors.FieldError("genre", fmt.Sprintf("genre %q does not exist", slug))
		}
	}
	return genres, nil
}
