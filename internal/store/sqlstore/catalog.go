package sqlstore

import (
	"context"
	"fmt"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

// Categories and genres share the (id, name, slug) shape.

type namedRow struct {
	ID   int64
	Name string
	Slug string
}

func (s *Store) createNamed(ctx context.Context, table string, r *namedRow) error {
	cols := "name, slug"
	args := []any{r.Name, r.Slug}
	if r.ID != 0 {
		cols = "id, " + cols
		args = append([]any{r.ID}, args...)
	}
	id, err := s.insert(ctx, `INSERT INTO `+table+` (`+cols+`) VALUES (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (s *Store) getNamedBySlug(ctx context.Context, table, slug string) (*namedRow, error) {
	var r namedRow
	err := s.queryRow(ctx, `SELECT id, name, slug FROM `+table+` WHERE slug = ?`, slug).Scan(&r.ID, &r.Name, &r.Slug)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) deleteNamed(ctx context.Context, table, slug string) error {
	res, err := s.exec(ctx, `DELETE FROM `+table+` WHERE slug = ?`, slug)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (s *Store) listNamed(ctx context.Context, table string, f store.CatalogFilter) ([]namedRow, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		conds = append(conds, s.dialect.ilike("name"))
		args = append(args, likePattern(f.Search))
	}
	where := whereClause(conds)

	total, err := s.count(ctx, `SELECT COUNT(*) FROM `+table+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}

	rows, err := s.query(ctx,
		`SELECT id, name, slug FROM `+table+where+` ORDER BY id LIMIT ? OFFSET ?`,
		append(args, f.PageSize, f.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []namedRow
	for rows.Next() {
		var r namedRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// CreateCategory inserts a category.
// Returns store.ErrAlreadyExists if the name or slug is taken.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	r := namedRow{ID: c.ID, Name: c.Name, Slug: c.Slug}
	if err := s.createNamed(ctx, "categories", &r); err != nil {
		return err
	}
	c.ID = r.ID
	return nil
}

// GetCategoryBySlug retrieves a category by slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	r, err := s.getNamedBySlug(ctx, "categories", slug)
	if err != nil {
		return nil, err
	}
	return &domain.Category{ID: r.ID, Name: r.Name, Slug: r.Slug}, nil
}

// DeleteCategory removes a category. Titles in it keep existing with no category.
func (s *Store) DeleteCategory(ctx context.Context, slug string) error {
	return s.deleteNamed(ctx, "categories", slug)
}

// ListCategories returns categories ordered by id.
func (s *Store) ListCategories(ctx context.Context, f store.CatalogFilter) (*store.PaginatedResult[domain.Category], error) {
	f.Validate()
	rows, total, err := s.listNamed(ctx, "categories", f)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Category, len(rows))
	for i, r := range rows {
		items[i] = domain.Category{ID: r.ID, Name: r.Name, Slug: r.Slug}
	}
	return store.NewPaginatedResult(items, total, f.PaginationParams), nil
}

// CreateGenre inserts a genre.
// Returns store.ErrAlreadyExists if the name or slug is taken.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	r := namedRow{ID: g.ID, Name: g.Name, Slug: g.Slug}
	if err := s.createNamed(ctx, "genres", &r); err != nil {
		return err
	}
	g.ID = r.ID
	return nil
}

// GetGenreBySlug retrieves a genre by slug.
func (s *Store) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	r, err := s.getNamedBySlug(ctx, "genres", slug)
	if err != nil {
		return nil, err
	}
	return &domain.Genre{ID: r.ID, Name: r.Name, Slug: r.Slug}, nil
}

// GetGenresBySlugs returns the genres that exist, ordered as requested.
// Duplicate slugs yield one genre.
func (s *Store) GetGenresBySlugs(ctx context.Context, slugs []string) ([]domain.Genre, error) {
	if len(slugs) == 0 {
		return []domain.Genre{}, nil
	}

	args := make([]any, len(slugs))
	for i, slug := range slugs {
		args[i] = slug
	}
	rows, err := s.query(ctx, `SELECT id, name, slug FROM genres WHERE slug IN (`+placeholders(len(slugs))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get genres by slug: %w", err)
	}
	defer rows.Close()

	bySlug := make(map[string]domain.Genre, len(slugs))
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
			return nil, err
		}
		bySlug[g.Slug] = g
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Genre, 0, len(bySlug))
	for _, slug := range slugs {
		if g, ok := bySlug[slug]; ok {
			out = append(out, g)
			delete(bySlug, slug)
		}
	}
	return out, nil
}

// DeleteGenre removes a genre and its title links.
func (s *Store) DeleteGenre(ctx context.Context, slug string) error {
	return s.deleteNamed(ctx, "genres", slug)
}

// ListGenres returns genres ordered by id.
func (s *Store) ListGenres(ctx context.Context, f store.CatalogFilter) (*store.PaginatedResult[domain.Genre], error) {
	f.Validate()
	rows, total, err := s.listNamed(ctx, "genres", f)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Genre, len(rows))
	for i, r := range rows {
		items[i] = domain.Genre{ID: r.ID, Name: r.Name, Slug: r.Slug}
	}
	return store.NewPaginatedResult(items, total, f.PaginationParams), nil
}
