package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

// titleSelect must match the scan order in scanTitle. The rating is
// aggregated per row so it always reflects the current reviews.
const titleSelect = `SELECT t.id, t.name, t.year, t.description, c.id, c.name, c.slug,
	(SELECT AVG(CAST(r.score AS DOUBLE PRECISION)) FROM reviews r WHERE r.title_id = t.id)
	FROM titles t LEFT JOIN categories c ON c.id = t.category_id`

func scanTitle(scanner interface{ Scan(dest ...any) error }) (*domain.Title, error) {
	var (
		t            domain.Title
		description  sql.NullString
		categoryID   sql.NullInt64
		categoryName sql.NullString
		categorySlug sql.NullString
		rating       sql.NullFloat64
	)

	err := scanner.Scan(
		&t.ID,
		&t.Name,
		&t.Year,
		&description,
		&categoryID,
		&categoryName,
		&categorySlug,
		&rating,
	)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	if categoryID.Valid {
		t.Category = &domain.Category{ID: categoryID.Int64, Name: categoryName.String, Slug: categorySlug.String}
	}
	if rating.Valid {
		r := rating.Float64
		t.Rating = &r
	}
	t.Genres = []domain.Genre{}
	return &t, nil
}

func categoryID(t *domain.Title) sql.NullInt64 {
	if t.Category == nil {
		return sql.NullInt64{}
	}
	return nullInt64(t.Category.ID)
}

// CreateTitle inserts a title with its genre links in one transaction.
func (s *Store) CreateTitle(ctx context.Context, t *domain.Title) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		cols := "name, year, description, category_id"
		args := []any{t.Name, t.Year, nullString(t.Description), categoryID(t)}
		if t.ID != 0 {
			cols = "id, " + cols
			args = append([]any{t.ID}, args...)
		}

		q := s.dialect.rebind(`INSERT INTO titles (` + cols + `) VALUES (` + placeholders(len(args)) + `) RETURNING id`)
		if err := tx.QueryRowContext(ctx, q, args...).Scan(&t.ID); err != nil {
			return err
		}
		return s.linkGenres(ctx, tx, t.ID, t.Genres)
	})
}

func (s *Store) linkGenres(ctx context.Context, tx *sql.Tx, titleID int64, genres []domain.Genre) error {
	q := s.dialect.rebind(`INSERT INTO genre_titles (title_id, genre_id) VALUES (?, ?)`)
	seen := make(map[int64]bool, len(genres))
	for _, g := range genres {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		if _, err := tx.ExecContext(ctx, q, titleID, g.ID); err != nil {
			return fmt.Errorf("link genre %s: %w", g.Slug, s.dialect.translate(err))
		}
	}
	return nil
}

// GetTitle retrieves a title with category, genres and rating.
func (s *Store) GetTitle(ctx context.Context, id int64) (*domain.Title, error) {
	t, err := scanTitle(s.queryRow(ctx, titleSelect+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.attachGenres(ctx, []*domain.Title{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTitle rewrites the title columns and replaces its genres.
func (s *Store) UpdateTitle(ctx context.Context, t *domain.Title) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			s.dialect.rebind(`UPDATE titles SET name = ?, year = ?, description = ?, category_id = ? WHERE id = ?`),
			t.Name, t.Year, nullString(t.Description), categoryID(t), t.ID)
		if err != nil {
			return err
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.dialect.rebind(`DELETE FROM genre_titles WHERE title_id = ?`), t.ID); err != nil {
			return err
		}
		return s.linkGenres(ctx, tx, t.ID, t.Genres)
	})
}

// DeleteTitle removes a title; its reviews, comments and genre links cascade.
func (s *Store) DeleteTitle(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM titles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// CountTitles returns the number of titles.
func (s *Store) CountTitles(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM titles`)
}

// AddTitleGenre links a title and a genre, keeping an explicit link id when given.
func (s *Store) AddTitleGenre(ctx context.Context, id, titleID, genreID int64) error {
	if id != 0 {
		_, err := s.exec(ctx, `INSERT INTO genre_titles (id, title_id, genre_id) VALUES (?, ?, ?)`, id, titleID, genreID)
		return err
	}
	_, err := s.exec(ctx, `INSERT INTO genre_titles (title_id, genre_id) VALUES (?, ?)`, titleID, genreID)
	return err
}

// ListTitles returns titles ordered by id.
func (s *Store) ListTitles(ctx context.Context, f store.TitleFilter) (*store.PaginatedResult[domain.Title], error) {
	f.Validate()

	if f.IDs != nil && len(f.IDs) == 0 {
		return store.NewPaginatedResult[domain.Title](nil, 0, f.PaginationParams), nil
	}

	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		conds = append(conds, `c.slug = ?`)
		args = append(args, f.Category)
	}
	if f.Genre != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM genre_titles gt JOIN genres g ON g.id = gt.genre_id
			WHERE gt.title_id = t.id AND g.slug = ?)`)
		args = append(args, f.Genre)
	}
	if f.Name != "" {
		conds = append(conds, s.dialect.ilike("t.name"))
		args = append(args, likePattern(f.Name))
	}
	if f.Year != nil {
		conds = append(conds, `t.year = ?`)
		args = append(args, *f.Year)
	}
	if len(f.IDs) > 0 {
		conds = append(conds, `t.id IN (`+placeholders(len(f.IDs))+`)`)
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}
	where := whereClause(conds)

	total, err := s.count(ctx,
		`SELECT COUNT(*) FROM titles t LEFT JOIN categories c ON c.id = t.category_id`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("count titles: %w", err)
	}

	rows, err := s.query(ctx, titleSelect+where+` ORDER BY t.id LIMIT ? OFFSET ?`,
		append(args, f.PageSize, f.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var ptrs []*domain.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachGenres(ctx, ptrs); err != nil {
		return nil, err
	}

	items := make([]domain.Title, len(ptrs))
	for i, t := range ptrs {
		items[i] = *t
	}
	return store.NewPaginatedResult(items, total, f.PaginationParams), nil
}

// attachGenres loads genres for all titles in one query, in link order.
func (s *Store) attachGenres(ctx context.Context, titles []*domain.Title) error {
	if len(titles) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Title, len(titles))
	args := make([]any, len(titles))
	for i, t := range titles {
		byID[t.ID] = t
		args[i] = t.ID
	}

	rows, err := s.query(ctx, `
		SELECT gt.title_id, g.id, g.name, g.slug
		FROM genre_titles gt JOIN genres g ON g.id = gt.genre_id
		WHERE gt.title_id IN (`+placeholders(len(args))+`)
		ORDER BY gt.id`, args...)
	if err != nil {
		return fmt.Errorf("load title genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			titleID int64
			g       domain.Genre
		)
		if err := rows.Scan(&titleID, &g.ID, &g.Name, &g.Slug); err != nil {
			return err
		}
		if t := byID[titleID]; t != nil {
			t.Genres = append(t.Genres, g)
		}
	}
	return rows.Err()
}
