package sqlstore

import (
	"context"
	"fmt"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

// reviewSelect must match the scan order in scanReview.
const reviewSelect = `SELECT r.id, r.title_id, t.name, r.author_id, u.username, r.text, r.score, r.pub_date
	FROM reviews r
	JOIN titles t ON t.id = r.title_id
	JOIN users u ON u.id = r.author_id`

func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var (
		r       domain.Review
		pubDate string
	)
	err := scanner.Scan(&r.ID, &r.TitleID, &r.TitleName, &r.AuthorID, &r.Author, &r.Text, &r.Score, &pubDate)
	if err != nil {
		return nil, err
	}
	if r.PubDate, err = parseTime(pubDate); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview inserts a review, setting PubDate unless it is already set.
// Returns store.ErrAlreadyExists when the author already reviewed the title.
func (s *Store) CreateReview(ctx context.Context, r *domain.Review) error {
	if r.PubDate.IsZero() {
		r.PubDate = s.now()
	}

	cols := "title_id, author_id, text, score, pub_date"
	args := []any{r.TitleID, r.AuthorID, r.Text, r.Score, formatTime(r.PubDate)}
	if r.ID != 0 {
		cols = "id, " + cols
		args = append([]any{r.ID}, args...)
	}

	id, err := s.insert(ctx, `INSERT INTO reviews (`+cols+`) VALUES (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// GetReview retrieves a review scoped to its title.
func (s *Store) GetReview(ctx context.Context, titleID, reviewID int64) (*domain.Review, error) {
	r, err := scanReview(s.queryRow(ctx, reviewSelect+` WHERE r.id = ? AND r.title_id = ?`, reviewID, titleID))
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// ReviewExists reports whether authorID already reviewed titleID.
func (s *Store) ReviewExists(ctx context.Context, titleID, authorID int64) (bool, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM reviews WHERE title_id = ? AND author_id = ?`, titleID, authorID)
	return n > 0, err
}

// ListReviews returns a title's reviews, newest first.
func (s *Store) ListReviews(ctx context.Context, titleID int64, p store.PaginationParams) (*store.PaginatedResult[domain.Review], error) {
	p.Validate()

	total, err := s.count(ctx, `SELECT COUNT(*) FROM reviews WHERE title_id = ?`, titleID)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := s.query(ctx,
		reviewSelect+` WHERE r.title_id = ? ORDER BY r.pub_date DESC, r.id DESC LIMIT ? OFFSET ?`,
		titleID, p.PageSize, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var items []domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store.NewPaginatedResult(items, total, p), nil
}

// UpdateReview rewrites text and score. Title, author and pub_date never change.
func (s *Store) UpdateReview(ctx context.Context, r *domain.Review) error {
	res, err := s.exec(ctx, `UPDATE reviews SET text = ?, score = ? WHERE id = ?`, r.Text, r.Score, r.ID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteReview removes a review and its comments.
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
