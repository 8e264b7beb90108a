package sqlstore

import (
	"context"
	"fmt"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

const commentSelect = `SELECT c.id, c.review_id, c.author_id, u.username, c.text, c.pub_date
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func scanComment(scanner interface{ Scan(dest ...any) error }) (*domain.Comment, error) {
	var (
		c       domain.Comment
		pubDate string
	)
	err := scanner.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author, &c.Text, &pubDate)
	if err != nil {
		return nil, err
	}
	if c.PubDate, err = parseTime(pubDate); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a comment, setting PubDate unless it is already set.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	if c.PubDate.IsZero() {
		c.PubDate = s.now()
	}

	cols := "review_id, author_id, text, pub_date"
	args := []any{c.ReviewID, c.AuthorID, c.Text, formatTime(c.PubDate)}
	if c.ID != 0 {
		cols = "id, " + cols
		args = append([]any{c.ID}, args...)
	}

	id, err := s.insert(ctx, `INSERT INTO comments (`+cols+`) VALUES (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// GetComment retrieves a comment scoped to its review.
func (s *Store) GetComment(ctx context.Context, reviewID, commentID int64) (*domain.Comment, error) {
	c, err := scanComment(s.queryRow(ctx, commentSelect+` WHERE c.id = ? AND c.review_id = ?`, commentID, reviewID))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// ListComments returns a review's comments, newest first.
func (s *Store) ListComments(ctx context.Context, reviewID int64, p store.PaginationParams) (*store.PaginatedResult[domain.Comment], error) {
	p.Validate()

	total, err := s.count(ctx, `SELECT COUNT(*) FROM comments WHERE review_id = ?`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	rows, err := s.query(ctx,
		commentSelect+` WHERE c.review_id = ? ORDER BY c.pub_date DESC, c.id DESC LIMIT ? OFFSET ?`,
		reviewID, p.PageSize, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store.NewPaginatedResult(items, total, p), nil
}

// UpdateComment rewrites the text.
func (s *Store) UpdateComment(ctx context.Context, c *domain.Comment) error {
	res, err := s.exec(ctx, `UPDATE comments SET text = ? WHERE id = ?`, c.Text, c.ID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
