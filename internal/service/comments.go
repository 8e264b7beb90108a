package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// CommentService manages comments nested under a (title, review) pair.
type CommentService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(store store.Store, validator *validation.Validator, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, validator: validator, logger: discardIfNil(logger)}
}

// CommentRequest creates or edits a comment.
type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// List returns the comments of a review, newest first.
func (s *CommentService) List(ctx context.Context, id policy.Identity, titleID, reviewID int64, p store.PaginationParams) (*store.PaginatedResult[domain.Comment], error) {
	if err := policy.Authored(id, policy.Read, 0); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, reviewID, p)
}

// Get returns one comment of the review.
func (s *CommentService) Get(ctx context.Context, id policy.Identity, titleID, reviewID, commentID int64) (*domain.Comment, error) {
	if err := policy.Authored(id, policy.Read, 0); err != nil {
		return nil, err
	}
	return s.comment(ctx, titleID, reviewID, commentID)
}

// Create adds the caller's comment to a review.
func (s *CommentService) Create(ctx context.Context, id policy.Identity, titleID, reviewID int64, req CommentRequest) (*domain.Comment, error) {
	if err := policy.Authored(id, policy.Create, id.UserID); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	c := &domain.Comment{ReviewID: reviewID, AuthorID: id.UserID, Text: req.Text}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.logger.Info("comment created", "comment_id", c.ID, "review_id", reviewID, "author_id", id.UserID)
	return s.comment(ctx, titleID, reviewID, c.ID)
}

// Update edits a comment. Allowed to its author, moderators and admins.
func (s *CommentService) Update(ctx context.Context, id policy.Identity, titleID, reviewID, commentID int64, req CommentRequest) (*domain.Comment, error) {
	if err := policy.Authenticated(id); err != nil {
		return nil, err
	}
	c, err := s.comment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authored(id, policy.Update, c.AuthorID); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	c.Text = req.Text
	if err := s.store.UpdateComment(ctx, c); err != nil {
		return nil, notFound(err, "comment not found")
	}
	s.logger.Info("comment updated", "comment_id", c.ID, "by", id.Username)
	return c, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, id policy.Identity, titleID, reviewID, commentID int64) error {
	if err := policy.Authenticated(id); err != nil {
		return err
	}
	c, err := s.comment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := policy.Authored(id, policy.Delete, c.AuthorID); err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, c.ID); err != nil {
		return notFound(err, "comment not found")
	}
	s.logger.Info("comment deleted", "comment_id", c.ID, "by", id.Username)
	return nil
}

// requireReview resolves the review by its (title, review) pair.
func (s *CommentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.store.GetReview(ctx, titleID, reviewID); err != nil {
		return notFound(err, "review not found")
	}
	return nil
}

func (s *CommentService) comment(ctx context.Context, titleID, reviewID, commentID int64) (*domain.Comment, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	c, err := s.store.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound(err, "comment not found")
	}
	return c, nil
}
