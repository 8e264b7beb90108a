package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

const msgOneReview = "only one review per title is allowed"

// ReviewService manages reviews nested under titles.
type ReviewService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store store.Store, validator *validation.Validator, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: store, validator: validator, logger: discardIfNil(logger)}
}

// CreateReviewRequest creates a review of the title in the path.
type CreateReviewRequest struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"score"`
}

// UpdateReviewRequest is a partial update. Nil fields are left unchanged.
type UpdateReviewRequest struct {
	Text  *string `json:"text" validate:"omitnil,required"`
	Score *int    `json:"score" validate:"omitnil,score"`
}

// List returns the reviews of a title, newest first.
func (s *ReviewService) List(ctx context.Context, id policy.Identity, titleID int64, p store.PaginationParams) (*store.PaginatedResult[domain.Review], error) {
	if err := policy.Authored(id, policy.Read, 0); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	return s.store.ListReviews(ctx, titleID, p)
}

// Get returns a review of the title.
func (s *ReviewService) Get(ctx context.Context, id policy.Identity, titleID, reviewID int64) (*domain.Review, error) {
	if err := policy.Authored(id, policy.Read, 0); err != nil {
		return nil, err
	}
	return s.review(ctx, titleID, reviewID)
}

// Create adds the caller's review of a title. Each author reviews a title once.
func (s *ReviewService) Create(ctx context.Context, id policy.Identity, titleID int64, req CreateReviewRequest) (*domain.Review, error) {
	if err := policy.Authored(id, policy.Create, id.UserID); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.store.ReviewExists(ctx, titleID, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, domainerrors.Validation(msgOneReview)
	}

	r := &domain.Review{TitleID: titleID, AuthorID: id.UserID, Text: req.Text, Score: req.Score}
	if err := s.store.CreateReview(ctx, r); err != nil {
		// A concurrent create lost the race on the UNIQUE constraint.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Validation(msgOneReview).WithCause(err)
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("review created", "review_id", r.ID, "title_id", titleID, "author_id", id.UserID)
	return s.review(ctx, titleID, r.ID)
}

// Update edits a review. Allowed to its author, moderators and admins.
func (s *ReviewService) Update(ctx context.Context, id policy.Identity, titleID, reviewID int64, req UpdateReviewRequest) (*domain.Review, error) {
	if err := policy.Authenticated(id); err != nil {
		return nil, err
	}
	r, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authored(id, policy.Update, r.AuthorID); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Text != nil {
		r.Text = *req.Text
	}
	if req.Score != nil {
		r.Score = *req.Score
	}
	if err := s.store.UpdateReview(ctx, r); err != nil {
		return nil, notFound(err, "review not found")
	}

	s.logger.Info("review updated", "review_id", r.ID, "by", id.Username)
	return r, nil
}

// Delete removes a review and its comments.
func (s *ReviewService) Delete(ctx context.Context, id policy.Identity, titleID, reviewID int64) error {
	if err := policy.Authenticated(id); err != nil {
		return err
	}
	r, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := policy.Authored(id, policy.Delete, r.AuthorID); err != nil {
		return err
	}
	if err := s.store.DeleteReview(ctx, r.ID); err != nil {
		return notFound(err, "review not found")
	}
	s.logger.Info("review deleted", "review_id", r.ID, "by", id.Username)
	return nil
}

func (s *ReviewService) requireTitle(ctx context.Context, titleID int64) error {
	if _, err := s.store.GetTitle(ctx, titleID); err != nil {
		return notFound(err, "title not found")
	}
	return nil
}

func (s *ReviewService) review(ctx context.Context, titleID, reviewID int64) (*domain.Review, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	r, err := s.store.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err, "review not found")
	}
	return r, nil
}
