package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles/{title_id}/reviews",
		Summary:     "List reviews",
		Description: "Returns the reviews of a title, newest first",
		Tags:        []string{"Reviews"},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/titles/{title_id}/reviews",
		Summary:       "Create review",
		Description:   "Reviews a title. Each user may review a title once.",
		Tags:          []string{"Reviews"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReview",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles/{title_id}/reviews/{review_id}",
		Summary:     "Get review",
		Description: "Returns a review of the title",
		Tags:        []string{"Reviews"},
	}, s.handleGetReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPatch,
		Path:        "/api/v1/titles/{title_id}/reviews/{review_id}",
		Summary:     "Update review",
		Description: "Updates a review. Allowed to its author, moderators and admins.",
		Tags:        []string{"Reviews"},
		Security:    bearerSecurity,
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteReview",
		Method:        http.MethodDelete,
		Path:          "/api/v1/titles/{title_id}/reviews/{review_id}",
		Summary:       "Delete review",
		Description:   "Deletes a review with its comments. Allowed to its author, moderators and admins.",
		Tags:          []string{"Reviews"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteReview)
}

// ListReviewsInput contains parameters for listing reviews.
type ListReviewsInput struct {
	TitleID int64 `path:"title_id" doc:"Title ID"`
	PageQuery
}

// ListReviewsOutput contains a page of reviews.
type ListReviewsOutput struct {
	Body Page[ReviewResponse]
}

// CreateReviewRequest is the request body for creating a review.
type CreateReviewRequest struct {
	Text  string `json:"text,omitempty" doc:"Review text"`
	Score *int   `json:"score,omitempty" doc:"Score from 1 to 10"`
}

// CreateReviewInput contains parameters for creating a review.
type CreateReviewInput struct {
	TitleID int64 `path:"title_id" doc:"Title ID"`
	Body    CreateReviewRequest
}

// UpdateReviewRequest is the request body for a partial review update.
type UpdateReviewRequest struct {
	Text  *string `json:"text,omitempty" doc:"Review text"`
	Score *int    `json:"score,omitempty" doc:"Score from 1 to 10"`
}

// UpdateReviewInput contains parameters for updating a review.
type UpdateReviewInput struct {
	TitleID  int64 `path:"title_id" doc:"Title ID"`
	ReviewID int64 `path:"review_id" doc:"Review ID"`
	Body     UpdateReviewRequest
}

// ReviewIDInput addresses a review of a title.
type ReviewIDInput struct {
	TitleID  int64 `path:"title_id" doc:"Title ID"`
	ReviewID int64 `path:"review_id" doc:"Review ID"`
}

// ReviewOutput wraps a review response for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

func (s *Server) handleListReviews(ctx context.Context, input *ListReviewsInput) (*ListReviewsOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Reviews.List(ctx, id, input.TitleID, input.params())
	if err != nil {
		return nil, err
	}
	return &ListReviewsOutput{Body: newPage(result, reviewResponse)}, nil
}

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	// A missing score is reported like an out of range one.
	req := service.CreateReviewRequest{Text: input.Body.Text}
	if input.Body.Score != nil {
		req.Score = *input.Body.Score
	}

	r, err := s.services.Reviews.Create(ctx, id, input.TitleID, req)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: reviewResponse(r)}, nil
}

func (s *Server) handleGetReview(ctx context.Context, input *ReviewIDInput) (*ReviewOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.services.Reviews.Get(ctx, id, input.TitleID, input.ReviewID)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: reviewResponse(r)}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.services.Reviews.Update(ctx, id, input.TitleID, input.ReviewID, service.UpdateReviewRequest{
		Text:  input.Body.Text,
		Score: input.Body.Score,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: reviewResponse(r)}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*struct{}, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reviews.Delete(ctx, id, input.TitleID, input.ReviewID); err != nil {
		return nil, err
	}
	return nil, nil
}
