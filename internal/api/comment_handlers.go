package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/service"
)

const commentsPath = "/api/v1/titles/{title_id}/reviews/{review_id}/comments"

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        commentsPath,
		Summary:     "List comments",
		Description: "Returns the comments of a review, newest first",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createComment",
		Method:        http.MethodPost,
		Path:          commentsPath,
		Summary:       "Create comment",
		Description:   "Comments on a review",
		Tags:          []string{"Comments"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "getComment",
		Method:      http.MethodGet,
		Path:        commentsPath + "/{comment_id}",
		Summary:     "Get comment",
		Description: "Returns a comment of the review",
		Tags:        []string{"Comments"},
	}, s.handleGetComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateComment",
		Method:      http.MethodPatch,
		Path:        commentsPath + "/{comment_id}",
		Summary:     "Update comment",
		Description: "Updates a comment. Allowed to its author, moderators and admins.",
		Tags:        []string{"Comments"},
		Security:    bearerSecurity,
	}, s.handleUpdateComment)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteComment",
		Method:        http.MethodDelete,
		Path:          commentsPath + "/{comment_id}",
		Summary:       "Delete comment",
		Description:   "Deletes a comment. Allowed to its author, moderators and admins.",
		Tags:          []string{"Comments"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteComment)
}

// ListCommentsInput contains parameters for listing comments.
type ListCommentsInput struct {
	TitleID  int64 `path:"title_id" doc:"Title ID"`
	ReviewID int64 `path:"review_id" doc:"Review ID"`
	PageQuery
}

// ListCommentsOutput contains a page of comments.
type ListCommentsOutput struct {
	Body Page[CommentResponse]
}

// CommentRequest is the request body for creating or updating a comment.
type CommentRequest struct {
	Text string `json:"text,omitempty" doc:"Comment text"`
}

// CreateCommentInput contains parameters for creating a comment.
type CreateCommentInput struct {
	TitleID  int64 `path:"title_id" doc:"Title ID"`
	ReviewID int64 `path:"review_id" doc:"Review ID"`
	Body     CommentRequest
}

// CommentIDInput addresses a comment of a review.
type CommentIDInput struct {
	TitleID   int64 `path:"title_id" doc:"Title ID"`
	ReviewID  int64 `path:"review_id" doc:"Review ID"`
	CommentID int64 `path:"comment_id" doc:"Comment ID"`
}

// UpdateCommentInput contains parameters for updating a comment.
type UpdateCommentInput struct {
	TitleID   int64 `path:"title_id" doc:"Title ID"`
	ReviewID  int64 `path:"review_id" doc:"Review ID"`
	CommentID int64 `path:"comment_id" doc:"Comment ID"`
	Body      CommentRequest
}

// CommentOutput wraps a comment response for Huma.
type CommentOutput struct {
	Body CommentResponse
}

func (s *Server) handleListComments(ctx context.Context, input *ListCommentsInput) (*ListCommentsOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Comments.List(ctx, id, input.TitleID, input.ReviewID, input.params())
	if err != nil {
		return nil, err
	}
	return &ListCommentsOutput{Body: newPage(result, commentResponse)}, nil
}

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Comments.Create(ctx, id, input.TitleID, input.ReviewID, service.CommentRequest{Text: input.Body.Text})
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: commentResponse(c)}, nil
}

func (s *Server) handleGetComment(ctx context.Context, input *CommentIDInput) (*CommentOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Comments.Get(ctx, id, input.TitleID, input.ReviewID, input.CommentID)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: commentResponse(c)}, nil
}

func (s *Server) handleUpdateComment(ctx context.Context, input *UpdateCommentInput) (*CommentOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Comments.Update(ctx, id, input.TitleID, input.ReviewID, input.CommentID,
		service.CommentRequest{Text: input.Body.Text})
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: commentResponse(c)}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*struct{}, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Comments.Delete(ctx, id, input.TitleID, input.ReviewID, input.CommentID); err != nil {
		return nil, err
	}
	return nil, nil
}
