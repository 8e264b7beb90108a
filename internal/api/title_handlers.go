package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/service"
)

func (s *Server) registerTitleRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTitles",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles",
		Summary:     "List titles",
		Description: "Returns titles with their rating. Filters combine; search runs a full-text query over name and description.",
		Tags:        []string{"Titles"},
	}, s.handleListTitles)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTitle",
		Method:        http.MethodPost,
		Path:          "/api/v1/titles",
		Summary:       "Create title",
		Description:   "Creates a title. Category and genres are given as slugs. Admin only.",
		Tags:          []string{"Titles"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTitle)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTitle",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles/{title_id}",
		Summary:     "Get title",
		Description: "Returns a title with its rating",
		Tags:        []string{"Titles"},
	}, s.handleGetTitle)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTitle",
		Method:      http.MethodPatch,
		Path:        "/api/v1/titles/{title_id}",
		Summary:     "Update title",
		Description: "Partially updates a title. An empty category clears it; genre replaces the genre set. Admin only.",
		Tags:        []string{"Titles"},
		Security:    bearerSecurity,
	}, s.handleUpdateTitle)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTitle",
		Method:        http.MethodDelete,
		Path:          "/api/v1/titles/{title_id}",
		Summary:       "Delete title",
		Description:   "Deletes a title with its reviews and comments. Admin only.",
		Tags:          []string{"Titles"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTitle)
}

// ListTitlesInput contains parameters for listing titles.
type ListTitlesInput struct {
	Category string `query:"category" doc:"Category slug"`
	Genre    string `query:"genre" doc:"Genre slug"`
	Name     string `query:"name" doc:"Case-insensitive name substring"`
	Year     string `query:"year" doc:"Exact release year"`
	Search   string `query:"search" doc:"Full-text query over name and description"`
	PageQuery
}

// ListTitlesOutput contains a page of titles.
type ListTitlesOutput struct {
	Body Page[TitleResponse]
}

// CreateTitleRequest is the request body for creating a title.
type CreateTitleRequest struct {
	Name        string   `json:"name,omitempty" doc:"Title name"`
	Year        *int     `json:"year,omitempty" doc:"Release year, not later than the current year"`
	Description string   `json:"description,omitempty" doc:"Description"`
	Category    string   `json:"category,omitempty" doc:"Category slug"`
	Genre       []string `json:"genre,omitempty" doc:"Genre slugs"`
}

// CreateTitleInput wraps the create title request for Huma.
type CreateTitleInput struct {
	Body CreateTitleRequest
}

// UpdateTitleRequest is the request body for a partial title update.
type UpdateTitleRequest struct {
	Name        *string   `json:"name,omitempty" doc:"Title name"`
	Year        *int      `json:"year,omitempty" doc:"Release year"`
	Description *string   `json:"description,omitempty" doc:"Description"`
	Category    *string   `json:"category,omitempty" doc:"Category slug, empty to clear"`
	Genre       *[]string `json:"genre,omitempty" doc:"Genre slugs replacing the current set"`
}

// UpdateTitleInput contains parameters for updating a title.
type UpdateTitleInput struct {
	TitleID int64 `path:"title_id" doc:"Title ID"`
	Body    UpdateTitleRequest
}

// TitleIDInput addresses a title.
type TitleIDInput struct {
	TitleID int64 `path:"title_id" doc:"Title ID"`
}

// TitleOutput wraps a title response for Huma.
type TitleOutput struct {
	Body TitleResponse
}

func (s *Server) handleListTitles(ctx context.Context, input *ListTitlesInput) (*ListTitlesOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	filter := service.TitleFilter{
		Category:         input.Category,
		Genre:            input.Genre,
		Name:             input.Name,
		Search:           input.Search,
		PaginationParams: input.params(),
	}
	if input.Year != "" {
		year, err := strconv.Atoi(input.Year)
		if err != nil {
			return nil, domainerrors.FieldError("year", "must be an integer")
		}
		filter.Year = &year
	}

	result, err := s.services.Titles.List(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	return &ListTitlesOutput{Body: newPage(result, titleResponse)}, nil
}

func (s *Server) handleCreateTitle(ctx context.Context, input *CreateTitleInput) (*TitleOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	// Permission errors take precedence over the missing year.
	if err := policy.Catalog(id, policy.Create); err != nil {
		return nil, err
	}
	body := input.Body
	if body.Year == nil {
		return nil, domainerrors.FieldError("year", "is required")
	}

	t, err := s.services.Titles.Create(ctx, id, service.CreateTitleRequest{
		Name:        body.Name,
		Year:        *body.Year,
		Description: body.Description,
		Category:    body.Category,
		Genre:       body.Genre,
	})
	if err != nil {
		return nil, err
	}
	return &TitleOutput{Body: titleResponse(t)}, nil
}

func (s *Server) handleGetTitle(ctx context.Context, input *TitleIDInput) (*TitleOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.services.Titles.Get(ctx, id, input.TitleID)
	if err != nil {
		return nil, err
	}
	return &TitleOutput{Body: titleResponse(t)}, nil
}

func (s *Server) handleUpdateTitle(ctx context.Context, input *UpdateTitleInput) (*TitleOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	body := input.Body
	t, err := s.services.Titles.Update(ctx, id, input.TitleID, service.UpdateTitleRequest{
		Name:        body.Name,
		Year:        body.Year,
		Description: body.Description,
		Category:    body.Category,
		Genre:       body.Genre,
	})
	if err != nil {
		return nil, err
	}
	return &TitleOutput{Body: titleResponse(t)}, nil
}

func (s *Server) handleDeleteTitle(ctx context.Context, input *TitleIDInput) (*struct{}, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Titles.Delete(ctx, id, input.TitleID); err != nil {
		return nil, err
	}
	return nil, nil
}
