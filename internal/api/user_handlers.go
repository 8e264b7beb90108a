package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/service"
	"github.com/yamdb/yamdb-server/internal/store"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update current user",
		Description: "Updates the authenticated user's profile. The role field is ignored.",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleUpdateCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns all users. Admin only.",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Create user",
		Description:   "Creates a user with any role. Admin only.",
		Tags:          []string{"Users"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{username}",
		Summary:     "Get user",
		Description: "Returns a user by username. Admin only.",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{username}",
		Summary:     "Update user",
		Description: "Updates any field of a user, including the role. Admin only.",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteUser",
		Method:        http.MethodDelete,
		Path:          "/api/v1/users/{username}",
		Summary:       "Delete user",
		Description:   "Deletes a user with their reviews and comments. Admin only.",
		Tags:          []string{"Users"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteUser)
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// UserPatch holds the optional fields of a user update.
type UserPatch struct {
	Username  *string      `json:"username,omitempty" doc:"New username"`
	Email     *string      `json:"email,omitempty" doc:"New e-mail address"`
	FirstName *string      `json:"first_name,omitempty" doc:"First name"`
	LastName  *string      `json:"last_name,omitempty" doc:"Last name"`
	Bio       *string      `json:"bio,omitempty" doc:"Biography"`
	Role      *domain.Role `json:"role,omitempty" doc:"Role: user, moderator or admin"`
}

func (p UserPatch) request() service.UpdateUserRequest {
	return service.UpdateUserRequest{
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Bio:       p.Bio,
		Role:      p.Role,
	}
}

// UpdateCurrentUserInput contains parameters for updating the caller.
type UpdateCurrentUserInput struct {
	Body UserPatch
}

// ListUsersInput contains parameters for listing users.
type ListUsersInput struct {
	Search string `query:"search" doc:"Case-insensitive username substring"`
	PageQuery
}

// ListUsersOutput contains a page of users.
type ListUsersOutput struct {
	Body Page[UserResponse]
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Username  string      `json:"username,omitempty" doc:"Username"`
	Email     string      `json:"email,omitempty" doc:"E-mail address"`
	FirstName string      `json:"first_name,omitempty" doc:"First name"`
	LastName  string      `json:"last_name,omitempty" doc:"Last name"`
	Bio       string      `json:"bio,omitempty" doc:"Biography"`
	Role      domain.Role `json:"role,omitempty" doc:"Role, defaults to user"`
}

// CreateUserInput wraps the create user request for Huma.
type CreateUserInput struct {
	Body CreateUserRequest
}

// UsernameInput addresses a user by username.
type UsernameInput struct {
	Username string `path:"username" doc:"Username"`
}

// UpdateUserInput contains parameters for updating a user.
type UpdateUserInput struct {
	Username string `path:"username" doc:"Username"`
	Body     UserPatch
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.services.Users.Me(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: userResponse(u)}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *UpdateCurrentUserInput) (*UserOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.services.Users.UpdateMe(ctx, id, input.Body.request())
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: userResponse(u)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Users.List(ctx, id, store.UserFilter{
		Search:           input.Search,
		PaginationParams: input.params(),
	})
	if err != nil {
		return nil, err
	}
	return &ListUsersOutput{Body: newPage(result, userResponse)}, nil
}

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.services.Users.Create(ctx, id, service.CreateUserRequest{
		Username:  input.Body.Username,
		Email:     input.Body.Email,
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
		Bio:       input.Body.Bio,
		Role:      input.Body.Role,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: userResponse(u)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UsernameInput) (*UserOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.services.Users.Get(ctx, id, input.Username)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: userResponse(u)}, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.services.Users.Update(ctx, id, input.Username, input.Body.request())
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: userResponse(u)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UsernameInput) (*struct{}, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Users.Delete(ctx, id, input.Username); err != nil {
		return nil, err
	}
	return nil, nil
}
