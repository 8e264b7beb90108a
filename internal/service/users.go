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

const msgUserTaken = "a user with that username or email already exists"

// UserService manages accounts: the caller's own profile and admin CRUD.
type UserService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{store: store, validator: validator, logger: discardIfNil(logger)}
}

// CreateUserRequest is an admin-created account.
type CreateUserRequest struct {
	Username  string      `json:"username" validate:"required,username"`
	Email     string      `json:"email" validate:"required,email,max=254"`
	FirstName string      `json:"first_name" validate:"max=150"`
	LastName  string      `json:"last_name" validate:"max=150"`
	Bio       string      `json:"bio"`
	Role      domain.Role `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// UpdateUserRequest is a partial update. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Username  *string      `json:"username" validate:"omitnil,username"`
	Email     *string      `json:"email" validate:"omitnil,required,email,max=254"`
	FirstName *string      `json:"first_name" validate:"omitnil,max=150"`
	LastName  *string      `json:"last_name" validate:"omitnil,max=150"`
	Bio       *string      `json:"bio"`
	Role      *domain.Role `json:"role" validate:"omitnil,oneof=user moderator admin"`
}

func (r UpdateUserRequest) apply(u *domain.User, allowRole bool) {
	if r.Username != nil {
		u.Username = *r.Username
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.FirstName != nil {
		u.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		u.LastName = *r.LastName
	}
	if r.Bio != nil {
		u.Bio = *r.Bio
	}
	if allowRole && r.Role != nil {
		u.Role = *r.Role
	}
}

// Me returns the caller's account.
func (s *UserService) Me(ctx context.Context, id policy.Identity) (*domain.User, error) {
	if err := policy.Self(id, policy.Read); err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, id.UserID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

// UpdateMe applies a partial update to the caller's account. A role in the
// request is ignored and the stored role is kept.
func (s *UserService) UpdateMe(ctx context.Context, id policy.Identity, req UpdateUserRequest) (*domain.User, error) {
	if err := policy.Self(id, policy.Update); err != nil {
		return nil, err
	}
	req.Role = nil
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.store.GetUser(ctx, id.UserID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	req.apply(u, false)

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, alreadyExists(err, msgUserTaken)
	}
	s.logger.Debug("profile updated", "user_id", u.ID)
	return u, nil
}

// List returns users, optionally filtered by username substring.
func (s *UserService) List(ctx context.Context, id policy.Identity, f store.UserFilter) (*store.PaginatedResult[domain.User], error) {
	if err := policy.Users(id, policy.Read); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx, f)
}

// Get returns a user by username.
func (s *UserService) Get(ctx context.Context, id policy.Identity, username string) (*domain.User, error) {
	if err := policy.Users(id, policy.Read); err != nil {
		return nil, err
	}
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

// Create adds an account with an optional role (default user).
func (s *UserService) Create(ctx context.Context, id policy.Identity, req CreateUserRequest) (*domain.User, error) {
	if err := policy.Users(id, policy.Create); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, alreadyExists(err, msgUserTaken)
	}

	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "by", id.Username)
	return u, nil
}

// Update applies a partial update, role included.
func (s *UserService) Update(ctx context.Context, id policy.Identity, username string, req UpdateUserRequest) (*domain.User, error) {
	if err := policy.Users(id, policy.Update); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	req.apply(u, true)

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, alreadyExists(err, msgUserTaken)
	}
	s.logger.Info("user updated", "user_id", u.ID, "role", u.Role, "by", id.Username)
	return u, nil
}

// Delete removes a user with their reviews and comments.
func (s *UserService) Delete(ctx context.Context, id policy.Identity, username string) error {
	if err := policy.Users(id, policy.Delete); err != nil {
		return err
	}
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return notFound(err, "user not found")
	}
	if err := s.store.DeleteUser(ctx, u.ID); err != nil {
		return fmt.Errorf("delete user: %w", notFound(err, "user not found"))
	}
	s.logger.Info("user deleted", "user_id", u.ID, "by", id.Username)
	return nil
}
