package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yamdb/yamdb-server/internal/auth"
	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/id"
	"github.com/yamdb/yamdb-server/internal/mail"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

const (
	msgSignupTaken  = "such login or email already exists"
	msgCodeInvalid  = "confirmation code invalid"
	msgTokenInvalid = "token is invalid or expired"
)

// AuthService handles signup with emailed confirmation codes and token issuance.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	mailer       mail.Sender
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	mailer mail.Sender,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		mailer:       mailer,
		validator:    validator,
		logger:       discardIfNil(logger),
	}
}

// SignupRequest registers an account or re-requests a code for it.
type SignupRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

// SignupResponse echoes the accepted signup.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest exchanges a confirmation code for an access token.
type TokenRequest struct {
	Username         string `json:"username" validate:"required"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// TokenResponse carries the issued access token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Signup creates the user if needed and mails it a fresh confirmation code.
//
// A user matching both username and email gets a new code; a match on only
// one of them is rejected. Mail delivery failures are returned.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	switch {
	case err == nil:
		if user.Email != req.Email {
			return nil, domainerrors.AlreadyExists(msgSignupTaken)
		}
	case errors.Is(err, store.ErrNotFound):
		user = &domain.User{Username: req.Username, Email: req.Email, Role: domain.RoleUser}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, alreadyExists(err, msgSignupTaken)
		}
		s.logger.Info("user signed up", "user_id", user.ID, "username", user.Username)
	default:
		return nil, fmt.Errorf("get user: %w", err)
	}

	code, err := s.issueCode(ctx, user)
	if err != nil {
		return nil, err
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "YaMDb confirmation code",
		Body: fmt.Sprintf("Hello, %s!\n\nYour confirmation code: %s\n\n"+
			"Send it with your username to /api/v1/auth/token/ to get an access token.\n",
			user.Username, code),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("send confirmation email: %w", err)
	}

	return &SignupResponse{Username: user.Username, Email: user.Email}, nil
}

// IssueToken verifies and consumes the pending code, then issues a token.
func (s *AuthService) IssueToken(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, notFound(err, "user not found")
	}

	invalid := domainerrors.FieldError("confirmation_code", msgCodeInvalid)
	if user.ConfirmationCodeHash == "" || !auth.VerifyCode(user.ConfirmationCodeHash, req.ConfirmationCode) {
		return nil, invalid
	}

	// Only one concurrent exchange of the same code wins.
	consumed, err := s.store.ConsumeConfirmationCode(ctx, user.ID, user.ConfirmationCodeHash)
	if err != nil {
		return nil, fmt.Errorf("consume confirmation code: %w", err)
	}
	if !consumed {
		return nil, invalid
	}

	token, err := s.tokenService.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.logger.Info("access token issued", "user_id", user.ID)
	return &TokenResponse{Token: token}, nil
}

// Authenticate resolves a bearer token to the identity of its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (policy.Identity, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return policy.Identity{}, domainerrors.Unauthorized(msgTokenInvalid).WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return policy.Identity{}, domainerrors.Unauthorized("user not found")
		}
		return policy.Identity{}, fmt.Errorf("get user: %w", err)
	}
	return policy.IdentityOf(user), nil
}

// CreateSuperuser creates an admin account with staff and superuser flags and
// returns a confirmation code for its first token.
func (s *AuthService) CreateSuperuser(ctx context.Context, username, email string) (*domain.User, string, error) {
	if err := s.validator.Validate(SignupRequest{Username: username, Email: email}); err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Username:    username,
		Email:       email,
		Role:        domain.RoleAdmin,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", alreadyExists(err, msgSignupTaken)
	}

	code, err := s.issueCode(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("superuser created", "user_id", user.ID, "username", user.Username)
	return user, code, nil
}

// issueCode stores the hash of a new code and returns the plain code.
func (s *AuthService) issueCode(ctx context.Context, user *domain.User) (string, error) {
	code, err := id.ConfirmationCode()
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	hash, err := auth.HashCode(code)
	if err != nil {
		return "", fmt.Errorf("hash confirmation code: %w", err)
	}
	if err := s.store.SetConfirmationCode(ctx, user.ID, hash); err != nil {
		return "", fmt.Errorf("store confirmation code: %w", err)
	}
	user.ConfirmationCodeHash = hash
	return code, nil
}
