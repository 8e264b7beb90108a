package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "signup",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signup",
		Summary:     "Sign up",
		Description: "Registers a user and e-mails a confirmation code. Repeating the call with the same username and e-mail sends a fresh code.",
		Tags:        []string{"Auth"},
		Middlewares: huma.Middlewares{s.rateLimitAuth},
	}, s.handleSignup)

	huma.Register(s.api, huma.Operation{
		OperationID: "obtainToken",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/token",
		Summary:     "Obtain token",
		Description: "Exchanges a username and confirmation code for an access token. Each code works once.",
		Tags:        []string{"Auth"},
		Middlewares: huma.Middlewares{s.rateLimitAuth},
	}, s.handleObtainToken)
}

// SignupRequest is the request body for signup.
type SignupRequest struct {
	Username string `json:"username,omitempty" doc:"Desired username"`
	Email    string `json:"email,omitempty" doc:"E-mail address that receives the code"`
}

// SignupInput wraps the signup request for Huma.
type SignupInput struct {
	Body SignupRequest
}

// SignupResponse echoes the registered account.
type SignupResponse struct {
	Username string `json:"username" doc:"Username"`
	Email    string `json:"email" doc:"E-mail address"`
}

// SignupOutput wraps the signup response for Huma.
type SignupOutput struct {
	Body SignupResponse
}

// TokenRequest is the request body for obtaining a token.
type TokenRequest struct {
	Username         string `json:"username,omitempty" doc:"Username"`
	ConfirmationCode string `json:"confirmation_code,omitempty" doc:"Code received by e-mail"`
}

// TokenInput wraps the token request for Huma.
type TokenInput struct {
	Body TokenRequest
}

// TokenResponse carries the issued access token.
type TokenResponse struct {
	Token string `json:"token" doc:"PASETO access token"`
}

// TokenOutput wraps the token response for Huma.
type TokenOutput struct {
	Body TokenResponse
}

func (s *Server) handleSignup(ctx context.Context, input *SignupInput) (*SignupOutput, error) {
	resp, err := s.services.Auth.Signup(ctx, service.SignupRequest{
		Username: input.Body.Username,
		Email:    input.Body.Email,
	})
	if err != nil {
		return nil, err
	}

	return &SignupOutput{Body: SignupResponse{Username: resp.Username, Email: resp.Email}}, nil
}

func (s *Server) handleObtainToken(ctx context.Context, input *TokenInput) (*TokenOutput, error) {
	resp, err := s.services.Auth.IssueToken(ctx, service.TokenRequest{
		Username:         input.Body.Username,
		ConfirmationCode: input.Body.ConfirmationCode,
	})
	if err != nil {
		return nil, err
	}

	return &TokenOutput{Body: TokenResponse{Token: resp.Token}}, nil
}
