package api

import (
	"context"
	"net/http"
	"strings"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// authStateKey is the context key for the resolved caller.
const authStateKey ctxKey = "auth"

// Authenticator resolves bearer tokens. Implemented by service.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (policy.Identity, error)
}

type authState struct {
	identity policy.Identity
	err      error
}

// identityFrom returns the caller resolved by authMiddleware.
// Requests without credentials are anonymous. A request whose token was
// rejected yields the 401 error here, so only handlers that care about the
// caller fail.
func identityFrom(ctx context.Context) (policy.Identity, error) {
	state, ok := ctx.Value(authStateKey).(authState)
	if !ok {
		return policy.Identity{}, nil
	}
	return state.identity, state.err
}

func withAuthState(ctx context.Context, state authState) context.Context {
	return context.WithValue(ctx, authStateKey, state)
}

// authMiddleware validates Bearer tokens and stores the caller in context.
func authMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			var state authState
			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				state.err = domainerrors.Unauthorized("invalid authorization header format")
			} else {
				state.identity, state.err = auth.Authenticate(r.Context(), token)
			}

			next.ServeHTTP(w, r.WithContext(withAuthState(r.Context(), state)))
		})
	}
}
