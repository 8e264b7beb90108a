package api

import (
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// rateLimitAuth is an operation middleware that limits requests per client IP.
// Returns 429 Too Many Requests when limit is exceeded.
func (s *Server) rateLimitAuth(ctx huma.Context, next func(huma.Context)) {
	if s.authRateLimiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx.RemoteAddr())
	if !s.authRateLimiter.Allow(key) {
		u := ctx.URL()
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", u.Path,
		)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many requests, please try again later")
		return
	}

	next(ctx)
}

// clientIP strips the port from a remote address.
// middleware.RealIP has already applied X-Forwarded-For and X-Real-IP.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
