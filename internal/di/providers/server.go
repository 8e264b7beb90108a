package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/yamdb/yamdb-server/internal/api"
	"github.com/yamdb/yamdb-server/internal/config"
	"github.com/yamdb/yamdb-server/internal/logger"
	"github.com/yamdb/yamdb-server/internal/ratelimit"
	"github.com/yamdb/yamdb-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAuthRateLimiter provides the per-client limiter for /auth endpoints.
func ProvideAuthRateLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.PerMinute(cfg.Auth.RateLimit), nil
}

// ProvideServices groups the business services for the API layer.
func ProvideServices(i do.Injector) (*api.Services, error) {
	return &api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Users:    do.MustInvoke[*service.UserService](i),
		Catalog:  do.MustInvoke[*service.CatalogService](i),
		Titles:   do.MustInvoke[*service.TitleService](i),
		Reviews:  do.MustInvoke[*service.ReviewService](i),
		Comments: do.MustInvoke[*service.CommentService](i),
	}, nil
}

// ProvideHTTPServer provides the HTTP server and starts listening in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	services := do.MustInvoke[*api.Services](i)
	authRateLimiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)
	log := do.MustInvoke[*logger.Logger](i)

	apiServer := api.NewServer(
		cfg.Server,
		storeHandle.Store,
		indexHandle.Index,
		services,
		authRateLimiter,
		log.Logger,
	)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: httpServer}, nil
}
