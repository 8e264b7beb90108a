package api

import (
	"github.com/yamdb/yamdb-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Catalog  *service.CatalogService
	Titles   *service.TitleService
	Reviews  *service.ReviewService
	Comments *service.CommentService
}
