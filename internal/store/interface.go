// Package store defines the persistence interface for the YaMDb server.
package store

import (
	"context"

	"github.com/yamdb/yamdb-server/internal/domain"
)

// UserFilter narrows ListUsers.
type UserFilter struct {
	// Search matches a case-insensitive substring of the username.
	Search string
	PaginationParams
}

// CatalogFilter narrows category and genre listings.
type CatalogFilter struct {
	// Search matches a case-insensitive substring of the name.
	Search string
	PaginationParams
}

// TitleFilter narrows ListTitles. Empty fields do not filter.
type TitleFilter struct {
	Category string // category slug
	Genre    string // genre slug
	Name     string // case-insensitive substring
	Year     *int
	// IDs restricts results to the given titles when non-nil.
	// A non-nil empty slice matches nothing.
	IDs []int64
	PaginationParams
}

// Store defines the interface for all persistence operations.
//
// Create methods assign ID (unless already set) and server timestamps on the
// passed value. Get methods return ErrNotFound for missing rows; writes return
// ErrAlreadyExists on UNIQUE violations and ErrInvalidReference on FOREIGN KEY
// violations.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	// Users
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, f UserFilter) (*PaginatedResult[domain.User], error)
	// SetConfirmationCode stores the hash of a pending code.
	SetConfirmationCode(ctx context.Context, userID int64, hash string) error
	// ConsumeConfirmationCode clears the pending code only if it still equals
	// hash, reporting whether this call consumed it.
	ConsumeConfirmationCode(ctx context.Context, userID int64, hash string) (bool, error)

	// Categories
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, slug string) error
	ListCategories(ctx context.Context, f CatalogFilter) (*PaginatedResult[domain.Category], error)

	// Genres
	CreateGenre(ctx context.Context, g *domain.Genre) error
	GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	// GetGenresBySlugs returns the genres found, in the order of slugs.
	GetGenresBySlugs(ctx context.Context, slugs []string) ([]domain.Genre, error)
	DeleteGenre(ctx context.Context, slug string) error
	ListGenres(ctx context.Context, f CatalogFilter) (*PaginatedResult[domain.Genre], error)

	// Titles. Reads fill Category, Genres and the computed Rating.
	CreateTitle(ctx context.Context, t *domain.Title) error
	GetTitle(ctx context.Context, id int64) (*domain.Title, error)
	// UpdateTitle rewrites all columns and replaces the genre set.
	UpdateTitle(ctx context.Context, t *domain.Title) error
	DeleteTitle(ctx context.Context, id int64) error
	ListTitles(ctx context.Context, f TitleFilter) (*PaginatedResult[domain.Title], error)
	CountTitles(ctx context.Context) (int, error)
	// AddTitleGenre links an existing title and genre. id may be zero.
	AddTitleGenre(ctx context.Context, id, titleID, genreID int64) error

	// Reviews
	CreateReview(ctx context.Context, r *domain.Review) error
	// GetReview returns ErrNotFound unless the review belongs to titleID.
	GetReview(ctx context.Context, titleID, reviewID int64) (*domain.Review, error)
	ReviewExists(ctx context.Context, titleID, authorID int64) (bool, error)
	ListReviews(ctx context.Context, titleID int64, p PaginationParams) (*PaginatedResult[domain.Review], error)
	UpdateReview(ctx context.Context, r *domain.Review) error
	DeleteReview(ctx context.Context, id int64) error

	// Comments
	CreateComment(ctx context.Context, c *domain.Comment) error
	// GetComment returns ErrNotFound unless the comment belongs to reviewID.
	GetComment(ctx context.Context, reviewID, commentID int64) (*domain.Comment, error)
	ListComments(ctx context.Context, reviewID int64, p PaginationParams) (*PaginatedResult[domain.Comment], error)
	UpdateComment(ctx context.Context, c *domain.Comment) error
	DeleteComment(ctx context.Context, id int64) error

	// ResetSequences moves id sequences past the highest explicit id after a bulk import.
	ResetSequences(ctx context.Context) error
}
