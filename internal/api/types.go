package api

import (
	"time"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

// bearerSecurity marks an operation as accepting the bearer token.
var bearerSecurity = []map[string][]string{{"bearer": {}}}

// PageQuery holds the pagination query parameters shared by listings.
type PageQuery struct {
	Page     int `query:"page" default:"1" minimum:"1" doc:"1-based page number"`
	PageSize int `query:"page_size" default:"10" minimum:"1" maximum:"100" doc:"Items per page"`
}

func (q PageQuery) params() store.PaginationParams {
	p := store.PaginationParams{Page: q.Page, PageSize: q.PageSize}
	p.Validate()
	return p
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int  `json:"count" doc:"Total number of matching items"`
	Page     int  `json:"page" doc:"Current page"`
	PageSize int  `json:"page_size" doc:"Items per page"`
	HasMore  bool `json:"has_more" doc:"Whether further pages exist"`
	Results  []T  `json:"results" doc:"Items on this page"`
}

func newPage[S, T any](r *store.PaginatedResult[S], convert func(*S) T) Page[T] {
	results := make([]T, len(r.Items))
	for i := range r.Items {
		results[i] = convert(&r.Items[i])
	}
	return Page[T]{
		Count:    r.Total,
		Page:     r.Page,
		PageSize: r.PageSize,
		HasMore:  r.HasMore,
		Results:  results,
	}
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	Username  string      `json:"username" doc:"Unique login"`
	Email     string      `json:"email" doc:"Unique e-mail address"`
	FirstName string      `json:"first_name" doc:"First name"`
	LastName  string      `json:"last_name" doc:"Last name"`
	Bio       string      `json:"bio" doc:"Free-form biography"`
	Role      domain.Role `json:"role" enum:"user,moderator,admin" doc:"Access role"`
}

func userResponse(u *domain.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

// CatalogEntry is a category or genre as returned by the API.
type CatalogEntry struct {
	Name string `json:"name" doc:"Display name"`
	Slug string `json:"slug" doc:"Unique slug"`
}

func categoryEntry(c *domain.Category) CatalogEntry {
	return CatalogEntry{Name: c.Name, Slug: c.Slug}
}

func genreEntry(g *domain.Genre) CatalogEntry {
	return CatalogEntry{Name: g.Name, Slug: g.Slug}
}

// TitleResponse is a title with its category, genres and rating expanded.
type TitleResponse struct {
	ID          int64          `json:"id" doc:"Title ID"`
	Name        string         `json:"name" doc:"Title name"`
	Year        int            `json:"year" doc:"Release year"`
	Rating      *float64       `json:"rating" nullable:"true" doc:"Mean review score, null without reviews"`
	Description string         `json:"description" doc:"Description"`
	Genre       []CatalogEntry `json:"genre" doc:"Genres"`
	Category    *CatalogEntry  `json:"category" doc:"Category, null when unset"`
}

func titleResponse(t *domain.Title) TitleResponse {
	genres := make([]CatalogEntry, len(t.Genres))
	for i := range t.Genres {
		genres[i] = genreEntry(&t.Genres[i])
	}

	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
	}
	if t.Category != nil {
		c := categoryEntry(t.Category)
		resp.Category = &c
	}
	return resp
}

// ReviewResponse is a review as returned by the API.
type ReviewResponse struct {
	ID      int64     `json:"id" doc:"Review ID"`
	Text    string    `json:"text" doc:"Review text"`
	Author  string    `json:"author" doc:"Author username"`
	Score   int       `json:"score" minimum:"1" maximum:"10" doc:"Score from 1 to 10"`
	PubDate time.Time `json:"pub_date" doc:"Publication time"`
}

func reviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

// CommentResponse is a comment as returned by the API.
type CommentResponse struct {
	ID      int64     `json:"id" doc:"Comment ID"`
	Text    string    `json:"text" doc:"Comment text"`
	Author  string    `json:"author" doc:"Author username"`
	PubDate time.Time `json:"pub_date" doc:"Publication time"`
}

func commentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author,
		PubDate: c.PubDate,
	}
}
