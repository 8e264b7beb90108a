// Package search keeps a Bleve full-text index of catalogue titles. The SQL
// store stays authoritative; the index only resolves free-text queries to ids.
package search

import (
	"strconv"

	"github.com/yamdb/yamdb-server/internal/domain"
)

// TitleDocument is the indexed shape of a title.
type TitleDocument struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Year        int      `json:"year"`
	Category    string   `json:"category,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

// DocumentID returns the index key of a title.
func DocumentID(titleID int64) string {
	return strconv.FormatInt(titleID, 10)
}

// NewTitleDocument builds a document from a stored title.
func NewTitleDocument(t *domain.Title) *TitleDocument {
	doc := &TitleDocument{
		ID:          DocumentID(t.ID),
		Name:        t.Name,
		Description: t.Description,
		Year:        t.Year,
		Genres:      t.GenreSlugs(),
	}
	if t.Category != nil {
		doc.Category = t.Category.Slug
	}
	return doc
}

// ToMap converts the document to the field names used by the mapping.
func (d *TitleDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":   d.ID,
		"name": d.Name,
		"year": float64(d.Year),
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	return m
}
