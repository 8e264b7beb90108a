package domain

// Title is a catalogued work.
type Title struct {
	ID          int64
	Name        string
	Year        int
	Description string
	// Category is nil when unset or after the category was deleted.
	Category *Category
	Genres   []Genre
	// Rating is the mean review score, nil when the title has no reviews.
	// Always computed from the store at read time.
	Rating *float64
}

// GenreSlugs returns the slugs of the title's genres in order.
func (t *Title) GenreSlugs() []string {
	slugs := make([]string, len(t.Genres))
	for i, g := range t.Genres {
		slugs[i] = g.Slug
	}
	return slugs
}
