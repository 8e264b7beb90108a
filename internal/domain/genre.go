package domain

// Genre classifies titles; a title may belong to many genres.
type Genre struct {
	ID   int64
	Name string
	Slug string
}

// Category groups titles; a title belongs to at most one category.
type Category struct {
	ID   int64
	Name string
	Slug string
}
