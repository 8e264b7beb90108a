package store

// Page limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationParams selects a page of a listing. Pages are 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// PaginatedResult contains one page of items plus the total count.
type PaginatedResult[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
	HasMore  bool
}

// DefaultPaginationParams returns the first page with the default size.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Page: 1, PageSize: DefaultPageSize}
}

// Validate clamps the parameters into range.
func (p *PaginationParams) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the number of rows to skip.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// NewPaginatedResult fills the page metadata for items out of total.
func NewPaginatedResult[T any](items []T, total int, p PaginationParams) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{
		Items:    items,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
		HasMore:  p.Offset()+len(items) < total,
	}
}
