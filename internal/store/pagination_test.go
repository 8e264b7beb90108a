package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name  string
		input PaginationParams
		want  PaginationParams
	}{
		{name: "valid", input: PaginationParams{Page: 2, PageSize: 50}, want: PaginationParams{Page: 2, PageSize: 50}},
		{name: "zero values default", input: PaginationParams{}, want: PaginationParams{Page: 1, PageSize: DefaultPageSize}},
		{name: "negative page", input: PaginationParams{Page: -3, PageSize: 5}, want: PaginationParams{Page: 1, PageSize: 5}},
		{name: "size capped", input: PaginationParams{Page: 1, PageSize: 5000}, want: PaginationParams{Page: 1, PageSize: MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.input
			p.Validate()
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestPaginationParams_Offset(t *testing.T) {
	assert.Equal(t, 0, PaginationParams{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, PaginationParams{Page: 3, PageSize: 10}.Offset())
}

func TestNewPaginatedResult(t *testing.T) {
	p := PaginationParams{Page: 1, PageSize: 2}
	res := NewPaginatedResult([]int{1, 2}, 5, p)
	assert.True(t, res.HasMore)
	assert.Equal(t, 5, res.Total)

	p.Page = 3
	res = NewPaginatedResult([]int{5}, 5, p)
	assert.False(t, res.HasMore)

	empty := NewPaginatedResult[int](nil, 0, DefaultPaginationParams())
	assert.NotNil(t, empty.Items)
	assert.False(t, empty.HasMore)
}
