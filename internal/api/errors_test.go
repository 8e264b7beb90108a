package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/logger"
	"github.com/yamdb/yamdb-server/internal/store"
)

func TestErrorHandler_Mapping(t *testing.T) {
	RegisterErrorHandler(logger.Discard().Logger)

	tests := []struct {
		name    string
		status  int
		errs    []error
		want    int
		code    string
		message string
	}{
		{
			name:    "domain not found",
			status:  http.StatusInternalServerError,
			errs:    []error{domainerrors.NotFound("title not found")},
			want:    http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "title not found",
		},
		{
			name:    "wrapped already exists",
			status:  http.StatusInternalServerError,
			errs:    []error{fmt.Errorf("create: %w", domainerrors.AlreadyExists("slug taken"))},
			want:    http.StatusBadRequest,
			code:    "ALREADY_EXISTS",
			message: "slug taken",
		},
		{
			name:    "store reference",
			status:  http.StatusInternalServerError,
			errs:    []error{store.ErrInvalidReference.WithCause(errors.New("FOREIGN KEY constraint failed"))},
			want:    http.StatusBadRequest,
			code:    "VALIDATION",
			message: "referenced resource does not exist",
		},
		{
			name:    "unexpected failure hides details",
			status:  http.StatusInternalServerError,
			errs:    []error{errors.New("disk on fire")},
			want:    http.StatusInternalServerError,
			code:    "INTERNAL",
			message: msgInternal,
		},
		{
			name:    "huma unprocessable",
			status:  http.StatusUnprocessableEntity,
			errs:    []error{&huma.ErrorDetail{Location: "body.name", Message: "expected string"}},
			want:    http.StatusBadRequest,
			code:    "VALIDATION",
			message: "validation failed",
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			want:    http.StatusTooManyRequests,
			code:    "RATE_LIMITED",
			message: "slow down",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := tt.message
			if tt.code == "INTERNAL" {
				message = "boom"
			}
			err := huma.NewError(tt.status, message, tt.errs...)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.GetStatus())
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestFieldDetails(t *testing.T) {
	details := fieldDetails([]error{
		&huma.ErrorDetail{Location: "body.year", Message: "expected integer"},
		&huma.ErrorDetail{Location: "body", Message: "unexpected property"},
		&huma.ErrorDetail{Location: "query.page", Message: "minimum 1"},
		errors.New("not a detail"),
	})

	assert.Equal(t, map[string]string{
		"year":             "expected integer",
		"non_field_errors": "unexpected property",
		"query.page":       "minimum 1",
	}, details)

	assert.Nil(t, fieldDetails(nil))
}
