package store_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yamdb/yamdb-server/internal/store"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{Code: http.StatusNotFound, Message: "not found"}
	assert.Equal(t, "not found", err.Error())
}

func TestError_WithCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: users.email")
	err := store.ErrAlreadyExists.WithCause(cause)

	assert.Contains(t, err.Error(), "resource already exists")
	assert.Contains(t, err.Error(), "users.email")
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, store.ErrInvalidReference)
	assert.Equal(t, http.StatusBadRequest, err.HTTPCode())
}

func TestError_SentinelsDistinct(t *testing.T) {
	assert.NotErrorIs(t, store.ErrNotFound, store.ErrAlreadyExists)
	assert.NotErrorIs(t, store.ErrAlreadyExists, store.ErrInvalidReference)
}
