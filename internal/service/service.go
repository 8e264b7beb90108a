// Package service implements the YaMDb use cases. Every operation receives the
// caller's policy.Identity, authorizes it, validates the payload and then
// talks to the store. Errors returned are domain errors from internal/errors
// or wrapped internal failures.
package service

import (
	"errors"
	"log/slog"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/store"
)

// notFound converts store.ErrNotFound into a domain not-found error with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg)
	}
	return err
}

// alreadyExists converts store.ErrAlreadyExists into a domain error with msg.
func alreadyExists(err error, msg string) error {
	if errors.Is(err, store.ErrAlreadyExists) {
		return domainerrors.AlreadyExists(msg).WithCause(err)
	}
	return err
}

func discardIfNil(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
