// Package id generates random identifiers and confirmation codes with NanoID.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// codeAlphabet omits characters that are easy to misread in an email (0/O, 1/I/L).
	codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
	codeLength   = 12
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "tok-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// ConfirmationCode returns a random single-use code suitable for sending by email.
func ConfirmationCode() (string, error) {
	code, err := gonanoid.Generate(codeAlphabet, codeLength)
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return code, nil
}
