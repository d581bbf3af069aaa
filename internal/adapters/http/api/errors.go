package api

import (
	"errors"
	"fmt"
)

// ErrBadRequest marks malformed request payloads and query parameters.
var ErrBadRequest = errors.New("bad request")

// Wrap annotates an upstream error with the failing operation.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// NewKind builds a fresh error of the given kind annotated with the
// operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
