package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidKind   = errors.New("invalid transaction kind")
)

// ValidationError aggregates every problem found in one piece of user
// input. The operation that produced it wrote no state.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validação falhou: " + strings.Join(e.Problems, ", ")
}

// NewValidationError wraps a list of human-readable problems; returns
// nil when the list is empty so callers can pass it through directly.
func NewValidationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError signals that a referenced id is absent from its store.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s não encontrada: %v", e.Entity, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
