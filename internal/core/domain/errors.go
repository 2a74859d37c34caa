package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrUnsupportedDocument = errors.New("unsupported document")
	ErrTemporary           = errors.New("temporary failure")

	// ErrStateNotFound reports a state store that has never been written. It
	// is also an ErrStoreUnavailable.
	ErrStateNotFound = fmt.Errorf("state not found: %w", ErrStoreUnavailable)
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
