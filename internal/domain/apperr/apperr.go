// Package apperr defines the error kinds shared by every storefront service.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	Unauthorized
	Forbidden
	NotFound
	OutOfStock
	EmptyCart
	ValidationFailed
	Conflict
)

var kindNames = map[Kind]string{
	Internal:         "internal",
	Unauthorized:     "unauthorized",
	Forbidden:        "forbidden",
	NotFound:         "not_found",
	OutOfStock:       "out_of_stock",
	EmptyCart:        "empty_cart",
	ValidationFailed: "validation_failed",
	Conflict:         "conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error carries a kind, a human readable message and optional details.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

var (
	ErrUnauthorized = &Error{Kind: Unauthorized}
	ErrForbidden    = &Error{Kind: Forbidden}
	ErrNotFound     = &Error{Kind: NotFound}
	ErrOutOfStock   = &Error{Kind: OutOfStock}
	ErrEmptyCart    = &Error{Kind: EmptyCart}
	ErrValidation   = &Error{Kind: ValidationFailed}
	ErrConflict     = &Error{Kind: Conflict}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithDetail returns e with key set in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// KindOf reports the kind of the first *Error in err's chain, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

// StockShortage builds the OutOfStock error naming the offending product.
func StockShortage(productID int64, name string, requested, available int) *Error {
	return New(OutOfStock, "not enough stock for %q: requested %d, available %d", name, requested, available).
		WithDetail("productId", productID).
		WithDetail("available", available)
}
