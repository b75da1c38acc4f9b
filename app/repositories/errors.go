package repositories

import "errors"

var (
	// ErrItemNotFound is returned when no item matches the given identity.
	// A syntactically invalid identity is reported the same way.
	ErrItemNotFound = errors.New("item not found")

	// ErrInsufficientStock is returned when a deduction would drive stock
	// below zero. The item is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock")
)
