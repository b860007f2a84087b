package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrOutOfStock indicates a product has no remaining stock.
	ErrOutOfStock = errors.New("out of stock")

	// ErrInsufficientStock indicates the requested quantity exceeds the
	// remaining stock.
	ErrInsufficientStock = errors.New("not enough stock")

	// ErrRemoteUnavailable indicates the backing store is unreachable.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)
