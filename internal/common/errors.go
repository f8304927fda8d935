package common

import "errors"

// Validation errors, surfaced synchronously to callers with no state
// change (spec error kind 1).
var (
	ErrUnknownOutlet         = errors.New("unknown outlet")
	ErrUnknownProduct        = errors.New("unknown product")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidPrice          = errors.New("price must be positive")
	ErrOutletClosed          = errors.New("outlet is closed")
	ErrInsufficientInventory = errors.New("insufficient inventory")
)

// ErrOverdrawAborted marks a settlement abort (spec error kind 3): the
// buyer would go negative, so the fill never happened.
var ErrOverdrawAborted = errors.New("fill aborted: buyer would overdraw")
