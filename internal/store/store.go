package store

import "errors"

var (
	// ErrNotFound is returned by operations that must act on an existing record.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientPoints is returned when a redemption exceeds the wallet balance.
	ErrInsufficientPoints = errors.New("insufficient points")
)

type scanner interface{ Scan(...any) error }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
