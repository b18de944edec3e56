package sim

import "errors"

var (
	// ErrInvalidModule is returned when a module has an empty name or a non-positive cost.
	ErrInvalidModule = errors.New("invalid module")

	// ErrConflictingModule is returned when two modules share a name but not their costs.
	ErrConflictingModule = errors.New("conflicting module definitions")

	// ErrTickLimitExceeded is returned by Run when the tick cap is reached before completion.
	ErrTickLimitExceeded = errors.New("tick limit exceeded")
)
